package sparkd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sebdeveloper6952/go-breez/breez"
)

// sparkd talks to a sparkd wallet daemon over its JSON REST API.
type sparkd struct {
	url string
	key string
}

type paymentJSON struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp uint64 `json:"timestamp"`
	Amount    uint64 `json:"amount_msat"`
	Fees      uint64 `json:"fees_msat"`
	Details   struct {
		Type        string `json:"type"`
		Invoice     string `json:"invoice"`
		PaymentHash string `json:"payment_hash"`
		Preimage    string `json:"preimage"`
		Description string `json:"description"`
		SparkID     string `json:"spark_id"`
	} `json:"details"`
}

type receiveRequestJSON struct {
	Description string `json:"description"`
	AmountSats  uint64 `json:"amount_sats"`
}

type receiveResponseJSON struct {
	PaymentRequest string `json:"payment_request"`
	FeeSats        uint64 `json:"fee_sats"`
}

type prepareRequestJSON struct {
	PaymentRequest string  `json:"payment_request"`
	AmountSats     *uint64 `json:"amount_sats,omitempty"`
}

type prepareResponseJSON struct {
	Method               string  `json:"method"`
	PaymentRequest       string  `json:"payment_request"`
	AmountSats           uint64  `json:"amount_sats"`
	LightningFeeSats     uint64  `json:"lightning_fee_sats"`
	SparkTransferFeeSats *uint64 `json:"spark_transfer_fee_sats,omitempty"`
}

type sendRequestJSON struct {
	Prepared              prepareResponseJSON `json:"prepared"`
	PreferSpark           bool                `json:"prefer_spark"`
	CompletionTimeoutSecs uint32              `json:"completion_timeout_secs"`
}

type sendResponseJSON struct {
	Payment paymentJSON `json:"payment"`
}

type infoResponseJSON struct {
	BalanceSats uint64 `json:"balance_sats"`
}

func New(
	url string,
	key string,
) (breez.Sdk, error) {
	return &sparkd{
		url: url,
		key: key,
	}, nil
}

func (s *sparkd) do(ctx context.Context, method, path string, body, target interface{}) error {
	var reader *bytes.Buffer
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(bodyBytes)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("X-Api-Key", s.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("sparkd: %s %s: status %d", method, path, res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(target)
}

func (s *sparkd) ListPayments(ctx context.Context, req *breez.ListPaymentsRequest) ([]breez.Payment, error) {
	values := url.Values{}
	if req != nil {
		if req.Type != nil {
			values.Set("type", paymentTypeString(*req.Type))
		}
		if req.Status != nil {
			values.Set("status", paymentStatusString(*req.Status))
		}
		if req.Offset != nil {
			values.Set("offset", strconv.FormatUint(uint64(*req.Offset), 10))
		}
		if req.Limit != nil {
			values.Set("limit", strconv.FormatUint(uint64(*req.Limit), 10))
		}
	}

	path := "/v1/payments"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var target struct {
		Payments []paymentJSON `json:"payments"`
	}
	if err := s.do(ctx, http.MethodGet, path, nil, &target); err != nil {
		return nil, err
	}

	payments := make([]breez.Payment, 0, len(target.Payments))
	for _, p := range target.Payments {
		payments = append(payments, fromPaymentJSON(p))
	}

	return payments, nil
}

func (s *sparkd) GetPayment(ctx context.Context, id string) (*breez.Payment, error) {
	var target paymentJSON
	if err := s.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, &target); err != nil {
		return nil, err
	}

	payment := fromPaymentJSON(target)
	return &payment, nil
}

func (s *sparkd) ReceivePayment(ctx context.Context, req *breez.ReceivePaymentRequest) (*breez.ReceivePaymentResponse, error) {
	body := &receiveRequestJSON{
		Description: req.Description,
		AmountSats:  req.AmountSats,
	}

	var target receiveResponseJSON
	if err := s.do(ctx, http.MethodPost, "/v1/receive", body, &target); err != nil {
		return nil, err
	}

	return &breez.ReceivePaymentResponse{
		PaymentRequest: target.PaymentRequest,
		FeeSats:        target.FeeSats,
	}, nil
}

func (s *sparkd) PrepareSendPayment(ctx context.Context, req *breez.PrepareSendRequest) (*breez.PrepareSendResponse, error) {
	body := &prepareRequestJSON{
		PaymentRequest: req.PaymentRequest,
		AmountSats:     req.AmountSats,
	}

	var target prepareResponseJSON
	if err := s.do(ctx, http.MethodPost, "/v1/send/prepare", body, &target); err != nil {
		return nil, err
	}

	method := breez.SendMethodBolt11
	if target.Method == "spark" {
		method = breez.SendMethodSpark
	}

	return &breez.PrepareSendResponse{
		Method:               method,
		PaymentRequest:       target.PaymentRequest,
		AmountSats:           target.AmountSats,
		LightningFeeSats:     target.LightningFeeSats,
		SparkTransferFeeSats: target.SparkTransferFeeSats,
	}, nil
}

func (s *sparkd) SendPayment(ctx context.Context, req *breez.SendPaymentRequest) (*breez.SendPaymentResponse, error) {
	body := &sendRequestJSON{
		Prepared: prepareResponseJSON{
			Method:               sendMethodString(req.Prepared.Method),
			PaymentRequest:       req.Prepared.PaymentRequest,
			AmountSats:           req.Prepared.AmountSats,
			LightningFeeSats:     req.Prepared.LightningFeeSats,
			SparkTransferFeeSats: req.Prepared.SparkTransferFeeSats,
		},
		PreferSpark:           req.Options.PreferSpark,
		CompletionTimeoutSecs: req.Options.CompletionTimeoutSecs,
	}

	var target sendResponseJSON
	if err := s.do(ctx, http.MethodPost, "/v1/send", body, &target); err != nil {
		return nil, err
	}

	return &breez.SendPaymentResponse{
		Payment: fromPaymentJSON(target.Payment),
	}, nil
}

func (s *sparkd) GetInfo(ctx context.Context) (*breez.GetInfoResponse, error) {
	var target infoResponseJSON
	if err := s.do(ctx, http.MethodGet, "/v1/info", nil, &target); err != nil {
		return nil, err
	}

	return &breez.GetInfoResponse{
		BalanceSats: target.BalanceSats,
	}, nil
}

func fromPaymentJSON(p paymentJSON) breez.Payment {
	payment := breez.Payment{
		ID:         p.ID,
		Type:       breez.PaymentTypeReceive,
		Status:     breez.PaymentStatusPending,
		Timestamp:  p.Timestamp,
		AmountMsat: p.Amount,
		FeesMsat:   p.Fees,
	}

	if p.Type == "send" {
		payment.Type = breez.PaymentTypeSend
	}

	switch p.Status {
	case "completed":
		payment.Status = breez.PaymentStatusCompleted
	case "failed":
		payment.Status = breez.PaymentStatusFailed
	}

	switch p.Details.Type {
	case "lightning":
		payment.Details = breez.LightningDetails{
			Invoice:     p.Details.Invoice,
			PaymentHash: p.Details.PaymentHash,
			Preimage:    p.Details.Preimage,
			Description: p.Details.Description,
		}
	case "spark":
		payment.Details = breez.SparkDetails{
			SparkID: p.Details.SparkID,
		}
	}

	return payment
}

func paymentTypeString(t breez.PaymentType) string {
	if t == breez.PaymentTypeSend {
		return "send"
	}
	return "receive"
}

func paymentStatusString(s breez.PaymentStatus) string {
	switch s {
	case breez.PaymentStatusCompleted:
		return "completed"
	case breez.PaymentStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

func sendMethodString(m breez.SendMethod) string {
	if m == breez.SendMethodSpark {
		return "spark"
	}
	return "bolt11"
}
