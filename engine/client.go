package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/queue"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/go-breez/breez"
	"github.com/sebdeveloper6952/go-breez/lightning"
)

const (
	defaultPollInterval  = 5 * time.Second
	defaultErrorInterval = 10 * time.Second

	sendCompletionTimeoutSecs = 60
)

// Config carries the collaborators and tunables for a Client. Sdk is
// required, everything else has a sensible default.
type Config struct {
	Sdk        breez.Sdk
	Network    *chaincfg.Params
	PaymentKey string
	Logger     logrus.FieldLogger
	Clock      clock.Clock

	// PollInterval is the wait between successful poll ticks,
	// ErrorInterval the longer wait after a failed listing call.
	PollInterval  time.Duration
	ErrorInterval time.Duration
}

// Client bridges the polling wallet backend to the synchronous
// lightning.Client contract. It remembers every invoice it issues,
// matches completed incoming payments against them and surfaces each
// match to listeners exactly once.
type Client struct {
	sdk        breez.Sdk
	net        *chaincfg.Params
	paymentKey string
	log        logrus.FieldLogger
	clock      clock.Clock

	pollInterval    time.Duration
	backoffInterval time.Duration

	ledger        *invoiceLedger
	seen          *seenTracker
	amounts       *amountResolver
	notifications *queue.ConcurrentQueue

	cancel        context.CancelFunc
	quit          chan struct{}
	pollerDone    chan struct{}
	pollerFailure error
	closeOnce     sync.Once
}

var _ lightning.Client = (*Client)(nil)

// New builds a Client and starts its background payment monitor.
func New(cfg Config) (*Client, error) {
	if cfg.Sdk == nil {
		return nil, errors.New("engine: sdk is required")
	}
	if cfg.Network == nil {
		cfg.Network = &chaincfg.MainNetParams
	}
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: false,
			FullTimestamp: true,
		})
		cfg.Logger = logger
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ErrorInterval <= 0 {
		cfg.ErrorInterval = defaultErrorInterval
	}

	c := &Client{
		sdk:             cfg.Sdk,
		net:             cfg.Network,
		paymentKey:      cfg.PaymentKey,
		log:             cfg.Logger,
		clock:           cfg.Clock,
		pollInterval:    cfg.PollInterval,
		backoffInterval: cfg.ErrorInterval,
		ledger:          newInvoiceLedger(cfg.Network),
		seen:            newSeenTracker(),
		amounts:         newAmountResolver(cfg.Logger),
		notifications:   queue.NewConcurrentQueue(16),
		quit:            make(chan struct{}),
		pollerDone:      make(chan struct{}),
	}
	c.notifications.Start()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.monitorPayments(ctx)

	return c, nil
}

// Close stops the payment monitor and wakes any blocked listeners.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.pollerDone
		close(c.quit)
		c.notifications.Stop()
	})
}

func (c *Client) String() string {
	return fmt.Sprintf("type=breez;key=%s", c.paymentKey)
}

// PaymentKey identifies this client for out-of-band payment pushes.
func (c *Client) PaymentKey() string {
	return c.paymentKey
}

// AmountMismatches reports how many settled payments carried a decoded
// amount disagreeing with the recorded one.
func (c *Client) AmountMismatches() uint64 {
	return c.amounts.Mismatches()
}

// CreateInvoice asks the backend for a new invoice and records it in
// the ledger so its settlement can later be proven and priced. The
// backend controls the actual expiry; the requested one is advisory.
func (c *Client) CreateInvoice(ctx context.Context, amount lnwire.MilliSatoshi, description string, expiry time.Duration) (*lightning.Invoice, error) {
	if description == "" {
		description = "Invoice"
	}

	resp, err := c.sdk.ReceivePayment(ctx, &breez.ReceivePaymentRequest{
		Description: description,
		AmountSats:  uint64(amount.ToSatoshis()),
	})
	if err != nil {
		return nil, fmt.Errorf("receive payment: %w", err)
	}

	requested := amount
	rec := c.ledger.record(resp.PaymentRequest, "", &requested)

	inv := &lightning.Invoice{
		ID:      resp.PaymentRequest,
		Bolt11:  resp.PaymentRequest,
		Amount:  amount,
		FeeSats: int64(resp.FeeSats),
		Status:  lightning.InvoiceStatusUnpaid,
	}
	if rec != nil {
		inv.ID = rec.PaymentHash
		inv.PaymentHash = rec.PaymentHash
		if rec.Amount != nil {
			inv.Amount = *rec.Amount
		}
	}

	return inv, nil
}

// GetInvoice resolves an invoice by payment hash, bolt11 or backend
// payment id. Unresolvable identifiers degrade to an unpaid
// placeholder, never an error.
func (c *Client) GetInvoice(ctx context.Context, idOrHash string) (*lightning.Invoice, error) {
	if p := c.findPayment(ctx, idOrHash); p != nil {
		if inv := c.fromPayment(*p); inv != nil {
			return inv, nil
		}
	}

	return &lightning.Invoice{
		ID:          idOrHash,
		PaymentHash: idOrHash,
		Status:      lightning.InvoiceStatusUnpaid,
	}, nil
}

// findPayment looks a payment up by id with a list-scan fallback,
// restricted to payments matching an invoice we issued.
func (c *Client) findPayment(ctx context.Context, identifier string) *breez.Payment {
	if p, err := c.sdk.GetPayment(ctx, identifier); err == nil && p != nil && c.isKnown(*p) {
		return p
	}

	receive := breez.PaymentTypeReceive
	payments, err := c.sdk.ListPayments(ctx, &breez.ListPaymentsRequest{Type: &receive})
	if err != nil {
		return nil
	}

	for i := range payments {
		p := payments[i]
		if ln, ok := p.Details.(breez.LightningDetails); ok {
			if !c.isKnown(p) {
				continue
			}
			if strings.EqualFold(ln.PaymentHash, identifier) || ln.Invoice == identifier {
				return &p
			}
			continue
		}
		if p.ID == identifier {
			return &p
		}
	}

	return nil
}

// ListInvoices lists receive-side payments that match issued invoices.
func (c *Client) ListInvoices(ctx context.Context, params *lightning.ListInvoicesParams) ([]*lightning.Invoice, error) {
	receive := breez.PaymentTypeReceive
	req := &breez.ListPaymentsRequest{Type: &receive}
	if params != nil {
		if params.PendingOnly {
			pending := breez.PaymentStatusPending
			req.Status = &pending
		}
		req.Offset = params.Offset
	}

	payments, err := c.sdk.ListPayments(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	invoices := make([]*lightning.Invoice, 0, len(payments))
	for _, p := range payments {
		if inv := c.fromPayment(p); inv != nil {
			invoices = append(invoices, inv)
		}
	}

	return invoices, nil
}

// ListPayments lists send-side payments that match known invoices.
func (c *Client) ListPayments(ctx context.Context, params *lightning.ListPaymentsParams) ([]*lightning.Payment, error) {
	send := breez.PaymentTypeSend
	req := &breez.ListPaymentsRequest{Type: &send}
	if params != nil {
		req.Offset = params.Offset
	}

	rawPayments, err := c.sdk.ListPayments(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	payments := make([]*lightning.Payment, 0, len(rawPayments))
	for _, p := range rawPayments {
		if lp := c.toPayment(p); lp != nil {
			payments = append(payments, lp)
		}
	}

	return payments, nil
}

// GetBalance reports the backend balance. Backend errors degrade to a
// zero balance rather than failing the query.
func (c *Client) GetBalance(ctx context.Context) (*lightning.Balance, error) {
	info, err := c.sdk.GetInfo(ctx)
	if err != nil {
		c.log.Warnf("[client] get info: %v", err)
		return &lightning.Balance{}, nil
	}

	return &lightning.Balance{ConfirmedSats: int64(info.BalanceSats)}, nil
}

// Pay prepares and sends an outgoing payment. Failures come back as a
// structured error result, not as an error return.
func (c *Client) Pay(ctx context.Context, bolt11 string, params *lightning.PayParams) (*lightning.PayResponse, error) {
	if bolt11 == "" {
		return &lightning.PayResponse{
			Result: lightning.PayResultError,
			Error:  "bolt11 invoice required",
		}, nil
	}

	prepareReq := &breez.PrepareSendRequest{PaymentRequest: bolt11}
	if params != nil {
		prepareReq.AmountSats = params.AmountSats
	}

	prepared, err := c.sdk.PrepareSendPayment(ctx, prepareReq)
	if err != nil {
		return &lightning.PayResponse{
			Result: lightning.PayResultError,
			Error:  err.Error(),
		}, nil
	}

	if prepared.Method != breez.SendMethodBolt11 {
		return &lightning.PayResponse{
			Result: lightning.PayResultError,
			Error:  "invalid payment method",
		}, nil
	}

	sendResp, err := c.sdk.SendPayment(ctx, &breez.SendPaymentRequest{
		Prepared: prepared,
		Options: breez.SendPaymentOptions{
			PreferSpark:           false,
			CompletionTimeoutSecs: sendCompletionTimeoutSecs,
		},
	})
	if err != nil {
		return &lightning.PayResponse{
			Result: lightning.PayResultError,
			Error:  err.Error(),
		}, nil
	}

	p := sendResp.Payment
	feeSats := int64(prepared.LightningFeeSats)
	if prepared.SparkTransferFeeSats != nil {
		feeSats += int64(*prepared.SparkTransferFeeSats)
	}

	resp := &lightning.PayResponse{
		Amount:  lnwire.MilliSatoshi(p.AmountMsat),
		FeeSats: feeSats,
		Status:  sendStatus(p.Status),
	}
	switch p.Status {
	case breez.PaymentStatusCompleted:
		resp.Result = lightning.PayResultOk
	case breez.PaymentStatusPending:
		resp.Result = lightning.PayResultUnknown
	default:
		resp.Result = lightning.PayResultError
	}

	return resp, nil
}

// Node-level operations the nodeless backend cannot perform.

func (c *Client) OpenChannel(ctx context.Context, nodeURI string, localAmountSats uint64) error {
	return lightning.ErrUnsupported
}

func (c *Client) CloseChannel(ctx context.Context, channelID string) error {
	return lightning.ErrUnsupported
}

func (c *Client) GetDepositAddress(ctx context.Context) (string, error) {
	return "", lightning.ErrUnsupported
}

func (c *Client) ConnectPeer(ctx context.Context, nodeURI string) error {
	return lightning.ErrUnsupported
}

func (c *Client) CancelInvoice(ctx context.Context, invoiceID string) error {
	return lightning.ErrUnsupported
}
