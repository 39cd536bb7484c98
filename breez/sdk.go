package breez

import (
	"context"
)

// PaymentType is the direction of a payment as reported by the wallet
// backend.
type PaymentType int

const (
	PaymentTypeReceive PaymentType = iota
	PaymentTypeSend
)

// PaymentStatus is the backend's settlement state for a payment.
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = iota
	PaymentStatusCompleted
	PaymentStatusFailed
)

// PaymentDetails is the variant part of a Payment. Lightning payments
// carry an invoice and a payment hash, everything else is opaque to us.
type PaymentDetails interface {
	isPaymentDetails()
}

// LightningDetails describes a payment settled over lightning.
type LightningDetails struct {
	Invoice     string
	PaymentHash string
	Preimage    string
	Description string
}

func (LightningDetails) isPaymentDetails() {}

// SparkDetails describes a spark-native transfer. The reconciliation
// engine never matches these, they only show up in raw listings.
type SparkDetails struct {
	SparkID string
}

func (SparkDetails) isPaymentDetails() {}

// Payment is the raw payment record returned by the backend. Read-only
// to callers; amounts and fees are reported without a self-describing
// unit (see the engine's fee inference).
type Payment struct {
	ID         string
	Type       PaymentType
	Status     PaymentStatus
	Timestamp  uint64
	AmountMsat uint64
	FeesMsat   uint64
	Details    PaymentDetails
}

type ListPaymentsRequest struct {
	Type   *PaymentType
	Status *PaymentStatus
	Offset *uint32
	Limit  *uint32
}

type ReceivePaymentRequest struct {
	Description string
	AmountSats  uint64
}

type ReceivePaymentResponse struct {
	PaymentRequest string
	FeeSats        uint64
}

type PrepareSendRequest struct {
	PaymentRequest string
	AmountSats     *uint64
}

// SendMethod reports which rail the backend picked for a prepared send.
type SendMethod int

const (
	SendMethodBolt11 SendMethod = iota
	SendMethodSpark
)

type PrepareSendResponse struct {
	Method               SendMethod
	PaymentRequest       string
	AmountSats           uint64
	LightningFeeSats     uint64
	SparkTransferFeeSats *uint64
}

type SendPaymentOptions struct {
	PreferSpark           bool
	CompletionTimeoutSecs uint32
}

type SendPaymentRequest struct {
	Prepared *PrepareSendResponse
	Options  SendPaymentOptions
}

type SendPaymentResponse struct {
	Payment Payment
}

type GetInfoResponse struct {
	BalanceSats uint64
}

// Sdk is the operation contract of the wallet backend. Implementations
// talk to the real wallet (see breez/sparkd); the engine only ever goes
// through this interface and does no I/O of its own.
type Sdk interface {
	ListPayments(ctx context.Context, req *ListPaymentsRequest) ([]Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	ReceivePayment(ctx context.Context, req *ReceivePaymentRequest) (*ReceivePaymentResponse, error)
	PrepareSendPayment(ctx context.Context, req *PrepareSendRequest) (*PrepareSendResponse, error)
	SendPayment(ctx context.Context, req *SendPaymentRequest) (*SendPaymentResponse, error)
	GetInfo(ctx context.Context) (*GetInfoResponse, error)
}
