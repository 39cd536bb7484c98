package lightning

import (
	"context"
	"errors"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/sebdeveloper6952/go-breez/breez"
)

// ErrUnsupported is returned for node-level operations the nodeless
// backend cannot perform (channel management, on-chain addresses, peer
// connections).
var ErrUnsupported = errors.New("operation not supported by nodeless backend")

type InvoiceStatus int

const (
	InvoiceStatusUnpaid InvoiceStatus = iota
	InvoiceStatusPaid
	InvoiceStatusExpired
)

type PaymentStatus int

const (
	PaymentStatusUnknown PaymentStatus = iota
	PaymentStatusPending
	PaymentStatusComplete
	PaymentStatusFailed
)

// Invoice is the receive-side view of a payment. Amount and
// AmountReceived always come from the invoice ledger or the decoded
// payment request, never from the backend's raw reported amount.
type Invoice struct {
	ID             string
	PaymentHash    string
	Bolt11         string
	Amount         lnwire.MilliSatoshi
	AmountReceived lnwire.MilliSatoshi
	FeeSats        int64
	Status         InvoiceStatus
	PaidAt         *time.Time
}

// Payment is the send-side view of a payment.
type Payment struct {
	ID          string
	PaymentHash string
	Preimage    string
	Bolt11      string
	Amount      lnwire.MilliSatoshi
	AmountSent  lnwire.MilliSatoshi
	Fee         lnwire.MilliSatoshi
	Status      PaymentStatus
	CreatedAt   time.Time
}

// NormalizedPayment is the generic listing view of a raw backend
// payment, direction-agnostic.
type NormalizedPayment struct {
	ID          string
	Type        breez.PaymentType
	Status      breez.PaymentStatus
	Timestamp   uint64
	Amount      lnwire.MilliSatoshi
	Fee         lnwire.MilliSatoshi
	Description string
}

type Balance struct {
	ConfirmedSats int64
}

type PayResult int

const (
	PayResultOk PayResult = iota
	PayResultError
	PayResultUnknown
)

// PayResponse is the structured outcome of a send attempt. Send
// failures land here as PayResultError with a message, they are never
// returned as errors.
type PayResponse struct {
	Result  PayResult
	Error   string
	Amount  lnwire.MilliSatoshi
	FeeSats int64
	Status  PaymentStatus
}

type ListInvoicesParams struct {
	PendingOnly bool
	Offset      *uint32
}

type ListPaymentsParams struct {
	Offset *uint32
}

type PayParams struct {
	AmountSats *uint64
}

// InvoiceListener hands settled invoices to a blocking consumer.
// Multiple listeners may drain the same client; an invoice delivered to
// one listener is never seen by another.
type InvoiceListener interface {
	WaitInvoice(ctx context.Context) (*Invoice, error)
}

// Client is the synchronous contract exposed to the payment-method
// handler and UI layers.
type Client interface {
	CreateInvoice(ctx context.Context, amount lnwire.MilliSatoshi, description string, expiry time.Duration) (*Invoice, error)
	GetInvoice(ctx context.Context, idOrHash string) (*Invoice, error)
	ListInvoices(ctx context.Context, params *ListInvoicesParams) ([]*Invoice, error)
	ListPayments(ctx context.Context, params *ListPaymentsParams) ([]*Payment, error)
	GetBalance(ctx context.Context) (*Balance, error)
	Pay(ctx context.Context, bolt11 string, params *PayParams) (*PayResponse, error)
	Listen(ctx context.Context) (InvoiceListener, error)
	NormalizePayment(payment breez.Payment) *NormalizedPayment
}
