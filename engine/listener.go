package engine

import (
	"context"
	"errors"

	"github.com/sebdeveloper6952/go-breez/breez"
	"github.com/sebdeveloper6952/go-breez/lightning"
)

// ErrClosed is returned by WaitInvoice when the client shuts down
// underneath a waiting listener.
var ErrClosed = errors.New("client closed")

type invoiceListener struct {
	c *Client
}

// Listen returns a listener draining this client's notification queue.
// Several listeners may drain concurrently; each settled invoice is
// handed to exactly one of them, in enqueue order.
func (c *Client) Listen(ctx context.Context) (lightning.InvoiceListener, error) {
	return &invoiceListener{c: c}, nil
}

// WaitInvoice blocks until a settled, verified invoice is available or
// the context is canceled. The returned amount is always the recorded
// invoice amount, never the backend's raw reported one.
func (l *invoiceListener) WaitInvoice(ctx context.Context) (*lightning.Invoice, error) {
	for {
		select {
		case item := <-l.c.notifications.ChanOut():
			payment, ok := item.(breez.Payment)
			if !ok {
				continue
			}

			inv := l.c.fromPayment(payment)
			if inv == nil {
				// The enqueue gate only proves the hash is known; the
				// full gate can still reject, e.g. on a missing amount.
				continue
			}

			if rec := l.c.ledger.lookup(inv.Bolt11, inv.PaymentHash); rec != nil && rec.Amount != nil {
				inv.Amount = *rec.Amount
				inv.AmountReceived = *rec.Amount
			}

			return inv, nil

		case <-ctx.Done():
			return nil, ctx.Err()

		case <-l.c.quit:
			return nil, ErrClosed
		}
	}
}
