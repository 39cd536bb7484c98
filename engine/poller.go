package engine

import (
	"context"
	"fmt"

	"github.com/sebdeveloper6952/go-breez/breez"
)

// monitorPayments is the background reconciliation loop. Each tick
// lists incoming payments and feeds them through the notification gate.
// Listing errors are transient: they log, stretch the wait to the
// backoff interval and the loop carries on. A panic escaping a tick is
// fatal; it is recorded and Done() closes so callers can observe that
// no further payments will be delivered.
func (c *Client) monitorPayments(ctx context.Context) {
	defer close(c.pollerDone)
	defer func() {
		if r := recover(); r != nil {
			c.pollerFailure = fmt.Errorf("payment monitor stopped: %v", r)
			c.log.Errorf("[poller] payment monitoring stopped: %v", r)
		}
	}()

	receive := breez.PaymentTypeReceive

	for {
		wait := c.pollInterval

		payments, err := c.sdk.ListPayments(ctx, &breez.ListPaymentsRequest{Type: &receive})
		if err != nil {
			c.log.Warnf("[poller] list payments: %v", err)
			wait = c.backoffInterval
		} else {
			for _, p := range payments {
				c.maybeNotify(p)
			}
		}

		select {
		case <-c.clock.TickAfter(wait):
		case <-ctx.Done():
			return
		}
	}
}

// maybeNotify enqueues a completed payment for waiting listeners, at
// most once. The seen gate runs before the known-invoice gate and is
// shared with InjectPayment, so the two ingestion paths cannot both
// deliver the same event.
func (c *Client) maybeNotify(p breez.Payment) {
	if p.Status != breez.PaymentStatusCompleted {
		return
	}

	if !c.seen.tryMarkSeen(p.ID, c.extractPaymentHash(p)) {
		return
	}

	if !c.isKnown(p) {
		return
	}

	c.log.Infof("[poller] completed payment id=%s hash=%s", p.ID, c.extractPaymentHash(p))
	select {
	case c.notifications.ChanIn() <- p:
	case <-c.quit:
	}
}

// InjectPayment feeds a payment observed out of band (e.g. pushed by a
// webhook) through the same gates as the poller.
func (c *Client) InjectPayment(p breez.Payment) {
	c.maybeNotify(p)
}

// Done closes when the background loop has stopped, either through
// Close or because a tick failed fatally.
func (c *Client) Done() <-chan struct{} {
	return c.pollerDone
}

// Err reports why the background loop stopped. It returns nil while
// the loop is running and after a clean shutdown.
func (c *Client) Err() error {
	select {
	case <-c.pollerDone:
		return c.pollerFailure
	default:
		return nil
	}
}
