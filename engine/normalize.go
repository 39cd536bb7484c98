package engine

import (
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/sebdeveloper6952/go-breez/breez"
	"github.com/sebdeveloper6952/go-breez/lightning"
)

// match is the proven part of a raw payment: the hash that ties it to
// an invoice we issued, and the resolved amounts.
type match struct {
	paymentHash string
	bolt11      string
	preimage    string
	description string
	amount      lnwire.MilliSatoshi
	fee         lnwire.MilliSatoshi
}

// extractPaymentHash pulls the payment hash from the structured detail,
// falling back to decoding it out of the attached payment request.
func (c *Client) extractPaymentHash(p breez.Payment) string {
	ln, ok := p.Details.(breez.LightningDetails)
	if !ok {
		return ""
	}

	if ln.PaymentHash != "" {
		return strings.ToLower(ln.PaymentHash)
	}

	if hash, _, ok := decodeBolt11(ln.Invoice, c.net); ok && hash != "" {
		return hash
	}

	return ""
}

func (c *Client) isKnown(p breez.Payment) bool {
	hash := c.extractPaymentHash(p)
	if hash == "" {
		return false
	}
	return c.ledger.lookup("", hash) != nil
}

// reconcile runs the full verification gate over a raw payment: a hash
// must be extractable, an invoice with that exact hash must have been
// issued by us, and an amount must be provable from the ledger or the
// request string. Anything that fails a gate is rejected, which is
// indistinguishable from "not our payment". reconcile is pure given the
// ledger contents, so retries and point lookups agree.
func (c *Client) reconcile(p breez.Payment) (*match, bool) {
	hash := c.extractPaymentHash(p)
	if hash == "" {
		c.log.Debugf("[normalize] missing payment hash for payment id=%s", p.ID)
		return nil, false
	}

	var bolt11, preimage, description string
	var decoded *lnwire.MilliSatoshi
	if ln, ok := p.Details.(breez.LightningDetails); ok {
		bolt11 = ln.Invoice
		preimage = ln.Preimage
		description = ln.Description
		if _, amt, ok := decodeBolt11(ln.Invoice, c.net); ok {
			decoded = amt
		}
	}

	// The lookup may fall back to the request-string index, so check
	// that the record really is for this hash.
	record := c.ledger.lookup(bolt11, hash)
	if record == nil || record.PaymentHash != hash {
		c.log.Debugf("[normalize] unknown payment hash=%s id=%s", hash, p.ID)
		return nil, false
	}

	amount, ok := c.amounts.resolve(record.Amount, decoded, hash)
	if !ok {
		c.log.Debugf("[normalize] no provable amount for hash=%s id=%s", hash, p.ID)
		return nil, false
	}

	return &match{
		paymentHash: hash,
		bolt11:      bolt11,
		preimage:    preimage,
		description: description,
		amount:      amount,
		fee:         feeFromRaw(p.FeesMsat),
	}, true
}

func receiveStatus(s breez.PaymentStatus) lightning.InvoiceStatus {
	switch s {
	case breez.PaymentStatusCompleted:
		return lightning.InvoiceStatusPaid
	case breez.PaymentStatusFailed:
		return lightning.InvoiceStatusExpired
	default:
		return lightning.InvoiceStatusUnpaid
	}
}

func sendStatus(s breez.PaymentStatus) lightning.PaymentStatus {
	switch s {
	case breez.PaymentStatusCompleted:
		return lightning.PaymentStatusComplete
	case breez.PaymentStatusFailed:
		return lightning.PaymentStatusFailed
	case breez.PaymentStatusPending:
		return lightning.PaymentStatusPending
	default:
		return lightning.PaymentStatusUnknown
	}
}

// fromPayment maps a raw payment onto the receive-side invoice view.
// Returns nil for anything reconcile rejects.
func (c *Client) fromPayment(p breez.Payment) *lightning.Invoice {
	m, ok := c.reconcile(p)
	if !ok {
		return nil
	}

	paidAt := time.Unix(int64(p.Timestamp), 0).UTC()
	bolt11 := m.bolt11
	if bolt11 == "" {
		bolt11 = p.ID
	}

	return &lightning.Invoice{
		ID:             m.paymentHash,
		PaymentHash:    m.paymentHash,
		Bolt11:         bolt11,
		Amount:         m.amount,
		AmountReceived: m.amount,
		Status:         receiveStatus(p.Status),
		PaidAt:         &paidAt,
	}
}

// toPayment maps a raw payment onto the send-side view.
func (c *Client) toPayment(p breez.Payment) *lightning.Payment {
	m, ok := c.reconcile(p)
	if !ok {
		return nil
	}

	return &lightning.Payment{
		ID:          m.paymentHash,
		PaymentHash: m.paymentHash,
		Preimage:    m.preimage,
		Bolt11:      m.bolt11,
		Amount:      m.amount,
		AmountSent:  m.amount,
		Fee:         m.fee,
		Status:      sendStatus(p.Status),
		CreatedAt:   time.Unix(int64(p.Timestamp), 0).UTC(),
	}
}

// NormalizePayment maps a raw payment onto the generic listing view, or
// nil if the payment cannot be verified against the ledger.
func (c *Client) NormalizePayment(p breez.Payment) *lightning.NormalizedPayment {
	m, ok := c.reconcile(p)
	if !ok {
		return nil
	}

	description := m.description
	if description == "" {
		description = m.bolt11
	}

	return &lightning.NormalizedPayment{
		ID:          m.paymentHash,
		Type:        p.Type,
		Status:      p.Status,
		Timestamp:   p.Timestamp,
		Amount:      m.amount,
		Fee:         m.fee,
		Description: description,
	}
}
