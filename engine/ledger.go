package engine

import (
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/puzpuzpuz/xsync/v2"
)

// InvoiceRecord remembers an invoice issued by this client: the payment
// hash that proves settlement, the encoded request, and the amount that
// is authoritative for it. Records are immutable once stored.
type InvoiceRecord struct {
	PaymentHash string
	Bolt11      string
	Amount      *lnwire.MilliSatoshi
}

// invoiceLedger indexes issued invoices by payment hash and by encoded
// request, both case-insensitive. Entries are only ever inserted and
// live for the lifetime of the process.
type invoiceLedger struct {
	net      *chaincfg.Params
	byHash   *xsync.MapOf[string, *InvoiceRecord]
	byBolt11 *xsync.MapOf[string, *InvoiceRecord]
}

func newInvoiceLedger(net *chaincfg.Params) *invoiceLedger {
	return &invoiceLedger{
		net:      net,
		byHash:   xsync.NewMapOf[*InvoiceRecord](),
		byBolt11: xsync.NewMapOf[*InvoiceRecord](),
	}
}

// record stores an issued invoice under both indices. The amount
// encoded in the request wins over the requested amount, and the
// decoded hash fills in a missing paymentHash. An invoice whose hash
// cannot be resolved is not stored at all: without a hash it can never
// be matched to a settlement.
func (l *invoiceLedger) record(bolt11, paymentHash string, requested *lnwire.MilliSatoshi) *InvoiceRecord {
	amount := requested
	if decodedHash, decodedAmount, ok := decodeBolt11(bolt11, l.net); ok {
		if decodedAmount != nil {
			amount = decodedAmount
		}
		if paymentHash == "" {
			paymentHash = decodedHash
		}
	}

	if paymentHash == "" {
		return nil
	}

	rec := &InvoiceRecord{
		PaymentHash: strings.ToLower(paymentHash),
		Bolt11:      bolt11,
		Amount:      amount,
	}

	l.byHash.Store(rec.PaymentHash, rec)
	if bolt11 != "" {
		l.byBolt11.Store(strings.ToLower(bolt11), rec)
	}

	return rec
}

// lookup tries the hash index first and falls back to the request
// index. A miss is a normal outcome, not an error.
func (l *invoiceLedger) lookup(bolt11, paymentHash string) *InvoiceRecord {
	if paymentHash != "" {
		if rec, ok := l.byHash.Load(strings.ToLower(paymentHash)); ok {
			return rec
		}
	}

	if bolt11 != "" {
		if rec, ok := l.byBolt11.Load(strings.ToLower(bolt11)); ok {
			return rec
		}
	}

	return nil
}
