package engine

import (
	"sync/atomic"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/sirupsen/logrus"
)

// amountResolver turns the possible amount sources for a payment into
// one authoritative value. The ledger-recorded amount wins because it
// was captured at issuance time under our control; the amount decoded
// from the request string is the fallback. The backend's raw reported
// amount is never used for received funds.
type amountResolver struct {
	log        logrus.FieldLogger
	mismatches atomic.Uint64
}

func newAmountResolver(log logrus.FieldLogger) *amountResolver {
	return &amountResolver{log: log}
}

func (r *amountResolver) resolve(recorded, decoded *lnwire.MilliSatoshi, paymentHash string) (lnwire.MilliSatoshi, bool) {
	if recorded != nil {
		if decoded != nil && *decoded != *recorded {
			r.mismatches.Add(1)
			r.log.Warnf("[amounts] bolt11 amount %v != recorded %v for hash=%s, keeping recorded",
				*decoded, *recorded, paymentHash)
		}
		return *recorded, true
	}

	if decoded != nil {
		return *decoded, true
	}

	return 0, false
}

// Mismatches reports how many payments resolved with a recorded amount
// that disagreed with the decoded one.
func (r *amountResolver) Mismatches() uint64 {
	return r.mismatches.Load()
}

// feeFromRaw infers the unit of a raw fee field. The backend does not
// say whether the value is sats or millisats: values evenly divisible
// by 1000 are treated as millisats, anything else as sats.
func feeFromRaw(raw uint64) lnwire.MilliSatoshi {
	if raw%1000 == 0 {
		return lnwire.MilliSatoshi(raw)
	}
	return lnwire.MilliSatoshi(raw * 1000)
}
