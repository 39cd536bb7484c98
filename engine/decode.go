package engine

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

// decodeBolt11 decodes an encoded payment request and returns the
// payment hash (lowercase hex) and the encoded amount, when present.
// Malformed requests are not an error, just an empty result.
func decodeBolt11(bolt11 string, net *chaincfg.Params) (string, *lnwire.MilliSatoshi, bool) {
	if bolt11 == "" {
		return "", nil, false
	}

	inv, err := zpay32.Decode(strings.ToLower(bolt11), net)
	if err != nil {
		return "", nil, false
	}

	hash := ""
	if inv.PaymentHash != nil {
		hash = hex.EncodeToString(inv.PaymentHash[:])
	}

	return hash, inv.MilliSat, true
}
