package engine

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/require"
)

func TestDecodeBolt11(t *testing.T) {
	hash, amount, ok := decodeBolt11(bolt112500u, &chaincfg.MainNetParams)
	require.True(t, ok)
	require.Equal(t, vectorHash, hash)
	require.NotNil(t, amount)
	require.Equal(t, lnwire.MilliSatoshi(bolt112500uMsat), *amount)
}

func TestDecodeBolt11Amountless(t *testing.T) {
	hash, amount, ok := decodeBolt11(bolt11NoAmount, &chaincfg.MainNetParams)
	require.True(t, ok)
	require.Equal(t, vectorHash, hash)
	require.Nil(t, amount)
}

func TestDecodeBolt11Uppercase(t *testing.T) {
	hash, _, ok := decodeBolt11(strings.ToUpper(bolt112500u), &chaincfg.MainNetParams)
	require.True(t, ok)
	require.Equal(t, vectorHash, hash)
}

func TestDecodeBolt11Malformed(t *testing.T) {
	_, _, ok := decodeBolt11("", &chaincfg.MainNetParams)
	require.False(t, ok)

	_, _, ok = decodeBolt11("garbage", &chaincfg.MainNetParams)
	require.False(t, ok)
}
