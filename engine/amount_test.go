package engine

import (
	"io"
	"testing"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestResolveRecordedWins(t *testing.T) {
	r := newAmountResolver(quietLogger())

	amount, ok := r.resolve(msat(500_000), msat(1_000_000), vectorHash)
	require.True(t, ok)
	require.Equal(t, lnwire.MilliSatoshi(500_000), amount)
	require.Equal(t, uint64(1), r.Mismatches())
}

func TestResolveAgreementIsNotAMismatch(t *testing.T) {
	r := newAmountResolver(quietLogger())

	amount, ok := r.resolve(msat(500_000), msat(500_000), vectorHash)
	require.True(t, ok)
	require.Equal(t, lnwire.MilliSatoshi(500_000), amount)
	require.Zero(t, r.Mismatches())
}

func TestResolveDecodedFallback(t *testing.T) {
	r := newAmountResolver(quietLogger())

	amount, ok := r.resolve(nil, msat(1_000_000), vectorHash)
	require.True(t, ok)
	require.Equal(t, lnwire.MilliSatoshi(1_000_000), amount)
	require.Zero(t, r.Mismatches())
}

func TestResolveNoSourceFails(t *testing.T) {
	r := newAmountResolver(quietLogger())

	_, ok := r.resolve(nil, nil, vectorHash)
	require.False(t, ok)
}

func TestFeeFromRaw(t *testing.T) {
	// Divisible by 1000: already millisats.
	require.Equal(t, lnwire.MilliSatoshi(2000), feeFromRaw(2000))
	require.Equal(t, lnwire.MilliSatoshi(0), feeFromRaw(0))
	// Not divisible: sats.
	require.Equal(t, lnwire.MilliSatoshi(1_234_000), feeFromRaw(1234))
	require.Equal(t, lnwire.MilliSatoshi(1000), feeFromRaw(1))
}
