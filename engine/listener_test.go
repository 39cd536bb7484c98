package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitInvoiceCancellation(t *testing.T) {
	sdk := newFakeSdk()
	c := newTestClient(t, sdk)

	ctx, cancel := context.WithCancel(context.Background())

	listener, err := c.Listen(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := listener.WaitInvoice(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancellation not observed")
	}
}

func TestWaitInvoiceWorkStealing(t *testing.T) {
	sdk := newFakeSdk()
	c := newTestClient(t, sdk)

	_, err := c.CreateInvoice(context.Background(), 0, "order", time.Hour)
	require.NoError(t, err)

	secondHash := strings.Repeat("ab", 32)
	require.NotNil(t, c.ledger.record("", secondHash, msat(1_000)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan string, 2)
	for i := 0; i < 2; i++ {
		listener, err := c.Listen(ctx)
		require.NoError(t, err)
		go func() {
			inv, err := listener.WaitInvoice(ctx)
			if err != nil {
				return
			}
			results <- inv.PaymentHash
		}()
	}

	c.InjectPayment(completedPayment("p1", bolt112500u, vectorHash))
	second := completedPayment("p2", "", secondHash)
	c.InjectPayment(second)

	got := map[string]int{}
	for i := 0; i < 2; i++ {
		select {
		case hash := <-results:
			got[hash]++
		case <-time.After(2 * time.Second):
			t.Fatal("missing delivery")
		}
	}

	// Each settled payment went to exactly one listener.
	require.Equal(t, map[string]int{vectorHash: 1, secondHash: 1}, got)
}

func TestWaitInvoiceUnblocksOnClose(t *testing.T) {
	sdk := newFakeSdk()
	c := newTestClient(t, sdk)

	listener, err := c.Listen(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := listener.WaitInvoice(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("close not observed")
	}
}

func TestWaitInvoiceSkipsUnverifiableQueueItems(t *testing.T) {
	sdk := newFakeSdk()
	c := newTestClient(t, sdk)

	_, err := c.CreateInvoice(context.Background(), 0, "order", time.Hour)
	require.NoError(t, err)

	// A record without any amount source passes the enqueue gate but
	// fails full normalization; the listener must skip it and hand out
	// the next verifiable payment.
	noAmountHash := strings.Repeat("cd", 32)
	require.NotNil(t, c.ledger.record("", noAmountHash, nil))
	c.InjectPayment(completedPayment("p1", "", noAmountHash))
	c.InjectPayment(completedPayment("p2", bolt112500u, vectorHash))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	listener, err := c.Listen(ctx)
	require.NoError(t, err)

	settled, err := listener.WaitInvoice(ctx)
	require.NoError(t, err)
	require.Equal(t, vectorHash, settled.PaymentHash)
}
