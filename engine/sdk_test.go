package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/sebdeveloper6952/go-breez/breez"
)

// Test vectors from the BOLT-11 specification. Both encode the payment
// hash 0001...0102; the second carries an amount of 2500u (250000 sats),
// the first is amountless.
const (
	vectorHash = "0001020304050607080900010203040506070809000102030405060708090102"

	bolt11NoAmount = "lnbc1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypqdpl2pkx2ctnv5sxxmmwwd5kgetjypeh2ursdae8g6twvus8g6rfwvs8qun0dfjkxaq8rkx3yf5tcsyz3d73gafnh3cax9rn449d9p5uxz9ezhhypd0elx87sjle52x86fux2ypatgddc6k63n7erqz25le42c4u4ecky03ylcqca784w"

	bolt112500u = "lnbc2500u1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypqdq5xysxxatsyp3k7enxv4jsxqzpuaztrnwngzn3kdzw5hydlzf03qdgm2hdq27cqv3agm2awhz5se903vruatfhq77w3ls4evs3ch9zw97j25emudupq63nyw24cg27h2rspfj9srp"

	bolt112500uMsat = 250_000_000
)

var errNotFound = errors.New("payment not found")

// fakeSdk is an in-memory breez.Sdk for tests.
type fakeSdk struct {
	mu sync.Mutex

	payments     []breez.Payment
	listErr      error
	listCalls    int
	panicOnList  bool
	getErr       error
	receiveResp  *breez.ReceivePaymentResponse
	receiveErr   error
	prepareResp  *breez.PrepareSendResponse
	prepareErr   error
	sendResp     *breez.SendPaymentResponse
	sendErr      error
	infoResp     *breez.GetInfoResponse
	infoErr      error
}

func newFakeSdk() *fakeSdk {
	return &fakeSdk{
		receiveResp: &breez.ReceivePaymentResponse{
			PaymentRequest: bolt112500u,
			FeeSats:        1,
		},
		infoResp: &breez.GetInfoResponse{BalanceSats: 0},
	}
}

func (f *fakeSdk) addPayment(p breez.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, p)
}

func (f *fakeSdk) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeSdk) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeSdk) ListPayments(ctx context.Context, req *breez.ListPaymentsRequest) ([]breez.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.panicOnList {
		panic("sdk exploded")
	}
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []breez.Payment
	for _, p := range f.payments {
		if req != nil && req.Type != nil && p.Type != *req.Type {
			continue
		}
		if req != nil && req.Status != nil && p.Status != *req.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeSdk) GetPayment(ctx context.Context, id string) (*breez.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.payments {
		if f.payments[i].ID == id {
			p := f.payments[i]
			return &p, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeSdk) ReceivePayment(ctx context.Context, req *breez.ReceivePaymentRequest) (*breez.ReceivePaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	return f.receiveResp, nil
}

func (f *fakeSdk) PrepareSendPayment(ctx context.Context, req *breez.PrepareSendRequest) (*breez.PrepareSendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	return f.prepareResp, nil
}

func (f *fakeSdk) SendPayment(ctx context.Context, req *breez.SendPaymentRequest) (*breez.SendPaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendResp, nil
}

func (f *fakeSdk) GetInfo(ctx context.Context) (*breez.GetInfoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.infoResp, nil
}
