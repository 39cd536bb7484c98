package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/go-breez/breez"
	"github.com/sebdeveloper6952/go-breez/engine"
)

// Settings is the per-store wallet configuration. PaymentKey identifies
// the store on out-of-band payment pushes and is generated when empty.
type Settings struct {
	APIKey     string
	Mnemonic   string
	PaymentKey string
	WorkingDir string
}

// Connector builds a wallet backend session for a store. Session
// construction is the only operation here that may fail at startup.
type Connector func(ctx context.Context, storeID string, settings Settings) (breez.Sdk, error)

// Registry holds one reconciliation client per store, created and torn
// down under explicit lifecycle control.
type Registry struct {
	connect Connector
	net     *chaincfg.Params
	log     logrus.FieldLogger

	mu       sync.RWMutex
	clients  map[string]*engine.Client
	settings map[string]Settings
}

func NewRegistry(connect Connector, net *chaincfg.Params, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	return &Registry{
		connect:  connect,
		net:      net,
		log:      log,
		clients:  make(map[string]*engine.Client),
		settings: make(map[string]Settings),
	}
}

// Register creates the client for a store, replacing and closing any
// previous one.
func (r *Registry) Register(ctx context.Context, storeID string, settings Settings) (*engine.Client, error) {
	if storeID == "" {
		return nil, errors.New("service: store id is required")
	}
	if settings.PaymentKey == "" {
		settings.PaymentKey = uuid.NewString()
	}

	sdk, err := r.connect(ctx, storeID, settings)
	if err != nil {
		return nil, fmt.Errorf("connect wallet for store %s: %w", storeID, err)
	}

	client, err := engine.New(engine.Config{
		Sdk:        sdk,
		Network:    r.net,
		PaymentKey: settings.PaymentKey,
		Logger:     r.log,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	old := r.clients[storeID]
	r.clients[storeID] = client
	r.settings[storeID] = settings
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}

	r.log.Infof("[service] registered store %s", storeID)

	return client, nil
}

// Deregister removes and closes the client for a store. Unknown stores
// are a no-op.
func (r *Registry) Deregister(storeID string) {
	r.mu.Lock()
	client := r.clients[storeID]
	delete(r.clients, storeID)
	delete(r.settings, storeID)
	r.mu.Unlock()

	if client != nil {
		client.Close()
		r.log.Infof("[service] deregistered store %s", storeID)
	}
}

func (r *Registry) Get(storeID string) *engine.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[storeID]
}

// GetByPaymentKey resolves a client from the payment key carried by an
// out-of-band push.
func (r *Registry) GetByPaymentKey(paymentKey string) *engine.Client {
	if paymentKey == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for storeID, s := range r.settings {
		if s.PaymentKey == paymentKey {
			return r.clients[storeID]
		}
	}

	return nil
}

func (r *Registry) Settings(storeID string) (Settings, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[storeID]
	return s, ok
}

// Close tears down every registered client.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*engine.Client)
	r.settings = make(map[string]Settings)
	r.mu.Unlock()

	for storeID, client := range clients {
		client.Close()
		r.log.Infof("[service] closed store %s", storeID)
	}
}
