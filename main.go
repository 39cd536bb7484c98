package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/go-breez/breez"
	"github.com/sebdeveloper6952/go-breez/breez/sparkd"
	"github.com/sebdeveloper6952/go-breez/service"
)

type options struct {
	SparkdURL string `long:"sparkd.url" env:"SPARKD_URL" default:"http://localhost:8089" description:"Base URL of the sparkd wallet daemon"`
	APIKey    string `long:"sparkd.apikey" env:"SPARKD_API_KEY" description:"API key for the sparkd wallet daemon"`
	Network   string `long:"network" env:"NETWORK" default:"mainnet" description:"Bitcoin network (mainnet or regtest)"`
	StoreID   string `long:"store" env:"STORE_ID" default:"default" description:"Store identifier for the registry"`
}

func main() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	opts := &options{}
	if _, err := flags.Parse(opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)

	net := &chaincfg.MainNetParams
	if opts.Network == "regtest" {
		net = &chaincfg.RegressionNetParams
	}

	registry := service.NewRegistry(
		func(ctx context.Context, storeID string, settings service.Settings) (breez.Sdk, error) {
			return sparkd.New(opts.SparkdURL, settings.APIKey)
		},
		net,
		logger,
	)
	defer registry.Close()

	client, err := registry.Register(ctx, opts.StoreID, service.Settings{
		APIKey: opts.APIKey,
	})
	if err != nil {
		logger.Fatalf("register store: %v", err)
	}

	go func() {
		listener, err := client.Listen(ctx)
		if err != nil {
			logger.Errorf("listen: %v", err)
			return
		}
		for {
			invoice, err := listener.WaitInvoice(ctx)
			if err != nil {
				logger.Infof("listener stopped: %v", err)
				return
			}
			logger.Infof("invoice settled hash=%s amount=%v", invoice.PaymentHash, invoice.Amount)
		}
	}()

	logger.Info("running...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-sigChan:
		cancelCtx()
		logger.Info("bye")
	case <-client.Done():
		if err := client.Err(); err != nil {
			logger.Errorf("payment monitor died: %v", err)
			os.Exit(1)
		}
	}
}
