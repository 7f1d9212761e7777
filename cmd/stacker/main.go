// Command stacker executes one dollar-cost-averaging purchase: it
// checks the fiat balance, tops up from the linked bank when short,
// places a market buy with bounded retries and records the fill in
// the local ledger.
//
// Usage:
//
//	stacker <amount>
//
// where <amount> is the whole fiat units to spend. Configuration is
// read from app.conf.json and credentials from auth.json; both paths
// can be overridden with STACKER_CONFIG and STACKER_AUTH (a local
// .env file is honored).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cryptodca/stacker/config"
	"github.com/cryptodca/stacker/internal/clients/coinbase"
	"github.com/cryptodca/stacker/internal/services/balance"
	"github.com/cryptodca/stacker/internal/services/funding"
	"github.com/cryptodca/stacker/internal/services/order"
	"github.com/cryptodca/stacker/internal/services/runner"
	"github.com/cryptodca/stacker/internal/storage/ledger"
	"github.com/cryptodca/stacker/pkg/logger"
)

func main() {
	// exactly one positional argument; anything else prints usage and
	// exits without touching logs or ledger
	if len(os.Args) != 2 {
		usage()
		return
	}
	amount, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil || amount <= 0 {
		usage()
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(envOr("STACKER_CONFIG", config.DefaultPath))
	if err != nil {
		fatalBeforeLogger(err)
	}
	creds, err := config.LoadCredentials(envOr("STACKER_AUTH", config.DefaultCredentialsPath))
	if err != nil {
		fatalBeforeLogger(err)
	}

	l := logger.New(logger.Config{
		OpsFile:   cfg.OpsLogFile,
		ErrorFile: cfg.ErrLogFile,
		Console:   true,
	})
	defer l.Sync()

	target := decimal.NewFromInt(amount)
	cfg.TargetOrderAmount = target

	client := coinbase.New(cfg.APIURL, creds)
	fiat := cfg.FiatCurrency()
	wait := time.Duration(cfg.RetryOrderWaitSeconds) * time.Second

	run := runner.New(l, cfg,
		balance.NewService(client, fiat),
		funding.NewService(l, client, cfg.BankIdentifier, fiat),
		order.NewService(l, client, cfg.ProductID, cfg.RetryOrderCount, wait),
		ledger.NewStore(cfg.TotalsFile, cfg.PricesFile),
	)

	if err := run.Run(context.Background(), target); err != nil {
		l.Error("run failed", zap.Error(err))
		l.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: stacker <amount>")
	fmt.Println("  <amount>  whole fiat units to spend on this purchase")
}

// fatalBeforeLogger reports configuration failures that happen before
// the log files are known. They still reach the default error stream.
func fatalBeforeLogger(err error) {
	l := logger.New(logger.Config{
		OpsFile:   "stacker.log",
		ErrorFile: "stacker.err.log",
		Console:   true,
	})
	l.Error("startup failed", zap.Error(err))
	l.Sync()
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
