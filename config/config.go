package config

import (
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/cryptodca/stacker/internal/entity"
)

const (
	// DefaultPath is the application settings file next to the binary.
	DefaultPath = "app.conf.json"
	// DefaultCredentialsPath holds the exchange API signing material.
	DefaultCredentialsPath = "auth.json"
)

// Config is the per-run application configuration. Loaded once,
// immutable afterwards.
type Config struct {
	// TargetOrderAmount is the fiat amount of a single purchase. The
	// CLI positional argument overrides it for the run.
	TargetOrderAmount decimal.Decimal `json:"targetOrderAmount"`
	// BankIdentifier selects the payment method whose display name
	// contains this substring.
	BankIdentifier        string          `json:"bankIdentifier"`
	BankDepositAmount     decimal.Decimal `json:"bankDepositAmount"`
	BankDepositMultiplier decimal.Decimal `json:"bankDepositMultiplier"`
	RetryOrderCount       int             `json:"retryOrderCount"`
	RetryOrderWaitSeconds int             `json:"retryOrderWaitSeconds"`

	// RecordPriceHistory appends a weight/price record after each
	// confirmed fill. PollOrderStatus additionally polls the order to
	// its terminal state before recording, taking the realized price
	// from the settled executed value instead of the creation response.
	RecordPriceHistory bool `json:"recordPriceHistory"`
	PollOrderStatus    bool `json:"pollOrderStatus"`

	// ProductID is the fixed trading pair every purchase targets.
	ProductID string `json:"productId,omitempty"`

	// APIURL overrides the exchange REST endpoint, mainly for tests.
	APIURL string `json:"apiUrl,omitempty"`

	TotalsFile string `json:"totalsFile,omitempty"`
	PricesFile string `json:"pricesFile,omitempty"`
	OpsLogFile string `json:"opsLogFile,omitempty"`
	ErrLogFile string `json:"errLogFile,omitempty"`
}

// Credentials is the exchange API signing material. Used only by the
// HTTP client, never logged.
type Credentials struct {
	Key        string `json:"key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"password"`
}

type rawConfig struct {
	TargetOrderAmount     json.Number `json:"targetOrderAmount"`
	BankIdentifier        string      `json:"bankIdentifier"`
	BankDepositAmount     json.Number `json:"bankDepositAmount"`
	BankDepositMultiplier json.Number `json:"bankDepositMultiplier"`
	RetryOrderCount       int         `json:"retryOrderCount"`
	RetryOrderWaitSeconds int         `json:"retryOrderWaitSeconds"`
	RecordPriceHistory    *bool       `json:"recordPriceHistory"`
	PollOrderStatus       bool        `json:"pollOrderStatus"`
	ProductID             string      `json:"productId"`
	APIURL                string      `json:"apiUrl"`
	TotalsFile            string      `json:"totalsFile"`
	PricesFile            string      `json:"pricesFile"`
	OpsLogFile            string      `json:"opsLogFile"`
	ErrLogFile            string      `json:"errLogFile"`
}

// Load reads and validates the application config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entity.NewConfigError("missing %s: %v", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, entity.NewConfigError("unparseable %s: %v", path, err)
	}

	cfg := &Config{
		BankIdentifier:        raw.BankIdentifier,
		RetryOrderCount:       raw.RetryOrderCount,
		RetryOrderWaitSeconds: raw.RetryOrderWaitSeconds,
		PollOrderStatus:       raw.PollOrderStatus,
		ProductID:             raw.ProductID,
		APIURL:                raw.APIURL,
		TotalsFile:            raw.TotalsFile,
		PricesFile:            raw.PricesFile,
		OpsLogFile:            raw.OpsLogFile,
		ErrLogFile:            raw.ErrLogFile,
	}

	if cfg.TargetOrderAmount, err = number(raw.TargetOrderAmount, "targetOrderAmount"); err != nil {
		return nil, err
	}
	if cfg.BankDepositAmount, err = number(raw.BankDepositAmount, "bankDepositAmount"); err != nil {
		return nil, err
	}
	if cfg.BankDepositMultiplier, err = number(raw.BankDepositMultiplier, "bankDepositMultiplier"); err != nil {
		return nil, err
	}

	// price history stays on unless the file explicitly disables it
	cfg.RecordPriceHistory = raw.RecordPriceHistory == nil || *raw.RecordPriceHistory

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadCredentials reads the exchange API credentials from path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entity.NewConfigError("missing %s: %v", path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, entity.NewConfigError("unparseable %s: %v", path, err)
	}

	if creds.Key == "" || creds.Secret == "" || creds.Passphrase == "" {
		return nil, entity.NewConfigError("%s must set key, secret and password", path)
	}

	return &creds, nil
}

func (c *Config) applyDefaults() {
	if c.BankDepositMultiplier.IsZero() {
		c.BankDepositMultiplier = decimal.NewFromInt(1)
	}
	if c.RetryOrderCount == 0 {
		c.RetryOrderCount = 1
	}
	if c.ProductID == "" {
		c.ProductID = "BTC-USD"
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.exchange.coinbase.com"
	}
	if c.TotalsFile == "" {
		c.TotalsFile = "totals.json"
	}
	if c.PricesFile == "" {
		c.PricesFile = "prices.log"
	}
	if c.OpsLogFile == "" {
		c.OpsLogFile = "stacker.log"
	}
	if c.ErrLogFile == "" {
		c.ErrLogFile = "stacker.err.log"
	}
}

func (c *Config) validate() error {
	if c.TargetOrderAmount.LessThanOrEqual(decimal.Zero) {
		return entity.NewConfigError("targetOrderAmount must be positive, got %s", c.TargetOrderAmount)
	}
	if c.BankIdentifier == "" {
		return entity.NewConfigError("bankIdentifier must not be empty")
	}
	if c.BankDepositAmount.LessThan(decimal.Zero) {
		return entity.NewConfigError("bankDepositAmount must not be negative, got %s", c.BankDepositAmount)
	}
	if c.BankDepositMultiplier.LessThan(decimal.NewFromInt(1)) {
		return entity.NewConfigError("bankDepositMultiplier must be >= 1, got %s", c.BankDepositMultiplier)
	}
	if c.RetryOrderCount < 1 {
		return entity.NewConfigError("retryOrderCount must be >= 1, got %d", c.RetryOrderCount)
	}
	if c.RetryOrderWaitSeconds < 0 {
		return entity.NewConfigError("retryOrderWaitSeconds must be >= 0, got %d", c.RetryOrderWaitSeconds)
	}
	if !strings.Contains(c.ProductID, "-") {
		return entity.NewConfigError("productId must look like BASE-QUOTE, got %q", c.ProductID)
	}
	return nil
}

// FiatCurrency is the quote side of the trading pair, the currency the
// balance check and deposits operate in.
func (c *Config) FiatCurrency() string {
	parts := strings.Split(c.ProductID, "-")
	return parts[len(parts)-1]
}

func number(n json.Number, field string) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, entity.NewConfigError("incorrect '%s' param (must be a number): %v", field, err)
	}
	return d, nil
}
