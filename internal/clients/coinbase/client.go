// Package coinbase is the authenticated REST client for the Coinbase
// Exchange API. Every request carries a timestamp, an HMAC signature
// over (timestamp + method + path + body), the API key id and the
// passphrase header.
package coinbase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/cryptodca/stacker/config"
	"github.com/cryptodca/stacker/internal/entity"
)

const requestTimeout = 30 * time.Second

// Client issues signed requests against the exchange REST endpoint.
type Client struct {
	http  *resty.Client
	creds *config.Credentials
}

// New builds a Client for the given base URL and credentials.
func New(baseURL string, creds *config.Credentials) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "stacker-bot")

	return &Client{http: rc, creds: creds}
}

// Accounts lists all currency accounts on the exchange profile.
func (c *Client) Accounts(ctx context.Context) ([]entity.BalanceSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, err
	}

	var accounts []accountResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, errors.Wrap(err, "failed to decode accounts response")
	}

	now := time.Now()
	snapshots := make([]entity.BalanceSnapshot, 0, len(accounts))
	for _, acc := range accounts {
		available, err := parseAmount(acc.Available)
		if err != nil {
			return nil, errors.Wrapf(err, "bad balance for %s", acc.Currency)
		}
		snapshots = append(snapshots, entity.BalanceSnapshot{
			Currency:  acc.Currency,
			Available: available,
			FetchedAt: now,
		})
	}

	return snapshots, nil
}

// PaymentMethods lists the linked funding sources.
func (c *Client) PaymentMethods(ctx context.Context) ([]entity.PaymentMethod, error) {
	body, err := c.do(ctx, http.MethodGet, "/payment-methods", nil)
	if err != nil {
		return nil, err
	}

	var methods []paymentMethodResponse
	if err := json.Unmarshal(body, &methods); err != nil {
		return nil, errors.Wrap(err, "failed to decode payment methods response")
	}

	out := make([]entity.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		out = append(out, m.toEntity())
	}

	return out, nil
}

// CreateDeposit requests a fiat deposit through the given payment
// method. Success requires the exchange to echo the amount back;
// a 2xx response without one is still a failure.
func (c *Client) CreateDeposit(ctx context.Context, methodID string, amount, currency string) (entity.Deposit, error) {
	req := depositRequest{
		Amount:          amount,
		Currency:        currency,
		PaymentMethodID: methodID,
	}

	body, err := c.do(ctx, http.MethodPost, "/deposits/payment-method", req)
	if err != nil {
		return entity.Deposit{}, err
	}

	var resp depositResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entity.Deposit{}, errors.Wrap(err, "failed to decode deposit response")
	}
	if resp.Amount == "" {
		return entity.Deposit{}, &entity.UpstreamError{Status: http.StatusOK, Body: string(body)}
	}

	deposited, err := parseAmount(resp.Amount)
	if err != nil {
		return entity.Deposit{}, errors.Wrap(err, "bad deposit amount")
	}

	return entity.Deposit{
		ID:       resp.ID,
		Amount:   deposited,
		Currency: resp.Currency,
		PayoutAt: resp.PayoutAt,
	}, nil
}

// CreateOrder submits a market buy sized in quote-currency funds.
// Success requires the funds confirmation field in the response.
// An insufficient-funds rejection unwraps to entity.ErrInsufficientFunds.
func (c *Client) CreateOrder(ctx context.Context, clientOID, productID, funds string) (entity.Order, error) {
	req := orderRequest{
		ClientOID: clientOID,
		Type:      "market",
		Side:      "buy",
		ProductID: productID,
		Funds:     funds,
	}

	body, err := c.do(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return entity.Order{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entity.Order{}, errors.Wrap(err, "failed to decode order response")
	}
	if resp.SpecifiedFunds == "" && resp.Funds == "" {
		return entity.Order{}, &entity.UpstreamError{Status: http.StatusOK, Body: string(body)}
	}

	return resp.toEntity()
}

// GetOrder fetches order state by server-side id. A 404 unwraps to
// entity.ErrNotFound so pollers can keep waiting for the order to
// appear.
func (c *Client) GetOrder(ctx context.Context, orderID string) (entity.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil)
	if err != nil {
		return entity.Order{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entity.Order{}, errors.Wrap(err, "failed to decode order response")
	}

	return resp.toEntity()
}

// do signs and executes one request, returning the raw body on 2xx
// and a typed error otherwise.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		body = string(data)
	}

	timestamp := strconv.FormatFloat(float64(time.Now().UnixNano())/1e9, 'f', 3, 64)
	signature, err := sign(c.creds.Secret, timestamp, method, path, body)
	if err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("CB-ACCESS-SIGN", signature).
		SetHeader("CB-ACCESS-TIMESTAMP", timestamp).
		SetHeader("CB-ACCESS-KEY", c.creds.Key).
		SetHeader("CB-ACCESS-PASSPHRASE", c.creds.Passphrase)
	if body != "" {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed", method, path)
	}

	if resp.IsError() {
		return nil, classifyError(resp.StatusCode(), resp.Body())
	}

	return resp.Body(), nil
}

func classifyError(status int, body []byte) error {
	if status == http.StatusNotFound {
		return errors.Wrapf(entity.ErrNotFound, "upstream returned 404: %s", body)
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && insufficientFunds(er.Message) {
		return fmt.Errorf("upstream returned %d: %s: %w", status, er.Message, entity.ErrInsufficientFunds)
	}

	return &entity.UpstreamError{Status: status, Body: string(body)}
}
