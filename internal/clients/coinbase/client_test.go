package coinbase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptodca/stacker/config"
	"github.com/cryptodca/stacker/internal/entity"
)

var testCreds = &config.Credentials{
	Key:        "key-id",
	Secret:     base64.StdEncoding.EncodeToString([]byte("super-secret")),
	Passphrase: "hunter2",
}

func TestSign(t *testing.T) {
	got, err := sign(testCreds.Secret, "1700000000.000", http.MethodPost, "/orders", `{"side":"buy"}`)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("super-secret"))
	mac.Write([]byte(`1700000000.000POST/orders{"side":"buy"}`))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, got)
}

func TestSign_BadSecret(t *testing.T) {
	_, err := sign("not base64!!", "ts", "GET", "/accounts", "")
	assert.Error(t, err)
}

func TestClient_SignsEveryRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts := r.Header.Get("CB-ACCESS-TIMESTAMP")
		body, _ := io.ReadAll(r.Body)

		want, err := sign(testCreds.Secret, ts, r.Method, r.URL.RequestURI(), string(body))
		require.NoError(t, err)
		assert.Equal(t, want, r.Header.Get("CB-ACCESS-SIGN"))
		assert.Equal(t, "key-id", r.Header.Get("CB-ACCESS-KEY"))
		assert.Equal(t, "hunter2", r.Header.Get("CB-ACCESS-PASSPHRASE"))
		assert.NotEmpty(t, ts)

		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, testCreds)
	_, err := client.Accounts(context.Background())
	require.NoError(t, err)
}

func TestClient_Accounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		w.Write([]byte(`[
			{"id":"a1","currency":"USD","balance":"120.505","available":"100.255","hold":"20.25"},
			{"id":"a2","currency":"BTC","balance":"0.5","available":"0.5","hold":"0"}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL, testCreds)
	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "USD", accounts[0].Currency)
	assert.True(t, accounts[0].Available.Equal(decimal.NewFromFloat(100.255)))
}

func TestClient_CreateDeposit(t *testing.T) {
	t.Run("success echoes amount", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/deposits/payment-method", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"id":"dep-1","amount":"50.01","currency":"USD","payout_at":"2026-08-30T12:00:00Z"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		deposit, err := client.CreateDeposit(context.Background(), "pm-1", "50.01", "USD")
		require.NoError(t, err)
		assert.Equal(t, "dep-1", deposit.ID)
		assert.True(t, deposit.Amount.Equal(decimal.NewFromFloat(50.01)))
	})

	t.Run("missing amount field is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"dep-1"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		_, err := client.CreateDeposit(context.Background(), "pm-1", "50.01", "USD")
		require.Error(t, err)
		var upErr *entity.UpstreamError
		assert.ErrorAs(t, err, &upErr)
	})
}

func TestClient_CreateOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"type":"market"`)
			assert.Contains(t, string(body), `"side":"buy"`)
			assert.Contains(t, string(body), `"funds":"100.00"`)
			w.Write([]byte(`{"id":"ord-1","status":"pending","specified_funds":"100.00","funds":"99.50","filled_size":"0","executed_value":"0","settled":false}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		order, err := client.CreateOrder(context.Background(), "oid-1", "BTC-USD", "100.00")
		require.NoError(t, err)
		assert.Equal(t, "ord-1", order.ID)
		assert.Equal(t, entity.OrderStatusPending, order.Status)
		assert.True(t, order.SpecifiedFunds.Equal(decimal.NewFromInt(100)))
		assert.True(t, order.FilledFunds.Equal(decimal.NewFromFloat(99.5)))
	})

	t.Run("insufficient funds rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Insufficient funds"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		_, err := client.CreateOrder(context.Background(), "oid-1", "BTC-USD", "100.00")
		assert.True(t, entity.IsInsufficientFunds(err), "got %v", err)
	})

	t.Run("other rejection is upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"size is too small"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		_, err := client.CreateOrder(context.Background(), "oid-1", "BTC-USD", "100.00")
		require.Error(t, err)
		assert.False(t, entity.IsInsufficientFunds(err))
		var upErr *entity.UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusBadRequest, upErr.Status)
		assert.Contains(t, upErr.Body, "too small")
	})

	t.Run("missing funds confirmation is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"ord-1","status":"pending"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		_, err := client.CreateOrder(context.Background(), "oid-1", "BTC-USD", "100.00")
		require.Error(t, err)
		var upErr *entity.UpstreamError
		assert.ErrorAs(t, err, &upErr)
	})
}

func TestClient_GetOrder(t *testing.T) {
	t.Run("settled order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/ord-1", r.URL.Path)
			w.Write([]byte(`{"id":"ord-1","status":"done","specified_funds":"100.00","funds":"99.50","filled_size":"0.002","executed_value":"99.50","settled":true}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		order, err := client.GetOrder(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusDone, order.Status)
		assert.True(t, order.Settled)
		assert.Equal(t, "49750", order.UnitPrice().String())
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"NotFound"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, testCreds)
		_, err := client.GetOrder(context.Background(), "ord-1")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}
