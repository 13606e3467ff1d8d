package payments_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roundup/src/clients/payments"
	"roundup/src/config"
	"roundup/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *payments.PaymentsServiceClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.ExternalClients.Payments.BaseURL = baseURL
	cfg.ExternalClients.Payments.APIKey = "test-key"
	client, err := payments.NewClient(cfg, nil)
	require.NoError(t, err)
	return client
}

func TestCharge(t *testing.T) {
	charge := &payments.ChargeRequest{
		IdempotencyKey: "8f14e45f-ceea-3467-a567-0e02b2c3d479",
		UserID:         "user-1",
		Amount:         decimal.RequireFromString("3.00"),
		Currency:       "USD",
		Description:    "plus plan renewal",
	}

	t.Run("succeeded charge round-trips", func(t *testing.T) {
		var gotRequest payments.ChargeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/charges", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(payments.ChargeResponse{
				ChargeID:      "ch_456",
				Status:        payments.ChargeSucceeded,
				PaymentMethod: "card_visa_4242",
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		response, err := client.Charge(context.Background(), charge)
		require.NoError(t, err)

		assert.Equal(t, charge.IdempotencyKey, gotRequest.IdempotencyKey)
		assert.True(t, gotRequest.Amount.Equal(charge.Amount))
		assert.Equal(t, "ch_456", response.ChargeID)
		assert.Equal(t, payments.ChargeSucceeded, response.Status)
	})

	t.Run("declined charge is a regular response", func(t *testing.T) {
		reason := "insufficient funds"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(payments.ChargeResponse{
				ChargeID:      "ch_457",
				Status:        payments.ChargeDeclined,
				FailureReason: &reason,
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		response, err := client.Charge(context.Background(), charge)
		require.NoError(t, err)

		assert.Equal(t, payments.ChargeDeclined, response.Status)
		require.NotNil(t, response.FailureReason)
		assert.Equal(t, reason, *response.FailureReason)
	})

	t.Run("gateway 4xx is a permanent error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(payments.ErrorResponse{Message: "invalid currency"})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.Charge(context.Background(), charge)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid currency")
		assert.False(t, utils.IsTransient(err))
	})

	t.Run("gateway 5xx is transient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.Charge(context.Background(), charge)
		require.Error(t, err)
		assert.True(t, utils.IsTransient(err))
	})
}

func TestNewClient(t *testing.T) {
	t.Run("requires an AWS handler when a secret is named", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.ExternalClients.Payments.APIKeySecret = "payments/api-key"

		_, err := payments.NewClient(cfg, nil)
		require.Error(t, err)
	})

	t.Run("uses the plain config key otherwise", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.ExternalClients.Payments.APIKey = "plain-key"

		client, err := payments.NewClient(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "plain-key", client.APIKey)
	})
}
