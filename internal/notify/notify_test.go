package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookSend(t *testing.T) {
	var got Summary
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Send(context.Background(), Summary{
		ClientName:  "Jane Roe",
		ClientEmail: "jane@acme.test",
		Title:       "Retainer",
		TotalValue:  1200,
		SignURL:     "http://app.local/contracts/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.test", got.ClientEmail)
	assert.Equal(t, "http://app.local/contracts/abc", got.SignURL)
}

func TestWebhookSendRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Send(context.Background(), Summary{ClientEmail: "jane@acme.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNopSend(t *testing.T) {
	err := Nop{Lg: zap.NewNop().Sugar()}.Send(context.Background(), Summary{ClientEmail: "jane@acme.test"})
	assert.NoError(t, err)

	err = Nop{}.Send(context.Background(), Summary{})
	assert.NoError(t, err)
}
