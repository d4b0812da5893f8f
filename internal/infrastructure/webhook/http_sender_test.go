package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettstax/backend/internal/domain/webhook"
)

func newTestRegistration(t *testing.T, targetURL string) *webhook.Registration {
	t.Helper()
	reg, err := webhook.NewRegistration(uuid.New(), "Test endpoint", targetURL, []string{"filing.submitted"})
	require.NoError(t, err)
	return reg
}

func TestHTTPSender_Send(t *testing.T) {
	t.Run("delivers payload with signature headers", func(t *testing.T) {
		var (
			gotBody      []byte
			gotSignature string
			gotEvent     string
			gotDelivery  string
			gotCustom    string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotSignature = r.Header.Get(webhook.HeaderSignature)
			gotEvent = r.Header.Get(webhook.HeaderEventType)
			gotDelivery = r.Header.Get(webhook.HeaderDelivery)
			gotCustom = r.Header.Get("X-Api-Key")
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		reg := newTestRegistration(t, server.URL)
		require.NoError(t, reg.SetHeaders(`{"X-Api-Key":"abc123"}`))

		payload := []byte(`{"event":"filing.submitted"}`)
		delivery := webhook.NewDelivery(reg, uuid.New(), "filing.submitted", payload)

		sender := NewHTTPSender(5 * time.Second)
		status, err := sender.Send(context.Background(), reg, delivery)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, payload, gotBody)
		assert.Equal(t, "filing.submitted", gotEvent)
		assert.Equal(t, delivery.ID.String(), gotDelivery)
		assert.Equal(t, "abc123", gotCustom)
		assert.True(t, webhook.VerifySignature(reg.Secret, gotBody, gotSignature))
	})

	t.Run("non-2xx response is an error carrying the status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream broke", http.StatusBadGateway)
		}))
		defer server.Close()

		reg := newTestRegistration(t, server.URL)
		delivery := webhook.NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))

		sender := NewHTTPSender(5 * time.Second)
		status, err := sender.Send(context.Background(), reg, delivery)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("unreachable target returns status zero", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // refuse connections

		reg := newTestRegistration(t, server.URL)
		delivery := webhook.NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))

		sender := NewHTTPSender(time.Second)
		status, err := sender.Send(context.Background(), reg, delivery)

		require.Error(t, err)
		assert.Equal(t, 0, status)
	})
}
