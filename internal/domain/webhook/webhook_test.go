package webhook

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistration(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates registration with generated secret", func(t *testing.T) {
		r, err := NewRegistration(tenantID, "Filing notifications", "https://example.com/hooks/ctis", []string{"filing.submitted", "filing.approved"})

		require.NoError(t, err)
		assert.Equal(t, "Filing notifications", r.Name)
		assert.Equal(t, "https://example.com/hooks/ctis", r.TargetURL)
		assert.Len(t, r.Secret, SecretByteLength*2) // hex encoded
		assert.Equal(t, []string{"filing.submitted", "filing.approved"}, r.EventTypes)
		assert.True(t, r.Active)
		assert.Equal(t, DefaultDeliveryMaxRetries, r.MaxRetries)
		assert.Equal(t, tenantID, r.TenantID)
		assert.Len(t, r.GetDomainEvents(), 1)
	})

	t.Run("deduplicates event types", func(t *testing.T) {
		r, err := NewRegistration(tenantID, "Dupes", "https://example.com/hook", []string{"payment.recorded", "payment.recorded"})

		require.NoError(t, err)
		assert.Equal(t, []string{"payment.recorded"}, r.EventTypes)
	})

	t.Run("allows http for local receivers", func(t *testing.T) {
		r, err := NewRegistration(tenantID, "Local", "http://localhost:9090/hook", []string{"*"})

		require.NoError(t, err)
		assert.True(t, r.SubscribesTo("anything.at.all"))
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewRegistration(tenantID, "  ", "https://example.com/hook", []string{"*"})
		assert.Error(t, err)
	})

	t.Run("fails with invalid URL scheme", func(t *testing.T) {
		_, err := NewRegistration(tenantID, "FTP", "ftp://example.com/hook", []string{"*"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "http or https")
	})

	t.Run("fails without host", func(t *testing.T) {
		_, err := NewRegistration(tenantID, "NoHost", "https:///hook", []string{"*"})
		assert.Error(t, err)
	})

	t.Run("fails without event types", func(t *testing.T) {
		_, err := NewRegistration(tenantID, "Empty", "https://example.com/hook", nil)
		assert.Error(t, err)
	})

	t.Run("fails with blank event type", func(t *testing.T) {
		_, err := NewRegistration(tenantID, "Blank", "https://example.com/hook", []string{"filing.created", " "})
		assert.Error(t, err)
	})
}

func TestRegistrationSubscribesTo(t *testing.T) {
	tenantID := uuid.New()

	t.Run("matches exact event types", func(t *testing.T) {
		r, _ := NewRegistration(tenantID, "Exact", "https://example.com/hook", []string{"filing.submitted"})

		assert.True(t, r.SubscribesTo("filing.submitted"))
		assert.False(t, r.SubscribesTo("filing.approved"))
	})

	t.Run("wildcard matches everything", func(t *testing.T) {
		r, _ := NewRegistration(tenantID, "All", "https://example.com/hook", []string{EventTypeWildcard})

		assert.True(t, r.SubscribesTo("filing.submitted"))
		assert.True(t, r.SubscribesTo("client.created"))
	})
}

func TestRegistrationRotateSecret(t *testing.T) {
	tenantID := uuid.New()
	r, _ := NewRegistration(tenantID, "Rotate", "https://example.com/hook", []string{"*"})
	r.ClearDomainEvents()
	original := r.Secret
	originalVersion := r.Version

	secret, err := r.RotateSecret()

	require.NoError(t, err)
	assert.NotEqual(t, original, secret)
	assert.Equal(t, secret, r.Secret)
	assert.Equal(t, originalVersion+1, r.Version)
	assert.Len(t, r.GetDomainEvents(), 1)
}

func TestRegistrationUpdate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("updates fields and bumps version", func(t *testing.T) {
		r, _ := NewRegistration(tenantID, "Before", "https://example.com/hook", []string{"filing.submitted"})
		v := r.Version

		err := r.Update("After", "All filing events", "https://example.com/hook2", []string{"filing.submitted", "filing.filed"})

		require.NoError(t, err)
		assert.Equal(t, "After", r.Name)
		assert.Equal(t, "All filing events", r.Description)
		assert.Equal(t, "https://example.com/hook2", r.TargetURL)
		assert.Equal(t, v+1, r.Version)
	})

	t.Run("rejects invalid target URL", func(t *testing.T) {
		r, _ := NewRegistration(tenantID, "Before", "https://example.com/hook", []string{"*"})

		err := r.Update("Before", "", "not a url at all://", []string{"*"})
		assert.Error(t, err)
	})
}

func TestRegistrationActivation(t *testing.T) {
	tenantID := uuid.New()
	r, _ := NewRegistration(tenantID, "Toggle", "https://example.com/hook", []string{"*"})

	r.Deactivate()
	assert.False(t, r.Active)
	assert.False(t, r.IsDeliverable())

	// no-op when already inactive
	v := r.Version
	r.Deactivate()
	assert.Equal(t, v, r.Version)

	r.Activate()
	assert.True(t, r.Active)
	assert.True(t, r.IsDeliverable())
}

func TestRegistrationSetHeaders(t *testing.T) {
	tenantID := uuid.New()
	r, _ := NewRegistration(tenantID, "Headers", "https://example.com/hook", []string{"*"})

	t.Run("accepts JSON object", func(t *testing.T) {
		err := r.SetHeaders(`{"Authorization":"Bearer abc"}`)
		require.NoError(t, err)

		headers, err := ParseHeaders(r.Headers)
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", headers["Authorization"])
	})

	t.Run("rejects non-object JSON", func(t *testing.T) {
		err := r.SetHeaders(`["a","b"]`)
		assert.Error(t, err)
	})

	t.Run("empty string becomes empty object", func(t *testing.T) {
		err := r.SetHeaders("")
		require.NoError(t, err)
		assert.Equal(t, "{}", r.Headers)
	})
}

func TestRegistrationSetMaxRetries(t *testing.T) {
	tenantID := uuid.New()
	r, _ := NewRegistration(tenantID, "Retries", "https://example.com/hook", []string{"*"})

	require.NoError(t, r.SetMaxRetries(3))
	assert.Equal(t, 3, r.MaxRetries)

	assert.Error(t, r.SetMaxRetries(0))
	assert.Error(t, r.SetMaxRetries(11))
}

func TestDeliveryLifecycle(t *testing.T) {
	tenantID := uuid.New()
	reg, _ := NewRegistration(tenantID, "Queue", "https://example.com/hook", []string{"*"})
	reg.MaxRetries = 3

	t.Run("new delivery is pending and signed", func(t *testing.T) {
		payload := []byte(`{"filing_id":"abc"}`)
		d := NewDelivery(reg, uuid.New(), "filing.submitted", payload)

		assert.Equal(t, DeliveryStatusPending, d.Status)
		assert.Equal(t, reg.ID, d.RegistrationID)
		assert.Equal(t, tenantID, d.TenantID)
		assert.Equal(t, 3, d.MaxRetries)
		assert.True(t, VerifySignature(reg.Secret, payload, d.Signature))
		assert.True(t, d.IsDue(time.Now()))
	})

	t.Run("successful attempt marks sent", func(t *testing.T) {
		d := NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))

		require.NoError(t, d.MarkProcessing())
		assert.Equal(t, 1, d.AttemptCount)

		d.MarkSent(204)
		assert.Equal(t, DeliveryStatusSent, d.Status)
		assert.Equal(t, 204, d.ResponseStatus)
		assert.NotNil(t, d.DeliveredAt)
		assert.False(t, d.IsDue(time.Now()))
	})

	t.Run("failed attempt schedules retry with doubling backoff", func(t *testing.T) {
		d := NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))

		require.NoError(t, d.MarkProcessing())
		d.MarkFailed(500, "internal server error")

		assert.Equal(t, DeliveryStatusFailed, d.Status)
		require.NotNil(t, d.NextRetryAt)
		wait := time.Until(*d.NextRetryAt)
		assert.InDelta(t, DeliveryBaseBackoff.Seconds(), wait.Seconds(), 1)
		assert.False(t, d.IsDue(time.Now()))
		assert.True(t, d.IsDue(time.Now().Add(DeliveryBaseBackoff+time.Second)))

		require.NoError(t, d.MarkProcessing())
		d.MarkFailed(502, "bad gateway")
		wait = time.Until(*d.NextRetryAt)
		assert.InDelta(t, (2 * DeliveryBaseBackoff).Seconds(), wait.Seconds(), 1)
	})

	t.Run("exhausting attempts parks the delivery as dead", func(t *testing.T) {
		d := NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))

		for i := 0; i < 3; i++ {
			require.NoError(t, d.MarkProcessing())
			d.MarkFailed(503, "unavailable")
		}

		assert.True(t, d.IsDead())
		assert.Nil(t, d.NextRetryAt)
		assert.False(t, d.IsDue(time.Now().Add(time.Hour)))

		// cannot claim a dead delivery
		assert.Error(t, d.MarkProcessing())
	})

	t.Run("redeliver resets a dead delivery", func(t *testing.T) {
		d := NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))
		for i := 0; i < 3; i++ {
			_ = d.MarkProcessing()
			d.MarkFailed(503, "unavailable")
		}
		require.True(t, d.IsDead())

		require.NoError(t, d.Redeliver())
		assert.Equal(t, DeliveryStatusPending, d.Status)
		assert.Equal(t, 0, d.AttemptCount)
		assert.Empty(t, d.LastError)
	})

	t.Run("redeliver rejects sent deliveries", func(t *testing.T) {
		d := NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))
		_ = d.MarkProcessing()
		d.MarkSent(200)

		assert.Error(t, d.Redeliver())
	})
}

func TestSign(t *testing.T) {
	payload := []byte(`{"hello":"world"}`)

	t.Run("signature is deterministic and prefixed", func(t *testing.T) {
		s1 := Sign("secret", payload)
		s2 := Sign("secret", payload)

		assert.Equal(t, s1, s2)
		assert.Contains(t, s1, "sha256=")
	})

	t.Run("different secrets produce different signatures", func(t *testing.T) {
		assert.NotEqual(t, Sign("secret-a", payload), Sign("secret-b", payload))
	})

	t.Run("verification round trip", func(t *testing.T) {
		sig := Sign("secret", payload)

		assert.True(t, VerifySignature("secret", payload, sig))
		assert.False(t, VerifySignature("other", payload, sig))
		assert.False(t, VerifySignature("secret", []byte(`{"tampered":true}`), sig))
	})
}

func TestDeliveryStats(t *testing.T) {
	s := DeliveryStats{Pending: 2, Processing: 1, Sent: 10, Failed: 3, Dead: 1}
	assert.Equal(t, int64(17), s.Total())
}
