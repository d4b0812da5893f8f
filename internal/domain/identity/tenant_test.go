package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	t.Run("creates tenant with defaults", func(t *testing.T) {
		tenant, err := NewTenant("betts", "Betts & Partners")

		require.NoError(t, err)
		assert.Equal(t, "BETTS", tenant.Code)
		assert.Equal(t, "Betts & Partners", tenant.Name)
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.Equal(t, "SLE", tenant.Config.Currency)
		assert.Equal(t, "Africa/Freetown", tenant.Config.Timezone)
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("tenant id is its own scope", func(t *testing.T) {
		tenant, _ := NewTenant("betts", "Betts & Partners")
		assert.Equal(t, tenant.ID, tenant.GetTenantID())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewTenant("", "Name")
		assert.Error(t, err)
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		_, err := NewTenant("betts & co", "Name")
		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewTenant("betts", " ")
		assert.Error(t, err)
	})
}

func TestTenantUpdate(t *testing.T) {
	tenant, _ := NewTenant("betts", "Betts & Partners")
	tenant.ClearDomainEvents()
	v := tenant.Version

	err := tenant.Update("Betts & Partners Chartered Accountants", "Betts")

	require.NoError(t, err)
	assert.Equal(t, "Betts & Partners Chartered Accountants", tenant.Name)
	assert.Equal(t, "Betts", tenant.ShortName)
	assert.Equal(t, v+1, tenant.Version)
	assert.Len(t, tenant.GetDomainEvents(), 1)
}

func TestTenantContactAndAddress(t *testing.T) {
	tenant, _ := NewTenant("betts", "Betts & Partners")

	require.NoError(t, tenant.SetContact("Mariama Betts", "+232 76 555001", "info@bettsfirm.sl"))
	assert.Equal(t, "Mariama Betts", tenant.ContactName)

	require.NoError(t, tenant.SetAddress("12 Siaka Stevens Street, Freetown"))
	assert.Contains(t, tenant.Address, "Freetown")

	assert.Error(t, tenant.SetContact("", "", string(make([]byte, 201))))
}

func TestTenantConfig(t *testing.T) {
	tenant, _ := NewTenant("betts", "Betts & Partners")

	t.Run("updates config", func(t *testing.T) {
		cfg := tenant.Config
		cfg.FiscalYear = "04-01"

		require.NoError(t, tenant.UpdateConfig(cfg))
		assert.Equal(t, "04-01", tenant.Config.FiscalYear)
	})

	t.Run("rejects missing currency", func(t *testing.T) {
		assert.Error(t, tenant.UpdateConfig(TenantConfig{Timezone: "Africa/Freetown"}))
	})
}

func TestTenantStatusTransitions(t *testing.T) {
	t.Run("suspend and reactivate", func(t *testing.T) {
		tenant, _ := NewTenant("betts", "Betts & Partners")

		require.NoError(t, tenant.Suspend())
		assert.True(t, tenant.IsSuspended())
		assert.Error(t, tenant.Suspend())

		require.NoError(t, tenant.Activate())
		assert.True(t, tenant.IsActive())
		assert.Error(t, tenant.Activate())
	})

	t.Run("deactivate", func(t *testing.T) {
		tenant, _ := NewTenant("betts", "Betts & Partners")

		require.NoError(t, tenant.Deactivate())
		assert.False(t, tenant.IsActive())
		assert.Error(t, tenant.Deactivate())
	})
}
