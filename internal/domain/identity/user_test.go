package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates associate successfully", func(t *testing.T) {
		user, err := NewUser(tenantID, "fatmata@bettsfirm.sl", "Fatmata Sesay", "Password1", RoleAssociate)

		require.NoError(t, err)
		assert.Equal(t, "fatmata@bettsfirm.sl", user.Email)
		assert.Equal(t, "Fatmata Sesay", user.Name)
		assert.Equal(t, RoleAssociate, user.Role)
		assert.Nil(t, user.ClientID)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.Equal(t, tenantID, user.TenantID)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "Password1", user.PasswordHash)
		assert.NotNil(t, user.PasswordChangedAt)
		assert.True(t, user.IsStaff())
		assert.Len(t, user.GetDomainEvents(), 1)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		user, err := NewUser(tenantID, "Admin@BettsFirm.SL", "Admin", "Password1", RoleAdmin)

		require.NoError(t, err)
		assert.Equal(t, "admin@bettsfirm.sl", user.Email)
		assert.True(t, user.IsAdmin())
	})

	t.Run("active user can login", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "a@b.sl", "A", "Password1", RoleAssociate)

		require.NoError(t, err)
		assert.True(t, user.IsActive())
		assert.True(t, user.CanLogin())
	})

	t.Run("pending user cannot login", func(t *testing.T) {
		user, _ := NewUser(tenantID, "a@b.sl", "A", "Password1", RoleAssociate)
		assert.False(t, user.CanLogin())
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewUser(tenantID, "not-an-email", "A", "Password1", RoleAssociate)
		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewUser(tenantID, "a@b.sl", " ", "Password1", RoleAssociate)
		assert.Error(t, err)
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewUser(tenantID, "a@b.sl", "A", "Pass1", RoleAssociate)
		assert.Error(t, err)
	})

	t.Run("fails with password missing a number", func(t *testing.T) {
		_, err := NewUser(tenantID, "a@b.sl", "A", "PasswordOnly", RoleAssociate)
		assert.Error(t, err)
	})

	t.Run("fails with unknown role", func(t *testing.T) {
		_, err := NewUser(tenantID, "a@b.sl", "A", "Password1", Role("owner"))
		assert.Error(t, err)
	})
}

func TestNewClientUser(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()

	t.Run("creates linked portal account", func(t *testing.T) {
		user, err := NewClientUser(tenantID, "taxpayer@example.sl", "Aminata Kamara", "Password1", clientID)

		require.NoError(t, err)
		assert.Equal(t, RoleClient, user.Role)
		require.NotNil(t, user.ClientID)
		assert.Equal(t, clientID, *user.ClientID)
		assert.True(t, user.IsActive())
		assert.False(t, user.IsStaff())
	})

	t.Run("requires a client id", func(t *testing.T) {
		_, err := NewClientUser(tenantID, "taxpayer@example.sl", "Aminata", "Password1", uuid.Nil)
		assert.Error(t, err)
	})
}

func TestUserLinkClient(t *testing.T) {
	tenantID := uuid.New()

	t.Run("links client-role user", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "c@x.sl", "C", "Password1", RoleClient)
		clientID := uuid.New()

		require.NoError(t, user.LinkClient(clientID))
		require.NotNil(t, user.ClientID)
		assert.Equal(t, clientID, *user.ClientID)
	})

	t.Run("rejects staff users", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "s@x.sl", "S", "Password1", RoleAssociate)
		assert.Error(t, user.LinkClient(uuid.New()))
	})
}

func TestUserChangeRole(t *testing.T) {
	tenantID := uuid.New()

	t.Run("promoting clears client link", func(t *testing.T) {
		user, _ := NewClientUser(tenantID, "c@x.sl", "C", "Password1", uuid.New())
		user.ClearDomainEvents()

		require.NoError(t, user.ChangeRole(RoleAssociate))
		assert.Equal(t, RoleAssociate, user.Role)
		assert.Nil(t, user.ClientID)
		assert.Len(t, user.GetDomainEvents(), 1)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAdmin)
		v := user.Version

		require.NoError(t, user.ChangeRole(RoleAdmin))
		assert.Equal(t, v, user.Version)
	})
}

func TestUserPasswords(t *testing.T) {
	tenantID := uuid.New()
	user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)

	t.Run("verify password", func(t *testing.T) {
		assert.True(t, user.VerifyPassword("Password1"))
		assert.False(t, user.VerifyPassword("WrongPass1"))
	})

	t.Run("change password requires current password", func(t *testing.T) {
		err := user.ChangePassword("WrongPass1", "NewPassword2")
		assert.Error(t, err)

		err = user.ChangePassword("Password1", "NewPassword2")
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword2"))
	})

	t.Run("admin reset clears must-change flag", func(t *testing.T) {
		user.ForcePasswordChange()
		assert.True(t, user.MustChangePassword)

		require.NoError(t, user.SetPassword("ResetPassword3"))
		assert.False(t, user.MustChangePassword)
		assert.True(t, user.VerifyPassword("ResetPassword3"))
	})
}

func TestUserLockout(t *testing.T) {
	tenantID := uuid.New()

	t.Run("locks after max failed attempts", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)

		for i := 0; i < MaxFailedLoginAttempts-1; i++ {
			locked := user.RecordLoginFailure()
			assert.False(t, locked)
			assert.True(t, user.CanLogin())
		}

		locked := user.RecordLoginFailure()
		assert.True(t, locked)
		assert.True(t, user.IsLocked())
		assert.False(t, user.CanLogin())
		require.NotNil(t, user.LockedUntil)
		assert.WithinDuration(t, time.Now().Add(AccountLockDuration), *user.LockedUntil, 2*time.Second)
	})

	t.Run("expired lock allows login again", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)
		require.NoError(t, user.Lock(-time.Minute))

		assert.False(t, user.IsLocked())
		assert.True(t, user.CanLogin())
	})

	t.Run("successful login resets counter", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)
		user.RecordLoginFailure()
		user.RecordLoginFailure()

		user.RecordLoginSuccess("102.87.10.4")
		assert.Equal(t, 0, user.FailedAttempts)
		assert.Equal(t, "102.87.10.4", user.LastLoginIP)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("unlock restores access", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)
		require.NoError(t, user.Lock(time.Hour))
		require.True(t, user.IsLocked())

		require.NoError(t, user.Unlock())
		assert.True(t, user.IsActive())
		assert.Equal(t, 0, user.FailedAttempts)
	})

	t.Run("cannot lock a deactivated user", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)
		require.NoError(t, user.Deactivate())

		assert.Error(t, user.Lock(time.Hour))
	})
}

func TestUserStatusTransitions(t *testing.T) {
	tenantID := uuid.New()

	t.Run("activate pending user", func(t *testing.T) {
		user, _ := NewUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)
		user.ClearDomainEvents()

		require.NoError(t, user.Activate())
		assert.True(t, user.IsActive())
		assert.Error(t, user.Activate())
	})

	t.Run("deactivate active user", func(t *testing.T) {
		user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)

		require.NoError(t, user.Deactivate())
		assert.True(t, user.IsDeactivated())
		assert.False(t, user.CanLogin())
		assert.Error(t, user.Deactivate())
	})
}

func TestUserProfileUpdates(t *testing.T) {
	tenantID := uuid.New()
	user, _ := NewActiveUser(tenantID, "a@x.sl", "A", "Password1", RoleAssociate)

	require.NoError(t, user.SetName("Alusine Bangura"))
	assert.Equal(t, "Alusine Bangura", user.Name)

	require.NoError(t, user.SetPhone("+232 76 123456"))
	assert.Equal(t, "+232 76 123456", user.Phone)

	require.NoError(t, user.SetEmail("New@Firm.SL"))
	assert.Equal(t, "new@firm.sl", user.Email)

	assert.Error(t, user.SetEmail("broken"))
}

func TestUserFilter(t *testing.T) {
	f := NewUserFilter().
		WithKeyword("kamara").
		WithRole(RoleClient).
		WithStatus(UserStatusActive).
		WithPagination(3, 10)

	assert.Equal(t, "kamara", f.Keyword)
	require.NotNil(t, f.Role)
	assert.Equal(t, RoleClient, *f.Role)
	assert.Equal(t, 20, f.Offset())
	assert.Equal(t, 10, f.Limit())

	capped := NewUserFilter().WithPagination(1, 1000)
	assert.Equal(t, 100, capped.Limit())
}
