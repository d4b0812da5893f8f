package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/auth"
	"github.com/bettstax/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, tenantID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, tenantID uuid.UUID) (map[identity.Role]int64, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[identity.Role]int64), args.Error(1)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByStatus(ctx context.Context, status identity.TenantStatus, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindActive(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "bettstax-test",
		MaxRefreshCount:        10,
	})
}

func newTestAuthService(userRepo *MockUserRepository, tenantRepo *MockTenantRepository) *AuthService {
	return NewAuthService(userRepo, tenantRepo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func newTestTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("BETTS", "Betts & Co")
	require.NoError(t, err)
	tenant.ClearDomainEvents()
	return tenant
}

func newTestUser(t *testing.T, tenantID uuid.UUID) *identity.User {
	t.Helper()
	user, err := identity.NewActiveUser(tenantID, "sia@betts.sl", "Sia Kamara", "Passw0rd123", identity.RoleAssociate)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func domainErrorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	return domainErr.Code
}

// =============================================================================
// Login
// =============================================================================

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login returns token pair and user info", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginInput{
			TenantCode: "BETTS",
			Email:      "sia@betts.sl",
			Password:   "Passw0rd123",
			IP:         "10.0.0.9",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, identity.RoleAssociate, result.User.Role)
		assert.Equal(t, "10.0.0.9", user.LastLoginIP)
		assert.NotNil(t, user.LastLoginAt)
		userRepo.AssertExpectations(t)
	})

	t.Run("access token carries tenant, user and role claims", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, tenantRepo, jwtService, nil, zap.NewNop())

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginInput{
			TenantCode: "BETTS",
			Email:      "sia@betts.sl",
			Password:   "Passw0rd123",
		})
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID.String(), claims.TenantID)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "sia@betts.sl", claims.Email)
		assert.Equal(t, string(identity.RoleAssociate), claims.Role)
	})

	t.Run("unknown tenant code yields invalid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenantRepo.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := service.Login(ctx, LoginInput{TenantCode: "NOPE", Email: "sia@betts.sl", Password: "x"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainErrorCode(t, err))
		userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("suspended tenant rejects login", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		require.NoError(t, tenant.Suspend())
		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)

		_, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "sia@betts.sl", Password: "x"})
		assert.Equal(t, "TENANT_INACTIVE", domainErrorCode(t, err))
	})

	t.Run("unknown email yields invalid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "ghost@betts.sl").Return(nil, shared.ErrNotFound)

		_, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "ghost@betts.sl", Password: "x"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainErrorCode(t, err))
	})

	t.Run("wrong password increments failure counter", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		_, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "sia@betts.sl", Password: "wrong"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainErrorCode(t, err))
		assert.Equal(t, 1, user.FailedAttempts)
	})

	t.Run("fifth consecutive failure locks the account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		user.FailedAttempts = identity.MaxFailedLoginAttempts - 1

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		_, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "sia@betts.sl", Password: "wrong"})
		assert.Equal(t, "ACCOUNT_LOCKED", domainErrorCode(t, err))
		assert.Equal(t, identity.UserStatusLocked, user.Status)
		require.NotNil(t, user.LockedUntil)
		assert.WithinDuration(t, time.Now().Add(identity.AccountLockDuration), *user.LockedUntil, 5*time.Second)
	})

	t.Run("locked account rejects even a correct password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		require.NoError(t, user.Lock(identity.AccountLockDuration))

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)

		_, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "sia@betts.sl", Password: "Passw0rd123"})
		assert.Equal(t, "ACCOUNT_LOCKED", domainErrorCode(t, err))
	})

	t.Run("expired lock allows login again", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		require.NoError(t, user.Lock(identity.AccountLockDuration))
		expired := time.Now().Add(-time.Minute)
		user.LockedUntil = &expired

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "sia@betts.sl", Password: "Passw0rd123"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		require.NoError(t, user.Deactivate())

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "sia@betts.sl").Return(user, nil)

		_, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "sia@betts.sl", Password: "Passw0rd123"})
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErrorCode(t, err))
	})

	t.Run("pending account is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user, err := identity.NewUser(tenant.ID, "pending@betts.sl", "Pending User", "Passw0rd123", identity.RoleAssociate)
		require.NoError(t, err)

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "pending@betts.sl").Return(user, nil)

		_, err = service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "pending@betts.sl", Password: "Passw0rd123"})
		assert.Equal(t, "ACCOUNT_PENDING", domainErrorCode(t, err))
	})

	t.Run("client user token carries the client link", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, tenantRepo, jwtService, nil, zap.NewNop())

		tenant := newTestTenant(t)
		clientID := uuid.New()
		user, err := identity.NewClientUser(tenant.ID, "taxpayer@example.sl", "Abu Sesay", "Passw0rd123", clientID)
		require.NoError(t, err)

		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, "taxpayer@example.sl").Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: "taxpayer@example.sl", Password: "Passw0rd123"})
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		linked, err := claims.GetClientUUID()
		require.NoError(t, err)
		require.NotNil(t, linked)
		assert.Equal(t, clientID, *linked)
	})
}

// =============================================================================
// RefreshToken
// =============================================================================

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, service *AuthService, userRepo *MockUserRepository, tenantRepo *MockTenantRepository, user *identity.User, tenant *identity.Tenant) *LoginResult {
		t.Helper()
		tenantRepo.On("FindByCode", ctx, "BETTS").Return(tenant, nil)
		userRepo.On("FindByEmail", ctx, tenant.ID, user.Email).Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)
		result, err := service.Login(ctx, LoginInput{TenantCode: "BETTS", Email: user.Email, Password: "Passw0rd123"})
		require.NoError(t, err)
		return result
	}

	t.Run("valid refresh token yields a new pair", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		loginResult := login(t, service, userRepo, tenantRepo, user, tenant)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		result, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-token"})
		assert.Equal(t, "TOKEN_INVALID", domainErrorCode(t, err))
	})

	t.Run("access token cannot be used as refresh token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		loginResult := login(t, service, userRepo, tenantRepo, user, tenant)

		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.AccessToken})
		assert.Equal(t, "TOKEN_INVALID", domainErrorCode(t, err))
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		loginResult := login(t, service, userRepo, tenantRepo, user, tenant)

		require.NoError(t, user.Deactivate())
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErrorCode(t, err))
	})

	t.Run("role change is reflected in the refreshed access token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, tenantRepo, jwtService, nil, zap.NewNop())

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		loginResult := login(t, service, userRepo, tenantRepo, user, tenant)

		require.NoError(t, user.ChangeRole(identity.RoleAdmin))
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		result, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(identity.RoleAdmin), claims.Role)
	})
}

// =============================================================================
// Logout, GetCurrentUser, ChangePassword
// =============================================================================

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("blacklists the token JTI", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		blacklist := auth.NewInMemoryTokenBlacklist()
		service := NewAuthService(userRepo, tenantRepo, newTestJWTService(), blacklist, zap.NewNop())

		err := service.Logout(ctx, LogoutInput{
			UserID:   uuid.New(),
			TenantID: uuid.New(),
			TokenJTI: "jti-123",
			TokenTTL: time.Minute,
		})
		require.NoError(t, err)

		revoked, err := blacklist.IsBlacklisted(ctx, "jti-123")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("no-op without a blacklist backend", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), new(MockTenantRepository), newTestJWTService(), nil, zap.NewNop())

		err := service.Logout(ctx, LogoutInput{UserID: uuid.New(), TenantID: uuid.New(), TokenJTI: "jti-123", TokenTTL: time.Minute})
		assert.NoError(t, err)
	})
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user's info", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		userRepo.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)

		result, err := service.GetCurrentUser(ctx, GetCurrentUserInput{UserID: user.ID, TenantID: tenant.ID})
		require.NoError(t, err)
		assert.Equal(t, user.Email, result.User.Email)
		assert.Equal(t, user.Role, result.User.Role)
	})

	t.Run("cross-tenant lookup is a not-found", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		otherTenant := uuid.New()
		userID := uuid.New()
		userRepo.On("FindByIDForTenant", ctx, otherTenant, userID).Return(nil, shared.ErrNotFound)

		_, err := service.GetCurrentUser(ctx, GetCurrentUserInput{UserID: userID, TenantID: otherTenant})
		assert.Equal(t, "USER_NOT_FOUND", domainErrorCode(t, err))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password with the correct current one", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		userRepo.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		err := service.ChangePassword(ctx, ChangePasswordInput{
			TenantID:    tenant.ID,
			UserID:      user.ID,
			OldPassword: "Passw0rd123",
			NewPassword: "NewPassw0rd456",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassw0rd456"))
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tenantRepo := new(MockTenantRepository)
		service := newTestAuthService(userRepo, tenantRepo)

		tenant := newTestTenant(t)
		user := newTestUser(t, tenant.ID)
		userRepo.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)

		err := service.ChangePassword(ctx, ChangePasswordInput{
			TenantID:    tenant.ID,
			UserID:      user.ID,
			OldPassword: "wrong",
			NewPassword: "NewPassw0rd456",
		})
		assert.Equal(t, "INVALID_PASSWORD", domainErrorCode(t, err))
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
