package identity

import (
	"time"

	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	TenantCode string // Firm code selecting the tenant to log into
	Email      string
	Password   string
	IP         string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	MustChangePassword    bool
	User                  UserInfo
}

// UserInfo contains basic user information returned by auth endpoints
type UserInfo struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	Email              string
	Name               string
	Phone              string
	Role               identity.Role
	ClientID           *uuid.UUID
	Status             identity.UserStatus
	MustChangePassword bool
	LastLoginAt        *time.Time
}

// ToUserInfo maps a domain user to the auth view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:                 u.ID,
		TenantID:           u.TenantID,
		Email:              u.Email,
		Name:               u.Name,
		Phone:              u.Phone,
		Role:               u.Role,
		ClientID:           u.ClientID,
		Status:             u.Status,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string        // JWT ID for blacklisting
	TokenTTL time.Duration // Remaining lifetime of the access token
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for getting current user info
type GetCurrentUserInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// CurrentUserResult contains the current user's information
type CurrentUserResult struct {
	User UserInfo
}

// CreateUserRequest contains the input for creating a staff user
type CreateUserRequest struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Role     string
	ClientID *uuid.UUID // Required when role is client
	Notes    string
	Activate bool // Create the account already active
}

// UpdateUserRequest contains the input for updating a user profile.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email *string
	Name  *string
	Phone *string
	Notes *string
	Role  *string
}

// ResetPasswordRequest contains the input for an admin password reset
type ResetPasswordRequest struct {
	NewPassword        string
	MustChangePassword bool
}

// ListUsersRequest contains list/filter options for users
type ListUsersRequest struct {
	Keyword   string
	Status    string
	Role      string
	ClientID  *uuid.UUID
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// UserResponse is the API representation of a user account
type UserResponse struct {
	ID                 uuid.UUID           `json:"id"`
	TenantID           uuid.UUID           `json:"tenant_id"`
	Email              string              `json:"email"`
	Name               string              `json:"name"`
	Phone              string              `json:"phone,omitempty"`
	Role               identity.Role       `json:"role"`
	ClientID           *uuid.UUID          `json:"client_id,omitempty"`
	Status             identity.UserStatus `json:"status"`
	LastLoginAt        *time.Time          `json:"last_login_at,omitempty"`
	FailedAttempts     int                 `json:"failed_attempts"`
	LockedUntil        *time.Time          `json:"locked_until,omitempty"`
	MustChangePassword bool                `json:"must_change_password"`
	Notes              string              `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// ToUserResponse maps a domain user to its API representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		TenantID:           u.TenantID,
		Email:              u.Email,
		Name:               u.Name,
		Phone:              u.Phone,
		Role:               u.Role,
		ClientID:           u.ClientID,
		Status:             u.Status,
		LastLoginAt:        u.LastLoginAt,
		FailedAttempts:     u.FailedAttempts,
		LockedUntil:        u.LockedUntil,
		MustChangePassword: u.MustChangePassword,
		Notes:              u.Notes,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
		Version:            u.Version,
	}
}

// UserListResult contains a page of users plus counts by role
type UserListResult struct {
	Users    []UserResponse
	Total    int64
	Page     int
	PageSize int
}

// CreateTenantRequest contains the input for creating a tenant
type CreateTenantRequest struct {
	Code         string
	Name         string
	ShortName    string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Address      string
	Notes        string
	AdminEmail   string // Initial admin account for the firm
	AdminName    string
	AdminPass    string
}

// UpdateTenantRequest contains the input for updating a tenant.
// Nil fields are left unchanged.
type UpdateTenantRequest struct {
	Name         *string
	ShortName    *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Address      *string
	LogoURL      *string
	Notes        *string
	Currency     *string
	Timezone     *string
	Locale       *string
	FiscalYear   *string
}

// TenantResponse is the API representation of a tenant
type TenantResponse struct {
	ID           uuid.UUID             `json:"id"`
	Code         string                `json:"code"`
	Name         string                `json:"name"`
	ShortName    string                `json:"short_name,omitempty"`
	Status       identity.TenantStatus `json:"status"`
	ContactName  string                `json:"contact_name,omitempty"`
	ContactPhone string                `json:"contact_phone,omitempty"`
	ContactEmail string                `json:"contact_email,omitempty"`
	Address      string                `json:"address,omitempty"`
	LogoURL      string                `json:"logo_url,omitempty"`
	Config       identity.TenantConfig `json:"config"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// ToTenantResponse maps a domain tenant to its API representation
func ToTenantResponse(t *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:           t.ID,
		Code:         t.Code,
		Name:         t.Name,
		ShortName:    t.ShortName,
		Status:       t.Status,
		ContactName:  t.ContactName,
		ContactPhone: t.ContactPhone,
		ContactEmail: t.ContactEmail,
		Address:      t.Address,
		LogoURL:      t.LogoURL,
		Config:       t.Config,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
