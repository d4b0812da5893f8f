package identity

import (
	"context"

	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WelcomeMailer sends the initial credentials mail to a newly created
// account. The SMTP implementation lives in the infrastructure layer;
// a nil mailer skips the mail.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, recipient, name, temporaryPassword string) error
}

// ClientChecker verifies that a client record exists before a portal
// account is linked to it.
type ClientChecker interface {
	ExistsForTenant(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error)
}

// UserService handles user account management
type UserService struct {
	userRepo   identity.UserRepository
	clientRepo ClientChecker
	mailer     WelcomeMailer
	logger     *zap.Logger
}

// NewUserService creates a new user service. The client checker and
// mailer may be nil.
func NewUserService(
	userRepo identity.UserRepository,
	clientRepo ClientChecker,
	mailer WelcomeMailer,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		clientRepo: clientRepo,
		mailer:     mailer,
		logger:     logger,
	}
}

// Create registers a new account. Staff accounts (associate, admin) are
// created directly; client accounts must reference an existing client
// record and are created active so the taxpayer can sign in immediately.
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, tenantID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	role := identity.Role(req.Role)

	var user *identity.User
	switch role {
	case identity.RoleClient:
		if req.ClientID == nil {
			return nil, shared.NewDomainError("INVALID_CLIENT_ID", "Client-role users must be linked to a client record")
		}
		if s.clientRepo != nil {
			ok, err := s.clientRepo.ExistsForTenant(ctx, tenantID, *req.ClientID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Linked client record does not exist")
			}
		}
		user, err = identity.NewClientUser(tenantID, req.Email, req.Name, req.Password, *req.ClientID)
	default:
		if req.Activate {
			user, err = identity.NewActiveUser(tenantID, req.Email, req.Name, req.Password, role)
		} else {
			user, err = identity.NewUser(tenantID, req.Email, req.Name, req.Password, role)
		}
	}
	if err != nil {
		return nil, err
	}

	if req.Phone != "" {
		if err := user.SetPhone(req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		user.SetNotes(req.Notes)
	}

	// Admin-issued passwords are temporary
	user.ForcePasswordChange()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.Name, req.Password); err != nil {
			// The account exists either way; surface the failure in logs only
			s.logger.Warn("Failed to send welcome mail",
				zap.String("email", user.Email),
				zap.Error(err))
		}
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID within a tenant
func (s *UserService) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// List returns users for a tenant with pagination and filters
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, req ListUsersRequest) (*UserListResult, error) {
	filter := identity.NewUserFilter()
	if req.Keyword != "" {
		filter = filter.WithKeyword(req.Keyword)
	}
	if req.Status != "" {
		filter = filter.WithStatus(identity.UserStatus(req.Status))
	}
	if req.Role != "" {
		filter = filter.WithRole(identity.Role(req.Role))
	}
	if req.ClientID != nil {
		filter.ClientID = req.ClientID
	}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.SortBy != "" {
		filter.SortBy = req.SortBy
	}
	if req.SortOrder != "" {
		filter.SortOrder = req.SortOrder
	}

	users, total, err := s.userRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = ToUserResponse(u)
	}

	return &UserListResult{
		Users:    responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Update modifies a user's profile. Nil request fields are left unchanged.
func (s *UserService) Update(ctx context.Context, tenantID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, tenantID, *req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := user.SetPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		user.SetNotes(*req.Notes)
	}
	if req.Role != nil {
		if err := user.ChangeRole(identity.Role(*req.Role)); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// LinkClient binds a client-role user to a client record
func (s *UserService) LinkClient(ctx context.Context, tenantID, userID, clientID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if s.clientRepo != nil {
		ok, err := s.clientRepo.ExistsForTenant(ctx, tenantID, clientID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Linked client record does not exist")
		}
	}

	if err := user.LinkClient(clientID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// ResetPassword sets a new password without the current one (admin action)
func (s *UserService) ResetPassword(ctx context.Context, tenantID, userID uuid.UUID, req ResetPasswordRequest) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if req.MustChangePassword {
		user.ForcePasswordChange()
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Password reset by admin", zap.String("user_id", userID.String()))

	return nil
}

// Activate activates a user account
func (s *UserService) Activate(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, tenantID, userID, (*identity.User).Activate)
}

// Deactivate deactivates a user account
func (s *UserService) Deactivate(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, tenantID, userID, (*identity.User).Deactivate)
}

// Unlock releases a lockout before its timer expires
func (s *UserService) Unlock(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, tenantID, userID, (*identity.User).Unlock)
}

// transition applies an aggregate state change and persists it
func (s *UserService) transition(ctx context.Context, tenantID, userID uuid.UUID, op func(*identity.User) error) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := op(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user account
func (s *UserService) Delete(ctx context.Context, tenantID, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, tenantID, userID); err != nil {
		return err
	}

	s.logger.Info("User deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()))

	return nil
}

// CountByRole returns the number of accounts per role for a tenant
func (s *UserService) CountByRole(ctx context.Context, tenantID uuid.UUID) (map[identity.Role]int64, error) {
	return s.userRepo.CountByRole(ctx, tenantID)
}
