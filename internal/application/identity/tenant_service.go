package identity

import (
	"context"

	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService handles firm-level tenant management
type TenantService struct {
	tenantRepo identity.TenantRepository
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Create provisions a new firm. When admin credentials are supplied the
// firm's first admin account is created alongside it.
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	exists, err := s.tenantRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A tenant with this code already exists")
	}

	tenant, err := identity.NewTenant(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.ShortName != "" {
		if err := tenant.Update(req.Name, req.ShortName); err != nil {
			return nil, err
		}
	}
	if req.ContactName != "" || req.ContactPhone != "" || req.ContactEmail != "" {
		if err := tenant.SetContact(req.ContactName, req.ContactPhone, req.ContactEmail); err != nil {
			return nil, err
		}
	}
	if req.Address != "" {
		if err := tenant.SetAddress(req.Address); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		tenant.SetNotes(req.Notes)
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	if req.AdminEmail != "" {
		admin, err := identity.NewActiveUser(tenant.ID, req.AdminEmail, req.AdminName, req.AdminPass, identity.RoleAdmin)
		if err != nil {
			return nil, err
		}
		admin.ForcePasswordChange()
		if err := s.userRepo.Create(ctx, admin); err != nil {
			return nil, err
		}
		s.logger.Info("Initial admin account created",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("email", admin.Email))
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))

	response := ToTenantResponse(tenant)
	return &response, nil
}

// GetByID retrieves a tenant by ID
func (s *TenantService) GetByID(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// GetByCode retrieves a tenant by its firm code
func (s *TenantService) GetByCode(ctx context.Context, code string) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// List returns tenants matching the filter
func (s *TenantService) List(ctx context.Context, filter shared.Filter) ([]TenantResponse, int64, error) {
	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = ToTenantResponse(&tenants[i])
	}
	return responses, total, nil
}

// Update modifies a tenant's profile. Nil request fields are left unchanged.
func (s *TenantService) Update(ctx context.Context, tenantID uuid.UUID, req UpdateTenantRequest) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.ShortName != nil {
		name := tenant.Name
		shortName := tenant.ShortName
		if req.Name != nil {
			name = *req.Name
		}
		if req.ShortName != nil {
			shortName = *req.ShortName
		}
		if err := tenant.Update(name, shortName); err != nil {
			return nil, err
		}
	}

	if req.ContactName != nil || req.ContactPhone != nil || req.ContactEmail != nil {
		contactName := tenant.ContactName
		contactPhone := tenant.ContactPhone
		contactEmail := tenant.ContactEmail
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.ContactPhone != nil {
			contactPhone = *req.ContactPhone
		}
		if req.ContactEmail != nil {
			contactEmail = *req.ContactEmail
		}
		if err := tenant.SetContact(contactName, contactPhone, contactEmail); err != nil {
			return nil, err
		}
	}

	if req.Address != nil {
		if err := tenant.SetAddress(*req.Address); err != nil {
			return nil, err
		}
	}
	if req.LogoURL != nil {
		if err := tenant.SetLogoURL(*req.LogoURL); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		tenant.SetNotes(*req.Notes)
	}

	if req.Currency != nil || req.Timezone != nil || req.Locale != nil || req.FiscalYear != nil {
		config := tenant.Config
		if req.Currency != nil {
			config.Currency = *req.Currency
		}
		if req.Timezone != nil {
			config.Timezone = *req.Timezone
		}
		if req.Locale != nil {
			config.Locale = *req.Locale
		}
		if req.FiscalYear != nil {
			config.FiscalYear = *req.FiscalYear
		}
		if err := tenant.UpdateConfig(config); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// Activate activates a tenant
func (s *TenantService) Activate(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	return s.transition(ctx, tenantID, (*identity.Tenant).Activate)
}

// Deactivate deactivates a tenant
func (s *TenantService) Deactivate(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	return s.transition(ctx, tenantID, (*identity.Tenant).Deactivate)
}

// Suspend suspends a tenant, blocking all its logins
func (s *TenantService) Suspend(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	return s.transition(ctx, tenantID, (*identity.Tenant).Suspend)
}

// transition applies an aggregate state change and persists it
func (s *TenantService) transition(ctx context.Context, tenantID uuid.UUID, op func(*identity.Tenant) error) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := op(tenant); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// Delete removes a tenant
func (s *TenantService) Delete(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.tenantRepo.Delete(ctx, tenantID); err != nil {
		return err
	}

	s.logger.Info("Tenant deleted", zap.String("tenant_id", tenantID.String()))

	return nil
}
