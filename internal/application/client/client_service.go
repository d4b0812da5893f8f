package client

import (
	"context"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo client.ClientRepository
	filingRepo filing.TaxFilingRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo client.ClientRepository, filingRepo filing.TaxFilingRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		filingRepo: filingRepo,
	}
}

// Create onboards a new client
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	// Check if code already exists
	exists, err := s.clientRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this code already exists")
	}

	// Check if TIN already exists (if provided)
	if req.TIN != "" {
		exists, err = s.clientRepo.ExistsByTIN(ctx, tenantID, req.TIN)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this TIN already exists")
		}
	}

	// Create the client
	clientType := client.ClientType(req.Type)
	c, err := client.NewClient(tenantID, req.Code, req.Name, clientType)
	if err != nil {
		return nil, err
	}

	// Set business name
	if req.BusinessName != "" {
		if err := c.Update(req.Name, req.BusinessName); err != nil {
			return nil, err
		}
	}

	// Set TIN
	if req.TIN != "" {
		if err := c.SetTIN(req.TIN); err != nil {
			return nil, err
		}
	}

	// Set contact
	if req.ContactPerson != "" || req.Phone != "" || req.Email != "" {
		if err := c.SetContact(req.ContactPerson, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}

	// Set address
	if req.Address != "" || req.City != "" || req.District != "" || req.Country != "" {
		if err := c.SetAddress(req.Address, req.City, req.District, req.Country); err != nil {
			return nil, err
		}
	}

	// Set taxpayer size
	if req.TaxpayerSize != "" {
		if err := c.SetTaxpayerSize(client.TaxpayerSize(req.TaxpayerSize)); err != nil {
			return nil, err
		}
	}

	// Register for GST (requires TIN)
	if req.GSTRegistered {
		if err := c.RegisterForGST(); err != nil {
			return nil, err
		}
	}

	// Assign associate
	if req.AssignedTo != nil {
		if err := c.AssignAssociate(*req.AssignedTo); err != nil {
			return nil, err
		}
	}

	// Set notes
	if req.Notes != "" {
		c.SetNotes(req.Notes)
	}

	// Set attributes
	if req.Attributes != "" {
		if err := c.SetAttributes(req.Attributes); err != nil {
			return nil, err
		}
	}

	if req.CreatedBy != nil {
		c.CreatedBy = req.CreatedBy
	}

	// Save the client
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// GetByCode retrieves a client by code
func (s *ClientService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// GetByTIN retrieves a client by tax identification number
func (s *ClientService) GetByTIN(ctx context.Context, tenantID uuid.UUID, tin string) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByTIN(ctx, tenantID, tin)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// List retrieves a list of clients with filtering and pagination
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter ClientListFilter) ([]ClientListResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	// Add specific filters
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.TaxpayerSize != "" {
		domainFilter.Filters["taxpayer_size"] = filter.TaxpayerSize
	}
	if filter.District != "" {
		domainFilter.Filters["district"] = filter.District
	}
	if filter.GSTRegistered != nil {
		domainFilter.Filters["gst_registered"] = *filter.GSTRegistered
	}
	if filter.AssignedTo != "" {
		associateID, err := uuid.Parse(filter.AssignedTo)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_ASSOCIATE", "Invalid associate ID")
		}
		domainFilter.Filters["assigned_to"] = associateID
	}

	// Get clients
	clients, err := s.clientRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	// Get total count
	total, err := s.clientRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToClientListResponses(clients), total, nil
}

// Update updates a client
func (s *ClientService) Update(ctx context.Context, tenantID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	// Get existing client
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	// Update name and business name
	if req.Name != nil || req.BusinessName != nil {
		name := c.Name
		businessName := c.BusinessName
		if req.Name != nil {
			name = *req.Name
		}
		if req.BusinessName != nil {
			businessName = *req.BusinessName
		}
		if err := c.Update(name, businessName); err != nil {
			return nil, err
		}
	}

	// Update TIN
	if req.TIN != nil {
		// Check for duplicate TIN
		if *req.TIN != "" && *req.TIN != c.TIN {
			exists, err := s.clientRepo.ExistsByTIN(ctx, tenantID, *req.TIN)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this TIN already exists")
			}
		}
		if err := c.SetTIN(*req.TIN); err != nil {
			return nil, err
		}
	}

	// Update contact
	if req.ContactPerson != nil || req.Phone != nil || req.Email != nil {
		contactPerson := c.ContactPerson
		phone := c.Phone
		email := c.Email

		if req.ContactPerson != nil {
			contactPerson = *req.ContactPerson
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}

		if err := c.SetContact(contactPerson, phone, email); err != nil {
			return nil, err
		}
	}

	// Update address
	if req.Address != nil || req.City != nil || req.District != nil || req.Country != nil {
		address := c.Address
		city := c.City
		district := c.District
		country := c.Country

		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.District != nil {
			district = *req.District
		}
		if req.Country != nil {
			country = *req.Country
		}

		if err := c.SetAddress(address, city, district, country); err != nil {
			return nil, err
		}
	}

	// Update taxpayer size
	if req.TaxpayerSize != nil {
		if err := c.SetTaxpayerSize(client.TaxpayerSize(*req.TaxpayerSize)); err != nil {
			return nil, err
		}
	}

	// Update notes
	if req.Notes != nil {
		c.SetNotes(*req.Notes)
	}

	// Update attributes
	if req.Attributes != nil {
		if err := c.SetAttributes(*req.Attributes); err != nil {
			return nil, err
		}
	}

	// Save the client
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// UpdateCode changes a client's code
func (s *ClientService) UpdateCode(ctx context.Context, tenantID, clientID uuid.UUID, newCode string) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	// Check if new code already exists (if different from current)
	if newCode != c.Code {
		exists, err := s.clientRepo.ExistsByCode(ctx, tenantID, newCode)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this code already exists")
		}
	}

	if err := c.UpdateCode(newCode); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// Assign assigns a responsible associate to a client
func (s *ClientService) Assign(ctx context.Context, tenantID, clientID, associateID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.AssignAssociate(associateID); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// Unassign removes the responsible associate from a client
func (s *ClientService) Unassign(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	c.UnassignAssociate()

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// RegisterGST marks a client as GST-registered
func (s *ClientService) RegisterGST(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.RegisterForGST(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// DeregisterGST removes a client's GST registration
func (s *ClientService) DeregisterGST(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.DeregisterFromGST(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// Activate activates a client
func (s *ClientService) Activate(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.Activate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// Deactivate deactivates a client
func (s *ClientService) Deactivate(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// Suspend suspends a client for compliance or payment issues
func (s *ClientService) Suspend(ctx context.Context, tenantID, clientID uuid.UUID, reason string) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.Suspend(reason); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// GrantPortalAccess links a client to a portal user account
func (s *ClientService) GrantPortalAccess(ctx context.Context, tenantID, clientID, userID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.GrantPortalAccess(userID); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// RevokePortalAccess removes a client's portal user link
func (s *ClientService) RevokePortalAccess(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	c.RevokePortalAccess()

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToClientResponse(c)
	return &response, nil
}

// Delete deletes a client. Clients with filing history cannot be deleted;
// deactivate them instead.
func (s *ClientService) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	// Verify client exists
	if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID); err != nil {
		return err
	}

	filingCount, err := s.filingRepo.CountByClient(ctx, tenantID, clientID)
	if err != nil {
		return err
	}
	if filingCount > 0 {
		return shared.NewDomainError("CANNOT_DELETE", "Cannot delete client with filing history")
	}

	return s.clientRepo.DeleteForTenant(ctx, tenantID, clientID)
}
