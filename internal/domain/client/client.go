package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusInactive  ClientStatus = "inactive"
	ClientStatusSuspended ClientStatus = "suspended" // Suspended for non-payment or compliance issues
)

// ClientType represents the kind of taxpayer
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual" // Personal taxpayer
	ClientTypeBusiness   ClientType = "business"   // Registered business
	ClientTypeNGO        ClientType = "ngo"        // Non-governmental organization
)

// TaxpayerSize classifies a client under the NRA taxpayer segmentation
type TaxpayerSize string

const (
	TaxpayerSizeSmall  TaxpayerSize = "small"
	TaxpayerSizeMedium TaxpayerSize = "medium"
	TaxpayerSizeLarge  TaxpayerSize = "large"
)

// Client represents a taxpayer managed by the firm.
// It is the aggregate root for client-related operations.
type Client struct {
	shared.TenantAggregateRoot
	Code            string       `gorm:"type:varchar(50);not null;uniqueIndex:idx_client_tenant_code,priority:2"`
	Name            string       `gorm:"type:varchar(200);not null"`
	BusinessName    string       `gorm:"type:varchar(200)"` // Trading name when different from legal name
	Type            ClientType   `gorm:"type:varchar(20);not null;default:'individual'"`
	TIN             string       `gorm:"type:varchar(20);index"` // NRA tax identification number
	Status          ClientStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactPerson   string       `gorm:"type:varchar(100)"`
	Phone           string       `gorm:"type:varchar(50);index"`
	Email           string       `gorm:"type:varchar(200);index"`
	Address         string       `gorm:"type:text"`
	City            string       `gorm:"type:varchar(100)"`
	District        string       `gorm:"type:varchar(100)"`
	Country         string       `gorm:"type:varchar(100);default:'Sierra Leone'"`
	GSTRegistered   bool         `gorm:"not null;default:false"`
	TaxpayerSize    TaxpayerSize `gorm:"type:varchar(20);not null;default:'small'"`
	AssignedTo      *uuid.UUID   `gorm:"type:uuid;index"` // Associate responsible for this client
	Notes           string       `gorm:"type:text"`
	Attributes      string       `gorm:"type:jsonb"` // Custom attributes
	PortalAccess    bool         `gorm:"not null;default:false"`
	PortalUserID    *uuid.UUID   `gorm:"type:uuid"` // Identity user for the client portal
	LastFilingAt    *time.Time
	OnboardedAt     time.Time `gorm:"not null"`
	DeactivatedAt   *time.Time
	SuspensionNotes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with required fields
func NewClient(tenantID uuid.UUID, code, name string, clientType ClientType) (*Client, error) {
	if err := validateClientCode(code); err != nil {
		return nil, err
	}
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if err := validateClientType(clientType); err != nil {
		return nil, err
	}

	c := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Type:                clientType,
		Status:              ClientStatusActive,
		TaxpayerSize:        TaxpayerSizeSmall,
		Country:             "Sierra Leone",
		Attributes:          "{}",
		OnboardedAt:         time.Now(),
	}

	c.AddDomainEvent(NewClientCreatedEvent(c))

	return c, nil
}

// NewIndividualClient creates a new individual taxpayer
func NewIndividualClient(tenantID uuid.UUID, code, name string) (*Client, error) {
	return NewClient(tenantID, code, name, ClientTypeIndividual)
}

// NewBusinessClient creates a new business taxpayer
func NewBusinessClient(tenantID uuid.UUID, code, name string) (*Client, error) {
	return NewClient(tenantID, code, name, ClientTypeBusiness)
}

// Update updates the client's basic information
func (c *Client) Update(name, businessName string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	if businessName != "" && len(businessName) > 200 {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
	}

	c.Name = name
	c.BusinessName = businessName
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// UpdateCode updates the client's code
func (c *Client) UpdateCode(code string) error {
	if err := validateClientCode(code); err != nil {
		return err
	}

	c.Code = strings.ToUpper(code)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// SetTIN sets the client's tax identification number
func (c *Client) SetTIN(tin string) error {
	if tin != "" {
		if err := validateTIN(tin); err != nil {
			return err
		}
	}

	c.TIN = tin
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetContact sets the client's contact information
func (c *Client) SetContact(contactPerson, phone, email string) error {
	if contactPerson != "" && len(contactPerson) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_PERSON", "Contact person cannot exceed 100 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.ContactPerson = contactPerson
	c.Phone = phone
	c.Email = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAddress sets the client's address information
func (c *Client) SetAddress(address, city, district, country string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}
	if district != "" && len(district) > 100 {
		return shared.NewDomainError("INVALID_DISTRICT", "District cannot exceed 100 characters")
	}
	if country != "" && len(country) > 100 {
		return shared.NewDomainError("INVALID_COUNTRY", "Country cannot exceed 100 characters")
	}

	c.Address = address
	c.City = city
	c.District = district
	if country != "" {
		c.Country = country
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// AssignAssociate assigns an associate as the responsible handler
func (c *Client) AssignAssociate(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_ASSOCIATE", "Associate ID cannot be empty")
	}

	old := c.AssignedTo
	c.AssignedTo = &userID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientAssignedEvent(c, old, userID))

	return nil
}

// UnassignAssociate removes the responsible associate
func (c *Client) UnassignAssociate() {
	c.AssignedTo = nil
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetTaxpayerSize sets the NRA taxpayer segmentation size
func (c *Client) SetTaxpayerSize(size TaxpayerSize) error {
	if err := validateTaxpayerSize(size); err != nil {
		return err
	}

	c.TaxpayerSize = size
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// RegisterForGST marks the client as GST-registered.
// A TIN is required before GST registration.
func (c *Client) RegisterForGST() error {
	if c.GSTRegistered {
		return shared.NewDomainError("ALREADY_GST_REGISTERED", "Client is already GST registered")
	}
	if c.TIN == "" {
		return shared.NewDomainError("TIN_REQUIRED", "Client must have a TIN before GST registration")
	}

	c.GSTRegistered = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientGSTRegistrationChangedEvent(c, true))

	return nil
}

// DeregisterFromGST removes the client's GST registration
func (c *Client) DeregisterFromGST() error {
	if !c.GSTRegistered {
		return shared.NewDomainError("NOT_GST_REGISTERED", "Client is not GST registered")
	}

	c.GSTRegistered = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientGSTRegistrationChangedEvent(c, false))

	return nil
}

// GrantPortalAccess links the client to a portal user account
func (c *Client) GrantPortalAccess(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Portal user ID cannot be empty")
	}
	if c.PortalAccess {
		return shared.NewDomainError("ALREADY_HAS_ACCESS", "Client already has portal access")
	}

	c.PortalAccess = true
	c.PortalUserID = &userID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// RevokePortalAccess removes the client's portal user link
func (c *Client) RevokePortalAccess() {
	c.PortalAccess = false
	c.PortalUserID = nil
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// RecordFiling stamps the time of the client's most recent filing
func (c *Client) RecordFiling(at time.Time) {
	c.LastFilingAt = &at
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetNotes sets the client's notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetAttributes sets custom attributes as JSON
func (c *Client) SetAttributes(attributes string) error {
	if attributes == "" {
		attributes = "{}"
	}
	trimmed := strings.TrimSpace(attributes)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return shared.NewDomainError("INVALID_ATTRIBUTES", "Attributes must be valid JSON object")
	}

	c.Attributes = trimmed
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate activates the client
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}

	oldStatus := c.Status
	c.Status = ClientStatusActive
	c.DeactivatedAt = nil
	c.SuspensionNotes = ""
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientStatusChangedEvent(c, oldStatus, ClientStatusActive))

	return nil
}

// Deactivate deactivates the client
func (c *Client) Deactivate() error {
	if c.Status == ClientStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Client is already inactive")
	}

	oldStatus := c.Status
	now := time.Now()
	c.Status = ClientStatusInactive
	c.DeactivatedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewClientStatusChangedEvent(c, oldStatus, ClientStatusInactive))

	return nil
}

// Suspend suspends the client. Only active clients can be suspended.
func (c *Client) Suspend(reason string) error {
	if c.Status == ClientStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Client is already suspended")
	}
	if c.Status != ClientStatusActive {
		return shared.NewDomainError("INVALID_STATUS", "Only active clients can be suspended")
	}

	oldStatus := c.Status
	c.Status = ClientStatusSuspended
	c.SuspensionNotes = reason
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientStatusChangedEvent(c, oldStatus, ClientStatusSuspended))

	return nil
}

// IsActive returns true if the client is active
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// IsIndividual returns true if the client is an individual taxpayer
func (c *Client) IsIndividual() bool {
	return c.Type == ClientTypeIndividual
}

// IsBusiness returns true if the client is a business taxpayer
func (c *Client) IsBusiness() bool {
	return c.Type == ClientTypeBusiness
}

// MarkDeleted adds the deletion event before removal
func (c *Client) MarkDeleted() {
	c.AddDomainEvent(NewClientDeletedEvent(c))
}

var clientCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// tinPattern matches NRA TINs: 9 or 10 digits
var tinPattern = regexp.MustCompile(`^\d{9,10}$`)

var clientEmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var clientPhonePattern = regexp.MustCompile(`^\+?[0-9\s-]{6,20}$`)

func validateClientCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Client code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Client code cannot exceed 50 characters")
	}
	if !clientCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Client code can only contain letters, numbers, underscores and hyphens")
	}
	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateClientType(clientType ClientType) error {
	switch clientType {
	case ClientTypeIndividual, ClientTypeBusiness, ClientTypeNGO:
		return nil
	default:
		return shared.NewDomainError("INVALID_TYPE", "Client type must be individual, business or ngo")
	}
}

func validateTaxpayerSize(size TaxpayerSize) error {
	switch size {
	case TaxpayerSizeSmall, TaxpayerSizeMedium, TaxpayerSizeLarge:
		return nil
	default:
		return shared.NewDomainError("INVALID_TAXPAYER_SIZE", "Taxpayer size must be small, medium or large")
	}
}

func validateTIN(tin string) error {
	if !tinPattern.MatchString(tin) {
		return shared.NewDomainError("INVALID_TIN", "TIN must be 9 or 10 digits")
	}
	return nil
}

func validatePhone(phone string) error {
	if !clientPhonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone number format is invalid")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !clientEmailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}
