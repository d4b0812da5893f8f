package client

import (
	"time"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to onboard a new client
type CreateClientRequest struct {
	Code          string     `json:"code" binding:"required,min=1,max=50"`
	Name          string     `json:"name" binding:"required,min=1,max=200"`
	BusinessName  string     `json:"business_name" binding:"max=200"`
	Type          string     `json:"type" binding:"required,oneof=individual business ngo"`
	TIN           string     `json:"tin" binding:"max=20"`
	ContactPerson string     `json:"contact_person" binding:"max=100"`
	Phone         string     `json:"phone" binding:"max=50"`
	Email         string     `json:"email" binding:"omitempty,email,max=200"`
	Address       string     `json:"address" binding:"max=500"`
	City          string     `json:"city" binding:"max=100"`
	District      string     `json:"district" binding:"max=100"`
	Country       string     `json:"country" binding:"max=100"`
	GSTRegistered bool       `json:"gst_registered"`
	TaxpayerSize  string     `json:"taxpayer_size" binding:"omitempty,oneof=small medium large"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
	Notes         string     `json:"notes"`
	Attributes    string     `json:"attributes"`
	CreatedBy     *uuid.UUID `json:"-"` // Set from JWT context, not from request body
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	BusinessName  *string `json:"business_name" binding:"omitempty,max=200"`
	TIN           *string `json:"tin" binding:"omitempty,max=20"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=100"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Email         *string `json:"email" binding:"omitempty,email,max=200"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	City          *string `json:"city" binding:"omitempty,max=100"`
	District      *string `json:"district" binding:"omitempty,max=100"`
	Country       *string `json:"country" binding:"omitempty,max=100"`
	TaxpayerSize  *string `json:"taxpayer_size" binding:"omitempty,oneof=small medium large"`
	Notes         *string `json:"notes"`
	Attributes    *string `json:"attributes"`
}

// UpdateClientCodeRequest represents a request to change a client's code
type UpdateClientCodeRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
}

// AssignClientRequest represents a request to assign a responsible associate
type AssignClientRequest struct {
	AssociateID uuid.UUID `json:"associate_id" binding:"required"`
}

// SuspendClientRequest represents a request to suspend a client
type SuspendClientRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	BusinessName  string     `json:"business_name"`
	Type          string     `json:"type"`
	TIN           string     `json:"tin"`
	Status        string     `json:"status"`
	ContactPerson string     `json:"contact_person"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	District      string     `json:"district"`
	Country       string     `json:"country"`
	GSTRegistered bool       `json:"gst_registered"`
	TaxpayerSize  string     `json:"taxpayer_size"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
	PortalAccess  bool       `json:"portal_access"`
	PortalUserID  *uuid.UUID `json:"portal_user_id,omitempty"`
	LastFilingAt  *time.Time `json:"last_filing_at,omitempty"`
	OnboardedAt   time.Time  `json:"onboarded_at"`
	Notes         string     `json:"notes"`
	Attributes    string     `json:"attributes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Version       int        `json:"version"`
}

// ClientListResponse represents a list item for clients
type ClientListResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	BusinessName  string     `json:"business_name"`
	Type          string     `json:"type"`
	TIN           string     `json:"tin"`
	Status        string     `json:"status"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	District      string     `json:"district"`
	GSTRegistered bool       `json:"gst_registered"`
	TaxpayerSize  string     `json:"taxpayer_size"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
	LastFilingAt  *time.Time `json:"last_filing_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ClientListFilter represents filtering options for client lists
type ClientListFilter struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir"`
	Search        string `form:"search"`
	Status        string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Type          string `form:"type" binding:"omitempty,oneof=individual business ngo"`
	TaxpayerSize  string `form:"taxpayer_size" binding:"omitempty,oneof=small medium large"`
	District      string `form:"district"`
	GSTRegistered *bool  `form:"gst_registered"`
	AssignedTo    string `form:"assigned_to" binding:"omitempty,uuid"`
}

// ToClientResponse converts a domain client to a response DTO
func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Code:          c.Code,
		Name:          c.Name,
		BusinessName:  c.BusinessName,
		Type:          string(c.Type),
		TIN:           c.TIN,
		Status:        string(c.Status),
		ContactPerson: c.ContactPerson,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		City:          c.City,
		District:      c.District,
		Country:       c.Country,
		GSTRegistered: c.GSTRegistered,
		TaxpayerSize:  string(c.TaxpayerSize),
		AssignedTo:    c.AssignedTo,
		PortalAccess:  c.PortalAccess,
		PortalUserID:  c.PortalUserID,
		LastFilingAt:  c.LastFilingAt,
		OnboardedAt:   c.OnboardedAt,
		Notes:         c.Notes,
		Attributes:    c.Attributes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	}
}

// ToClientListResponse converts a domain client to a list item DTO
func ToClientListResponse(c *client.Client) ClientListResponse {
	return ClientListResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		BusinessName:  c.BusinessName,
		Type:          string(c.Type),
		TIN:           c.TIN,
		Status:        string(c.Status),
		Phone:         c.Phone,
		Email:         c.Email,
		District:      c.District,
		GSTRegistered: c.GSTRegistered,
		TaxpayerSize:  string(c.TaxpayerSize),
		AssignedTo:    c.AssignedTo,
		LastFilingAt:  c.LastFilingAt,
		CreatedAt:     c.CreatedAt,
	}
}

// ToClientListResponses converts a slice of domain clients to list DTOs
func ToClientListResponses(clients []client.Client) []ClientListResponse {
	responses := make([]ClientListResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientListResponse(&clients[i])
	}
	return responses
}
