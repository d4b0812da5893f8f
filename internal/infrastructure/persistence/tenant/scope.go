// Package tenant provides the GORM scopes the repositories use to apply
// tenant isolation. Every tenant-scoped finder passes the tenant ID it was
// given explicitly, so cross-tenant access never depends on ambient request
// state.
package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantScope restricts a query to rows belonging to the given tenant
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TenantScopeString is TenantScope for callers holding the tenant ID as a
// string, such as values recovered from JWT claims
func TenantScopeString(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
