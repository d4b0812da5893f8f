// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, TenantModel, etc.)
// - identity.go: User and Tenant models
// - audit.go: Audit trail entry model
// - report.go: Report template model
// - webhook.go: Webhook registration and delivery models
// - outbox.go: Outbox pattern model for event delivery
//
// Aggregates whose domain structs already carry their own GORM column tags
// (clients, tax filings, payments, documents, compliance rules, settings)
// are persisted directly by their repositories without a separate model here.
package models
