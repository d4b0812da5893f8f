package settings

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueType constrains how a setting value is interpreted
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeInt     ValueType = "int"
	ValueTypeBool    ValueType = "bool"
	ValueTypeDecimal ValueType = "decimal"
	ValueTypeJSON    ValueType = "json"
)

// IsValid checks if the value type is recognized
func (v ValueType) IsValid() bool {
	switch v {
	case ValueTypeString, ValueTypeInt, ValueTypeBool, ValueTypeDecimal, ValueTypeJSON:
		return true
	}
	return false
}

// Well-known setting keys seeded for every tenant
const (
	KeyFirmName         = "firm.name"
	KeyFirmTIN          = "firm.tin"
	KeyCurrency         = "firm.currency"
	KeyGSTRateOverride  = "tax.gst_rate_override"
	KeyReminderLeadDays = "compliance.reminder_lead_days"
	KeyDocumentMaxBytes = "documents.max_size_bytes"
)

// SystemSetting is a typed per-tenant configuration value.
// Values are stored as strings and parsed through the typed accessors.
type SystemSetting struct {
	shared.TenantAggregateRoot
	Key         string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_setting_tenant_key,priority:2"`
	Value       string    `gorm:"type:text;not null"`
	ValueType   ValueType `gorm:"type:varchar(20);not null;default:'string'"`
	Category    string    `gorm:"type:varchar(50);index"`
	Description string    `gorm:"type:text"`
	Editable    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SystemSetting) TableName() string {
	return "system_settings"
}

// NewSystemSetting creates a setting after validating the value parses
// under the declared type.
func NewSystemSetting(tenantID uuid.UUID, key, value string, valueType ValueType, category string, editable bool) (*SystemSetting, error) {
	if key == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key cannot be empty")
	}
	if len(key) > 100 {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key cannot exceed 100 characters")
	}
	if !valueType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VALUE_TYPE", "Unknown value type")
	}
	if err := validateValue(value, valueType); err != nil {
		return nil, err
	}

	return &SystemSetting{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Key:                 key,
		Value:               value,
		ValueType:           valueType,
		Category:            category,
		Editable:            editable,
	}, nil
}

func validateValue(value string, valueType ValueType) error {
	switch valueType {
	case ValueTypeInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return shared.NewDomainError("INVALID_VALUE", "Value is not a valid integer")
		}
	case ValueTypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return shared.NewDomainError("INVALID_VALUE", "Value is not a valid boolean")
		}
	case ValueTypeDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return shared.NewDomainError("INVALID_VALUE", "Value is not a valid decimal")
		}
	case ValueTypeJSON:
		if !json.Valid([]byte(value)) {
			return shared.NewDomainError("INVALID_VALUE", "Value is not valid JSON")
		}
	}
	return nil
}

// UpdateValue changes the stored value, keeping the declared type
func (s *SystemSetting) UpdateValue(value string) error {
	if !s.Editable {
		return shared.NewDomainError("SETTING_LOCKED", "Setting is not editable")
	}
	if err := validateValue(value, s.ValueType); err != nil {
		return err
	}

	s.Value = value
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetDescription sets the human-readable description
func (s *SystemSetting) SetDescription(description string) {
	s.Description = description
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// StringValue returns the raw string value
func (s *SystemSetting) StringValue() string {
	return s.Value
}

// IntValue parses the value as int64, falling back to def on mismatch
func (s *SystemSetting) IntValue(def int64) int64 {
	v, err := strconv.ParseInt(s.Value, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// BoolValue parses the value as bool, falling back to def on mismatch
func (s *SystemSetting) BoolValue(def bool) bool {
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return def
	}
	return v
}

// DecimalValue parses the value as a decimal, falling back to def on mismatch
func (s *SystemSetting) DecimalValue(def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(s.Value)
	if err != nil {
		return def
	}
	return v
}

// JSONValue unmarshals the value into target
func (s *SystemSetting) JSONValue(target any) error {
	if err := json.Unmarshal([]byte(s.Value), target); err != nil {
		return shared.NewDomainError("INVALID_VALUE", "Setting value is not valid JSON")
	}
	return nil
}

// DefaultSettings returns the seed set for a new tenant
func DefaultSettings(tenantID uuid.UUID) []*SystemSetting {
	mk := func(key, value string, vt ValueType, category, description string, editable bool) *SystemSetting {
		s, err := NewSystemSetting(tenantID, key, value, vt, category, editable)
		if err != nil {
			panic(err) // seed values are static and always valid
		}
		s.Description = description
		return s
	}

	return []*SystemSetting{
		mk(KeyFirmName, "Betts Firm", ValueTypeString, "firm", "Display name of the accounting firm", true),
		mk(KeyFirmTIN, "", ValueTypeString, "firm", "Firm taxpayer identification number", true),
		mk(KeyCurrency, "SLE", ValueTypeString, "firm", "Reporting currency (new Leone)", false),
		mk(KeyGSTRateOverride, "", ValueTypeString, "tax", "Optional GST rate override, empty uses the statutory rate", true),
		mk(KeyReminderLeadDays, "14,7,1", ValueTypeString, "compliance", "Days before a deadline to send reminders", true),
		mk(KeyDocumentMaxBytes, "26214400", ValueTypeInt, "documents", "Maximum upload size in bytes (25 MiB)", true),
	}
}
