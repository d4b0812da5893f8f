package schema

// ============================================================================
// Response DTOs
// ============================================================================

// EntityTypeResponse summarizes one rule-builder entity
type EntityTypeResponse struct {
	EntityType string   `json:"entity_type"`
	EventTypes []string `json:"event_types"`
	FieldCount int      `json:"field_count"`
}

// FieldResponse describes one payload field for the rule builder
type FieldResponse struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Type       string   `json:"type"`
	EnumValues []string `json:"enum_values,omitempty"`
	Filterable bool     `json:"filterable"`
	Sortable   bool     `json:"sortable"`
	Operators  []string `json:"operators"`
}

// EntitySchemaResponse is the full schema of one entity
type EntitySchemaResponse struct {
	EntityType string          `json:"entity_type"`
	EventTypes []string        `json:"event_types"`
	Fields     []FieldResponse `json:"fields"`
}

// OperatorSetResponse lists the operators valid for one field type
type OperatorSetResponse struct {
	FieldType string   `json:"field_type"`
	Operators []string `json:"operators"`
}

// ============================================================================
// Mappers
// ============================================================================

func toEntitySchemaResponse(descriptor EntityDescriptor) EntitySchemaResponse {
	fields := make([]FieldResponse, len(descriptor.Fields))
	for i, f := range descriptor.Fields {
		fields[i] = FieldResponse{
			Name:       f.Name,
			Path:       f.Path,
			Type:       string(f.Type),
			EnumValues: f.EnumValues,
			Filterable: f.Filterable,
			Sortable:   f.Sortable,
			Operators:  OperatorsForFieldType(f.Type),
		}
	}
	return EntitySchemaResponse{
		EntityType: descriptor.EntityType,
		EventTypes: descriptor.EventTypes,
		Fields:     fields,
	}
}
