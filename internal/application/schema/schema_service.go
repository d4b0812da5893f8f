package schema

import (
	"context"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/workflow"
)

// SchemaService exposes the entity field metadata behind the rule builder
type SchemaService struct {
	registry *Registry
}

// NewSchemaService creates a new SchemaService
func NewSchemaService(registry *Registry) *SchemaService {
	return &SchemaService{registry: registry}
}

// ListEntityTypes lists the entities rules can target
func (s *SchemaService) ListEntityTypes(ctx context.Context) []EntityTypeResponse {
	types := s.registry.EntityTypes()
	responses := make([]EntityTypeResponse, 0, len(types))
	for _, entityType := range types {
		descriptor, ok := s.registry.Describe(entityType)
		if !ok {
			continue
		}
		responses = append(responses, EntityTypeResponse{
			EntityType: descriptor.EntityType,
			EventTypes: descriptor.EventTypes,
			FieldCount: len(descriptor.Fields),
		})
	}
	return responses
}

// GetSchema returns the field descriptors for one entity type
func (s *SchemaService) GetSchema(ctx context.Context, entityType string) (*EntitySchemaResponse, error) {
	descriptor, ok := s.registry.Describe(entityType)
	if !ok {
		return nil, shared.NewDomainError("SCHEMA_NOT_FOUND", "No schema registered for entity type: "+entityType)
	}
	response := toEntitySchemaResponse(descriptor)
	return &response, nil
}

// GetSchemaForEvent returns the schema of the entity publishing an event
// type, so the rule builder can offer fields once an event is picked.
func (s *SchemaService) GetSchemaForEvent(ctx context.Context, eventType string) (*EntitySchemaResponse, error) {
	descriptor, ok := s.registry.DescribeByEvent(eventType)
	if !ok {
		return nil, shared.NewDomainError("SCHEMA_NOT_FOUND", "No entity publishes event type: "+eventType)
	}
	response := toEntitySchemaResponse(descriptor)
	return &response, nil
}

// Operators lists the condition operators valid per field type
func (s *SchemaService) Operators(ctx context.Context) []OperatorSetResponse {
	fieldTypes := []FieldType{FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate, FieldTypeEnum}
	responses := make([]OperatorSetResponse, len(fieldTypes))
	for i, fieldType := range fieldTypes {
		responses[i] = OperatorSetResponse{
			FieldType: string(fieldType),
			Operators: OperatorsForFieldType(fieldType),
		}
	}
	return responses
}

// OperatorsForFieldType returns the operators a condition on a field of the
// given type may use. Ordering comparisons only make sense for numbers and
// dates; enums compare by membership rather than substring.
func OperatorsForFieldType(fieldType FieldType) []string {
	switch fieldType {
	case FieldTypeNumber:
		return []string{
			string(workflow.OperatorEquals),
			string(workflow.OperatorNotEquals),
			string(workflow.OperatorGreaterThan),
			string(workflow.OperatorGreaterOrEq),
			string(workflow.OperatorLessThan),
			string(workflow.OperatorLessOrEq),
			string(workflow.OperatorIn),
			string(workflow.OperatorIsEmpty),
			string(workflow.OperatorIsNotEmpty),
		}
	case FieldTypeDate:
		return []string{
			string(workflow.OperatorEquals),
			string(workflow.OperatorNotEquals),
			string(workflow.OperatorGreaterThan),
			string(workflow.OperatorGreaterOrEq),
			string(workflow.OperatorLessThan),
			string(workflow.OperatorLessOrEq),
			string(workflow.OperatorIsEmpty),
			string(workflow.OperatorIsNotEmpty),
		}
	case FieldTypeBoolean:
		return []string{
			string(workflow.OperatorEquals),
			string(workflow.OperatorNotEquals),
		}
	case FieldTypeEnum:
		return []string{
			string(workflow.OperatorEquals),
			string(workflow.OperatorNotEquals),
			string(workflow.OperatorIn),
			string(workflow.OperatorIsEmpty),
			string(workflow.OperatorIsNotEmpty),
		}
	default: // string
		return []string{
			string(workflow.OperatorEquals),
			string(workflow.OperatorNotEquals),
			string(workflow.OperatorContains),
			string(workflow.OperatorIn),
			string(workflow.OperatorIsEmpty),
			string(workflow.OperatorIsNotEmpty),
		}
	}
}
