package schema

import (
	"context"
	"testing"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaService_ListEntityTypes(t *testing.T) {
	service := NewSchemaService(NewDefaultRegistry())

	responses := service.ListEntityTypes(context.Background())

	require.Len(t, responses, 4)
	assert.Equal(t, "Client", responses[0].EntityType)
	assert.Equal(t, "TaxFiling", responses[3].EntityType)
	for _, r := range responses {
		assert.NotEmpty(t, r.EventTypes, "entity %s", r.EntityType)
		assert.Positive(t, r.FieldCount, "entity %s", r.EntityType)
	}
}

func TestSchemaService_GetSchema(t *testing.T) {
	service := NewSchemaService(NewDefaultRegistry())

	response, err := service.GetSchema(context.Background(), "Payment")

	require.NoError(t, err)
	assert.Equal(t, "Payment", response.EntityType)
	assert.Contains(t, response.EventTypes, "payment.confirmed")

	var method *FieldResponse
	for i := range response.Fields {
		if response.Fields[i].Path == "method" {
			method = &response.Fields[i]
			break
		}
	}
	require.NotNil(t, method)
	assert.Equal(t, "enum", method.Type)
	assert.Contains(t, method.EnumValues, "mobile_money")
	assert.Contains(t, method.Operators, "in")
	assert.NotContains(t, method.Operators, "gt")
}

func TestSchemaService_GetSchema_NotFound(t *testing.T) {
	service := NewSchemaService(NewDefaultRegistry())

	_, err := service.GetSchema(context.Background(), "Spaceship")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SCHEMA_NOT_FOUND", domainErr.Code)
}

func TestSchemaService_GetSchemaForEvent(t *testing.T) {
	service := NewSchemaService(NewDefaultRegistry())

	response, err := service.GetSchemaForEvent(context.Background(), "filing.overdue")

	require.NoError(t, err)
	assert.Equal(t, "TaxFiling", response.EntityType)

	_, err = service.GetSchemaForEvent(context.Background(), "filing.teleported")
	require.Error(t, err)
}

func TestSchemaService_Operators(t *testing.T) {
	service := NewSchemaService(NewDefaultRegistry())

	responses := service.Operators(context.Background())

	byType := make(map[string][]string, len(responses))
	for _, r := range responses {
		byType[r.FieldType] = r.Operators
	}

	assert.Contains(t, byType["number"], "gte")
	assert.Contains(t, byType["string"], "contains")
	assert.NotContains(t, byType["string"], "gt")
	assert.Equal(t, []string{"eq", "neq"}, byType["boolean"])
	assert.Contains(t, byType["date"], "lt")
	assert.NotContains(t, byType["date"], "contains")
	assert.Contains(t, byType["enum"], "in")
}
