package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupField(t *testing.T) {
	payload := map[string]any{
		"tax_type": "gst",
		"client": map[string]any{
			"tin":  "123456789",
			"city": "Freetown",
		},
		"total_due": 1500.5,
	}

	t.Run("top level field", func(t *testing.T) {
		v, ok := LookupField(payload, "tax_type")
		assert.True(t, ok)
		assert.Equal(t, "gst", v)
	})

	t.Run("nested field via dot path", func(t *testing.T) {
		v, ok := LookupField(payload, "client.city")
		assert.True(t, ok)
		assert.Equal(t, "Freetown", v)
	})

	t.Run("missing field", func(t *testing.T) {
		_, ok := LookupField(payload, "client.phone")
		assert.False(t, ok)
	})

	t.Run("path through non-object", func(t *testing.T) {
		_, ok := LookupField(payload, "tax_type.sub")
		assert.False(t, ok)
	})

	t.Run("nil payload", func(t *testing.T) {
		_, ok := LookupField(nil, "x")
		assert.False(t, ok)
	})
}

func TestEvaluateCondition(t *testing.T) {
	payload := map[string]any{
		"tax_type":  "gst",
		"total_due": 750000.0, // JSON numbers decode as float64
		"penalty":   0.0,
		"notes":     "",
		"tags":      []any{"vip", "quarterly"},
		"client":    map[string]any{"tin": "123456789"},
	}

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq string case-insensitive", Condition{Field: "tax_type", Operator: OperatorEquals, Value: "GST"}, true},
		{"eq string mismatch", Condition{Field: "tax_type", Operator: OperatorEquals, Value: "paye"}, false},
		{"eq numeric across types", Condition{Field: "total_due", Operator: OperatorEquals, Value: 750000}, true},
		{"neq", Condition{Field: "tax_type", Operator: OperatorNotEquals, Value: "paye"}, true},
		{"neq on missing field is true", Condition{Field: "missing", Operator: OperatorNotEquals, Value: "x"}, true},
		{"gt numeric", Condition{Field: "total_due", Operator: OperatorGreaterThan, Value: 500000}, true},
		{"gt numeric false", Condition{Field: "total_due", Operator: OperatorGreaterThan, Value: 750000}, false},
		{"gte boundary", Condition{Field: "total_due", Operator: OperatorGreaterOrEq, Value: 750000}, true},
		{"lt numeric", Condition{Field: "penalty", Operator: OperatorLessThan, Value: 1}, true},
		{"lte boundary", Condition{Field: "penalty", Operator: OperatorLessOrEq, Value: 0}, true},
		{"gt numeric string value", Condition{Field: "total_due", Operator: OperatorGreaterThan, Value: "500000"}, true},
		{"contains substring", Condition{Field: "tax_type", Operator: OperatorContains, Value: "gs"}, true},
		{"contains list element", Condition{Field: "tags", Operator: OperatorContains, Value: "VIP"}, true},
		{"contains list miss", Condition{Field: "tags", Operator: OperatorContains, Value: "monthly"}, false},
		{"in array", Condition{Field: "tax_type", Operator: OperatorIn, Value: []any{"gst", "paye"}}, true},
		{"in csv string", Condition{Field: "tax_type", Operator: OperatorIn, Value: "paye, gst"}, true},
		{"in miss", Condition{Field: "tax_type", Operator: OperatorIn, Value: []any{"corporate"}}, false},
		{"is_empty on empty string", Condition{Field: "notes", Operator: OperatorIsEmpty}, true},
		{"is_empty on missing field", Condition{Field: "missing", Operator: OperatorIsEmpty}, true},
		{"is_empty on populated field", Condition{Field: "tax_type", Operator: OperatorIsEmpty}, false},
		{"is_not_empty nested", Condition{Field: "client.tin", Operator: OperatorIsNotEmpty}, true},
		{"gt on missing field is false", Condition{Field: "missing", Operator: OperatorGreaterThan, Value: 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EvaluateCondition(tc.cond, payload))
		})
	}
}

func TestEvaluateGroup(t *testing.T) {
	payload := map[string]any{"tax_type": "gst", "total_due": 750000.0}

	t.Run("empty group matches everything", func(t *testing.T) {
		assert.True(t, EvaluateGroup(ConditionGroup{}, payload))
		assert.True(t, EvaluateGroup(ConditionGroup{}, nil))
	})

	t.Run("and requires all", func(t *testing.T) {
		group := ConditionGroup{
			Logic: GroupLogicAnd,
			Conditions: []Condition{
				{Field: "tax_type", Operator: OperatorEquals, Value: "gst"},
				{Field: "total_due", Operator: OperatorGreaterThan, Value: 1000000},
			},
		}
		assert.False(t, EvaluateGroup(group, payload))

		group.Conditions[1].Value = 500000
		assert.True(t, EvaluateGroup(group, payload))
	})

	t.Run("or requires any", func(t *testing.T) {
		group := ConditionGroup{
			Logic: GroupLogicOr,
			Conditions: []Condition{
				{Field: "tax_type", Operator: OperatorEquals, Value: "paye"},
				{Field: "total_due", Operator: OperatorGreaterThan, Value: 500000},
			},
		}
		assert.True(t, EvaluateGroup(group, payload))

		group.Conditions[1].Value = 1000000
		assert.False(t, EvaluateGroup(group, payload))
	})
}
