package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// EvaluateGroup evaluates a condition group against an event payload.
// An empty group matches everything; a group with conditions combines the
// per-condition results with the group's and/or logic.
func EvaluateGroup(group ConditionGroup, payload map[string]any) bool {
	if len(group.Conditions) == 0 {
		return true
	}

	switch group.Logic {
	case GroupLogicOr:
		for _, c := range group.Conditions {
			if EvaluateCondition(c, payload) {
				return true
			}
		}
		return false
	default: // and
		for _, c := range group.Conditions {
			if !EvaluateCondition(c, payload) {
				return false
			}
		}
		return true
	}
}

// EvaluateCondition evaluates one condition against an event payload.
func EvaluateCondition(c Condition, payload map[string]any) bool {
	fieldValue, found := LookupField(payload, c.Field)

	switch c.Operator {
	case OperatorIsEmpty:
		return !found || isEmptyValue(fieldValue)
	case OperatorIsNotEmpty:
		return found && !isEmptyValue(fieldValue)
	case OperatorEquals:
		return found && compareEqual(fieldValue, c.Value)
	case OperatorNotEquals:
		return !found || !compareEqual(fieldValue, c.Value)
	case OperatorGreaterThan:
		cmp, ok := compareOrder(fieldValue, c.Value)
		return found && ok && cmp > 0
	case OperatorGreaterOrEq:
		cmp, ok := compareOrder(fieldValue, c.Value)
		return found && ok && cmp >= 0
	case OperatorLessThan:
		cmp, ok := compareOrder(fieldValue, c.Value)
		return found && ok && cmp < 0
	case OperatorLessOrEq:
		cmp, ok := compareOrder(fieldValue, c.Value)
		return found && ok && cmp <= 0
	case OperatorContains:
		return found && operatorContains(fieldValue, c.Value)
	case OperatorIn:
		return found && operatorIn(fieldValue, c.Value)
	default:
		return false
	}
}

// LookupField resolves a dot-separated path in a JSON-like payload,
// e.g. "client.tin" in {"client": {"tin": "123456789"}}.
func LookupField(payload map[string]any, path string) (any, bool) {
	if payload == nil || path == "" {
		return nil, false
	}

	parts := strings.Split(path, ".")
	var current any = payload
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// compareEqual compares two values as numbers when both convert, otherwise
// as case-insensitive strings.
func compareEqual(a, b any) bool {
	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			return af == bf
		}
	}
	return strings.EqualFold(toString(a), toString(b))
}

// compareOrder returns -1/0/1 ordering a against b. Numeric comparison is
// tried first; otherwise both sides compare as strings. The second return
// is false when no ordering could be established.
func compareOrder(a, b any) (int, bool) {
	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}

	as, bs := toString(a), toString(b)
	if as == "" && bs == "" {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

// operatorContains checks substring membership for strings and element
// membership for list fields. Case-insensitive.
func operatorContains(fieldValue, condValue any) bool {
	needle := strings.ToLower(toString(condValue))
	if needle == "" {
		return false
	}

	if list, ok := fieldValue.([]any); ok {
		for _, item := range list {
			if strings.ToLower(toString(item)) == needle {
				return true
			}
		}
		return false
	}

	return strings.Contains(strings.ToLower(toString(fieldValue)), needle)
}

// operatorIn checks whether the field value equals any element of the
// condition value, which may be a JSON array or a comma-separated string.
func operatorIn(fieldValue, condValue any) bool {
	fieldStr := strings.ToLower(toString(fieldValue))

	switch values := condValue.(type) {
	case []any:
		for _, v := range values {
			if strings.ToLower(toString(v)) == fieldStr {
				return true
			}
		}
	case []string:
		for _, v := range values {
			if strings.ToLower(v) == fieldStr {
				return true
			}
		}
	case string:
		for _, v := range strings.Split(values, ",") {
			if strings.ToLower(strings.TrimSpace(v)) == fieldStr {
				return true
			}
		}
	}
	return false
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

// toString converts any value to a string representation
func toString(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toFloat64 attempts to convert any value to float64
func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
