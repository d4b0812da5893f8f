package schema

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldType classifies a payload field for the rule builder
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeEnum    FieldType = "enum"
)

// FieldDescriptor describes one payload field of an entity's events
type FieldDescriptor struct {
	Name       string    // Human-readable label derived from the path
	Path       string    // Dotted JSON path, e.g. "amount_due" or "client.name"
	Type       FieldType
	EnumValues []string // Allowed values when Type is enum
	Filterable bool
	Sortable   bool
}

// EntityDescriptor describes the fields an entity's event payloads carry.
// Fields from all of the entity's event types are merged, so a descriptor
// may list fields that only some events populate.
type EntityDescriptor struct {
	EntityType string
	EventTypes []string
	Fields     []FieldDescriptor
}

// EntityDefinition registers one entity with the schema registry.
type EntityDefinition struct {
	EntityType string
	EventTypes []string
	Payloads   []any               // Event prototypes to reflect over
	Enums      map[string][]string // JSON path -> allowed values
}

// Registry derives field metadata from the registered domain event types at
// runtime, so the rule builder never drifts from what events actually carry.
// It is populated once during startup and read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*entityEntry
	byEvent  map[string]*entityEntry
}

type entityEntry struct {
	descriptor EntityDescriptor
	fields     map[string]FieldDescriptor
}

// NewRegistry creates an empty schema registry
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*entityEntry),
		byEvent:  make(map[string]*entityEntry),
	}
}

// Register adds an entity definition to the registry.
func (r *Registry) Register(def EntityDefinition) error {
	if strings.TrimSpace(def.EntityType) == "" {
		return shared.NewDomainError("INVALID_SCHEMA", "Entity type is required")
	}
	if len(def.Payloads) == 0 {
		return shared.NewDomainError("INVALID_SCHEMA", "At least one payload type is required for "+def.EntityType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[def.EntityType]; exists {
		return shared.NewDomainError("INVALID_SCHEMA", "Entity type already registered: "+def.EntityType)
	}

	fields := make(map[string]FieldDescriptor)
	for _, payload := range def.Payloads {
		t := reflect.TypeOf(payload)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			return shared.NewDomainError("INVALID_SCHEMA", "Payloads must be structs for "+def.EntityType)
		}
		reflectFields(t, "", fields)
	}

	for path, values := range def.Enums {
		field, ok := fields[path]
		if !ok {
			return shared.NewDomainError("INVALID_SCHEMA", "Enum declared for unknown field "+path+" on "+def.EntityType)
		}
		field.Type = FieldTypeEnum
		field.EnumValues = append([]string(nil), values...)
		fields[path] = field
	}

	entry := &entityEntry{
		descriptor: EntityDescriptor{
			EntityType: def.EntityType,
			EventTypes: append([]string(nil), def.EventTypes...),
			Fields:     sortedFields(fields),
		},
		fields: fields,
	}
	sort.Strings(entry.descriptor.EventTypes)

	r.entities[def.EntityType] = entry
	for _, eventType := range def.EventTypes {
		r.byEvent[eventType] = entry
	}
	return nil
}

// EntityTypes lists the registered entity types, sorted.
func (r *Registry) EntityTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.entities))
	for entityType := range r.entities {
		types = append(types, entityType)
	}
	sort.Strings(types)
	return types
}

// Describe returns the descriptor for an entity type.
func (r *Registry) Describe(entityType string) (EntityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entities[entityType]
	if !ok {
		return EntityDescriptor{}, false
	}
	return entry.descriptor, true
}

// DescribeByEvent returns the descriptor of the entity publishing an event type.
func (r *Registry) DescribeByEvent(eventType string) (EntityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byEvent[eventType]
	if !ok {
		return EntityDescriptor{}, false
	}
	return entry.descriptor, true
}

// KnownEventType reports whether any registered entity publishes the event type.
func (r *Registry) KnownEventType(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEvent[eventType]
	return ok
}

// KnownField reports whether the entity behind an event type carries a field.
// The lookup is entity-wide: a field present on any of the entity's events
// counts, since rules are usually written against the richest payload.
func (r *Registry) KnownField(eventType, fieldPath string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byEvent[eventType]
	if !ok {
		return false
	}
	_, ok = entry.fields[fieldPath]
	return ok
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// reflectFields walks a struct type and records a descriptor per JSON field.
// Embedded structs inline like encoding/json; named struct fields nest with
// a dotted path. First registration of a path wins when payloads overlap.
func reflectFields(t reflect.Type, prefix string, out map[string]FieldDescriptor) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldType := field.Type
		for fieldType.Kind() == reflect.Pointer {
			fieldType = fieldType.Elem()
		}

		if field.Anonymous && fieldType.Kind() == reflect.Struct && !isTerminalType(fieldType) {
			reflectFields(fieldType, prefix, out)
			continue
		}

		name, ok := jsonFieldName(field)
		if !ok {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if _, exists := out[path]; exists {
			continue
		}

		// uuid.UUID is a byte array, so terminal types must win over the
		// slice/array handling below.
		if isTerminalType(fieldType) {
			out[path] = newFieldDescriptor(path, terminalFieldType(fieldType), false)
			continue
		}

		isList := false
		if fieldType.Kind() == reflect.Slice || fieldType.Kind() == reflect.Array {
			elem := fieldType.Elem()
			if elem.Kind() == reflect.Uint8 {
				continue // []byte marshals to base64, useless for rules
			}
			for elem.Kind() == reflect.Pointer {
				elem = elem.Elem()
			}
			fieldType = elem
			isList = true
		}

		switch {
		case isTerminalType(fieldType):
			out[path] = newFieldDescriptor(path, terminalFieldType(fieldType), isList)
		case fieldType.Kind() == reflect.Struct:
			if isList {
				continue // lists of objects are beyond what conditions can address
			}
			reflectFields(fieldType, path, out)
		case fieldType.Kind() == reflect.Map, fieldType.Kind() == reflect.Interface, fieldType.Kind() == reflect.Chan, fieldType.Kind() == reflect.Func:
			continue
		default:
			out[path] = newFieldDescriptor(path, kindFieldType(fieldType.Kind()), isList)
		}
	}
}

func newFieldDescriptor(path string, fieldType FieldType, isList bool) FieldDescriptor {
	return FieldDescriptor{
		Name:       humanize(path),
		Path:       path,
		Type:       fieldType,
		Filterable: true,
		Sortable:   !isList,
	}
}

// isTerminalType reports whether a struct type maps to a scalar field
// instead of being walked into.
func isTerminalType(t reflect.Type) bool {
	return t == uuidType || t == timeType || t == decimalType
}

func terminalFieldType(t reflect.Type) FieldType {
	switch t {
	case timeType:
		return FieldTypeDate
	case decimalType:
		return FieldTypeNumber
	default:
		return FieldTypeString
	}
}

func kindFieldType(kind reflect.Kind) FieldType {
	switch kind {
	case reflect.Bool:
		return FieldTypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return FieldTypeNumber
	default:
		return FieldTypeString
	}
}

func jsonFieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		name = field.Name
	}
	return name, true
}

func sortedFields(fields map[string]FieldDescriptor) []FieldDescriptor {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	result := make([]FieldDescriptor, len(paths))
	for i, path := range paths {
		result[i] = fields[path]
	}
	return result
}

// humanize turns the last path segment into a label: "amount_due" -> "Amount due".
func humanize(path string) string {
	segment := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		segment = path[idx+1:]
	}
	segment = strings.ReplaceAll(segment, "_", " ")
	if segment == "" {
		return segment
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}
