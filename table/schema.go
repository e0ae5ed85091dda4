package table

import (
	"time"

	"github.com/invopop/jsonschema"
)

// Schema describes the records as a JSON Schema object with one property per
// field, in column order. A property's type comes from the first non-empty
// cached value of that field; fields with no such value are strings.
func (t *Table) Schema() *jsonschema.Schema {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := &jsonschema.Schema{
		Version:              jsonschema.Version,
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, f := range t.fields {
		s.Properties.Set(f, t.fieldSchema(f))
		s.Required = append(s.Required, f)
	}
	return s
}

func (t *Table) fieldSchema(field string) *jsonschema.Schema {
	for _, r := range t.records {
		v := r[field]
		if isEmptyValue(v) {
			continue
		}
		switch v.(type) {
		case bool:
			return &jsonschema.Schema{Type: "boolean"}
		case float64, float32, int, int64, int32, uint, uint64, uint32:
			return &jsonschema.Schema{Type: "number"}
		case time.Time:
			return &jsonschema.Schema{Type: "string", Format: "date-time"}
		default:
			return &jsonschema.Schema{Type: "string"}
		}
	}
	return &jsonschema.Schema{Type: "string"}
}
