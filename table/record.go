package table

import (
	"maps"
	"reflect"
	"time"
)

// Empty is the value given to fields with no cell in the sheet and to fields
// omitted from an added record.
const Empty = ""

// Record maps field names to cell values.
type Record map[string]any

// Clone returns a copy of the record. Cell values are scalars so a shallow
// copy is independent of the original.
func (r Record) Clone() Record {
	return maps.Clone(r)
}

// Query maps field names to a value or to a set of values. A slice or array
// value is a set: the field must equal one of its members.
type Query map[string]any

// isEmptyValue reports whether v is missing for lookup purposes.
func isEmptyValue(v any) bool {
	return v == nil || v == Empty
}

// valuesEqual is strict equality: same dynamic type and same value. time.Time
// compares with Equal so monotonic readings and locations do not matter.
func valuesEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// setMembers returns the members of v when v is a slice or an array.
func setMembers(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}
