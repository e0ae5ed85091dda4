// Value normalization applied to cells at load time and to every value a
// caller hands in, so lookups compare like with like.

package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalization selects how cell values are converted before they are cached
// or compared.
//
//	value      → None      → Text          → Numeric
//	"42"       → "42"      → "42"          → 42.0
//	42 (int)   → 42        → "42"          → 42.0
//	42.0       → 42.0      → "42"          → 42.0
//	1.5        → 1.5       → "1.5"         → 1.5
//	true       → true      → "TRUE"        → true
//	time.Time  → time.Time → RFC 3339 text → time.Time
//	"abc"      → "abc"     → "abc"         → "abc"
type Normalization int

const (
	// NormalizeNone keeps values as the sheet returns them.
	NormalizeNone Normalization = iota
	// NormalizeText turns every value into its text form.
	NormalizeText
	// NormalizeNumeric turns numbers and numeric strings into float64.
	NormalizeNumeric
)

// ParseNormalization parses "none", "text" or "numeric". The empty string is
// NormalizeNone.
func ParseNormalization(s string) (Normalization, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return NormalizeNone, nil
	case "text":
		return NormalizeText, nil
	case "numeric":
		return NormalizeNumeric, nil
	default:
		return NormalizeNone, fmt.Errorf("unknown normalization %q", s)
	}
}

func (n Normalization) String() string {
	switch n {
	case NormalizeNone:
		return "none"
	case NormalizeText:
		return "text"
	case NormalizeNumeric:
		return "numeric"
	default:
		return "Normalization(" + strconv.Itoa(int(n)) + ")"
	}
}

// apply converts a single value. nil always becomes Empty.
func (n Normalization) apply(v any) any {
	if v == nil {
		return Empty
	}
	switch n {
	case NormalizeText:
		return toText(v)
	case NormalizeNumeric:
		return toNumeric(v)
	case NormalizeNone:
		return v
	default:
		return v
	}
}

// toText converts scalars to their text representation.
func toText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat drops the decimals of whole numbers.
func formatFloat(f float64, bits int) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// toNumeric converts numbers and numeric strings to float64. Anything else is
// returned unchanged.
func toNumeric(v any) any {
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case uint32:
		return float64(v)
	case string:
		if s := strings.TrimSpace(v); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return v
	default:
		return v
	}
}

// DuplicatePolicy selects what New does when the header repeats a name.
type DuplicatePolicy int

const (
	// DuplicateFirstWins resolves a repeated name to its first column. Later
	// columns with the same name receive the same value on writes.
	DuplicateFirstWins DuplicatePolicy = iota
	// DuplicateReject makes New fail with ErrDuplicateField.
	DuplicateReject
)

// ParseDuplicatePolicy parses "first" or "reject". The empty string is
// DuplicateFirstWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "first":
		return DuplicateFirstWins, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return DuplicateFirstWins, fmt.Errorf("unknown duplicate field policy %q", s)
	}
}
