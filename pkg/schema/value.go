package schema

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Mapping is a generic parsed configuration mapping as produced by the
// YAML decoder. All declaration views in this package are read-only
// windows over Mapping values.
type Mapping = map[string]any

// Sequence is a generic parsed configuration sequence.
type Sequence = []any

// nameRe is the POSIX identifier shape required of parameter names.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether s is a valid parameter name.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

// AsString converts a scalar value to its string form. Mappings,
// sequences and nil are not string-convertible.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.(type) {
	case Mapping, Sequence, map[any]any:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// AsBool converts a boolean-convertible value (true, "true", 1, ...)
// to a bool.
func AsBool(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// IsBoolean reports whether v is an actual boolean value, as opposed to
// something merely boolean-convertible like the string "true".
func IsBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

// IsSequence reports whether v is a sequence.
func IsSequence(v any) bool {
	_, ok := v.(Sequence)
	return ok
}

// IsMapping reports whether v is a mapping.
func IsMapping(v any) bool {
	_, ok := v.(Mapping)
	return ok
}

// AsStringSlice converts a sequence of string-convertible items. The
// conversion is total: any non-convertible item fails the whole slice.
func AsStringSlice(v any) ([]string, bool) {
	seq, ok := v.(Sequence)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		s, ok := AsString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// IsBlank reports whether s is empty or whitespace-only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TypeName names the dynamic type of a raw value for diagnostics.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int64, uint64:
		return "integer"
	case float32, float64:
		return "float"
	case Sequence:
		return "sequence"
	case Mapping, map[any]any:
		return "mapping"
	default:
		return "unknown"
	}
}
