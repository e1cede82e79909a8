// Package records defines the flat key/value record type passed between
// pipeline stages, plus helpers for flattening nested API payloads into
// dotted-path keys (e.g. "owner.names", "listingAgent.phone").
package records

import (
	"fmt"
	"strconv"
)

// Record is one flat row of source data. Values are raw decoded JSON types
// (string, float64, bool, []any, nil) until a transformer coerces them.
type Record map[string]any

// Flatten converts a decoded JSON object into a Record with dotted-path keys
// for nested objects. Arrays are kept as-is under their path; scalar values
// pass through unchanged.
func Flatten(obj map[string]any) Record {
	out := make(Record, len(obj))
	flattenInto(out, "", obj)
	return out
}

func flattenInto(dst Record, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if m, ok := v.(map[string]any); ok {
			flattenInto(dst, key, m)
			continue
		}
		dst[key] = v
	}
}

// String returns the value for key rendered as a string, or "" when the key
// is absent or nil. Non-string scalars are formatted via strconv/fmt.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Float returns the value for key as a float64 and whether the conversion
// succeeded. JSON numbers decode as float64; numeric strings are parsed.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Clone returns a shallow copy of the record. Stages that rewrite values in
// place clone first so their input batch stays untouched.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
