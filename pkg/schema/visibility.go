package schema

import (
	"encoding/json"
	"reflect"
)

// IsActive reports whether the field is relevant under the sibling values.
// Inactive fields are skipped by required-ness checks and error reporting.
func IsActive(field FieldSchema, siblings map[string]any) bool {
	if field.DisplayOptions == nil {
		return true
	}
	for name, allowed := range field.DisplayOptions.Show {
		if !matchesAny(siblings[name], allowed) {
			return false
		}
	}
	for name, values := range field.DisplayOptions.Hide {
		if v, ok := siblings[name]; ok && matchesAny(v, values) {
			return false
		}
	}
	return true
}

// VisibleFields returns the fields active under config, in schema order.
// Sibling defaults are taken into account.
func VisibleFields(fields []FieldSchema, config map[string]any) []FieldSchema {
	effective := EffectiveConfig(fields, config)
	var out []FieldSchema
	for _, f := range fields {
		if IsActive(f, effective) {
			out = append(out, f)
		}
	}
	return out
}

// EffectiveConfig overlays config on the schema defaults. Keys unknown to the
// schema are kept. The input map is not modified.
func EffectiveConfig(fields []FieldSchema, config map[string]any) map[string]any {
	out := make(map[string]any, len(config)+len(fields))
	for _, f := range fields {
		if f.Default != nil {
			out[f.Name] = f.Default
		}
	}
	for k, v := range config {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// matchesAny reports whether value equals one of allowed. Array values match
// when any element does.
func matchesAny(value any, allowed []any) bool {
	if elems, ok := asSlice(value); ok {
		for _, e := range elems {
			if containsValue(allowed, e) {
				return true
			}
		}
		return false
	}
	return containsValue(allowed, value)
}

func containsValue(list []any, v any) bool {
	for _, candidate := range list {
		if sameValue(candidate, v) {
			return true
		}
	}
	return false
}

// sameValue compares JSON-like values, treating all numeric types by value.
func sameValue(a, b any) bool {
	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}
	if _, ok := numeric(b); ok {
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta.Comparable() && tb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// numeric converts Go and JSON number representations to float64.
// Strings are not numbers here.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}
