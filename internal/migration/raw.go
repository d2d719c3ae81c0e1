package migration

import "encoding/json"

// Blobs are decoded JSON (or YAML) trees: maps, slices and scalars.
type object = map[string]any

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// missing reports whether key is absent or null.
func missing(o object, key string) bool {
	v, ok := o[key]
	return !ok || v == nil
}

func setDefault(o object, key string, v any) {
	if missing(o, key) {
		o[key] = deepCopy(v)
	}
}

func child(o object, key string) (object, bool) {
	c, ok := o[key].(map[string]any)
	return c, ok
}

// ensureObject makes o[key] an object, replacing null or non-object values.
func ensureObject(o object, key string) object {
	if c, ok := child(o, key); ok {
		return c
	}
	c := object{}
	o[key] = c
	return c
}

func list(o object, key string) ([]any, bool) {
	l, ok := o[key].([]any)
	return l, ok
}

func truthyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}
