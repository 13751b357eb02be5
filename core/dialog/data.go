package dialog

// Data is the per-frame key/value scratch store. Values must survive a JSON
// round trip, so numeric accessors tolerate the float64 that encoding/json
// produces for numbers.
type Data map[string]any

// String returns the value for key as a string.
func (d Data) String(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64 returns the value for key as an int64.
func (d Data) Int64(key string) (int64, bool) {
	if d == nil {
		return 0, false
	}
	switch v := d[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// Int returns the value for key as an int. Missing or mistyped values report
// false so callers can fall back to an explicit default.
func (d Data) Int(key string) (int, bool) {
	v, ok := d.Int64(key)
	return int(v), ok
}

// IntOr returns the value for key as an int, or def when absent. Page
// counters rely on this so that the first render of a list state reads page 0
// without any prior initialization.
func (d Data) IntOr(key string, def int) int {
	if v, ok := d.Int(key); ok {
		return v
	}
	return def
}

// Bool returns the value for key as a bool.
func (d Data) Bool(key string) bool {
	if d == nil {
		return false
	}
	v, ok := d[key].(bool)
	return ok && v
}

// Strings returns the value for key as a string slice. A []any holding
// strings (the shape JSON decoding yields) is converted.
func (d Data) Strings(key string) []string {
	if d == nil {
		return nil
	}
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Clone returns a shallow copy of the map. Values are assumed to be
// plain JSON-compatible scalars and slices; slices are copied one level deep.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		switch s := v.(type) {
		case []string:
			out[k] = append([]string(nil), s...)
		case []any:
			out[k] = append([]any(nil), s...)
		default:
			out[k] = v
		}
	}
	return out
}
