package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// StringMap is a loosely typed mapping written to the wire as a flat object of
// string values. Values are coerced with fmt.Sprint on encode and always come
// back as strings on decode, so non-string values lose their type.
type StringMap map[string]any

// MarshalJSON writes m as {"key":"value",...} with keys in sorted order.
func (m StringMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(stringify(m[k]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object. String values are kept as-is; numbers,
// booleans and null are kept as their literal JSON text. Nested objects and
// arrays are rejected.
func (m *StringMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("codec: string map: %w", err)
	}
	if raw == nil {
		*m = nil
		return nil
	}

	out := make(StringMap, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 {
			continue
		}
		switch v[0] {
		case '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("codec: string map key %q: %w", k, err)
			}
			out[k] = s
		case '{', '[':
			return fmt.Errorf("codec: string map key %q: nested values are not supported", k)
		default:
			out[k] = string(v)
		}
	}
	*m = out
	return nil
}

// Strings returns a copy of m with every value in its string form.
func (m StringMap) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
