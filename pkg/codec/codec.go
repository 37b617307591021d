// Package codec holds the wire encoding used by the impaktor client and the
// value codecs for types JSON has no native representation for: local
// date-times, dates, times of day and loosely typed string maps.
package codec

import (
	"bytes"
	"encoding/json"
)

// Codec encodes request bodies and decodes response bodies.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default Codec. Unknown fields are ignored, missing fields keep
// their zero value and zero-valued fields are still written.
type JSON struct{}

// Marshal encodes v without HTML escaping.
func (JSON) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes data into v.
func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
