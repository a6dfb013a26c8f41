package reflection

import (
	"bytes"
	"encoding/json"
)

// Data is the output of serializing a data object: field keys mapped to
// values, kept in the order the fields were produced.
type Data struct {
	keys   []string
	values map[string]any
}

// NewData returns an empty Data.
func NewData() *Data {
	return &Data{values: make(map[string]any)}
}

// Set stores a value. A new key is appended; an existing key keeps its
// position.
func (d *Data) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Data) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Data) Keys() []string {
	return append([]string(nil), d.keys...)
}

func (d *Data) Len() int { return len(d.keys) }

// ToMap converts d and every nested Data into plain maps.
func (d *Data) ToMap() map[string]any {
	m := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		m[k] = plain(d.values[k])
	}
	return m
}

func plain(v any) any {
	switch v := v.(type) {
	case *Data:
		return v.ToMap()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plain(e)
		}
		return out
	}
	return v
}

// MarshalJSON encodes d as a JSON object with keys in insertion order.
// HTML characters are written as is.
func (d *Data) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(d.values[k]); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
