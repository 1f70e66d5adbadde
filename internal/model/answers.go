package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerMap is a string-keyed answer container that remembers the key order
// of the JSON object it was decoded from. Go maps drop insertion order, but
// draft metadata ("last question answered") is defined by the order keys
// appear in the client payload, so the order is captured at decode time.
type AnswerMap struct {
	Order  []string
	Values map[string]any
}

// Set inserts or replaces a value, appending new keys to the order.
func (m *AnswerMap) Set(key string, value any) {
	if m.Values == nil {
		m.Values = make(map[string]any)
	}
	if _, ok := m.Values[key]; !ok {
		m.Order = append(m.Order, key)
	}
	m.Values[key] = value
}

// Keys returns the answer keys in payload order when known, falling back to
// map iteration for programmatically built maps with an incomplete order.
func (m AnswerMap) Keys() []string {
	if len(m.Order) == len(m.Values) {
		return m.Order
	}
	keys := make([]string, 0, len(m.Values))
	for k := range m.Values {
		keys = append(keys, k)
	}
	return keys
}

func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		m.Order, m.Values = nil, nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("answers must be a JSON object")
	}

	m.Order = nil
	m.Values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("answers must be keyed by strings")
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if _, dup := m.Values[key]; !dup {
			m.Order = append(m.Order, key)
		}
		m.Values[key] = value
	}

	_, err = dec.Token()
	return err
}

func (m AnswerMap) MarshalJSON() ([]byte, error) {
	if m.Values == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.Values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
