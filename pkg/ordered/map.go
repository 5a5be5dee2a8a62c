// Package ordered provides a string map that remembers insertion order.
// It backs element attributes and CSS declaration maps, both of which must
// serialize their keys in the order they were first seen.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered map of string keys to string values.
// The zero value is ready to use.
type Map struct {
	keys   []string
	values map[string]string
}

// New creates an empty Map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// Set stores value under key. Re-setting an existing key replaces its value
// but keeps its original position.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (m *Map) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Merge copies every entry of other into m. Values from other win.
func (m *Map) Merge(other *Map) {
	other.Each(func(k, v string) {
		m.Set(k, v)
	})
}

// ToMap returns an unordered copy, mostly useful in tests and templates.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	m.Each(func(k, v string) {
		out[k] = v
	})
	return out
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, m.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ordered.Map: expected a JSON object, got %v", tok)
	}

	*m = Map{values: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		m.Set(keyTok.(string), value)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the map as a YAML mapping in insertion order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Each(func(k, v string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	})
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping the key order of the input.
func (m *Map) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return &yaml.TypeError{Errors: []string{"ordered.Map: expected a mapping"}}
	}
	*m = Map{values: make(map[string]string)}
	for i := 0; i+1 < len(value.Content); i += 2 {
		m.Set(value.Content[i].Value, value.Content[i+1].Value)
	}
	return nil
}

// writeJSONString writes s as a JSON string without HTML escaping; the
// enclosing encoder applies its own escaping policy when it compacts the output.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
