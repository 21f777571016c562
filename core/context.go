package core

import (
	"encoding/json"
	"strings"
)

// Context is an ordered string-to-string mapping that is merged into a task's
// effective prompt. Keys keep their first insertion position; setting an
// existing key overwrites the value in place. Rendering into prompt text is a
// pure function of the entries, so prompt assembly stays testable without any
// backend involved.
//
// A nil *Context behaves like an empty one for all read operations.
type Context struct {
	keys   []string
	values map[string]string
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Set stores value under key, preserving the key's original position if it
// already exists. It returns the Context to allow chained construction.
func (c *Context) Set(key, value string) *Context {
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
	return c
}

// Get returns the value for key and whether it is present.
func (c *Context) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of entries.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns a copy of the keys in insertion order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Clone returns an independent copy. Cloning nil yields nil.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	clone := NewContext()
	for _, k := range c.keys {
		clone.Set(k, c.values[k])
	}
	return clone
}

// Render produces one "key: value" line per entry in insertion order,
// joined with newlines. An empty or nil Context renders as "".
func (c *Context) Render() string {
	if c.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(c.values[k])
	}
	return sb.String()
}

// MarshalJSON encodes the context as a JSON object. Insertion order is kept
// in the emitted byte stream.
func (c *Context) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, err
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// UnmarshalJSON decodes a JSON object into the context. Go maps do not keep
// declaration order, so decoded keys are inserted in the order they appear in
// the JSON document.
func (c *Context) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return &ValidationError{Reason: "context must be a JSON object"}
	}
	c.keys = nil
	c.values = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		c.Set(key, value)
	}
	_, err = dec.Token() // consume closing brace
	return err
}
