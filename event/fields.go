package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single key/value attribute attached to an event.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered set of attributes. Keys are unique; insertion
// order is preserved, which is the only ordering guarantee.
type Fields []Field

// Get returns the value for key and whether it is present.
func (f Fields) Get(key string) (string, bool) {
	for _, kv := range f {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends a new field when
// the key is absent. The position of an existing key is kept.
func (f Fields) Set(key, value string) Fields {
	for i, kv := range f {
		if kv.Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

// MarshalJSON writes the fields as a JSON object with keys in
// insertion order. Nil fields serialize as an empty object.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a string-keyed JSON object, keeping the key
// order of the document. Non-string values are rejected.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected object, got %v", tok)
	}

	out := make(Fields, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fields: invalid key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("fields: value for %q is not a string", key)
		}
		out = out.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}
