package codec

import (
	"bytes"
	"encoding/json"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Field is one key/value pair of an encoded wire object.
type Field struct {
	Key   string
	Value any
}

// Object is an encoded wire object. Keys keep binding order in both JSON and
// YAML output. Values are nil, string, bool, int64, Object or []any.
type Object []Field

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (o Object) Keys() []string {
	out := make([]string, 0, len(o))
	for _, f := range o {
		out = append(out, f.Key)
	}
	return out
}

// MarshalJSON writes the fields in order. A string that is not valid UTF-8
// fails with a *MalformedFieldError rather than being rewritten to U+FFFD.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := checkUTF8(f.Key, f.Value); err != nil {
			return nil, err
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o Object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range o {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		value := &yaml.Node{}
		if err := value.Encode(f.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// checkUTF8 covers the values an Object holds directly. Nested Objects are
// checked by their own MarshalJSON.
func checkUTF8(path string, value any) error {
	switch v := value.(type) {
	case string:
		if !utf8.ValidString(v) {
			return &MalformedFieldError{Key: path, Expected: typeText, Raw: excerpt([]byte(strconv.Quote(v))), Err: errInvalidUTF8}
		}
	case []any:
		for i, item := range v {
			if err := checkUTF8(indexPath(path, i), item); err != nil {
				return err
			}
		}
	}
	return nil
}
