package jsoncodec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Object is a JSON object that remembers the order of its keys.  Values are
// string, *Object or []interface{}; documents read by Parse may also hold
// json.Number, bool and nil.
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{values: make(map[string]interface{})}
}

// Set stores a value under key.  A new key goes last; an existing key keeps
// its position.
func (o *Object) Set(key string, v interface{}) {
	if _, present := o.values[key]; !present {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value under key
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys lists the keys of the object in order
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the object with its keys in order
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case *Object:
		buf.WriteByte('{')
		for i, key := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err = writeValue(buf, t.values[key]); err != nil {
				return errors.Wrapf(err, "could not encode %s", key)
			}
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

// Serialize writes the object as indented JSON
func (o *Object) Serialize(w io.Writer) error {
	raw, err := o.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "could not encode json")
	}

	var buf bytes.Buffer
	if err = json.Indent(&buf, raw, "", "  "); err != nil {
		return errors.Wrap(err, "could not indent json")
	}
	buf.WriteByte('\n')

	_, err = buf.WriteTo(w)
	return err
}

// Parse reads a JSON document whose top level value is an object.  Key order
// is preserved.  Duplicate keys are rejected rather than silently collapsed.
func Parse(r io.Reader) (*Object, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "could not decode json")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("could not decode json: top level value is not an object")
	}

	o, err := parseObject(dec)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode json")
	}

	if _, err = dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("could not decode json: trailing data after document")
	}
	return o, nil
}

func parseObject(dec *json.Decoder) (*Object, error) {
	o := NewObject()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return o, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		if _, dup := o.values[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}

		v, err := parseValue(dec)
		if err != nil {
			return nil, errors.Wrapf(err, "in %s", key)
		}
		o.Set(key, v)
	}
}

func parseValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
		return nil, fmt.Errorf("unexpected %v", t)
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	}
	return tok, nil
}

func parseArray(dec *json.Decoder) ([]interface{}, error) {
	arr := []interface{}{}
	for dec.More() {
		v, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != ']' {
		return nil, fmt.Errorf("expected end of array, got %v", tok)
	}
	return arr, nil
}
