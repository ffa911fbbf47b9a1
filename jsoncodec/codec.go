package jsoncodec

import (
	"fmt"
	"sync"

	"github.com/birkland/premis"
	"github.com/birkland/premis/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config encapsulates a JSON codec configuration.  Only Schema is mandatory.
// The codec serializes its own writes to Logger; an output shared with other
// goroutines should be wrapped in zerolog.SyncWriter.
type Config struct {
	Schema     *schema.Table
	Logger     *zerolog.Logger
	Sequential bool // decode record entity lists one at a time
}

// Codec encodes and decodes PREMIS nodes as JSON objects.  A Codec is safe
// for concurrent use.
type Codec struct {
	cfg Config
	log zerolog.Logger
	mu  sync.Mutex // guards writes to log
}

// New initializes a codec with the given configuration
func New(cfg Config) (*Codec, error) {
	if cfg.Schema == nil {
		return nil, fmt.Errorf("no schema table given (check codec config)")
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("codec", "json").Logger()
	}

	return &Codec{cfg: cfg, log: log}, nil
}

// Encode converts a node to an object
func (c *Codec) Encode(n *premis.Node) *Object {
	o := NewObject()

	k := n.Schema()
	for _, f := range k.Fields {
		if v := n.Get(f.Name); v != nil {
			o.Set(f.Name, c.encodeValue(v))
		}
	}

	for _, name := range n.Fields() {
		if _, declared := k.Field(name); !declared {
			o.Set(name, c.encodeValue(n.Get(name)))
		}
	}
	return o
}

func (c *Codec) encodeValue(v premis.Value) interface{} {
	switch t := v.(type) {
	case premis.Leaf:
		return string(t)
	case *premis.Node:
		return c.Encode(t)
	case *premis.Extension:
		return encodeExtension(t)
	case premis.List:
		arr := make([]interface{}, 0, len(t))
		for _, item := range t {
			arr = append(arr, c.encodeValue(item))
		}
		return arr
	}
	return nil
}

// Decode converts an object to a node of the given kind
func (c *Codec) Decode(o *Object, kind string) (*premis.Node, error) {
	return c.decodeNode(o, kind, "")
}

func (c *Codec) decodeNode(o *Object, kind, path string) (*premis.Node, error) {
	n, err := premis.New(c.cfg.Schema, kind)
	if err != nil {
		return nil, premis.Malformed(pathOrRoot(path), err)
	}

	k := n.Schema()
	for i := range k.Fields {
		f := &k.Fields[i]
		fpath := path + "/" + f.Name

		raw, ok := o.Get(f.Name)
		if !ok {
			continue
		}

		arr, isArray := raw.([]interface{})
		switch {
		case f.Repeatable() && !isArray:
			return nil, premis.Malformed(fpath, cardinality(kind, f.Name, "repeatable field is not an array"))
		case !f.Repeatable() && isArray:
			return nil, premis.Malformed(fpath, cardinality(kind, f.Name, "singular field is an array"))
		}

		var v premis.Value
		if f.Repeatable() {
			if len(arr) == 0 {
				continue
			}
			values := make(premis.List, 0, len(arr))
			for j, item := range arr {
				iv, err := c.decodeValue(f, item, fmt.Sprintf("%s/%d", fpath, j))
				if err != nil {
					return nil, err
				}
				values = append(values, iv)
			}
			v = values
		} else if v, err = c.decodeValue(f, raw, fpath); err != nil {
			return nil, err
		}

		if err = n.Assign(f.Name, v); err != nil {
			return nil, premis.Malformed(fpath, err)
		}
	}

	// Undeclared keys are read back as overrides
	for _, key := range o.Keys() {
		if _, declared := k.Field(key); declared {
			continue
		}
		kpath := path + "/" + key
		raw, _ := o.Get(key)
		v, err := decodeOverride(key, raw, kpath)
		if err != nil {
			return nil, err
		}
		if err = n.SetOverride(key, v); err != nil {
			return nil, premis.Malformed(kpath, err)
		}
		c.debug(c.log.Debug().Str("path", pathOrRoot(path)).Str("key", key), "decoded undeclared key as override")
	}

	if err = n.Validate(); err != nil {
		return nil, premis.Malformed(pathOrRoot(path), err)
	}
	return n, nil
}

func (c *Codec) decodeValue(f *schema.Field, raw interface{}, path string) (premis.Value, error) {
	switch f.Shape {
	case schema.String:
		s, ok := raw.(string)
		if !ok {
			return nil, premis.Malformed(path, errors.Wrapf(premis.ErrSchemaViolation,
				"%s must be a string, got %T", f.Name, raw))
		}
		return premis.Leaf(s), nil

	case schema.Extension:
		o, ok := raw.(*Object)
		if !ok {
			return nil, premis.Malformed(path, errors.Wrapf(premis.ErrSchemaViolation,
				"%s must be an object, got %T", f.Name, raw))
		}
		return decodeExtension(f.Name, o, path)
	}

	o, ok := raw.(*Object)
	if !ok {
		return nil, premis.Malformed(path, errors.Wrapf(premis.ErrSchemaViolation,
			"%s must be an object, got %T", f.Name, raw))
	}

	// One-of fields take the first kind that decodes
	var first error
	for _, kind := range f.Kinds {
		n, err := c.decodeNode(o, kind, path)
		if err == nil {
			return n, nil
		}
		if first == nil {
			first = err
		}
	}
	return nil, first
}

func encodeExtension(e *premis.Extension) *Object {
	o := NewObject()
	for _, key := range e.Keys() {
		vals := e.Get(key)
		if len(vals) == 1 {
			o.Set(key, extValue(vals[0]))
			continue
		}
		arr := make([]interface{}, len(vals))
		for i, v := range vals {
			arr[i] = extValue(v)
		}
		o.Set(key, arr)
	}
	return o
}

func extValue(v premis.ExtValue) interface{} {
	switch t := v.(type) {
	case premis.Leaf:
		return string(t)
	case *premis.Extension:
		return encodeExtension(t)
	}
	return nil
}

func decodeExtension(name string, o *Object, path string) (*premis.Extension, error) {
	ext := premis.NewExtension(name)
	for _, key := range o.Keys() {
		raw, _ := o.Get(key)
		kpath := path + "/" + key

		items, isArray := raw.([]interface{})
		if !isArray {
			items = []interface{}{raw}
		}
		for i, item := range items {
			ipath := kpath
			if isArray {
				ipath = fmt.Sprintf("%s/%d", kpath, i)
			}

			var v premis.ExtValue
			switch t := item.(type) {
			case string:
				v = premis.Leaf(t)
			case *Object:
				sub, err := decodeExtension(key, t, ipath)
				if err != nil {
					return nil, err
				}
				v = sub
			default:
				return nil, premis.Malformed(ipath, errors.Wrapf(premis.ErrSchemaViolation,
					"extension values must be strings or objects, got %T", item))
			}

			if err := ext.Add(key, v); err != nil {
				return nil, premis.Malformed(ipath, err)
			}
		}
	}
	return ext, nil
}

// decodeOverride reads the value of an undeclared key: a string, an object
// read as an extension subtree, or an array of those.
func decodeOverride(key string, raw interface{}, path string) (premis.Value, error) {
	items, isArray := raw.([]interface{})
	if !isArray {
		items = []interface{}{raw}
	}

	values := make(premis.List, 0, len(items))
	for i, item := range items {
		ipath := path
		if isArray {
			ipath = fmt.Sprintf("%s/%d", path, i)
		}
		switch t := item.(type) {
		case string:
			values = append(values, premis.Leaf(t))
		case *Object:
			ext, err := decodeExtension(key, t, ipath)
			if err != nil {
				return nil, err
			}
			values = append(values, ext)
		default:
			return nil, premis.Malformed(ipath, errors.Wrapf(premis.ErrSchemaViolation,
				"undeclared %s must hold strings or objects, got %T", key, item))
		}
	}
	return values, nil
}

// debug writes a debug event.  Record decoding logs from several goroutines.
func (c *Codec) debug(e *zerolog.Event, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.Msg(msg)
}

func cardinality(kind, field, msg string) error {
	return &premis.FieldError{Kind: kind, Field: field, Msg: msg, Err: premis.ErrCardinality}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
