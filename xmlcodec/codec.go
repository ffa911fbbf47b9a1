package xmlcodec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/birkland/premis"
	"github.com/birkland/premis/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Namespaces written on the root of an encoded record
const (
	Namespace    = "http://www.loc.gov/premis/v3"
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	Version      = "3.0"
)

const rootTag = "premis"

// Config encapsulates an XML codec configuration.
//
// Only Schema is mandatory.  Namer defaults to Unqualified.  When Namespace is
// set, EncodeRecord declares it (and the XML schema instance namespace) on
// the root element.  Records are decoded with one goroutine per entity type
// unless Sequential is set.  The codec serializes its own writes to Logger;
// an output shared with other goroutines should be wrapped in
// zerolog.SyncWriter.
type Config struct {
	Schema     *schema.Table
	Namer      Namer
	Namespace  string
	Logger     *zerolog.Logger
	Sequential bool
}

// Codec encodes and decodes PREMIS nodes as XML element trees.  A Codec is
// safe for concurrent use.
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
	if cfg.Namer == nil {
		cfg.Namer = Unqualified
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("codec", "xml").Logger()
	}

	return &Codec{cfg: cfg, log: log}, nil
}

// Encode converts a node to an element named after its kind
func (c *Codec) Encode(n *premis.Node) *Element {
	return c.encodeNode(n.Kind(), n)
}

func (c *Codec) encodeNode(tag string, n *premis.Node) *Element {
	el := &Element{Name: c.cfg.Namer.Name(tag)}

	k := n.Schema()
	d := k.Discriminant
	for _, f := range k.Fields {
		v := n.Get(f.Name)
		if v == nil {
			continue
		}
		if d != nil && d.Attr != "" && d.Field == f.Name {
			el.Attrs = append(el.Attrs, Attr{Name: d.Attr, Value: n.Text(f.Name)})
			continue
		}
		el.Children = append(el.Children, c.encodeValue(f.Name, v)...)
	}

	// Overrides go last, in the order they were written
	for _, name := range n.Fields() {
		if _, declared := k.Field(name); !declared {
			el.Children = append(el.Children, c.encodeValue(name, n.Get(name))...)
		}
	}

	return el
}

func (c *Codec) encodeValue(tag string, v premis.Value) []*Element {
	switch t := v.(type) {
	case premis.Leaf:
		return []*Element{{Name: c.cfg.Namer.Name(tag), Text: string(t)}}
	case *premis.Node:
		return []*Element{c.encodeNode(tag, t)}
	case *premis.Extension:
		return []*Element{{
			Name:     c.cfg.Namer.Name(tag),
			Children: encodeExtension(t),
		}}
	case premis.List:
		var els []*Element
		for _, item := range t {
			els = append(els, c.encodeValue(tag, item)...)
		}
		return els
	}
	return nil
}

// Decode converts an element to a node of the given kind.  The element name
// itself is not checked.
func (c *Codec) Decode(el *Element, kind string) (*premis.Node, error) {
	return c.decodeNode(el, kind, "/"+Local(el.Name))
}

func (c *Codec) decodeNode(el *Element, kind, path string) (*premis.Node, error) {
	n, err := premis.New(c.cfg.Schema, kind)
	if err != nil {
		return nil, premis.Malformed(path, err)
	}
	if strings.TrimSpace(el.Text) != "" {
		return nil, premis.Malformed(path, errors.Wrapf(premis.ErrSchemaViolation,
			"unexpected text in %s", kind))
	}

	children := make(map[string][]*Element, len(el.Children))
	for _, child := range el.Children {
		name := Local(child.Name)
		children[name] = append(children[name], child)
	}

	k := n.Schema()
	d := k.Discriminant
	for i := range k.Fields {
		f := &k.Fields[i]
		fpath := path + "/" + f.Name

		if d != nil && d.Attr != "" && d.Field == f.Name {
			if value, ok := el.Attribute(d.Attr); ok {
				if err = n.Assign(f.Name, premis.Leaf(value)); err != nil {
					return nil, premis.Malformed(fpath, err)
				}
			}
			if _, ok := children[f.Name]; ok {
				delete(children, f.Name)
				c.debug(c.log.Debug().Str("path", path).Str("element", f.Name),
					"skipping discriminant element, it is read from "+d.Attr)
			}
			continue
		}

		matches := children[f.Name]
		delete(children, f.Name)
		if len(matches) == 0 {
			continue
		}
		if !f.Repeatable() && len(matches) > 1 {
			return nil, premis.Malformed(fpath, &premis.FieldError{
				Kind:  kind,
				Field: f.Name,
				Msg:   fmt.Sprintf("singular field appears %d times", len(matches)),
				Err:   premis.ErrCardinality,
			})
		}

		values := make(premis.List, 0, len(matches))
		for j, m := range matches {
			vpath := fpath
			if f.Repeatable() {
				vpath = fmt.Sprintf("%s[%d]", fpath, j)
			}
			v, err := c.decodeValue(f, m, vpath)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}

		var v premis.Value = values
		if !f.Repeatable() {
			v = values[0]
		}
		if err = n.Assign(f.Name, v); err != nil {
			return nil, premis.Malformed(fpath, err)
		}
	}

	// Undeclared children are read back as overrides, in document order
	for _, child := range el.Children {
		name := Local(child.Name)
		matches, undeclared := children[name]
		if !undeclared {
			continue
		}
		delete(children, name)

		fpath := path + "/" + name
		v, err := decodeOverride(matches, fpath)
		if err != nil {
			return nil, err
		}
		if err = n.SetOverride(name, v); err != nil {
			return nil, premis.Malformed(fpath, err)
		}
		c.debug(c.log.Debug().Str("path", path).Str("element", name), "decoded undeclared element as override")
	}

	if err = n.Validate(); err != nil {
		return nil, premis.Malformed(path, err)
	}
	return n, nil
}

func (c *Codec) decodeValue(f *schema.Field, el *Element, path string) (premis.Value, error) {
	switch f.Shape {
	case schema.String:
		if len(el.Children) > 0 {
			return nil, premis.Malformed(path, errors.Wrapf(premis.ErrSchemaViolation,
				"text field %s has child elements", f.Name))
		}
		return premis.Leaf(el.Text), nil

	case schema.Extension:
		ext, err := decodeExtension(el)
		if err != nil {
			return nil, premis.Malformed(path, err)
		}
		return ext, nil
	}

	// One-of fields take the first kind that decodes
	var first error
	for _, kind := range f.Kinds {
		n, err := c.decodeNode(el, kind, path)
		if err == nil {
			return n, nil
		}
		if first == nil {
			first = err
		}
	}
	return nil, first
}

func encodeExtension(e *premis.Extension) []*Element {
	var els []*Element
	for _, key := range e.Keys() {
		for _, v := range e.Get(key) {
			switch t := v.(type) {
			case premis.Leaf:
				els = append(els, &Element{Name: key, Text: string(t)})
			case *premis.Extension:
				els = append(els, &Element{Name: key, Children: encodeExtension(t)})
			}
		}
	}
	return els
}

// decodeOverride reads the elements of an undeclared field.  Elements with
// children become extension subtrees, the rest text.
func decodeOverride(els []*Element, path string) (premis.Value, error) {
	values := make(premis.List, 0, len(els))
	for _, el := range els {
		var v premis.Value = premis.Leaf(el.Text)
		if len(el.Children) > 0 {
			ext, err := decodeExtension(el)
			if err != nil {
				return nil, premis.Malformed(path, err)
			}
			v = ext
		}
		values = append(values, v)
	}
	return values, nil
}

// debug writes a debug event.  Record decoding logs from several goroutines.
func (c *Codec) debug(e *zerolog.Event, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.Msg(msg)
}

// decodeExtension reads an element's children into an extension subtree.
// Children with children of their own become nested subtrees, the rest text.
func decodeExtension(el *Element) (*premis.Extension, error) {
	ext := premis.NewExtension(el.Name)
	for _, child := range el.Children {
		var v premis.ExtValue = premis.Leaf(child.Text)
		if len(child.Children) > 0 {
			sub, err := decodeExtension(child)
			if err != nil {
				return nil, err
			}
			v = sub
		}
		if err := ext.Add(child.Name, v); err != nil {
			return nil, err
		}
	}
	return ext, nil
}
