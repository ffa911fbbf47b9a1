package xmlcodec

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Element is a node of an XML element tree.  Text holds the character data
// directly inside the element.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string
}

// Attr is an XML attribute
type Attr struct {
	Name  string
	Value string
}

// Local strips any namespace prefix from a qualified name
func Local(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Attribute returns the value of the named attribute.  An exact match is
// preferred; otherwise an attribute with the same local name is used.
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	for _, a := range e.Attrs {
		if Local(a.Name) == Local(name) && !strings.HasPrefix(a.Name, "xmlns") {
			return a.Value, true
		}
	}
	return "", false
}

// Parse reads a single XML document into an element tree.  Element and
// attribute names are kept as written, prefixes included.  Comments,
// processing instructions and directives are dropped.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "could not decode xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: qname(t.Name)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: qname(a.Name), Value: a.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("more than one root element (%s, %s)", root.Name, el.Name)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != qname(t.Name) {
				return nil, fmt.Errorf("unexpected end element %s", qname(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			} else if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("character data outside of the root element")
			}
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("unexpected end of document inside %s", stack[len(stack)-1].Name)
	}
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Serialize writes the element tree as an indented XML document
func (e *Element) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	ew.str(xml.Header)
	e.write(ew, 0)
	ew.str("\n")

	if ew.err != nil {
		return errors.Wrap(ew.err, "could not write xml")
	}
	return errors.Wrap(bw.Flush(), "could not write xml")
}

func (e *Element) write(w *errWriter, depth int) {
	indent := strings.Repeat("  ", depth)

	w.str(indent + "<" + e.Name)
	for _, a := range e.Attrs {
		w.str(" " + a.Name + `="`)
		w.escape(a.Value)
		w.str(`"`)
	}

	switch {
	case len(e.Children) > 0:
		w.str(">\n")
		for _, c := range e.Children {
			c.write(w, depth+1)
			w.str("\n")
		}
		w.str(indent + "</" + e.Name + ">")
	case e.Text != "":
		w.str(">")
		w.escape(e.Text)
		w.str("</" + e.Name + ">")
	default:
		w.str("/>")
	}
}

// errWriter remembers the first write error, so that serialization code need
// not check every write.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) str(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *errWriter) escape(s string) {
	if w.err == nil {
		w.err = xml.EscapeText(w.w, []byte(s))
	}
}
