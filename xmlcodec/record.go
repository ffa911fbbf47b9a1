package xmlcodec

import (
	"fmt"

	"github.com/birkland/premis"
)

// EncodeRecord converts a record to a premis root element holding every
// entity, objects first.
func (c *Codec) EncodeRecord(r *premis.Record) *Element {
	root := &Element{
		Name:  c.cfg.Namer.Name(rootTag),
		Attrs: []Attr{{Name: "version", Value: Version}},
	}
	if c.cfg.Namespace != "" {
		root.Attrs = append(root.Attrs,
			Attr{Name: xmlns(c.cfg.Namer), Value: c.cfg.Namespace},
			Attr{Name: "xmlns:xsi", Value: XSINamespace},
		)
	}

	for _, t := range premis.EntityTypes {
		for _, n := range r.Entities(t) {
			root.Children = append(root.Children, c.Encode(n))
		}
	}
	return root
}

// DecodeRecord converts a premis root element to a record.  Entities may
// appear in any order under the root; within each entity type, document order
// is kept.
func (c *Codec) DecodeRecord(root *Element) (*premis.Record, error) {
	if Local(root.Name) != rootTag {
		return nil, premis.Malformed("/", fmt.Errorf("expected a %s root element, got %s", rootTag, root.Name))
	}

	entities := make(map[string][]*Element)
	for _, child := range root.Children {
		name := Local(child.Name)
		if premis.ParseEntityType(name) == premis.Unknown {
			c.debug(c.log.Debug().Str("element", child.Name), "skipping non-entity element")
			continue
		}
		entities[name] = append(entities[name], child)
	}

	r, err := premis.Collect(c.cfg.Sequential, func(t premis.EntityType) ([]*premis.Node, error) {
		var nodes []*premis.Node
		for i, el := range entities[t.String()] {
			n, err := c.decodeNode(el, t.String(), fmt.Sprintf("/%s/%s[%d]", rootTag, t, i))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		return nodes, nil
	})
	if err != nil {
		return nil, err
	}

	c.debug(c.log.Debug().
		Int("objects", len(r.Objects())).
		Int("events", len(r.Events())).
		Int("agents", len(r.Agents())).
		Int("rights", len(r.Rights())), "decoded record")
	return r, nil
}
