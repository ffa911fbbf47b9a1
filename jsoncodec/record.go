package jsoncodec

import (
	"fmt"

	"github.com/birkland/premis"
)

// EncodeRecord converts a record to an object with one array per non-empty
// entity list.
func (c *Codec) EncodeRecord(r *premis.Record) *Object {
	o := NewObject()
	for _, t := range premis.EntityTypes {
		nodes := r.Entities(t)
		if len(nodes) == 0 {
			continue
		}
		arr := make([]interface{}, len(nodes))
		for i, n := range nodes {
			arr[i] = c.Encode(n)
		}
		o.Set(t.String(), arr)
	}
	return o
}

// DecodeRecord converts an object to a record
func (c *Codec) DecodeRecord(o *Object) (*premis.Record, error) {
	for _, key := range o.Keys() {
		if premis.ParseEntityType(key) == premis.Unknown {
			c.debug(c.log.Debug().Str("key", key), "skipping non-entity key")
		}
	}

	r, err := premis.Collect(c.cfg.Sequential, func(t premis.EntityType) ([]*premis.Node, error) {
		raw, ok := o.Get(t.String())
		if !ok {
			return nil, nil
		}

		path := "/" + t.String()
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, premis.Malformed(path, fmt.Errorf("%s must be an array, got %T", t, raw))
		}

		var nodes []*premis.Node
		for i, item := range arr {
			ipath := fmt.Sprintf("%s/%d", path, i)
			obj, ok := item.(*Object)
			if !ok {
				return nil, premis.Malformed(ipath, fmt.Errorf("%s must be an object, got %T", t, item))
			}
			n, err := c.decodeNode(obj, t.String(), ipath)
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

	c.debug(c.log.Debug().Int("entities", r.Len()), "decoded record")
	return r, nil
}
