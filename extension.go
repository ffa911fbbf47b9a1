package premis

import (
	"fmt"

	"github.com/pkg/errors"
)

// Extension is a free-form subtree attached at a schema extension point,
// e.g. the MIX metadata of an image under objectCharacteristicsExtension.
// Keys are arbitrary tag names; each key holds one or more values that are
// either text or further subtrees.  Nothing about an extension is checked
// against the schema, but a subtree must have at least one key before it can
// be attached anywhere.
type Extension struct {
	name    string
	keys    []string
	entries map[string][]ExtValue
	owned   bool
}

// NewExtension creates an empty extension subtree
func NewExtension(name string) *Extension {
	return &Extension{
		name:    name,
		entries: make(map[string][]ExtValue),
	}
}

// Name returns the name the subtree was created with.  Decoded subtrees are
// named after the tag or key they were read from.
func (e *Extension) Name() string {
	return e.name
}

// Keys lists the keys of the subtree, in the order they were first written
func (e *Extension) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Len returns the number of keys
func (e *Extension) Len() int {
	return len(e.keys)
}

// Get returns the values under a key, or nil
func (e *Extension) Get(key string) []ExtValue {
	return append([]ExtValue(nil), e.entries[key]...)
}

// Text returns the first value under key if it is text, or "".
func (e *Extension) Text(key string) string {
	if vals := e.entries[key]; len(vals) > 0 {
		if l, ok := vals[0].(Leaf); ok {
			return string(l)
		}
	}
	return ""
}

// Sub returns the first value under key if it is a subtree, or nil.
func (e *Extension) Sub(key string) *Extension {
	if vals := e.entries[key]; len(vals) > 0 {
		sub, _ := vals[0].(*Extension)
		return sub
	}
	return nil
}

// Set replaces whatever is under key with v
func (e *Extension) Set(key string, v ExtValue) error {
	prev := e.entries[key]
	for _, p := range prev {
		release(p)
	}
	if err := e.attach(key, v); err != nil {
		for _, p := range prev {
			_ = claim(p)
		}
		return err
	}
	if _, present := e.entries[key]; !present {
		e.keys = append(e.keys, key)
	}
	e.entries[key] = []ExtValue{v}
	return nil
}

// Add appends v to the values under key
func (e *Extension) Add(key string, v ExtValue) error {
	if err := e.attach(key, v); err != nil {
		return err
	}
	if _, present := e.entries[key]; !present {
		e.keys = append(e.keys, key)
	}
	e.entries[key] = append(e.entries[key], v)
	return nil
}

func (e *Extension) attach(key string, v ExtValue) error {
	if key == "" {
		return fmt.Errorf("extension %s: empty key", e.name)
	}
	if isNil(v) {
		return fmt.Errorf("extension %s: nil value under %s", e.name, key)
	}
	if sub, ok := v.(*Extension); ok && sub.Len() == 0 {
		return errors.Wrapf(ErrCardinality, "extension %s: empty subtree under %s", e.name, key)
	}
	if reaches(v, e) {
		return errors.Wrapf(ErrShared, "extension %s: %s contains its own parent", e.name, key)
	}
	if err := claim(v); err != nil {
		return errors.Wrapf(err, "extension %s: %s", e.name, key)
	}
	return nil
}
