package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

// Cardinality says whether a field is required, and whether it repeats.
type Cardinality int

// Field cardinalities
const (
	RequiredOne Cardinality = iota
	OptionalOne
	OptionalMany
	RequiredMany
)

func (c Cardinality) String() string {
	switch c {
	case RequiredOne:
		return "1"
	case OptionalOne:
		return "0..1"
	case OptionalMany:
		return "0..n"
	case RequiredMany:
		return "1..n"
	}
	return fmt.Sprintf("Cardinality(%d)", int(c))
}

// Shape names the kind of value a field holds
type Shape int

// Value shapes
const (
	String Shape = iota
	Nodes
	Extension
)

func (s Shape) String() string {
	switch s {
	case String:
		return "string"
	case Nodes:
		return "node"
	case Extension:
		return "extension"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Field is a single entry in a kind's ordered field list.
type Field struct {
	Name        string
	Cardinality Cardinality
	Shape       Shape
	Kinds       []string // candidate node kinds, in preference order, when Shape is Nodes
}

// Repeatable is true when the field holds a list of values
func (f *Field) Repeatable() bool {
	return f.Cardinality == OptionalMany || f.Cardinality == RequiredMany
}

// Required is true when at least one value must be present
func (f *Field) Required() bool {
	return f.Cardinality == RequiredOne || f.Cardinality == RequiredMany
}

// Accepts reports whether a node of the given kind may be stored in the field.
func (f *Field) Accepts(kind string) bool {
	if f.Shape != Nodes {
		return false
	}
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Rule requires that at least one of the named fields be present.
type Rule struct {
	Name  string
	AnyOf []string
}

// Discriminant is a field whose value decides which other fields of the same
// node are applicable.
type Discriminant struct {
	Field        string
	Attr         string              // XML attribute carrying the value
	Values       []string            // allowed values
	Inapplicable map[string][]string // value -> fields not allowed under it
}

// Allowed reports whether value is one of the discriminant's values
func (d *Discriminant) Allowed(value string) bool {
	for _, v := range d.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Applicable reports whether field may be set when the discriminant holds value.
func (d *Discriminant) Applicable(value, field string) bool {
	for _, f := range d.Inapplicable[value] {
		if f == field {
			return false
		}
	}
	return true
}

// Kind describes one node kind: its fields in document order, plus any
// cross-field rules.
type Kind struct {
	Name         string
	Fields       []Field
	Rules        []Rule
	Discriminant *Discriminant

	index map[string]int
}

// Field looks up a declared field by name
func (k *Kind) Field(name string) (*Field, bool) {
	i, ok := k.index[name]
	if !ok {
		return nil, false
	}
	return &k.Fields[i], true
}

// Table is a read-only collection of kinds.
type Table struct {
	kinds map[string]*Kind
	names []string
}

// Kind looks up a kind by name
func (t *Table) Kind(name string) (*Kind, bool) {
	k, ok := t.kinds[name]
	return k, ok
}

// Names lists the kinds of the table in declaration order
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// New builds a table from the given kinds, verifying that it is internally
// consistent: kind and field names are unique, every nested kind is defined,
// and rules and discriminants only name declared fields.
func New(kinds ...Kind) (*Table, error) {
	t := &Table{
		kinds: make(map[string]*Kind, len(kinds)),
	}

	for i := range kinds {
		k := kinds[i]
		if k.Name == "" {
			return nil, fmt.Errorf("kind %d has no name", i)
		}
		if _, dup := t.kinds[k.Name]; dup {
			return nil, fmt.Errorf("duplicate kind %s", k.Name)
		}

		k.Fields = append([]Field(nil), k.Fields...)
		k.index = make(map[string]int, len(k.Fields))
		for j, f := range k.Fields {
			if _, dup := k.index[f.Name]; dup {
				return nil, fmt.Errorf("duplicate field %s in %s", f.Name, k.Name)
			}
			if f.Shape == Nodes && len(f.Kinds) == 0 {
				k.Fields[j].Kinds = []string{f.Name}
			}
			k.index[f.Name] = j
		}

		t.kinds[k.Name] = &k
		t.names = append(t.names, k.Name)
	}

	for _, name := range t.names {
		if err := t.check(t.kinds[name]); err != nil {
			return nil, errors.Wrapf(err, "invalid kind %s", name)
		}
	}

	return t, nil
}

// MustNew is like New, but panics on an inconsistent table.  It is meant for
// package level schema data.
func MustNew(kinds ...Kind) *Table {
	t, err := New(kinds...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) check(k *Kind) error {
	for _, f := range k.Fields {
		for _, ref := range f.Kinds {
			if _, ok := t.kinds[ref]; !ok {
				return fmt.Errorf("field %s references undefined kind %s", f.Name, ref)
			}
		}
	}

	for _, r := range k.Rules {
		if len(r.AnyOf) == 0 {
			return fmt.Errorf("rule %s names no fields", r.Name)
		}
		for _, name := range r.AnyOf {
			if _, ok := k.Field(name); !ok {
				return fmt.Errorf("rule %s names undeclared field %s", r.Name, name)
			}
		}
	}

	d := k.Discriminant
	if d == nil {
		return nil
	}

	f, ok := k.Field(d.Field)
	if !ok {
		return fmt.Errorf("discriminant %s is not declared", d.Field)
	}
	if f.Shape != String || f.Repeatable() {
		return fmt.Errorf("discriminant %s must be a singular string", d.Field)
	}
	for value, fields := range d.Inapplicable {
		if !d.Allowed(value) {
			return fmt.Errorf("discriminant %s has no value %q", d.Field, value)
		}
		for _, name := range fields {
			if _, ok := k.Field(name); !ok {
				return fmt.Errorf("discriminant %s gates undeclared field %s", d.Field, name)
			}
		}
	}

	return nil
}

// Text declares a plain text field
func Text(name string, c Cardinality) Field {
	return Field{Name: name, Cardinality: c, Shape: String}
}

// Nested declares a field holding nodes of one of the given kinds.  With no
// kinds given, the field holds nodes of the kind sharing its name.
func Nested(name string, c Cardinality, kinds ...string) Field {
	return Field{Name: name, Cardinality: c, Shape: Nodes, Kinds: kinds}
}

// Ext declares an extension point
func Ext(name string, c Cardinality) Field {
	return Field{Name: name, Cardinality: c, Shape: Extension}
}
