package premis

import (
	"fmt"
	"strings"

	"github.com/birkland/premis/schema"
	"github.com/pkg/errors"
)

// Node is a single PREMIS structure of a given kind (e.g. "object", or
// "formatDesignation").  Its fields are checked against the schema table as
// they are written: a Node never holds an undeclared field (unless written via
// SetOverride), never holds a list in a singular field, and never holds a bare
// value in a repeatable one.
type Node struct {
	table  *schema.Table
	kind   *schema.Kind
	keys   []string // insertion order
	fields map[string]Value
	owned  bool
}

// New creates an empty node of the given kind.  The node is not valid until
// its required fields are set; see Validate and Build.
func New(t *schema.Table, kind string) (*Node, error) {
	if t == nil {
		return nil, fmt.Errorf("no schema table given")
	}
	k, ok := t.Kind(kind)
	if !ok {
		return nil, errors.Wrapf(ErrSchemaViolation, "unknown kind %s", kind)
	}

	return &Node{
		table:  t,
		kind:   k,
		fields: make(map[string]Value, len(k.Fields)),
	}, nil
}

// Build creates a node of the given kind, populates it with fill, and
// validates the result.  Either a complete, valid node is returned, or an
// error.
func Build(t *schema.Table, kind string, fill func(n *Node) error) (*Node, error) {
	n, err := New(t, kind)
	if err != nil {
		return nil, err
	}

	if fill != nil {
		if err = fill(n); err != nil {
			return nil, errors.Wrapf(err, "could not build %s", kind)
		}
	}

	if err = n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Kind returns the name of the node's kind
func (n *Node) Kind() string {
	return n.kind.Name
}

// Schema returns the schema definition of the node's kind
func (n *Node) Schema() *schema.Kind {
	return n.kind
}

// Table returns the schema table the node was created from
func (n *Node) Table() *schema.Table {
	return n.table
}

// Fields lists the names of the fields present in the node, in the order they
// were first written.
func (n *Node) Fields() []string {
	return append([]string(nil), n.keys...)
}

// Has reports whether a field is present
func (n *Node) Has(name string) bool {
	_, ok := n.fields[name]
	return ok
}

// Get returns the value of a field, or nil when absent.  Repeatable fields
// are returned as a List.
func (n *Node) Get(name string) Value {
	v, ok := n.fields[name]
	if !ok {
		return nil
	}
	if l, ok := v.(List); ok {
		return append(List(nil), l...)
	}
	return v
}

// Index returns the i'th value of a repeatable field
func (n *Node) Index(name string, i int) (Value, error) {
	v, ok := n.fields[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s is not present", n.kind.Name, name)
	}

	l, ok := v.(List)
	if !ok {
		return nil, fieldErr(n.kind.Name, name, ErrCardinality, "cannot index a singular field")
	}
	if i < 0 || i >= len(l) {
		return nil, fmt.Errorf("index %d out of range for %s.%s (length %d)", i, n.kind.Name, name, len(l))
	}
	return l[i], nil
}

// Len returns the number of values in a field: zero when absent, one for a
// present singular field.
func (n *Node) Len(name string) int {
	v, ok := n.fields[name]
	if !ok {
		return 0
	}
	if l, ok := v.(List); ok {
		return len(l)
	}
	return 1
}

// Text returns the text of a singular leaf field, or "" when absent.
func (n *Node) Text(name string) string {
	if l, ok := n.fields[name].(Leaf); ok {
		return string(l)
	}
	return ""
}

// Texts returns the leaves of a repeatable text field
func (n *Node) Texts(name string) []string {
	var texts []string
	for _, v := range asList(n.fields[name]) {
		if l, ok := v.(Leaf); ok {
			texts = append(texts, string(l))
		}
	}
	return texts
}

// Child returns the node held by a singular nested field, or nil.
func (n *Node) Child(name string) *Node {
	c, _ := n.fields[name].(*Node)
	return c
}

// Children returns the nodes held by a repeatable nested field
func (n *Node) Children(name string) []*Node {
	var nodes []*Node
	for _, v := range asList(n.fields[name]) {
		if c, ok := v.(*Node); ok {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

// Set replaces the value of a declared field.  A single value written to a
// repeatable field becomes a one element list; a List written to a singular
// field is a cardinality violation.
func (n *Node) Set(name string, v Value) error {
	f, err := n.declared(name)
	if err != nil {
		return err
	}

	if f.Repeatable() {
		if l, ok := v.(List); ok {
			v = append(List(nil), l...)
		} else {
			v = List{v}
		}
	} else if _, ok := v.(List); ok {
		return fieldErr(n.kind.Name, name, ErrCardinality, "singular field given a list")
	}

	return n.store(f, v)
}

// Add appends a value to a repeatable field
func (n *Node) Add(name string, v Value) error {
	f, err := n.declared(name)
	if err != nil {
		return err
	}

	if !f.Repeatable() {
		return fieldErr(n.kind.Name, name, ErrCardinality, "cannot add to a singular field")
	}
	if _, ok := v.(List); ok {
		return fieldErr(n.kind.Name, name, ErrCardinality, "add takes a single value")
	}

	prev, present := n.fields[name]
	if !present {
		return n.store(f, List{v})
	}

	l, ok := prev.(List)
	if !ok {
		return fieldErr(n.kind.Name, name, ErrCardinality, "repeatable field holds a bare %T", prev)
	}
	if err = n.check(f, v); err != nil {
		return err
	}
	if err = n.attach(v); err != nil {
		return fieldErr(n.kind.Name, name, err, "cannot attach value")
	}

	n.fields[name] = append(l, v)
	return nil
}

// Assign stores v exactly as given: repeatable fields must be given a List,
// singular fields a single value.
func (n *Node) Assign(name string, v Value) error {
	f, err := n.declared(name)
	if err != nil {
		return err
	}

	_, isList := v.(List)
	switch {
	case f.Repeatable() && !isList:
		return fieldErr(n.kind.Name, name, ErrCardinality, "repeatable field given a bare %T", v)
	case !f.Repeatable() && isList:
		return fieldErr(n.kind.Name, name, ErrCardinality, "singular field given a list")
	}

	if isList {
		v = append(List(nil), v.(List)...)
	}
	return n.store(f, v)
}

// SetOverride writes a field without requiring it to be declared by the
// schema.  Declared fields are written as with Set.  Undeclared fields hold
// extension data: a Leaf, a non-empty *Extension, or a List of those.  A one
// element List is stored as its element.  Undeclared fields are encoded after
// the declared ones, and decoded back from undeclared elements or keys.
func (n *Node) SetOverride(name string, v Value) error {
	if _, ok := n.kind.Field(name); ok {
		return n.Set(name, v)
	}
	if name == "" {
		return fieldErr(n.kind.Name, name, ErrSchemaViolation, "empty field name")
	}
	if isNil(v) {
		return fieldErr(n.kind.Name, name, ErrSchemaViolation, "nil value")
	}

	if l, ok := v.(List); ok {
		switch len(l) {
		case 0:
			return fieldErr(n.kind.Name, name, ErrCardinality, "empty list")
		case 1:
			v = l[0]
		default:
			v = append(List(nil), l...)
		}
	}
	for _, item := range asList(v) {
		if err := n.checkOverride(name, item); err != nil {
			return err
		}
	}

	prev := n.fields[name]
	release(prev)
	if err := n.attach(v); err != nil {
		_ = claim(prev)
		return fieldErr(n.kind.Name, name, err, "cannot attach value")
	}
	n.put(name, v)
	return nil
}

func (n *Node) checkOverride(name string, v Value) error {
	switch t := v.(type) {
	case Leaf:
		return nil
	case *Extension:
		if t.Len() == 0 {
			return fieldErr(n.kind.Name, name, ErrCardinality, "empty extension subtree")
		}
		return nil
	}
	return fieldErr(n.kind.Name, name, ErrSchemaViolation, "undeclared field cannot hold a %T", v)
}

// Validate verifies that every required field is present, that every
// disjunction rule of the kind is satisfied, and that every nested node is
// itself valid.
func (n *Node) Validate() error {
	for i := range n.kind.Fields {
		f := &n.kind.Fields[i]
		if !f.Required() || n.Len(f.Name) > 0 || !n.applicable(f.Name) {
			continue
		}
		return fieldErr(n.kind.Name, f.Name, ErrCardinality, "required field is missing")
	}

	for _, r := range n.kind.Rules {
		satisfied := false
		for _, name := range r.AnyOf {
			if n.Len(name) > 0 {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return fieldErr(n.kind.Name, strings.Join(r.AnyOf, "|"), ErrCardinality, "%s", r.Name)
		}
	}

	for _, key := range n.keys {
		for _, v := range asList(n.fields[key]) {
			if c, ok := v.(*Node); ok {
				if err := c.Validate(); err != nil {
					return errors.Wrapf(err, "invalid %s.%s", n.kind.Name, key)
				}
			}
		}
	}

	return nil
}

func (n *Node) declared(name string) (*schema.Field, error) {
	f, ok := n.kind.Field(name)
	if !ok {
		return nil, fieldErr(n.kind.Name, name, ErrSchemaViolation, "field is not declared")
	}
	return f, nil
}

// store checks v against the field, then replaces the current value.
func (n *Node) store(f *schema.Field, v Value) error {
	if v == nil {
		return fieldErr(n.kind.Name, f.Name, ErrSchemaViolation, "nil value")
	}
	if l, ok := v.(List); ok && len(l) == 0 {
		return fieldErr(n.kind.Name, f.Name, ErrCardinality, "empty list")
	}
	for _, item := range asList(v) {
		if err := n.check(f, item); err != nil {
			return err
		}
	}

	if f.Shape == schema.String && n.isDiscriminant(f.Name) {
		if err := n.checkDiscriminant(string(v.(Leaf))); err != nil {
			return err
		}
	}

	prev := n.fields[f.Name]
	release(prev)
	if err := n.attach(v); err != nil {
		_ = claim(prev)
		return fieldErr(n.kind.Name, f.Name, err, "cannot attach value")
	}

	n.put(f.Name, v)
	return nil
}

// check verifies a single (non list) value against the field's shape and the
// node's discriminant.
func (n *Node) check(f *schema.Field, v Value) error {
	if isNil(v) {
		return fieldErr(n.kind.Name, f.Name, ErrSchemaViolation, "nil value")
	}

	switch f.Shape {
	case schema.String:
		if _, ok := v.(Leaf); !ok {
			return fieldErr(n.kind.Name, f.Name, ErrSchemaViolation, "expected text, got %T", v)
		}
	case schema.Nodes:
		c, ok := v.(*Node)
		if !ok {
			return fieldErr(n.kind.Name, f.Name, ErrSchemaViolation, "expected a node, got %T", v)
		}
		if !f.Accepts(c.Kind()) {
			return fieldErr(n.kind.Name, f.Name, ErrSchemaViolation, "does not accept a %s", c.Kind())
		}
	case schema.Extension:
		e, ok := v.(*Extension)
		if !ok {
			return fieldErr(n.kind.Name, f.Name, ErrSchemaViolation, "expected an extension, got %T", v)
		}
		if e.Len() == 0 {
			return fieldErr(n.kind.Name, f.Name, ErrCardinality, "empty extension subtree")
		}
	}

	if !n.applicable(f.Name) {
		return fieldErr(n.kind.Name, f.Name, ErrInapplicable, "not applicable to %s %q",
			n.kind.Discriminant.Field, n.Text(n.kind.Discriminant.Field))
	}
	return nil
}

func (n *Node) isDiscriminant(name string) bool {
	return n.kind.Discriminant != nil && n.kind.Discriminant.Field == name
}

// applicable reports whether a field is allowed under the current
// discriminant value.  Without a discriminant value, everything is.
func (n *Node) applicable(name string) bool {
	d := n.kind.Discriminant
	if d == nil || name == d.Field || !n.Has(d.Field) {
		return true
	}
	return d.Applicable(n.Text(d.Field), name)
}

// checkDiscriminant verifies that value is allowed, and that no field already
// present becomes inapplicable under it.
func (n *Node) checkDiscriminant(value string) error {
	d := n.kind.Discriminant
	if !d.Allowed(value) {
		return fieldErr(n.kind.Name, d.Field, ErrSchemaViolation, "%q is not one of %v", value, d.Values)
	}
	for _, key := range n.keys {
		if !d.Applicable(value, key) {
			return fieldErr(n.kind.Name, key, ErrInapplicable, "not applicable to %s %q", d.Field, value)
		}
	}
	return nil
}

// attach takes ownership of any nodes or extensions in v.
func (n *Node) attach(v Value) error {
	for _, o := range ownables(v) {
		if reaches(o, n) {
			return errors.Wrap(ErrShared, "value contains its own parent")
		}
	}
	return claim(v)
}

func (n *Node) put(name string, v Value) {
	if _, present := n.fields[name]; !present {
		n.keys = append(n.keys, name)
	}
	n.fields[name] = v
}

func asList(v Value) List {
	switch t := v.(type) {
	case nil:
		return nil
	case List:
		return t
	}
	return List{v}
}
