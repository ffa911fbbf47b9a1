package premis

// Value is the content of a node field: a Leaf, a nested *Node, an
// *Extension, or, for repeatable fields, a List of those.
type Value interface {
	value()
}

// ExtValue is the content of an extension key: a Leaf or a nested *Extension.
type ExtValue interface {
	extValue()
}

// Leaf is a plain text value
type Leaf string

// List holds the values of a repeatable field, in document order
type List []Value

func (Leaf) value() {}
func (Leaf) extValue() {}
func (List) value() {}
func (*Node) value() {}
func (*Extension) value() {}
func (*Extension) extValue() {}

// String returns the text of the leaf
func (l Leaf) String() string {
	return string(l)
}

// Strings builds a List of leaves
func Strings(values ...string) List {
	l := make(List, len(values))
	for i, v := range values {
		l[i] = Leaf(v)
	}
	return l
}

// ownable is implemented by the tree shaped values, which may only have a
// single parent.
type ownable interface {
	isOwned() bool
	setOwned(bool)
}

func (n *Node) isOwned() bool { return n.owned }
func (n *Node) setOwned(o bool) { n.owned = o }
func (e *Extension) isOwned() bool { return e.owned }
func (e *Extension) setOwned(o bool) { e.owned = o }

func ownables(v interface{}) []ownable {
	switch t := v.(type) {
	case *Node:
		return []ownable{t}
	case *Extension:
		return []ownable{t}
	case List:
		var o []ownable
		for _, item := range t {
			o = append(o, ownables(item)...)
		}
		return o
	}
	return nil
}

// claim marks every tree value in v as owned, or none of them if one is
// already owned.
func claim(v interface{}) error {
	items := ownables(v)
	for i, o := range items {
		if o.isOwned() {
			for _, prev := range items[:i] {
				prev.setOwned(false)
			}
			return ErrShared
		}
		o.setOwned(true)
	}
	return nil
}

func release(v interface{}) {
	for _, o := range ownables(v) {
		o.setOwned(false)
	}
}

// reaches reports whether target appears anywhere in the tree rooted at v.
func reaches(v interface{}, target interface{}) bool {
	if v == target {
		return true
	}
	switch t := v.(type) {
	case *Node:
		for _, key := range t.keys {
			if reaches(t.fields[key], target) {
				return true
			}
		}
	case *Extension:
		for _, key := range t.keys {
			for _, entry := range t.entries[key] {
				if reaches(entry, target) {
					return true
				}
			}
		}
	case List:
		for _, item := range t {
			if reaches(item, target) {
				return true
			}
		}
	}
	return false
}

func isNil(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *Node:
		return t == nil
	case *Extension:
		return t == nil
	case List:
		for _, item := range t {
			if isNil(item) {
				return true
			}
		}
	}
	return false
}
