package premis

// Equal compares two nodes.  Nodes are equal when they have the same kind and
// the same set of fields, and every field holds equal values.  Repeatable
// fields are compared by containment in both directions, ignoring order: each
// value of one list must equal some value of the other.  Note this means
// [A, A, B] equals [A, B].
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind.Name != o.kind.Name || len(n.fields) != len(o.fields) {
		return false
	}

	for key, v := range n.fields {
		ov, ok := o.fields[key]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

// Equal compares two extension subtrees.  Names are not compared.  Both must
// have the same keys, and each key must hold equal values in the same order.
func (e *Extension) Equal(o *Extension) bool {
	if e == nil || o == nil {
		return e == o
	}
	if len(e.entries) != len(o.entries) {
		return false
	}

	for key, vals := range e.entries {
		ovals, ok := o.entries[key]
		if !ok || len(vals) != len(ovals) {
			return false
		}
		for i := range vals {
			if !extValueEqual(vals[i], ovals[i]) {
				return false
			}
		}
	}
	return true
}

func valueEqual(a, b Value) bool {
	switch t := a.(type) {
	case Leaf:
		l, ok := b.(Leaf)
		return ok && t == l
	case *Node:
		n, ok := b.(*Node)
		return ok && t.Equal(n)
	case *Extension:
		e, ok := b.(*Extension)
		return ok && t.Equal(e)
	case List:
		l, ok := b.(List)
		return ok && containsAll(t, l) && containsAll(l, t)
	}
	return false
}

func extValueEqual(a, b ExtValue) bool {
	switch t := a.(type) {
	case Leaf:
		l, ok := b.(Leaf)
		return ok && t == l
	case *Extension:
		e, ok := b.(*Extension)
		return ok && t.Equal(e)
	}
	return false
}

// containsAll is true when every value of a is equal to some value of b
func containsAll(a, b List) bool {
	for _, v := range a {
		found := false
		for _, ov := range b {
			if valueEqual(v, ov) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func nodesEqual(a, b []*Node) bool {
	return containsAll(nodeList(a), nodeList(b)) && containsAll(nodeList(b), nodeList(a))
}

func nodeList(nodes []*Node) List {
	l := make(List, len(nodes))
	for i, n := range nodes {
		l[i] = n
	}
	return l
}
