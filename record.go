package premis

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Record is a PREMIS document: ordered lists of object, event, agent and
// rights entities.  Records are append only.
type Record struct {
	entities [5][]*Node // indexed by EntityType
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{}
}

// AddObject appends an object entity
func (r *Record) AddObject(n *Node) error {
	return r.add(Object, n)
}

// AddEvent appends an event entity
func (r *Record) AddEvent(n *Node) error {
	return r.add(Event, n)
}

// AddAgent appends an agent entity
func (r *Record) AddAgent(n *Node) error {
	return r.add(Agent, n)
}

// AddRights appends a rights entity
func (r *Record) AddRights(n *Node) error {
	return r.add(Rights, n)
}

// Add appends an entity to the list matching its kind
func (r *Record) Add(n *Node) error {
	if n == nil {
		return errors.Wrap(ErrTypeMismatch, "nil entity")
	}
	t := ParseEntityType(n.Kind())
	if t == Unknown {
		return errors.Wrapf(ErrTypeMismatch, "%s is not an entity kind", n.Kind())
	}
	return r.add(t, n)
}

func (r *Record) add(t EntityType, n *Node) error {
	if n == nil {
		return errors.Wrapf(ErrTypeMismatch, "nil %s", t)
	}
	if n.Kind() != t.String() {
		return errors.Wrapf(ErrTypeMismatch, "expected %s, got %s", t, n.Kind())
	}
	if err := n.Validate(); err != nil {
		return errors.Wrapf(err, "cannot add invalid %s", t)
	}
	if err := claim(n); err != nil {
		return errors.Wrapf(err, "cannot add %s", t)
	}

	r.entities[t] = append(r.entities[t], n)
	return nil
}

// Entities returns the entities of the given type, in the order they were added
func (r *Record) Entities(t EntityType) []*Node {
	if t <= Unknown || t > Rights {
		return nil
	}
	return append([]*Node(nil), r.entities[t]...)
}

// Objects returns the object entities
func (r *Record) Objects() []*Node {
	return r.Entities(Object)
}

// Events returns the event entities
func (r *Record) Events() []*Node {
	return r.Entities(Event)
}

// Agents returns the agent entities
func (r *Record) Agents() []*Node {
	return r.Entities(Agent)
}

// Rights returns the rights entities
func (r *Record) Rights() []*Node {
	return r.Entities(Rights)
}

// Len returns the total number of entities
func (r *Record) Len() int {
	var n int
	for _, t := range EntityTypes {
		n += len(r.entities[t])
	}
	return n
}

// Equal compares two records list by list.  Like node equality, lists are
// compared by containment in both directions rather than position.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	for _, t := range EntityTypes {
		if !nodesEqual(r.entities[t], o.entities[t]) {
			return false
		}
	}
	return true
}

// Collect assembles a record from per entity type decoders.  decode is called
// once for each entity type, concurrently unless sequential is set, and must
// only read shared state.  When several calls fail, the error for the first
// entity type in document order is returned, so the result for a given input
// does not depend on scheduling.
func Collect(sequential bool, decode func(t EntityType) ([]*Node, error)) (*Record, error) {
	lists := make([][]*Node, len(EntityTypes))
	errs := make([]error, len(EntityTypes))

	var g errgroup.Group
	for i, t := range EntityTypes {
		i, t := i, t
		run := func() error {
			lists[i], errs[i] = decode(t)
			return errs[i]
		}
		if sequential {
			_ = run()
			continue
		}
		g.Go(run)
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	r := NewRecord()
	for i, t := range EntityTypes {
		for _, n := range lists[i] {
			if err := r.add(t, n); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}
