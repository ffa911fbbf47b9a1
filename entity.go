package premis

// EntityType names one of the four top level PREMIS entities
type EntityType int

// PREMIS entity types
const (
	Unknown EntityType = iota
	Object
	Event
	Agent
	Rights
)

// EntityTypes lists the entity types in document order
var EntityTypes = []EntityType{Object, Event, Agent, Rights}

// String returns the kind name of the entity type, as used in the schema
func (t EntityType) String() string {
	switch t {
	case Object:
		return "object"
	case Event:
		return "event"
	case Agent:
		return "agent"
	case Rights:
		return "rights"
	}
	return "unknown"
}

// ParseEntityType maps a kind name to an entity type.  Names that are not
// entity kinds map to Unknown.
func ParseEntityType(kind string) EntityType {
	switch kind {
	case "object":
		return Object
	case "event":
		return Event
	case "agent":
		return Agent
	case "rights":
		return Rights
	}
	return Unknown
}
