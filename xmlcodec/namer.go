package xmlcodec

// Namer maps a schema tag (a kind or field name) to the element name written
// on encode.  It is never applied to extension keys.
type Namer interface {
	Name(tag string) string
}

// NamerFunc is a function that can be used to satisfy the Namer interface
type NamerFunc func(tag string) string

// Name maps a tag to an element name
func (f NamerFunc) Name(tag string) string {
	return f(tag)
}

// Unqualified writes schema tags as is, for documents that declare the PREMIS
// namespace as the default namespace.
var Unqualified Namer = NamerFunc(func(tag string) string {
	return tag
})

// Qualified writes schema tags with the given namespace prefix, e.g.
// premis:object
func Qualified(prefix string) Namer {
	return qualified(prefix)
}

type qualified string

func (q qualified) Name(tag string) string {
	return string(q) + ":" + tag
}

// xmlns is the attribute declaring the namespace a Namer writes into
func xmlns(n Namer) string {
	if q, ok := n.(qualified); ok {
		return "xmlns:" + string(q)
	}
	return "xmlns"
}
