// Package xmlcodec converts PREMIS nodes and records to and from a simple XML
// element tree.
//
// Elements are written in schema order, one element per value of a repeatable
// field.  The object category is written as an attribute of the object
// element (xsi:type in the PREMIS 3 table); every other field is a child
// element.  Extension subtrees are written with their keys as element names,
// untouched by the configured Namer, so that vendor schemas keep their own
// names and prefixes.
//
// Decoding matches schema fields by local name, so documents using a prefixed
// (premis:object) or default namespace convention both decode.
//
// Parse and Element.Serialize convert between the element tree and XML text.
package xmlcodec
