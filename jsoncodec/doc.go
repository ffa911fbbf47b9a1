// Package jsoncodec converts PREMIS nodes and records to and from an ordered
// JSON document tree.
//
// Each node becomes an Object whose keys are its fields, in schema order.
// Repeatable fields are always arrays, singular fields never are.  The object
// category is an ordinary field.  Extension subtrees become objects keyed by
// their own keys; a key holding a single value is written as that value, a
// key holding several as an array.
//
// A record is an object with the optional keys "object", "event", "agent" and
// "rights", each an array of entities.
package jsoncodec
