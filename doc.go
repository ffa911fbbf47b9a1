// Package premis holds an in-memory representation of PREMIS preservation
// metadata: objects, events, agents and rights, and the structures nested
// beneath them.
//
// Rather than one Go type per PREMIS semantic unit, every entity is a generic
// Node whose fields are checked against a schema.Table as they are written.
// Extension points hold free-form Extension subtrees that are never checked,
// which is where vendor metadata (e.g. MIX or textMD) lives.  A Record
// aggregates the four entity lists, and is what the xmlcodec and jsoncodec
// packages read and write.
//
// Nodes and Records are not safe for concurrent mutation.  A Node, or an
// Extension, belongs to at most one parent; attaching it a second time is an
// error.
package premis
