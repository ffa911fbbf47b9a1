// Package schema describes the shape of PREMIS metadata as data.
//
// A Table maps a kind name (e.g. "object", "formatDesignation") to its ordered
// list of fields.  Each field has a cardinality and a value shape: plain text,
// a nested node of one of several kinds, or an unconstrained extension subtree.
// Kinds may additionally carry disjunction rules ("at least one of") and a
// discriminant field whose value makes other fields inapplicable.
//
// Tables are immutable once built, so a single Table may be shared freely by
// any number of nodes and codecs.  V3 is a table covering the commonly used
// semantic units of the PREMIS 3 data dictionary.
package schema
