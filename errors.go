package premis

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors returned by Node, Extension and Record operations, and by the
// codecs.  Use errors.Is to test for them.
var (
	// ErrSchemaViolation means a write named a field the schema does not
	// declare, or gave it a value of the wrong shape.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrCardinality means a required field is missing, a singular field was
	// given several values, or a repeatable field was given a bare value
	// where a list was expected.
	ErrCardinality = errors.New("cardinality violation")

	// ErrInapplicable means a declared field is not allowed under the node's
	// current discriminant value.
	ErrInapplicable = errors.New("field inapplicable")

	// ErrMalformed means a source document does not fit the schema.
	ErrMalformed = errors.New("malformed document")

	// ErrTypeMismatch means a node of the wrong kind was handed to a Record.
	ErrTypeMismatch = errors.New("entity type mismatch")

	// ErrShared means a node or extension already belongs to another parent.
	ErrShared = errors.New("value already owned")
)

// FieldError describes a failed operation on a single field of a node.
type FieldError struct {
	Kind  string
	Field string
	Msg   string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", e.Err, e.Kind, e.Field, e.Msg)
}

// Unwrap returns the sentinel error describing the failure class
func (e *FieldError) Unwrap() error {
	return e.Err
}

// DecodeError is returned by the codecs when a source document cannot be
// decoded.  It is always ErrMalformed, and unwraps to the underlying cause
// (often ErrCardinality).
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrMalformed, e.Path, e.Err)
}

// Unwrap returns the cause of the decode failure
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformed
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// Malformed wraps err as a DecodeError at the given path, unless it already
// is one.
func Malformed(path string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Path: path, Err: err}
}

func fieldErr(kind, field string, err error, format string, args ...interface{}) error {
	return &FieldError{
		Kind:  kind,
		Field: field,
		Msg:   fmt.Sprintf(format, args...),
		Err:   err,
	}
}
