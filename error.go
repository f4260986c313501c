package objgraph

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/danderson/objgraph/fragments"
)

var (
	// ErrTruncated is wrapped by errors caused by a stream that ends
	// before a value is complete.
	ErrTruncated = fragments.ErrTruncated
	// ErrLongDoubleFormat is wrapped by errors caused by an
	// extended-precision float layout that this platform cannot read
	// as-is.
	ErrLongDoubleFormat = fragments.ErrLongDoubleFormat
	// ErrUnknownType is wrapped by [UnknownTypeError].
	ErrUnknownType = errors.New("unknown type tag")
	// ErrBadHeader is wrapped by errors caused by a stream that does
	// not start with a valid object graph header.
	ErrBadHeader = errors.New("not an object graph stream")
	// ErrUnsupportedVersion is wrapped by errors caused by a stream
	// version that cannot be read or written.
	ErrUnsupportedVersion = errors.New("unsupported stream version")
)

// TypeError is the error returned when a type cannot be represented
// in the object graph format.
type TypeError struct {
	// Type is the name of the type that caused the error.
	Type string
	// Reason is an explanation of why the type isn't representable.
	Reason error
}

func (e TypeError) Error() string {
	return fmt.Sprintf("objgraph cannot represent %s: %s", e.Type, e.Reason)
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

func typeErr(t reflect.Type, reason string, args ...any) error {
	ts := "nil"
	if t != nil {
		ts = t.String()
	}
	return TypeError{ts, errors.Newf(reason, args...)}
}

// UnknownTypeError is the error returned when a stream names a type
// tag that has no registered factory. The stream cannot be read past
// such an object, since its size is unknown.
type UnknownTypeError struct {
	// Tag is the unknown type tag.
	Tag string
	// ID is the object ID the tag was attached to.
	ID ObjectID
	// Offset is the stream offset just past the tag.
	Offset int64
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type tag %q for object %d at offset %d", e.Tag, e.ID, e.Offset)
}

func (e UnknownTypeError) Unwrap() error {
	return ErrUnknownType
}
