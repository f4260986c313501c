package objgraph

import "reflect"

// Object is the interface implemented by types that can be stored in
// an object graph.
//
// Object types must be pointers, and must be registered in a
// [Registry] with a type tag and a factory. An Object is written to a
// stream at most once per session: later references to the same
// pointer write only its [ObjectID].
//
// MarshalGraph writes the object's fields, and UnmarshalGraph reads
// them back in the same order. Both may use the session's version to
// decide whether version-gated fields are present, see
// [Encoder.VersionAtLeast]. References to other objects are written
// with [Encoder.Object] and read with [Decoder.Object] or
// [ReadObject].
//
// UnmarshalGraph is called on an instance that is already registered
// in the session, so cyclic references back to it resolve to the
// instance being read.
type Object interface {
	MarshalGraph(e *Encoder) error
	UnmarshalGraph(d *Decoder) error
}

var objectType = reflect.TypeFor[Object]()

// isNilObject reports whether obj is a null reference: either a nil
// interface, or a nil pointer of a concrete type.
func isNilObject(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
