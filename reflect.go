package objgraph

import (
	"iter"
	"reflect"
)

// implementsObject reports whether values of t are object references.
func implementsObject(t reflect.Type) bool {
	return (t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface) && t.Implements(objectType)
}

// isInlineObject reports whether t is a struct whose pointer
// implements Object. Such values are written inline through their
// MarshalGraph method, without an object ID.
func isInlineObject(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(objectType)
}

// allocSteps partitions a multi-hop traversal of struct fields into
// segments that end at either the final value, or at a struct pointer
// that might be nil.
//
// This partition is used by [structField.GetWithZero] and
// [structField.GetWithAlloc] to load embedded struct fields that
// require traversing a nil pointer.
func allocSteps(t reflect.Type, idx []int) [][]int {
	var ret [][]int
	prev := 0
	t = t.Field(idx[0]).Type
	for i := 1; i < len(idx); i++ {
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
			// Hop through a struct pointer that might be nil, cut.
			ret = append(ret, idx[prev:i])
			prev = i
			t = t.Elem()
		}
		t = t.Field(idx[i]).Type
	}
	ret = append(ret, idx[prev:])
	return ret
}

// structFields iterates over the fields of struct t in declaration
// order, descending into embedded structs. Embedded pointers to
// Object types are not flattened, they are object references like
// any other field.
func structFields(t reflect.Type, idx []int) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			f := t.Field(i)
			idx = append(idx, i)
			if f.Anonymous && flattenEmbedded(f.Type) {
				at := f.Type
				if at.Kind() == reflect.Pointer {
					at = at.Elem()
				}
				for af := range structFields(at, idx) {
					if !yield(af) {
						return
					}
				}
				idx = idx[:len(idx)-1]
				continue
			}
			f.Index = append([]int(nil), idx...)
			if !yield(f) {
				return
			}
			idx = idx[:len(idx)-1]
		}
	}
}

func flattenEmbedded(t reflect.Type) bool {
	switch {
	case t.Kind() == reflect.Struct:
		return true
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return !t.Implements(objectType)
	default:
		return false
	}
}
