// Package objgraphtest provides helpers to test [objgraph.Object]
// implementations.
package objgraphtest

import (
	"iter"
	"testing"

	"github.com/danderson/objgraph"
)

// MustMarshal returns the stream encoding of obj. It fails the test
// immediately if marshaling fails.
func MustMarshal(t testing.TB, obj objgraph.Object, opts *objgraph.Options) []byte {
	t.Helper()
	bs, err := objgraph.Marshal(obj, opts)
	if err != nil {
		t.Fatalf("Marshal(%T) failed: %v", obj, err)
	}
	return bs
}

// RoundTrip marshals obj, unmarshals the result with the same
// options, and returns the decoded object. It fails the test
// immediately if either direction fails, or if the decoded object is
// not a T.
func RoundTrip[T objgraph.Object](t testing.TB, obj T, opts *objgraph.Options) T {
	t.Helper()
	bs := MustMarshal(t, obj, opts)
	ret, err := objgraph.UnmarshalAs[T](bs, opts)
	if err != nil {
		t.Fatalf("Unmarshal(%T) failed: %v\nstream: % x", obj, err, bs)
	}
	return ret
}

// Truncations iterates over every strict prefix of bs, shortest first.
func Truncations(bs []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for i := range len(bs) {
			if !yield(bs[:i:i]) {
				return
			}
		}
	}
}
