package objgraph

import (
	"reflect"

	"github.com/creachadair/mds/mapset"
)

var (
	// mapKeyKinds is the set of reflect.Kinds that can be map keys in
	// a reflectively encoded field. Keys are written in sorted order,
	// so they must be ordered.
	mapKeyKinds = mapset.New(
		reflect.Bool,
		reflect.Int8,
		reflect.Uint8,
		reflect.Int16,
		reflect.Uint16,
		reflect.Int32,
		reflect.Uint32,
		reflect.Int64,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String,
	)
)
