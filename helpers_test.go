package objgraph_test

import (
	"testing"

	"github.com/danderson/objgraph"
)

// Node is a graph node with arbitrary outgoing references.
type Node struct {
	Name  string
	Edges []*Node
}

func (n *Node) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(n) }
func (n *Node) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(n) }

// Leaf is an object with a single primitive field.
type Leaf struct {
	N uint32
}

func (l *Leaf) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(l) }
func (l *Leaf) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(l) }

// Holder is an object with a polymorphic reference, and a trailing
// field after it.
type Holder struct {
	Ref   objgraph.Object
	After string
}

func (h *Holder) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(h) }
func (h *Holder) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(h) }

// Simple is a struct with simple fields.
type Simple struct {
	A int16
	B bool
}

// Nested is a struct with a struct field.
type Nested struct {
	A byte
	B Simple
}

// Embedded is a struct that embeds another struct by value.
type Embedded struct {
	Simple
	C byte
}

// Embedded_P is a struct that embeds another struct by pointer.
type Embedded_P struct {
	*Simple
	C byte
}

// Kitchen is an object with one field of every supported kind.
type Kitchen struct {
	Bool   bool
	I8     int8
	I16    int16
	I32    int32
	I64    int64
	U8     uint8
	U16    uint16
	U32    uint32
	U64    uint64
	F32    float32
	F64    float64
	Str    string
	Bytes  []byte
	Wide   []rune     `objgraph:"wide"`
	Path   string     `objgraph:"path"`
	Long   float64    `objgraph:"longdouble"`
	Longs  [2]float64 `objgraph:"longdouble"`
	Array  [3]uint16
	Slice  []Simple
	Map    map[string]uint32
	Nested Nested
	Embedded
	Ref     *Leaf
	Skipped string `objgraph:"-"`
	private int32
}

func (k *Kitchen) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(k) }
func (k *Kitchen) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(k) }

// Versioned is an object with fields added in later format versions.
type Versioned struct {
	A uint32
	B uint32 `objgraph:"since=1.0.4"`
	C uint32 `objgraph:"since=1.0.8"`
	D uint32
}

func (v *Versioned) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(v) }
func (v *Versioned) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(v) }

// Precise is an object with an extended-precision float.
type Precise struct {
	V float64 `objgraph:"longdouble"`
}

func (p *Precise) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(p) }
func (p *Precise) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(p) }

// Tree is a recursive struct type. It has no object identity, so
// values are trees rather than graphs.
type Tree struct {
	Label    string
	Children []Tree
}

// Unregistered implements Object, but is not in testRegistry.
type Unregistered struct{}

func (*Unregistered) MarshalGraph(e *objgraph.Encoder) error   { return nil }
func (*Unregistered) UnmarshalGraph(d *objgraph.Decoder) error { return nil }

// testRegistry returns a registry containing the test types.
func testRegistry(t testing.TB) *objgraph.Registry {
	t.Helper()
	r := objgraph.NewRegistry()
	for _, err := range []error{
		objgraph.RegisterTypeIn[Node](r, "test.Node"),
		objgraph.RegisterTypeIn[Leaf](r, "test.Leaf"),
		objgraph.RegisterTypeIn[Holder](r, "test.Holder"),
		objgraph.RegisterTypeIn[Kitchen](r, "test.Kitchen"),
		objgraph.RegisterTypeIn[Versioned](r, "test.Versioned"),
		objgraph.RegisterTypeIn[Precise](r, "test.Precise"),
	} {
		if err != nil {
			t.Fatalf("registering test types: %v", err)
		}
	}
	return r
}
