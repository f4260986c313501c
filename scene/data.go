package scene

import "github.com/danderson/objgraph"

// Vec3Array is an array of 3D vectors, such as vertex positions.
type Vec3Array struct {
	Values [][3]float32
}

func (a *Vec3Array) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(a) }
func (a *Vec3Array) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(a) }

// FloatArray is an array of scalars.
type FloatArray struct {
	Values []float32
}

func (a *FloatArray) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(a) }
func (a *FloatArray) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(a) }

// FileReference is a reference to external data stored in a file.
type FileReference struct {
	// Path is the location of the file.
	Path string `objgraph:"path"`
	// Label is a human-readable description.
	Label []rune `objgraph:"wide"`
	// Scale is a high-precision transform applied to the file's
	// contents.
	Scale [4]float64 `objgraph:"longdouble"`
	// Checksum is an opaque content hash.
	Checksum []byte
	// Attributes are free-form metadata.
	Attributes map[string]string `objgraph:"since=1.1.0"`
}

func (f *FileReference) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(f) }
func (f *FileReference) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(f) }
