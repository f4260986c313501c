// Package objgraph reads and writes graphs of typed objects to a
// compact binary stream.
//
// An object graph is a set of values implementing [Object], connected
// by references. Marshaling a graph writes each distinct object once,
// the first time it is referenced. Later references write only the
// object's [ObjectID], so shared objects are reloaded as a single
// instance and cycles terminate. Each object's first occurrence
// records a type tag, which the reader resolves through a [Registry]
// to construct an instance of the right concrete type.
//
// # Stream format
//
// A stream starts with a header: the 4 bytes "OGB\x00", a byte order
// flag ('l' for little endian, 'B' for big endian), and the format
// version as three uint32s (major, minor, patch). All multi-byte
// values in the stream use the flagged byte order.
//
// The header is followed by one or more top-level object references.
// A reference is a uint32 ObjectID. On the first occurrence of an ID,
// the ID is followed by the object's type tag as a string, and then
// by the fields the object's MarshalGraph method wrote. The null
// reference is written like an object whose tag is "nullptr" and
// which has no fields.
//
// Strings are a uint32 byte length followed by that many bytes of
// UTF-8, without terminator. See package [fragments] for the encoding
// of other primitive values.
//
// # Versioning
//
// Every stream records the format version it was written with.
// Fields added to a type in a later format version are written and
// read only when the session's version is new enough, see
// [Encoder.VersionAtLeast] and the "since" option of [Encoder.Fields].
// This lets older streams load with newer code, and lets newer code
// write streams for older readers by setting [Options.Version].
//
// A stream newer than [CurrentVersion] is rejected, since it may
// contain fields this package doesn't know how to skip.
//
// # Writing collaborators
//
// A type joins the graph by implementing [Object] on its pointer, and
// registering a tag and factory for itself, typically from an init
// function:
//
//	type Group struct {
//	    Children []objgraph.Object
//	}
//
//	func init() {
//	    objgraph.RegisterType[Group]("scene::Group")
//	}
//
//	func (g *Group) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(g) }
//	func (g *Group) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(g) }
//
// MarshalGraph and UnmarshalGraph can also read and write fields by
// hand, using the primitive methods of [Encoder] and [Decoder] and
// the object reference methods [Encoder.Object], [Decoder.Object],
// [ReadObject], [WriteObjects] and [ReadObjects].
package objgraph
