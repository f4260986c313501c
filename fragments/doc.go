// Package fragments provides the primitive codec of the object graph
// binary format: fixed-width numbers, length-prefixed strings, wide
// strings, paths, fixed-count arrays and extended-precision floats.
//
// The encoder and decoder are low level and know nothing about
// objects, identities or versions. Higher layers (package objgraph)
// build the object protocol on top of them.
//
// The format has no alignment padding. Every multi-byte value uses
// the Order of the Encoder or Decoder, which the stream header
// records with a one byte flag (see [Encoder.ByteOrderFlag]).
//
// Strings are encoded as a uint32 byte length followed by the raw
// bytes, with no terminator. Arrays written with [AppendValues] have
// no length prefix: the reader must know how many values to expect.
package fragments
