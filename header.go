package objgraph

import (
	"bytes"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	"github.com/danderson/objgraph/fragments"
)

// magic opens every object graph stream.
var magic = []byte{'O', 'G', 'B', 0}

// header is the preamble of an object graph stream.
type header struct {
	// Order is the byte order of every multi-byte value in the
	// stream, header version included.
	Order fragments.ByteOrder
	// Version is the format version the stream was written with. It
	// decides which version-gated fields are present.
	Version semver.Version
}

// marshal writes h to e, and switches e to h's byte order.
func (h *header) marshal(e *fragments.Encoder) error {
	if err := checkWritable(h.Version); err != nil {
		return err
	}
	e.Order = h.Order
	e.Write(magic)
	e.ByteOrderFlag()
	e.Uint32(uint32(h.Version.Major))
	e.Uint32(uint32(h.Version.Minor))
	e.Uint32(uint32(h.Version.Patch))
	return nil
}

// readHeader reads a stream header from d, and switches d to the
// stream's byte order.
func readHeader(d *fragments.Decoder) (header, error) {
	bs, err := d.Read(len(magic))
	if err != nil {
		return header{}, errors.Wrap(err, "reading stream magic")
	}
	if !bytes.Equal(bs, magic) {
		return header{}, errors.Wrapf(ErrBadHeader, "bad magic %q", bs)
	}
	if err := d.ByteOrderFlag(); err != nil {
		return header{}, errors.Mark(errors.Wrap(err, "reading stream byte order"), ErrBadHeader)
	}
	var vs [3]uint32
	if err := fragments.ReadValues(d, vs[:]); err != nil {
		return header{}, errors.Wrap(err, "reading stream version")
	}
	return header{
		Order:   d.Order,
		Version: Version(vs[0], vs[1], vs[2]),
	}, nil
}
