package objgraph

import (
	"bufio"
	"bytes"
	"io"
	"reflect"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	"github.com/danderson/objgraph/fragments"
	"go.uber.org/zap"
)

// A Decoder is a read session. It reads primitive values through its
// embedded [fragments.Decoder], and object references through
// [Decoder.Object].
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	fragments.Decoder

	version     semver.Version
	types       *Registry
	ids         readIdentities
	log         *zap.Logger
	longDoubles fragments.LongDoublePolicy
}

// NewDecoder starts a read session on r, and reads the stream header.
//
// NewDecoder returns an error wrapping [ErrUnsupportedVersion] if the
// stream was written by a newer format version than opts allows.
func NewDecoder(r io.Reader, opts *Options) (*Decoder, error) {
	ret := newDecoder(r, opts)
	hdr, err := readHeader(&ret.Decoder)
	if err != nil {
		return nil, err
	}
	if newest := opts.maxVersion(); hdr.Version.GT(newest) {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "stream version %s is newer than supported version %s", hdr.Version, newest)
	}
	ret.version = hdr.Version
	ret.log.Debug("reading stream", zap.Stringer("version", hdr.Version))
	return ret, nil
}

// newDecoder returns a session on a headerless body, reading version
// opts.Version in opts.Order.
func newDecoder(r io.Reader, opts *Options) *Decoder {
	return &Decoder{
		Decoder: fragments.Decoder{
			Order: opts.order(),
			In:    r,
		},
		version:     opts.version(),
		types:       opts.types(),
		ids:         newReadIdentities(),
		log:         opts.logger(),
		longDoubles: opts.longDoubles(),
	}
}

// Version returns the format version of the stream being read.
func (d *Decoder) Version() semver.Version {
	return d.version
}

// VersionAtLeast reports whether the stream being read was written
// with format version major.minor.patch or newer. Fields introduced in
// that version are only present if it returns true.
func (d *Decoder) VersionAtLeast(major, minor, patch uint32) bool {
	return d.version.GE(Version(major, minor, patch))
}

// Object reads an object reference. The first reference to an object
// constructs an instance of its registered type and reads its fields.
// Later references to the same ID return the same instance. The null
// reference reads as a nil Object.
func (d *Decoder) Object() (Object, error) {
	u32, err := d.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "reading object id")
	}
	id := ObjectID(u32)

	var tag string
	obj, isNew, err := d.ids.resolveOrConstruct(id, func() (Object, error) {
		tag, err = d.String()
		if err != nil {
			return nil, errors.Wrapf(err, "reading type tag of object %d", id)
		}
		if tag == NullTag {
			return nil, nil
		}
		info := d.types.infoForTag(tag)
		if info == nil {
			return nil, UnknownTypeError{
				Tag:    tag,
				ID:     id,
				Offset: d.Offset(),
			}
		}
		return info.New(), nil
	})
	if err != nil || !isNew {
		return obj, err
	}

	d.log.Debug("reading object", zap.Uint32("id", u32), zap.String("tag", tag), zap.Int64("offset", d.Offset()))
	if err := obj.UnmarshalGraph(d); err != nil {
		return nil, errors.Wrapf(err, "reading %s object %d", tag, id)
	}
	return obj, nil
}

// ReadObject reads an object reference, and returns it as a T. The
// null reference returns T's zero value.
//
// ReadObject returns a [TypeError] if the referenced object is not a
// T.
func ReadObject[T Object](d *Decoder) (T, error) {
	var zero T
	obj, err := d.Object()
	if err != nil {
		return zero, err
	}
	if obj == nil {
		return zero, nil
	}
	ret, ok := obj.(T)
	if !ok {
		return zero, typeErr(reflect.TypeOf(obj), "object is not a %s", reflect.TypeFor[T]())
	}
	return ret, nil
}

// ReadObjects reads a count followed by that many object references,
// as written by [WriteObjects].
func ReadObjects[T Object](d *Decoder) ([]T, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	// n comes from the stream, grow as references arrive.
	var ret []T
	for range n {
		obj, err := ReadObject[T](d)
		if err != nil {
			return nil, err
		}
		ret = append(ret, obj)
	}
	return ret, nil
}

// LongDoubles reads len(vs) extended-precision floats into vs.
//
// If the stream's layout differs from this platform's, LongDoubles
// either fails with an error wrapping [ErrLongDoubleFormat], or
// converts the values to float64 and logs a warning, depending on
// [Options.LongDoubles].
func (d *Decoder) LongDoubles(vs []float64) error {
	format, err := d.Decoder.LongDoubles(vs, d.longDoubles)
	if err != nil {
		return err
	}
	if format != fragments.NativeLongDouble {
		d.log.Warn("converted extended-precision floats, precision may be lost",
			zap.Stringer("stream_format", format),
			zap.Stringer("native_format", fragments.NativeLongDouble),
			zap.Int("count", len(vs)))
	}
	return nil
}

// Unmarshal reads a stream containing a single top-level object, and
// returns it.
func Unmarshal(data []byte, opts *Options) (Object, error) {
	r := bytes.NewReader(data)
	d, err := NewDecoder(r, opts)
	if err != nil {
		return nil, err
	}
	ret, err := d.Object()
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, errors.Newf("%d trailing bytes after top-level object", r.Len())
	}
	return ret, nil
}

// UnmarshalAs is like [Unmarshal], but returns the top-level object
// as a T.
func UnmarshalAs[T Object](data []byte, opts *Options) (T, error) {
	var zero T
	obj, err := Unmarshal(data, opts)
	if err != nil {
		return zero, err
	}
	if obj == nil {
		return zero, nil
	}
	ret, ok := obj.(T)
	if !ok {
		return zero, typeErr(reflect.TypeOf(obj), "top-level object is not a %s", reflect.TypeFor[T]())
	}
	return ret, nil
}

// Decode reads a stream containing a single top-level object from r.
func Decode(r io.Reader, opts *Options) (Object, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading stream")
	}
	return Unmarshal(bs, opts)
}

// A Reader reads a stream of several top-level objects, as written by
// a [Writer].
type Reader struct {
	in  *bufio.Reader
	dec *Decoder
	err error
}

// NewReader starts a read session on r, and reads the stream header.
func NewReader(r io.Reader, opts *Options) (*Reader, error) {
	in := bufio.NewReader(r)
	dec, err := NewDecoder(in, opts)
	if err != nil {
		return nil, err
	}
	return &Reader{
		in:  in,
		dec: dec,
	}, nil
}

// Version returns the format version of the stream being read.
func (r *Reader) Version() semver.Version {
	return r.dec.Version()
}

// Read reads the next top-level object. At the end of the stream,
// Read returns io.EOF. After any other error, the stream is unusable
// and every further Read returns the same error.
func (r *Reader) Read() (Object, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, err := r.in.Peek(1); errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	obj, err := r.dec.Object()
	if err != nil {
		r.err = err
		return nil, err
	}
	return obj, nil
}
