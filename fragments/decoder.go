package fragments

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ErrTruncated is wrapped by every error caused by the input ending
// before a value was complete.
var ErrTruncated = errors.New("stream truncated")

// smallRead is the largest read that is allocated up front. Larger
// reads grow their buffer as data arrives, so that a corrupt length
// prefix cannot force a huge allocation.
const smallRead = 64 << 10

// A Decoder provides utilities to read the object graph wire format
// from an input stream.
type Decoder struct {
	// Order is the byte order to use when reading multi-byte values.
	Order ByteOrder
	// In is the input stream to read.
	In io.Reader

	// offset is the number of bytes consumed off the front of In so
	// far, for error messages.
	offset int64
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Read reads n bytes, with no framing.
func (d *Decoder) Read(n int) ([]byte, error) {
	if n <= smallRead {
		bs := make([]byte, n)
		got, err := io.ReadFull(d.In, bs)
		d.offset += int64(got)
		if err != nil {
			return nil, d.readErr(err, n)
		}
		return bs, nil
	}

	var buf bytes.Buffer
	got, err := io.CopyN(&buf, d.In, int64(n))
	d.offset += got
	if err != nil {
		return nil, d.readErr(err, n)
	}
	return buf.Bytes(), nil
}

func (d *Decoder) readErr(err error, n int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(ErrTruncated, "reading %d bytes at offset %d", n, d.offset)
	}
	return errors.Wrapf(err, "reading %d bytes at offset %d", n, d.offset)
}

// Bytes reads a length-prefixed byte string.
func (d *Decoder) Bytes() ([]byte, error) {
	ln, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	return d.Read(int(ln))
}

// String reads a length-prefixed string.
func (d *Decoder) String() (string, error) {
	bs, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// Strings reads len(ss) strings into ss.
func (d *Decoder) Strings(ss []string) error {
	for i := range ss {
		s, err := d.String()
		if err != nil {
			return err
		}
		ss[i] = s
	}
	return nil
}

// WideString reads a string written by [Encoder.WideString] or
// [Encoder.String], and returns it as runes.
func (d *Decoder) WideString() ([]rune, error) {
	s, err := d.String()
	if err != nil {
		return nil, err
	}
	return []rune(s), nil
}

// Path reads a filesystem path, converting separators to the local
// convention.
func (d *Decoder) Path() (string, error) {
	s, err := d.String()
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(s), nil
}

// Bool reads a bool. Any non-zero byte is true.
func (d *Decoder) Bool() (bool, error) {
	u8, err := d.Uint8()
	if err != nil {
		return false, err
	}
	return u8 != 0, nil
}

// Uint8 reads a uint8.
func (d *Decoder) Uint8() (uint8, error) {
	bs, err := d.Read(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

// Uint16 reads a uint16.
func (d *Decoder) Uint16() (uint16, error) {
	bs, err := d.Read(2)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint16(bs), nil
}

// Uint32 reads a uint32.
func (d *Decoder) Uint32() (uint32, error) {
	bs, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint32(bs), nil
}

// Uint64 reads a uint64.
func (d *Decoder) Uint64() (uint64, error) {
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint64(bs), nil
}

// Int8 reads an int8.
func (d *Decoder) Int8() (int8, error) {
	u, err := d.Uint8()
	return int8(u), err
}

// Int16 reads an int16.
func (d *Decoder) Int16() (int16, error) {
	u, err := d.Uint16()
	return int16(u), err
}

// Int32 reads an int32.
func (d *Decoder) Int32() (int32, error) {
	u, err := d.Uint32()
	return int32(u), err
}

// Int64 reads an int64.
func (d *Decoder) Int64() (int64, error) {
	u, err := d.Uint64()
	return int64(u), err
}

// Float32 reads an IEEE 754 single precision float.
func (d *Decoder) Float32() (float32, error) {
	u, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// Float64 reads an IEEE 754 double precision float.
func (d *Decoder) Float64() (float64, error) {
	u, err := d.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// LongDoubles reads len(vs) extended-precision floats into vs, and
// returns the layout recorded in the stream.
//
// If the recorded layout is not [NativeLongDouble], LongDoubles
// returns an error wrapping [ErrLongDoubleFormat], unless policy is
// [ConvertLongDouble]. In that case the values are converted to the
// nearest float64 (losing precision), and the caller should check
// the returned format and report the conversion.
func (d *Decoder) LongDoubles(vs []float64, policy LongDoublePolicy) (LongDoubleFormat, error) {
	u32, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	format := LongDoubleFormat(u32)
	if format == NativeLongDouble {
		return format, ReadValues(d, vs)
	}
	size := format.size()
	if size == 0 {
		return format, errors.Wrapf(ErrLongDoubleFormat, "unknown extended float layout tag %d at offset %d", u32, d.offset-4)
	}
	if policy != ConvertLongDouble {
		return format, errors.Wrapf(ErrLongDoubleFormat, "stream has %s extended floats, this platform uses %s", format, NativeLongDouble)
	}
	for i := range vs {
		bs, err := d.Read(size)
		if err != nil {
			return format, err
		}
		vs[i] = format.toFloat64(bs, d.Order)
	}
	return format, nil
}

// ByteOrderFlag reads a byte order flag byte, and sets
// [Decoder.Order] to match it.
func (d *Decoder) ByteOrderFlag() error {
	v, err := d.Uint8()
	if err != nil {
		return err
	}
	switch v {
	case 'B':
		d.Order = BigEndian
	case 'l':
		d.Order = LittleEndian
	default:
		return errors.Newf("unknown byte order flag %q", v)
	}
	return nil
}

// ReadValues reads len(vs) fixed-width values into vs. Reading into
// an empty slice is a no-op.
func ReadValues[T Fixed](d *Decoder, vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	bs, err := d.Read(binary.Size(vs))
	if err != nil {
		return err
	}
	if _, err := binary.Decode(bs, d.Order, vs); err != nil {
		return errors.Wrapf(err, "decoding %T", vs)
	}
	return nil
}
