package fragments

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Fixed is the set of types that have a fixed-width encoding, and
// can be written in bulk by [AppendValues] and read back by
// [ReadValues].
type Fixed interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// An Encoder provides utilities to write the object graph wire format
// to a byte slice.
type Encoder struct {
	// Order is the byte order to use when encoding multi-byte values.
	Order ByteOrder
	// Out is the encoded output.
	Out []byte
}

// Write writes bs as-is to the output.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// Bytes writes bs to the output, prefixed by its length.
func (e *Encoder) Bytes(bs []byte) {
	e.length(len(bs))
	e.Out = append(e.Out, bs...)
}

// String writes s to the output, prefixed by its length in bytes.
func (e *Encoder) String(s string) {
	e.length(len(s))
	e.Out = append(e.Out, s...)
}

// Strings writes each string of ss in turn. The number of strings is
// not written.
func (e *Encoder) Strings(ss []string) {
	for _, s := range ss {
		e.String(s)
	}
}

// WideString writes ws as a UTF-8 string. Wide and narrow strings
// are indistinguishable in the output. Runes that are not valid
// Unicode code points encode as U+FFFD.
func (e *Encoder) WideString(ws []rune) {
	n := 0
	for _, r := range ws {
		n += runeLen(r)
	}
	e.length(n)
	for _, r := range ws {
		e.Out = utf8.AppendRune(e.Out, r)
	}
}

func runeLen(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	return utf8.RuneLen(utf8.RuneError)
}

// Path writes the native string form of a filesystem path.
func (e *Encoder) Path(p string) {
	e.String(p)
}

// Bool writes b as a single byte, 1 for true and 0 for false.
func (e *Encoder) Bool(b bool) {
	if b {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

// Uint8 writes a uint8.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Uint16 writes a uint16.
func (e *Encoder) Uint16(u16 uint16) {
	e.Out = e.Order.AppendUint16(e.Out, u16)
}

// Uint32 writes a uint32.
func (e *Encoder) Uint32(u32 uint32) {
	e.Out = e.Order.AppendUint32(e.Out, u32)
}

// Uint64 writes a uint64.
func (e *Encoder) Uint64(u64 uint64) {
	e.Out = e.Order.AppendUint64(e.Out, u64)
}

// Int8 writes an int8.
func (e *Encoder) Int8(i8 int8) { e.Uint8(uint8(i8)) }

// Int16 writes an int16.
func (e *Encoder) Int16(i16 int16) { e.Uint16(uint16(i16)) }

// Int32 writes an int32.
func (e *Encoder) Int32(i32 int32) { e.Uint32(uint32(i32)) }

// Int64 writes an int64.
func (e *Encoder) Int64(i64 int64) { e.Uint64(uint64(i64)) }

// Float32 writes an IEEE 754 single precision float.
func (e *Encoder) Float32(f float32) {
	e.Uint32(math.Float32bits(f))
}

// Float64 writes an IEEE 754 double precision float.
func (e *Encoder) Float64(f float64) {
	e.Uint64(math.Float64bits(f))
}

// LongDoubles writes vs as extended-precision floats: a uint32 tag
// naming the layout in use, followed by the values. Go has no type
// wider than float64, so the layout is always [NativeLongDouble].
func (e *Encoder) LongDoubles(vs []float64) {
	e.Uint32(uint32(NativeLongDouble))
	AppendValues(e, vs)
}

// ByteOrderFlag writes the byte order flag byte ('l' or 'B') that
// matches [Encoder.Order].
func (e *Encoder) ByteOrderFlag() {
	e.Write([]byte{e.Order.flag()})
}

func (e *Encoder) length(n int) {
	if uint64(n) > math.MaxUint32 {
		panic(fmt.Sprintf("length %d does not fit the uint32 length prefix", n))
	}
	e.Uint32(uint32(n))
}

// AppendValues writes each value of vs in turn, with no length
// prefix or separator. Writing an empty slice is a no-op.
func AppendValues[T Fixed](e *Encoder, vs []T) {
	if len(vs) == 0 {
		return
	}
	out, err := binary.Append(e.Out, e.Order, vs)
	if err != nil {
		// Unreachable, Fixed only admits fixed-size types.
		panic(fmt.Sprintf("encoding %T: %v", vs, err))
	}
	e.Out = out
}
