package fragments

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// ErrLongDoubleFormat is wrapped by errors caused by an extended-precision
// float layout that this platform does not use.
var ErrLongDoubleFormat = errors.New("extended float layout mismatch")

// LongDoubleFormat identifies the bit layout of extended-precision
// floats in a stream. Its value is the number of significant bits of
// the layout.
type LongDoubleFormat uint32

const (
	// LongDouble64 is IEEE 754 binary64, stored in 8 bytes.
	LongDouble64 LongDoubleFormat = 64
	// LongDouble80 is the x87 80-bit extended format, stored in a
	// 16 byte slot.
	LongDouble80 LongDoubleFormat = 80
	// LongDouble128 is IEEE 754 binary128, stored in 16 bytes.
	LongDouble128 LongDoubleFormat = 128
)

// NativeLongDouble is the layout written by this package.
const NativeLongDouble = LongDouble64

func (f LongDoubleFormat) String() string {
	switch f {
	case LongDouble64:
		return "64-bit"
	case LongDouble80:
		return "80-bit x87"
	case LongDouble128:
		return "128-bit"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(f))
	}
}

// size returns the number of bytes one value occupies in the stream,
// or 0 for unknown layouts.
func (f LongDoubleFormat) size() int {
	switch f {
	case LongDouble64:
		return 8
	case LongDouble80, LongDouble128:
		return 16
	default:
		return 0
	}
}

// LongDoublePolicy controls what [Decoder.LongDoubles] does with a
// layout other than [NativeLongDouble].
type LongDoublePolicy int

const (
	// RejectLongDouble fails the read.
	RejectLongDouble LongDoublePolicy = iota
	// ConvertLongDouble converts values to float64.
	ConvertLongDouble
)

// toFloat64 converts one stored value of layout f to the nearest
// float64. bs holds exactly f.size() bytes in byte order ord.
func (f LongDoubleFormat) toFloat64(bs []byte, ord ByteOrder) float64 {
	// Normalize to the little-endian slot layout.
	le := make([]byte, len(bs))
	copy(le, bs)
	if canonical(ord) == BigEndian {
		for i, j := 0, len(le)-1; i < j; i, j = i+1, j-1 {
			le[i], le[j] = le[j], le[i]
		}
	}
	switch f {
	case LongDouble80:
		return x87ToFloat64(binary.LittleEndian.Uint64(le[0:8]), binary.LittleEndian.Uint16(le[8:10]))
	case LongDouble128:
		return quadToFloat64(binary.LittleEndian.Uint64(le[8:16]), binary.LittleEndian.Uint64(le[0:8]))
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(le[0:8]))
	}
}

// x87ToFloat64 converts an x87 extended value, given as its 64-bit
// significand (explicit integer bit included) and its sign+exponent
// word.
func x87ToFloat64(mant uint64, signExp uint16) float64 {
	neg := signExp&0x8000 != 0
	exp := int(signExp & 0x7fff)
	var ret float64
	switch {
	case exp == 0x7fff && mant<<1 == 0:
		ret = math.Inf(1)
	case exp == 0x7fff:
		return math.NaN()
	case mant == 0:
		ret = 0
	default:
		if exp == 0 {
			exp = 1
		}
		ret = math.Ldexp(float64(mant), exp-16383-63)
	}
	if neg {
		ret = math.Copysign(ret, -1)
	}
	return ret
}

// quadToFloat64 converts an IEEE 754 binary128 value given as its
// high and low 64-bit halves. The 112-bit fraction is truncated to
// float64's 52 bits.
func quadToFloat64(hi, lo uint64) float64 {
	neg := hi>>63 != 0
	exp := int(hi>>48) & 0x7fff
	fracHi := hi & (1<<48 - 1)
	var ret float64
	switch {
	case exp == 0x7fff && fracHi == 0 && lo == 0:
		ret = math.Inf(1)
	case exp == 0x7fff:
		return math.NaN()
	case exp == 0:
		// Zero, or a subnormal far below float64's range.
		ret = 0
	default:
		frac52 := fracHi<<4 | lo>>60
		ret = math.Ldexp(float64(1<<52|frac52), exp-16383-52)
	}
	if neg {
		ret = math.Copysign(ret, -1)
	}
	return ret
}
