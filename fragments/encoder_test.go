package fragments_test

import (
	"bytes"
	"testing"

	"github.com/danderson/objgraph/fragments"
)

func TestEncoder(t *testing.T) {
	tests := []struct {
		name string
		in   func(*fragments.Encoder)
		want []byte
	}{
		{
			"raw bytes",
			func(e *fragments.Encoder) {
				e.Write([]byte{1, 2, 3})
			},
			[]byte{0x01, 0x02, 0x03},
		},

		{
			"byte string",
			func(e *fragments.Encoder) {
				e.Bytes([]byte{1, 2, 3})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x03, // length
				0x01, 0x02, 0x03, // val
			},
		},

		{
			"string",
			func(e *fragments.Encoder) {
				e.String("foo")
			},
			[]byte{
				0x00, 0x00, 0x00, 0x03, // length
				0x66, 0x6f, 0x6f, // val, no terminator
			},
		},

		{
			"empty string",
			func(e *fragments.Encoder) {
				e.String("")
			},
			[]byte{0x00, 0x00, 0x00, 0x00},
		},

		{
			"non-ascii string",
			func(e *fragments.Encoder) {
				e.String("é")
			},
			[]byte{
				0x00, 0x00, 0x00, 0x02, // length in bytes
				0xc3, 0xa9,
			},
		},

		{
			"wide string",
			func(e *fragments.Encoder) {
				e.WideString([]rune("aé€"))
			},
			[]byte{
				0x00, 0x00, 0x00, 0x06, // length in utf-8 bytes
				0x61,
				0xc3, 0xa9,
				0xe2, 0x82, 0xac,
			},
		},

		{
			"invalid rune",
			func(e *fragments.Encoder) {
				e.WideString([]rune{0xd800})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x03,
				0xef, 0xbf, 0xbd, // U+FFFD
			},
		},

		{
			"path",
			func(e *fragments.Encoder) {
				e.Path("a/b")
			},
			[]byte{
				0x00, 0x00, 0x00, 0x03,
				'a', '/', 'b',
			},
		},

		{
			"strings",
			func(e *fragments.Encoder) {
				e.Strings([]string{"a", "", "bc"})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x01, 'a',
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x02, 'b', 'c',
			},
		},

		{
			"uints",
			func(e *fragments.Encoder) {
				e.Uint8(42)
				e.Uint16(66)
				e.Uint32(42)
				e.Uint64(66)
			},
			[]byte{
				0x2a,
				0x00, 0x42, // no padding
				0x00, 0x00, 0x00, 0x2a,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x42,
			},
		},

		{
			"ints",
			func(e *fragments.Encoder) {
				e.Int8(-1)
				e.Int16(-2)
				e.Int32(-3)
				e.Int64(-4)
			},
			[]byte{
				0xff,
				0xff, 0xfe,
				0xff, 0xff, 0xff, 0xfd,
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfc,
			},
		},

		{
			"bools",
			func(e *fragments.Encoder) {
				e.Bool(true)
				e.Bool(false)
			},
			[]byte{0x01, 0x00},
		},

		{
			"floats",
			func(e *fragments.Encoder) {
				e.Float32(1.5)
				e.Float64(1.5)
			},
			[]byte{
				0x3f, 0xc0, 0x00, 0x00,
				0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},

		{
			"array",
			func(e *fragments.Encoder) {
				fragments.AppendValues(e, []uint16{1, 2, 3})
			},
			[]byte{
				0x00, 0x01,
				0x00, 0x02,
				0x00, 0x03,
			},
		},

		{
			"empty array",
			func(e *fragments.Encoder) {
				fragments.AppendValues(e, []float64{})
			},
			nil,
		},

		{
			"float array",
			func(e *fragments.Encoder) {
				fragments.AppendValues(e, []float32{1.5, -2})
			},
			[]byte{
				0x3f, 0xc0, 0x00, 0x00,
				0xc0, 0x00, 0x00, 0x00,
			},
		},

		{
			"long doubles",
			func(e *fragments.Encoder) {
				e.LongDoubles([]float64{1.5})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x40, // layout tag 64
				0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},

		{
			"byte order flag",
			func(e *fragments.Encoder) {
				e.Order = fragments.BigEndian
				e.ByteOrderFlag()
				e.Order = fragments.LittleEndian
				e.ByteOrderFlag()
			},
			[]byte{'B', 'l'},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := fragments.Encoder{
				Order: fragments.BigEndian,
			}
			tc.in(&e)
			if got := e.Out; !bytes.Equal(got, tc.want) {
				t.Errorf("incorrect encode:\n  got: % x\n want: % x", got, tc.want)
			} else if testing.Verbose() {
				t.Logf("encoder got: % x", got)
			}
		})
	}
}

func TestEncoderLittleEndian(t *testing.T) {
	e := fragments.Encoder{Order: fragments.LittleEndian}
	e.Uint32(0x12345678)
	e.String("ab")
	want := []byte{
		0x78, 0x56, 0x34, 0x12,
		0x02, 0x00, 0x00, 0x00, 'a', 'b',
	}
	if !bytes.Equal(e.Out, want) {
		t.Errorf("incorrect encode:\n  got: % x\n want: % x", e.Out, want)
	}
}
