package objgraph_test

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/danderson/objgraph"
	"github.com/danderson/objgraph/fragments"
	"github.com/google/go-cmp/cmp"
)

// fieldsRoundTrip writes in with Encoder.Fields, and reads it back
// into out with Decoder.Fields.
func fieldsRoundTrip(t *testing.T, in, out any) {
	t.Helper()
	opts := beOpts(t)
	e, err := objgraph.NewEncoder(opts)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	if err := e.Fields(in); err != nil {
		t.Fatalf("Fields(%T) failed: %v", in, err)
	}
	d, err := objgraph.NewDecoder(bytes.NewReader(e.Out), opts)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if err := d.Fields(out); err != nil {
		t.Fatalf("Fields(%T) read failed: %v", out, err)
	}
}

func TestFieldsEncoding(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []byte
	}{
		{
			"simple",
			Simple{A: -2, B: true},
			[]byte{0xff, 0xfe, 0x01},
		},
		{
			"nested",
			&Nested{A: 1, B: Simple{A: 2, B: false}},
			[]byte{0x01, 0x00, 0x02, 0x00},
		},
		{
			"embedded",
			Embedded{Simple: Simple{A: 3, B: true}, C: 4},
			[]byte{0x00, 0x03, 0x01, 0x04},
		},
		{
			"nil embedded pointer",
			Embedded_P{C: 4},
			[]byte{0x00, 0x00, 0x00, 0x04},
		},
		{
			"map in key order",
			struct{ M map[uint8]string }{map[uint8]string{2: "b", 1: "a"}},
			[]byte{
				0x00, 0x00, 0x00, 0x02,
				0x01, 0x00, 0x00, 0x00, 0x01, 'a',
				0x02, 0x00, 0x00, 0x00, 0x01, 'b',
			},
		},
		{
			"array without count",
			struct{ A [2]uint16 }{[2]uint16{1, 2}},
			[]byte{0x00, 0x01, 0x00, 0x02},
		},
		{
			"slice with count",
			struct{ S []uint16 }{[]uint16{1, 2}},
			[]byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00, 0x02},
		},
		{
			"wide string",
			struct {
				W []rune `objgraph:"wide"`
			}{[]rune("é")},
			[]byte{0x00, 0x00, 0x00, 0x02, 0xc3, 0xa9},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := objgraph.NewEncoder(&objgraph.Options{Order: fragments.BigEndian})
			if err != nil {
				t.Fatalf("NewEncoder failed: %v", err)
			}
			e.Out = e.Out[:0]
			if err := e.Fields(tc.in); err != nil {
				t.Fatalf("Fields failed: %v", err)
			}
			if !bytes.Equal(e.Out, tc.want) {
				t.Errorf("wrong encoding:\n  got: % x\n want: % x", e.Out, tc.want)
			}
		})
	}
}

func TestFieldsEmbeddedPointer(t *testing.T) {
	in := Embedded_P{Simple: &Simple{A: 7, B: true}, C: 1}
	var got Embedded_P
	fieldsRoundTrip(t, &in, &got)
	if diff := cmp.Diff(got, in); diff != "" {
		t.Errorf("wrong round trip (-got+want):\n%s", diff)
	}
}

func TestFieldsRecursiveType(t *testing.T) {
	in := Tree{
		Label: "root",
		Children: []Tree{
			{Label: "a"},
			{Label: "b", Children: []Tree{{Label: "c"}}},
		},
	}
	var got Tree
	fieldsRoundTrip(t, &in, &got)
	if diff := cmp.Diff(got, in); diff != "" {
		t.Errorf("wrong round trip (-got+want):\n%s", diff)
	}
}

type codePoint rune

type runeLabel []rune

type Labeled struct {
	Label runeLabel `objgraph:"wide"`
}

func TestFieldsWideNamedSlice(t *testing.T) {
	in := Labeled{Label: runeLabel("hé")}
	var got Labeled
	fieldsRoundTrip(t, in, &got)
	if diff := cmp.Diff(got, in); diff != "" {
		t.Errorf("round trip mismatch (-got+want):\n%s", diff)
	}
}

func TestFieldsUnrepresentable(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"int", struct{ A int }{}},
		{"uint", struct{ A uint }{}},
		{"pointer to non-object", struct{ A *Simple }{}},
		{"plain interface", struct{ A any }{}},
		{"channel", struct{ A chan int }{}},
		{"func", struct{ A func() }{}},
		{"complex", struct{ A complex128 }{}},
		{"struct map key", struct{ A map[Simple]bool }{}},
		{"bad since", struct {
			A uint32 `objgraph:"since=banana"`
		}{}},
		{"bad wide", struct {
			A string `objgraph:"wide"`
		}{}},
		{"wide named rune", struct {
			A []codePoint `objgraph:"wide"`
		}{A: []codePoint("hé")}},
		{"bad path", struct {
			A []byte `objgraph:"path"`
		}{}},
		{"bad longdouble", struct {
			A float32 `objgraph:"longdouble"`
		}{}},
		{"unknown option", struct {
			A uint32 `objgraph:"frobnicate"`
		}{}},
		{"not a struct", uint32(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := objgraph.NewEncoder(nil)
			if err != nil {
				t.Fatalf("NewEncoder failed: %v", err)
			}
			err = e.Fields(tc.in)
			var te objgraph.TypeError
			if !errors.As(err, &te) {
				t.Errorf("Fields(%T) got err %v, want TypeError", tc.in, err)
			}
		})
	}
}

func TestFieldsDecodeTarget(t *testing.T) {
	d, err := objgraph.NewDecoder(bytes.NewReader(beHeader(1, 1, 0)), nil)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if err := d.Fields(Simple{}); err == nil {
		t.Errorf("Fields into non-pointer succeeded")
	}
	if err := d.Fields((*Simple)(nil)); err == nil {
		t.Errorf("Fields into nil pointer succeeded")
	}
}
