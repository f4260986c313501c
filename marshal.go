package objgraph

import (
	"reflect"
	"slices"

	"github.com/cockroachdb/errors"
)

// Fields writes the exported fields of the struct v in declaration
// order. v must be a struct or a non-nil pointer to one.
//
// Fields traverses v recursively, using the following type-dependent
// encodings:
//
// bool, int{8,16,32,64}, uint{8,16,32,64}, float32, float64 and
// string values use the corresponding [fragments.Encoder] method.
//
// Fields whose type is a pointer or interface implementing [Object]
// are written as object references with [Encoder.Object].
//
// Struct values whose pointer implements [Object] are written inline
// by calling their MarshalGraph method, without an object ID or type
// tag. Other struct values are written as their exported fields, in
// declaration order. Embedded struct fields are written as if their
// inner exported fields were fields in the outer struct.
//
// Array values write each element, with no count. Slice values write
// a uint32 count followed by each element. Nil slices encode the same
// as an empty slice. []byte values are written by
// [fragments.Encoder.Bytes].
//
// Map values write a uint32 count followed by key/value pairs in
// ascending key order. The map's key underlying type must be a
// fixed-width integer, float, bool or string.
//
// Struct fields can be further customized with an "objgraph" tag:
//
//	type Example struct {
//	    // Skipped.
//	    Cache []byte `objgraph:"-"`
//	    // Only present in streams of version 1.0.8 or later.
//	    Extra uint32 `objgraph:"since=1.0.8"`
//	    // Written as a wide string.
//	    Label []rune `objgraph:"wide"`
//	    // Written as a filesystem path.
//	    Source string `objgraph:"path"`
//	    // Written as extended-precision floats.
//	    Scale [4]float64 `objgraph:"longdouble"`
//	}
//
// int, uint, uintptr, complex64, complex128, pointers to non-Object
// types, interfaces that don't implement Object, channel and function
// values cannot be encoded. Attempting to encode such values causes
// Fields to return a [TypeError].
func (e *Encoder) Fields(v any) error {
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return errors.Newf("cannot write fields of nil %s", val.Type())
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return typeErr(reflect.TypeOf(v), "Fields requires a struct")
	}
	enc, err := fieldsEncoderFor(val.Type())
	if err != nil {
		return err
	}
	return enc(e, val)
}

type encoderFunc func(e *Encoder, v reflect.Value) error

var (
	encoders       cache[reflect.Type, encoderFunc]
	fieldsEncoders cache[reflect.Type, encoderFunc]
)

// fieldsEncoderFor returns the encoder that writes the fields of
// struct t, ignoring any Object implementation t has.
func fieldsEncoderFor(t reflect.Type) (ret encoderFunc, err error) {
	if ret, err := fieldsEncoders.Get(t); !errors.Is(err, errNotFound) {
		return ret, err
	}
	defer func() {
		if err != nil {
			fieldsEncoders.SetErr(t, err)
		} else {
			fieldsEncoders.Set(t, ret)
		}
	}()
	b := encoderBuilder{visiting: map[reflect.Type]bool{}}
	return b.newStructEncoder(t)
}

func encoderFor(t reflect.Type) (encoderFunc, error) {
	b := encoderBuilder{visiting: map[reflect.Type]bool{}}
	return b.encoderFor(t)
}

// encoderBuilder derives encoders. It tracks the types being derived
// by the current goroutine, so that recursive types resolve to a lazy
// lookup of their own encoder.
type encoderBuilder struct {
	visiting map[reflect.Type]bool
}

func (b *encoderBuilder) encoderFor(t reflect.Type) (ret encoderFunc, err error) {
	if ret, err := encoders.Get(t); !errors.Is(err, errNotFound) {
		return ret, err
	}
	if b.visiting[t] {
		return newLazyEncoder(t), nil
	}
	b.visiting[t] = true
	// Note, defer captures the type value in case it gets messed with
	// below.
	defer func(t reflect.Type) {
		delete(b.visiting, t)
		if err != nil {
			encoders.SetErr(t, err)
		} else {
			encoders.Set(t, ret)
		}
	}(t)

	if implementsObject(t) {
		return newObjectEncoder(), nil
	}
	if isInlineObject(t) {
		return newInlineObjectEncoder(t), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return nil, typeErr(t, "pointers are only supported to Object types, use a value or implement Object")
	case reflect.Interface:
		return nil, typeErr(t, "interfaces must implement Object")
	case reflect.Bool:
		return newBoolEncoder(), nil
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return nil, typeErr(t, "int and uint aren't portable, use fixed width integers")
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return newIntEncoder(t), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return newUintEncoder(t), nil
	case reflect.Float32, reflect.Float64:
		return newFloatEncoder(t), nil
	case reflect.String:
		return newStringEncoder(), nil
	case reflect.Slice:
		return b.newSliceEncoder(t)
	case reflect.Array:
		return b.newArrayEncoder(t)
	case reflect.Struct:
		return b.newStructEncoder(t)
	case reflect.Map:
		return b.newMapEncoder(t)
	}
	return nil, typeErr(t, "no objgraph mapping for type")
}

func newLazyEncoder(t reflect.Type) encoderFunc {
	return func(e *Encoder, v reflect.Value) error {
		enc, err := encoderFor(t)
		if err != nil {
			return err
		}
		return enc(e, v)
	}
}

func newObjectEncoder() encoderFunc {
	return func(e *Encoder, v reflect.Value) error {
		obj, _ := v.Interface().(Object)
		return e.Object(obj)
	}
}

func newInlineObjectEncoder(t reflect.Type) encoderFunc {
	return func(e *Encoder, v reflect.Value) error {
		if !v.CanAddr() {
			cp := reflect.New(t).Elem()
			cp.Set(v)
			v = cp
		}
		return v.Addr().Interface().(Object).MarshalGraph(e)
	}
}

func newBoolEncoder() encoderFunc {
	return func(e *Encoder, v reflect.Value) error {
		e.Bool(v.Bool())
		return nil
	}
}

func newIntEncoder(t reflect.Type) encoderFunc {
	switch t.Size() {
	case 1:
		return func(e *Encoder, v reflect.Value) error {
			e.Int8(int8(v.Int()))
			return nil
		}
	case 2:
		return func(e *Encoder, v reflect.Value) error {
			e.Int16(int16(v.Int()))
			return nil
		}
	case 4:
		return func(e *Encoder, v reflect.Value) error {
			e.Int32(int32(v.Int()))
			return nil
		}
	case 8:
		return func(e *Encoder, v reflect.Value) error {
			e.Int64(v.Int())
			return nil
		}
	default:
		panic("invalid newIntEncoder type")
	}
}

func newUintEncoder(t reflect.Type) encoderFunc {
	switch t.Size() {
	case 1:
		return func(e *Encoder, v reflect.Value) error {
			e.Uint8(uint8(v.Uint()))
			return nil
		}
	case 2:
		return func(e *Encoder, v reflect.Value) error {
			e.Uint16(uint16(v.Uint()))
			return nil
		}
	case 4:
		return func(e *Encoder, v reflect.Value) error {
			e.Uint32(uint32(v.Uint()))
			return nil
		}
	case 8:
		return func(e *Encoder, v reflect.Value) error {
			e.Uint64(v.Uint())
			return nil
		}
	default:
		panic("invalid newUintEncoder type")
	}
}

func newFloatEncoder(t reflect.Type) encoderFunc {
	if t.Kind() == reflect.Float32 {
		return func(e *Encoder, v reflect.Value) error {
			e.Float32(float32(v.Float()))
			return nil
		}
	}
	return func(e *Encoder, v reflect.Value) error {
		e.Float64(v.Float())
		return nil
	}
}

func newStringEncoder() encoderFunc {
	return func(e *Encoder, v reflect.Value) error {
		e.String(v.String())
		return nil
	}
}

func (b *encoderBuilder) newSliceEncoder(t reflect.Type) (encoderFunc, error) {
	if t.Elem().Kind() == reflect.Uint8 {
		// Fast path for []byte
		return func(e *Encoder, v reflect.Value) error {
			e.Bytes(v.Bytes())
			return nil
		}, nil
	}

	elemEnc, err := b.encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(e *Encoder, v reflect.Value) error {
		e.Uint32(uint32(v.Len()))
		for i := range v.Len() {
			if err := elemEnc(e, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

func (b *encoderBuilder) newArrayEncoder(t reflect.Type) (encoderFunc, error) {
	elemEnc, err := b.encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(e *Encoder, v reflect.Value) error {
		for i := range v.Len() {
			if err := elemEnc(e, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

func (b *encoderBuilder) newStructEncoder(t reflect.Type) (encoderFunc, error) {
	fs, err := getStructInfo(t)
	if err != nil {
		return nil, TypeError{t.String(), errors.Wrap(err, "getting struct info")}
	}

	var frags []encoderFunc
	for _, f := range fs.StructFields {
		fEnc, err := b.newStructFieldEncoder(f)
		if err != nil {
			return nil, err
		}
		frags = append(frags, fEnc)
	}

	fn := func(e *Encoder, v reflect.Value) error {
		for _, frag := range frags {
			if err := frag(e, v); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

// Note, the returned fragment encoder expects to be given the entire
// struct, not just the one field being encoded.
func (b *encoderBuilder) newStructFieldEncoder(f *structField) (encoderFunc, error) {
	var fEnc encoderFunc
	switch {
	case f.Wide:
		fEnc = func(e *Encoder, v reflect.Value) error {
			e.WideString(v.Convert(reflect.TypeFor[[]rune]()).Interface().([]rune))
			return nil
		}
	case f.Path:
		fEnc = func(e *Encoder, v reflect.Value) error {
			e.Path(v.String())
			return nil
		}
	case f.LongDouble:
		fEnc = newLongDoubleEncoder(f.Type)
	default:
		var err error
		fEnc, err = b.encoderFor(f.Type)
		if err != nil {
			return nil, err
		}
	}

	since, gated := f.Since.GetOK()
	fn := func(e *Encoder, v reflect.Value) error {
		if gated && !e.version.GE(since) {
			return nil
		}
		fv := f.GetWithZero(v)
		if err := fEnc(e, fv); err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
		return nil
	}
	return fn, nil
}

func newLongDoubleEncoder(t reflect.Type) encoderFunc {
	if t.Kind() == reflect.Array {
		return func(e *Encoder, v reflect.Value) error {
			vs := make([]float64, v.Len())
			for i := range vs {
				vs[i] = v.Index(i).Float()
			}
			e.LongDoubles(vs)
			return nil
		}
	}
	return func(e *Encoder, v reflect.Value) error {
		e.LongDoubles([]float64{v.Float()})
		return nil
	}
}

func (b *encoderBuilder) newMapEncoder(t reflect.Type) (encoderFunc, error) {
	kt := t.Key()
	if !mapKeyKinds.Has(kt.Kind()) {
		return nil, typeErr(t, "invalid map key type %s", kt)
	}
	kEnc, err := b.encoderFor(kt)
	if err != nil {
		return nil, err
	}
	vEnc, err := b.encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	kCmp := mapKeyCmp(kt)

	fn := func(e *Encoder, v reflect.Value) error {
		ks := v.MapKeys()
		slices.SortFunc(ks, kCmp)
		e.Uint32(uint32(len(ks)))
		for _, mk := range ks {
			if err := kEnc(e, mk); err != nil {
				return err
			}
			if err := vEnc(e, v.MapIndex(mk)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}
