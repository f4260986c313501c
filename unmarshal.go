package objgraph

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// Fields reads the exported fields of the struct pointed to by v, in
// declaration order. v must be a non-nil pointer to a struct.
//
// Generally, Fields applies the inverse of the rules used by
// [Encoder.Fields], and the same "objgraph" struct tags apply.
//
// Fields of a pointer or interface type implementing [Object] are set
// to the object read by [Decoder.Object]. If the referenced object
// cannot be assigned to the field, Fields returns a [TypeError].
//
// When decoding into a slice, Fields replaces the slice's contents
// with the incoming elements. When decoding into a map, Fields
// allocates a new map and stores the incoming key/value pairs in
// stream order. If the incoming map contains duplicate keys, all but
// the last value are discarded. Empty slices and maps decode as nil.
func (d *Decoder) Fields(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer {
		return errors.Newf("cannot read fields into non-pointer %T", v)
	}
	if val.IsNil() {
		return errors.Newf("cannot read fields into nil %T", v)
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return typeErr(val.Type(), "Fields requires a pointer to a struct")
	}
	dec, err := fieldsDecoderFor(val.Type())
	if err != nil {
		return err
	}
	return dec(d, val)
}

type decoderFunc func(d *Decoder, v reflect.Value) error

var (
	decoders       cache[reflect.Type, decoderFunc]
	fieldsDecoders cache[reflect.Type, decoderFunc]
)

// fieldsDecoderFor returns the decoder that reads the fields of
// struct t, ignoring any Object implementation t has.
func fieldsDecoderFor(t reflect.Type) (ret decoderFunc, err error) {
	if ret, err := fieldsDecoders.Get(t); !errors.Is(err, errNotFound) {
		return ret, err
	}
	defer func() {
		if err != nil {
			fieldsDecoders.SetErr(t, err)
		} else {
			fieldsDecoders.Set(t, ret)
		}
	}()
	b := decoderBuilder{visiting: map[reflect.Type]bool{}}
	return b.newStructDecoder(t)
}

// decoderFor returns the decoder func for the given type, if the type
// is representable in an object graph.
func decoderFor(t reflect.Type) (decoderFunc, error) {
	b := decoderBuilder{visiting: map[reflect.Type]bool{}}
	return b.decoderFor(t)
}

// decoderBuilder is the decoding counterpart of encoderBuilder.
type decoderBuilder struct {
	visiting map[reflect.Type]bool
}

func (b *decoderBuilder) decoderFor(t reflect.Type) (ret decoderFunc, err error) {
	if ret, err := decoders.Get(t); !errors.Is(err, errNotFound) {
		return ret, err
	}
	if b.visiting[t] {
		return newLazyDecoder(t), nil
	}
	b.visiting[t] = true
	// Note, defer captures the type value before we mess with it
	// below.
	defer func(t reflect.Type) {
		delete(b.visiting, t)
		if err != nil {
			decoders.SetErr(t, err)
		} else {
			decoders.Set(t, ret)
		}
	}(t)

	if implementsObject(t) {
		return newObjectDecoder(t), nil
	}
	if isInlineObject(t) {
		return newInlineObjectDecoder(), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return nil, typeErr(t, "pointers are only supported to Object types, use a value or implement Object")
	case reflect.Interface:
		return nil, typeErr(t, "interfaces must implement Object")
	case reflect.Bool:
		return newBoolDecoder(), nil
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return nil, typeErr(t, "int and uint aren't portable, use fixed width integers")
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return newIntDecoder(t), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return newUintDecoder(t), nil
	case reflect.Float32, reflect.Float64:
		return newFloatDecoder(t), nil
	case reflect.String:
		return newStringDecoder(), nil
	case reflect.Slice:
		return b.newSliceDecoder(t)
	case reflect.Array:
		return b.newArrayDecoder(t)
	case reflect.Struct:
		return b.newStructDecoder(t)
	case reflect.Map:
		return b.newMapDecoder(t)
	}

	return nil, typeErr(t, "no objgraph mapping for type")
}

func newLazyDecoder(t reflect.Type) decoderFunc {
	return func(d *Decoder, v reflect.Value) error {
		dec, err := decoderFor(t)
		if err != nil {
			return err
		}
		return dec(d, v)
	}
}

func newObjectDecoder(t reflect.Type) decoderFunc {
	return func(d *Decoder, v reflect.Value) error {
		obj, err := d.Object()
		if err != nil {
			return err
		}
		if obj == nil {
			v.SetZero()
			return nil
		}
		ov := reflect.ValueOf(obj)
		if !ov.Type().AssignableTo(t) {
			return typeErr(ov.Type(), "object is not assignable to %s", t)
		}
		v.Set(ov)
		return nil
	}
}

func newInlineObjectDecoder() decoderFunc {
	return func(d *Decoder, v reflect.Value) error {
		return v.Addr().Interface().(Object).UnmarshalGraph(d)
	}
}

func newBoolDecoder() decoderFunc {
	return func(d *Decoder, v reflect.Value) error {
		b, err := d.Bool()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	}
}

func newIntDecoder(t reflect.Type) decoderFunc {
	switch t.Size() {
	case 1:
		return func(d *Decoder, v reflect.Value) error {
			i8, err := d.Int8()
			if err != nil {
				return err
			}
			v.SetInt(int64(i8))
			return nil
		}
	case 2:
		return func(d *Decoder, v reflect.Value) error {
			i16, err := d.Int16()
			if err != nil {
				return err
			}
			v.SetInt(int64(i16))
			return nil
		}
	case 4:
		return func(d *Decoder, v reflect.Value) error {
			i32, err := d.Int32()
			if err != nil {
				return err
			}
			v.SetInt(int64(i32))
			return nil
		}
	case 8:
		return func(d *Decoder, v reflect.Value) error {
			i64, err := d.Int64()
			if err != nil {
				return err
			}
			v.SetInt(i64)
			return nil
		}
	default:
		panic("invalid newIntDecoder type")
	}
}

func newUintDecoder(t reflect.Type) decoderFunc {
	switch t.Size() {
	case 1:
		return func(d *Decoder, v reflect.Value) error {
			u8, err := d.Uint8()
			if err != nil {
				return err
			}
			v.SetUint(uint64(u8))
			return nil
		}
	case 2:
		return func(d *Decoder, v reflect.Value) error {
			u16, err := d.Uint16()
			if err != nil {
				return err
			}
			v.SetUint(uint64(u16))
			return nil
		}
	case 4:
		return func(d *Decoder, v reflect.Value) error {
			u32, err := d.Uint32()
			if err != nil {
				return err
			}
			v.SetUint(uint64(u32))
			return nil
		}
	case 8:
		return func(d *Decoder, v reflect.Value) error {
			u64, err := d.Uint64()
			if err != nil {
				return err
			}
			v.SetUint(u64)
			return nil
		}
	default:
		panic("invalid newUintDecoder type")
	}
}

func newFloatDecoder(t reflect.Type) decoderFunc {
	if t.Kind() == reflect.Float32 {
		return func(d *Decoder, v reflect.Value) error {
			f, err := d.Float32()
			if err != nil {
				return err
			}
			v.SetFloat(float64(f))
			return nil
		}
	}
	return func(d *Decoder, v reflect.Value) error {
		f, err := d.Float64()
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil
	}
}

func newStringDecoder() decoderFunc {
	return func(d *Decoder, v reflect.Value) error {
		s, err := d.String()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	}
}

func (b *decoderBuilder) newSliceDecoder(t reflect.Type) (decoderFunc, error) {
	if t.Elem().Kind() == reflect.Uint8 {
		fn := func(d *Decoder, v reflect.Value) error {
			bs, err := d.Bytes()
			if err != nil {
				return err
			}
			if len(bs) == 0 {
				v.SetZero()
				return nil
			}
			v.SetBytes(bs)
			return nil
		}
		return fn, nil
	}

	elemDec, err := b.decoderFor(t.Elem())
	if err != nil {
		return nil, err
	}

	fn := func(d *Decoder, v reflect.Value) error {
		n, err := d.Uint32()
		if err != nil {
			return err
		}
		if n == 0 {
			v.SetZero()
			return nil
		}
		v.Set(v.Slice(0, 0))
		// n comes from the stream, grow as elements arrive.
		for i := range int(n) {
			v.Grow(1)
			v.Set(v.Slice(0, i+1))
			v.Index(i).SetZero()
			if err := elemDec(d, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

func (b *decoderBuilder) newArrayDecoder(t reflect.Type) (decoderFunc, error) {
	elemDec, err := b.decoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(d *Decoder, v reflect.Value) error {
		for i := range v.Len() {
			if err := elemDec(d, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

func (b *decoderBuilder) newStructDecoder(t reflect.Type) (decoderFunc, error) {
	fs, err := getStructInfo(t)
	if err != nil {
		return nil, TypeError{t.String(), errors.Wrap(err, "getting struct info")}
	}

	var frags []decoderFunc
	for _, f := range fs.StructFields {
		fDec, err := b.newStructFieldDecoder(f)
		if err != nil {
			return nil, err
		}
		frags = append(frags, fDec)
	}

	fn := func(d *Decoder, v reflect.Value) error {
		for _, frag := range frags {
			if err := frag(d, v); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

// Note, the returned fragment decoder expects to be given the entire
// struct, not just the one field being decoded.
func (b *decoderBuilder) newStructFieldDecoder(f *structField) (decoderFunc, error) {
	var fDec decoderFunc
	switch {
	case f.Wide:
		fDec = func(d *Decoder, v reflect.Value) error {
			rs, err := d.WideString()
			if err != nil {
				return err
			}
			if len(rs) == 0 {
				v.SetZero()
				return nil
			}
			v.Set(reflect.ValueOf(rs).Convert(v.Type()))
			return nil
		}
	case f.Path:
		fDec = func(d *Decoder, v reflect.Value) error {
			p, err := d.Path()
			if err != nil {
				return err
			}
			v.SetString(p)
			return nil
		}
	case f.LongDouble:
		fDec = newLongDoubleDecoder(f.Type)
	default:
		var err error
		fDec, err = b.decoderFor(f.Type)
		if err != nil {
			return nil, err
		}
	}

	since, gated := f.Since.GetOK()
	fn := func(d *Decoder, v reflect.Value) error {
		if gated && !d.version.GE(since) {
			return nil
		}
		fv := f.GetWithAlloc(v)
		if err := fDec(d, fv); err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
		return nil
	}
	return fn, nil
}

func newLongDoubleDecoder(t reflect.Type) decoderFunc {
	if t.Kind() == reflect.Array {
		return func(d *Decoder, v reflect.Value) error {
			vs := make([]float64, v.Len())
			if err := d.LongDoubles(vs); err != nil {
				return err
			}
			for i, f := range vs {
				v.Index(i).SetFloat(f)
			}
			return nil
		}
	}
	return func(d *Decoder, v reflect.Value) error {
		var vs [1]float64
		if err := d.LongDoubles(vs[:]); err != nil {
			return err
		}
		v.SetFloat(vs[0])
		return nil
	}
}

func (b *decoderBuilder) newMapDecoder(t reflect.Type) (decoderFunc, error) {
	kt := t.Key()
	if !mapKeyKinds.Has(kt.Kind()) {
		return nil, typeErr(t, "invalid map key type %s", kt)
	}
	kDec, err := b.decoderFor(kt)
	if err != nil {
		return nil, err
	}
	vt := t.Elem()
	vDec, err := b.decoderFor(vt)
	if err != nil {
		return nil, err
	}

	fn := func(d *Decoder, v reflect.Value) error {
		n, err := d.Uint32()
		if err != nil {
			return err
		}
		if n == 0 {
			v.SetZero()
			return nil
		}
		m := reflect.MakeMap(t)
		key := reflect.New(kt).Elem()
		val := reflect.New(vt).Elem()
		for range n {
			key.SetZero()
			val.SetZero()
			if err := kDec(d, key); err != nil {
				return err
			}
			if err := vDec(d, val); err != nil {
				return err
			}
			m.SetMapIndex(key, val)
		}
		v.Set(m)
		return nil
	}
	return fn, nil
}
