package objgraph

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	"github.com/creachadair/mds/value"
)

// structField is the information about a struct field that needs to
// be marshaled/unmarshaled.
type structField struct {
	Name  string
	Index [][]int
	Type  reflect.Type

	// Since is the format version that introduced the field. The
	// field is absent from streams of older versions.
	Since value.Maybe[semver.Version]
	// Wide is whether the field is a []rune written as a wide
	// string.
	Wide bool
	// Path is whether the field is a string written as a filesystem
	// path.
	Path bool
	// LongDouble is whether the field is a float64, or an array of
	// float64, written as extended-precision floats.
	LongDouble bool
}

// GetWithZero loads the struct field from structVal. If loading
// requires traversing a nil pointer into an embedded struct,
// GetWithZero returns a non-settable zero value of the field.
func (f *structField) GetWithZero(structVal reflect.Value) reflect.Value {
	v := structVal
	for i, hop := range f.Index {
		if i > 0 {
			if v.IsNil() {
				return reflect.Zero(f.Type)
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(hop)
	}
	return v
}

// GetWithAlloc loads the struct field from structVal. If loading
// requires traversing a nil pointer into an embedded struct,
// GetWithAlloc allocates zero values appropriately. The returned
// [reflect.Value] is settable.
func (f *structField) GetWithAlloc(structVal reflect.Value) reflect.Value {
	v := structVal
	for i, hop := range f.Index {
		if i > 0 {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(hop)
	}
	return v
}

func (f *structField) String() string {
	var ret strings.Builder
	kindStr := ""
	if ks := f.Type.Kind().String(); ks != f.Type.String() {
		kindStr = fmt.Sprintf(" (%s)", ks)
	}
	fmt.Fprintf(&ret, "%s: %s%s at %v", f.Name, f.Type, kindStr, f.Index)
	if since, ok := f.Since.GetOK(); ok {
		fmt.Fprintf(&ret, ", since %s", since)
	}
	switch {
	case f.Wide:
		ret.WriteString(", wide")
	case f.Path:
		ret.WriteString(", path")
	case f.LongDouble:
		ret.WriteString(", long double")
	}
	return ret.String()
}

// structInfo is the information about a struct relevant to
// marshaling/unmarshaling.
type structInfo struct {
	// Name is the struct's name, for use in diagnostics.
	Name string
	// Type is the struct's type, for use in diagnostics.
	Type reflect.Type

	// StructFields is the information about each struct field
	// eligible for encoding/decoding, in stream order.
	StructFields []*structField
}

func (s *structInfo) String() string {
	var ret strings.Builder
	fmt.Fprintf(&ret, "%s: struct, fields:\n", s.Name)
	for _, f := range s.StructFields {
		ret.WriteString(f.String())
		ret.WriteByte('\n')
	}
	return ret.String()
}

// getStructInfo returns the structInfo for t.
//
// getStructInfo returns an error if t is not a struct, or if the
// struct's field tags are malformed.
func getStructInfo(t reflect.Type) (*structInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.Newf("%s is not a struct", t)
	}

	ret := &structInfo{
		Name: t.String(),
		Type: t,
	}

	for field := range structFields(t, nil) {
		if !field.IsExported() {
			continue
		}
		fieldInfo := &structField{
			Name:  field.Name,
			Type:  field.Type,
			Index: allocSteps(t, field.Index),
		}
		skip, err := parseStructTag(field, fieldInfo)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", ret.Name, field.Name)
		}
		if skip {
			continue
		}
		ret.StructFields = append(ret.StructFields, fieldInfo)
	}

	return ret, nil
}

// parseStructTag applies the options in field's "objgraph" struct tag
// to info. It reports whether the field is excluded from encoding.
func parseStructTag(field reflect.StructField, info *structField) (skip bool, err error) {
	tag := field.Tag.Get("objgraph")
	if tag == "-" {
		return true, nil
	}
	if tag == "" {
		return false, nil
	}
	for _, f := range strings.Split(tag, ",") {
		switch f {
		case "wide":
			if info.Type.Kind() != reflect.Slice || info.Type.Elem() != reflect.TypeFor[rune]() {
				return false, errors.Newf("wide option requires a []rune, not %s", info.Type)
			}
			info.Wide = true
		case "path":
			if info.Type.Kind() != reflect.String {
				return false, errors.Newf("path option requires a string, not %s", info.Type)
			}
			info.Path = true
		case "longdouble":
			t := info.Type
			if t.Kind() == reflect.Array {
				t = t.Elem()
			}
			if t.Kind() != reflect.Float64 {
				return false, errors.Newf("longdouble option requires a float64 or float64 array, not %s", info.Type)
			}
			info.LongDouble = true
		default:
			val, ok := strings.CutPrefix(f, "since=")
			if !ok {
				return false, errors.Newf("unknown objgraph tag option %q", f)
			}
			v, err := parseSince(val)
			if err != nil {
				return false, errors.Wrapf(err, "invalid since version %q", val)
			}
			info.Since = value.Just(v)
		}
	}
	return false, nil
}

// mapKeyCmp returns a comparison function for the given map key type.
func mapKeyCmp(t reflect.Type) func(a, b reflect.Value) int {
	switch t.Kind() {
	case reflect.Bool:
		return func(a, b reflect.Value) int {
			if a.Bool() == b.Bool() {
				return 0
			}
			if !a.Bool() {
				return -1
			}
			return 1
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b reflect.Value) int {
			return cmp.Compare(a.Int(), b.Int())
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(a, b reflect.Value) int {
			return cmp.Compare(a.Uint(), b.Uint())
		}
	case reflect.Float32, reflect.Float64:
		return func(a, b reflect.Value) int {
			return cmp.Compare(a.Float(), b.Float())
		}
	case reflect.String:
		return func(a, b reflect.Value) int {
			return cmp.Compare(a.String(), b.String())
		}
	default:
		panic("invalid map key type")
	}
}
