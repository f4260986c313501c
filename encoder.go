package objgraph

import (
	"io"
	"reflect"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	"github.com/danderson/objgraph/fragments"
	"go.uber.org/zap"
)

// An Encoder is a write session. It writes primitive values through
// its embedded [fragments.Encoder], and object references through
// [Encoder.Object].
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	fragments.Encoder

	version semver.Version
	types   *Registry
	ids     writeIdentities
	log     *zap.Logger
}

// NewEncoder starts a write session and writes the stream header to
// its output.
func NewEncoder(opts *Options) (*Encoder, error) {
	if v := opts.version(); v.GT(CurrentVersion) {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "cannot write version %s, newest supported version is %s", v, CurrentVersion)
	}
	ret := &Encoder{
		version: opts.version(),
		types:   opts.types(),
		ids:     newWriteIdentities(),
		log:     opts.logger(),
	}
	hdr := header{
		Order:   opts.order(),
		Version: ret.version,
	}
	if err := hdr.marshal(&ret.Encoder); err != nil {
		return nil, err
	}
	return ret, nil
}

// Version returns the format version being written.
func (e *Encoder) Version() semver.Version {
	return e.version
}

// VersionAtLeast reports whether the format version being written is
// major.minor.patch or newer. Fields introduced in that version should
// only be written if it returns true.
func (e *Encoder) VersionAtLeast(major, minor, patch uint32) bool {
	return e.version.GE(Version(major, minor, patch))
}

// Object writes a reference to obj. The first reference to an object
// in a session writes its ID, type tag and fields. Later references
// write only the ID. A nil obj writes the null reference.
func (e *Encoder) Object(obj Object) error {
	tag := NullTag
	if !isNilObject(obj) {
		t := reflect.TypeOf(obj)
		info := e.types.infoForType(t)
		if info == nil {
			return typeErr(t, "type is not registered")
		}
		tag = info.Tag
	}

	id, isNew, err := e.ids.resolveOrAssign(obj)
	if err != nil {
		return err
	}
	e.Uint32(uint32(id))
	if !isNew {
		return nil
	}
	e.String(tag)
	if tag == NullTag {
		return nil
	}

	e.log.Debug("writing object", zap.Uint32("id", uint32(id)), zap.String("tag", tag))
	if err := obj.MarshalGraph(e); err != nil {
		return errors.Wrapf(err, "writing %s object %d", tag, id)
	}
	return nil
}

// WriteObjects writes a count followed by a reference to each object
// of objs.
func WriteObjects[T Object](e *Encoder, objs []T) error {
	e.Uint32(uint32(len(objs)))
	for _, obj := range objs {
		if err := e.Object(obj); err != nil {
			return err
		}
	}
	return nil
}

// Marshal returns the encoding of a stream containing root, and every
// object reachable from it.
func Marshal(root Object, opts *Options) ([]byte, error) {
	e, err := NewEncoder(opts)
	if err != nil {
		return nil, err
	}
	if err := e.Object(root); err != nil {
		return nil, err
	}
	return e.Out, nil
}

// Encode writes a stream containing root to w.
func Encode(w io.Writer, root Object, opts *Options) error {
	bs, err := Marshal(root, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}

// A Writer writes a stream of several top-level objects. Objects
// shared between top-level objects are written once.
type Writer struct {
	w   io.Writer
	enc *Encoder
	err error
}

// NewWriter starts a write session on w, and writes the stream
// header.
func NewWriter(w io.Writer, opts *Options) (*Writer, error) {
	enc, err := NewEncoder(opts)
	if err != nil {
		return nil, err
	}
	ret := &Writer{
		w:   w,
		enc: enc,
	}
	if err := ret.flush(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Write writes a top-level reference to obj, and flushes it to the
// underlying writer. After an error, the stream is unusable and every
// further Write returns the same error.
func (w *Writer) Write(obj Object) error {
	if w.err != nil {
		return w.err
	}
	if err := w.enc.Object(obj); err != nil {
		w.err = err
		return err
	}
	return w.flush()
}

func (w *Writer) flush() error {
	if len(w.enc.Out) == 0 {
		return nil
	}
	if _, err := w.w.Write(w.enc.Out); err != nil {
		w.err = errors.Wrap(err, "writing stream")
		return w.err
	}
	w.enc.Out = w.enc.Out[:0]
	return nil
}
