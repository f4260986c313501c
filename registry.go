package objgraph

import (
	"reflect"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
)

// NullTag is the type tag recorded for the null reference. It cannot
// be registered.
const NullTag = "nullptr"

// A Factory returns a new, empty instance of a registered type, ready
// to have its fields read by [Object.UnmarshalGraph].
type Factory func() Object

// typeInfo is the registration of one concrete type.
type typeInfo struct {
	Tag  string
	Type reflect.Type
	New  Factory
}

// A Registry maps type tags to the factories that construct their
// instances, and concrete types back to their tags.
//
// Registration is expected to happen during program initialization,
// but is safe at any time. Lookups are safe for concurrent use by
// multiple sessions.
type Registry struct {
	fallbacks []*Registry

	mu     sync.Mutex
	byTag  map[string]*typeInfo
	byType map[reflect.Type]*typeInfo

	// Positive lookups through the fallback chain. Misses are not
	// cached, since a later registration may satisfy them.
	tagCache  cache[string, *typeInfo]
	typeCache cache[reflect.Type, *typeInfo]
}

// Default is the registry used by sessions that don't specify one.
var Default = NewRegistry()

// NewRegistry returns an empty registry. Lookups that miss in the new
// registry are tried in each fallback in order.
func NewRegistry(fallbacks ...*Registry) *Registry {
	return &Registry{
		fallbacks: fallbacks,
		byTag:     map[string]*typeInfo{},
		byType:    map[reflect.Type]*typeInfo{},
	}
}

// Register registers factory as the constructor for objects with the
// given type tag. The factory's concrete result type becomes
// associated with tag for writing.
//
// Register returns an error if the tag is reserved or already
// registered, if the factory's type is already registered under
// another tag, or if the factory doesn't return a non-nil pointer.
// Fallback registries are not consulted.
func (r *Registry) Register(tag string, factory Factory) error {
	if tag == "" {
		return errors.New("cannot register an empty type tag")
	}
	if tag == NullTag {
		return errors.Newf("cannot register reserved type tag %q", tag)
	}
	if factory == nil {
		return errors.Newf("nil factory for type tag %q", tag)
	}
	sample := factory()
	if isNilObject(sample) {
		return errors.Newf("factory for type tag %q returned nil", tag)
	}
	t := reflect.TypeOf(sample)
	if t.Kind() != reflect.Pointer {
		return typeErr(t, "registered types must be pointers, object identity is pointer identity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev := r.byTag[tag]; prev != nil {
		return errors.Newf("duplicate registration for type tag %q, existing registration %s", tag, prev.Type)
	}
	if prev := r.byType[t]; prev != nil {
		return errors.Newf("duplicate registration for type %s, already registered as %q", t, prev.Tag)
	}
	info := &typeInfo{
		Tag:  tag,
		Type: t,
		New:  factory,
	}
	r.byTag[tag] = info
	r.byType[t] = info
	// Shadow anything previously resolved through a fallback.
	r.tagCache.Forget(tag)
	r.typeCache.Forget(t)
	return nil
}

// MustRegister is like [Registry.Register], but panics on error.
func (r *Registry) MustRegister(tag string, factory Factory) {
	if err := r.Register(tag, factory); err != nil {
		panic(errors.Wrapf(err, "registering type tag %q", tag))
	}
}

// RegisterType registers *T in [Default] under the given tag, with
// new(T) as its factory.
//
// RegisterType panics if the tag or type is already registered.
func RegisterType[T any, PT interface {
	*T
	Object
}](tag string) {
	Default.MustRegister(tag, func() Object { return PT(new(T)) })
}

// RegisterTypeIn is like [RegisterType], but registers in r and
// returns an error instead of panicking.
func RegisterTypeIn[T any, PT interface {
	*T
	Object
}](r *Registry, tag string) error {
	return r.Register(tag, func() Object { return PT(new(T)) })
}

// New returns a new empty instance of the type registered for tag.
func (r *Registry) New(tag string) (Object, bool) {
	info := r.infoForTag(tag)
	if info == nil {
		return nil, false
	}
	return info.New(), true
}

// TagOf returns the type tag of obj's concrete type.
func (r *Registry) TagOf(obj Object) (string, bool) {
	if isNilObject(obj) {
		return NullTag, true
	}
	info := r.infoForType(reflect.TypeOf(obj))
	if info == nil {
		return "", false
	}
	return info.Tag, true
}

// Tags returns the sorted type tags known to r and its fallbacks.
func (r *Registry) Tags() []string {
	seen := map[string]bool{}
	r.collectTags(seen)
	ret := make([]string, 0, len(seen))
	for tag := range seen {
		ret = append(ret, tag)
	}
	slices.Sort(ret)
	return ret
}

func (r *Registry) collectTags(seen map[string]bool) {
	r.mu.Lock()
	for tag := range r.byTag {
		seen[tag] = true
	}
	r.mu.Unlock()
	for _, fb := range r.fallbacks {
		fb.collectTags(seen)
	}
}

func (r *Registry) infoForTag(tag string) *typeInfo {
	if ret, err := r.tagCache.Get(tag); err == nil {
		return ret
	}
	r.mu.Lock()
	ret := r.byTag[tag]
	r.mu.Unlock()
	for _, fb := range r.fallbacks {
		if ret != nil {
			break
		}
		ret = fb.infoForTag(tag)
	}
	if ret != nil {
		r.tagCache.Set(tag, ret)
	}
	return ret
}

func (r *Registry) infoForType(t reflect.Type) *typeInfo {
	if ret, err := r.typeCache.Get(t); err == nil {
		return ret
	}
	r.mu.Lock()
	ret := r.byType[t]
	r.mu.Unlock()
	for _, fb := range r.fallbacks {
		if ret != nil {
			break
		}
		ret = fb.infoForType(t)
	}
	if ret != nil {
		r.typeCache.Set(t, ret)
	}
	return ret
}
