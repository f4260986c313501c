package objgraph

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/creachadair/mds/mapset"
	"github.com/creachadair/mds/value"
)

// ObjectID is the session-local identifier of an object in a stream.
type ObjectID uint32

// FirstObjectID is the ID given to the first object written in a
// session. IDs are assigned sequentially from there.
const FirstObjectID ObjectID = 1

// writeIdentities tracks the objects already written in a session.
type writeIdentities struct {
	ids  map[Object]ObjectID
	null value.Maybe[ObjectID]
	next ObjectID
}

func newWriteIdentities() writeIdentities {
	return writeIdentities{
		ids:  map[Object]ObjectID{},
		next: FirstObjectID,
	}
}

// resolveOrAssign returns obj's ID, assigning the next free one if
// obj has not been seen in this session. isNew reports whether the
// ID was just assigned, in which case the caller must write obj's tag
// and fields.
//
// All null references share one ID.
func (w *writeIdentities) resolveOrAssign(obj Object) (id ObjectID, isNew bool, err error) {
	if isNilObject(obj) {
		if id, ok := w.null.GetOK(); ok {
			return id, false, nil
		}
	} else if id, ok := w.ids[obj]; ok {
		return id, false, nil
	}

	if w.next == 0 {
		return 0, false, errors.Newf("too many objects in one session, all %d object IDs used", uint64(math.MaxUint32))
	}
	id = w.next
	w.next++
	if isNilObject(obj) {
		w.null = value.Just(id)
	} else {
		w.ids[obj] = id
	}
	return id, true, nil
}

// Len returns the number of distinct references written so far, the
// null reference included.
func (w *writeIdentities) Len() int {
	return int(w.next - FirstObjectID)
}

// readIdentities tracks the objects already read in a session.
type readIdentities struct {
	objs  map[ObjectID]Object
	nulls mapset.Set[ObjectID]
}

func newReadIdentities() readIdentities {
	return readIdentities{
		objs:  map[ObjectID]Object{},
		nulls: mapset.New[ObjectID](),
	}
}

// resolveOrConstruct returns the object previously read for id. If id
// is new, resolveOrConstruct calls construct to obtain its instance,
// and registers the result under id before returning it. isNew
// reports whether construct was called and returned an instance, in
// which case the caller must read the instance's fields.
//
// If construct returns a nil Object, id is remembered as a null
// reference.
func (r *readIdentities) resolveOrConstruct(id ObjectID, construct func() (Object, error)) (obj Object, isNew bool, err error) {
	if r.nulls.Has(id) {
		return nil, false, nil
	}
	if obj, ok := r.objs[id]; ok {
		return obj, false, nil
	}
	obj, err = construct()
	if err != nil {
		return nil, false, err
	}
	if obj == nil {
		r.nulls.Add(id)
		return nil, false, nil
	}
	r.objs[id] = obj
	return obj, true, nil
}

// Len returns the number of distinct references read so far, null
// references included.
func (r *readIdentities) Len() int {
	return len(r.objs) + r.nulls.Len()
}
