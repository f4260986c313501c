package objgraph

import (
	"testing"

	"github.com/cockroachdb/errors"
)

type idObj struct{ n int }

func (*idObj) MarshalGraph(e *Encoder) error   { return nil }
func (*idObj) UnmarshalGraph(d *Decoder) error { return nil }

func TestWriteIdentities(t *testing.T) {
	w := newWriteIdentities()
	a, b := &idObj{1}, &idObj{1}
	var nilObj *idObj

	steps := []struct {
		obj     Object
		wantID  ObjectID
		wantNew bool
	}{
		{a, 1, true},
		{a, 1, false},
		{b, 2, true}, // equal value, distinct identity
		{nil, 3, true},
		{nilObj, 3, false},
		{nil, 3, false},
		{b, 2, false},
	}
	for i, s := range steps {
		id, isNew, err := w.resolveOrAssign(s.obj)
		if err != nil {
			t.Fatalf("step %d: resolveOrAssign failed: %v", i, err)
		}
		if id != s.wantID || isNew != s.wantNew {
			t.Errorf("step %d: got (%d, %v), want (%d, %v)", i, id, isNew, s.wantID, s.wantNew)
		}
	}
	if got := w.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestWriteIdentitiesExhausted(t *testing.T) {
	w := newWriteIdentities()
	w.next = 0
	if _, _, err := w.resolveOrAssign(&idObj{}); err == nil {
		t.Errorf("resolveOrAssign with exhausted IDs succeeded")
	}
}

func TestReadIdentities(t *testing.T) {
	r := newReadIdentities()
	calls := 0
	construct := func(obj Object) func() (Object, error) {
		return func() (Object, error) {
			calls++
			return obj, nil
		}
	}

	a := &idObj{1}
	got, isNew, err := r.resolveOrConstruct(1, construct(a))
	if err != nil || got != a || !isNew {
		t.Fatalf("first read of 1: got (%v, %v, %v), want (%v, true, nil)", got, isNew, err, a)
	}
	got, isNew, err = r.resolveOrConstruct(1, construct(&idObj{2}))
	if err != nil || got != a || isNew {
		t.Fatalf("second read of 1: got (%v, %v, %v), want (%v, false, nil)", got, isNew, err, a)
	}

	got, isNew, err = r.resolveOrConstruct(2, construct(nil))
	if err != nil || got != nil || isNew {
		t.Fatalf("first read of null 2: got (%v, %v, %v), want (nil, false, nil)", got, isNew, err)
	}
	got, isNew, err = r.resolveOrConstruct(2, construct(&idObj{3}))
	if err != nil || got != nil || isNew {
		t.Fatalf("second read of null 2: got (%v, %v, %v), want (nil, false, nil)", got, isNew, err)
	}

	if calls != 2 {
		t.Errorf("constructed %d times, want 2", calls)
	}
	if got := r.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}

	boom := errors.New("boom")
	_, _, err = r.resolveOrConstruct(3, func() (Object, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("construct error not propagated: %v", err)
	}
	if _, ok := r.objs[3]; ok || r.nulls.Has(3) {
		t.Errorf("failed construction was registered")
	}
}
