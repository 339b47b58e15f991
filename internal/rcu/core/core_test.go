package core

import (
	"sync"
	"testing"
)

func TestSourceUpdateAndLoad(t *testing.T) {
	s := NewSource[int](nil)
	s.Update(42, nil)

	version, payload := s.LoadCurrent()
	if version != 1 {
		t.Fatalf("version = %d, want 1", version)
	}
	value, present := payload.Value()
	if !present || value != 42 {
		t.Fatalf("value = (%d, %v), want (42, true)", value, present)
	}
	payload.Release()
}

func TestLoadIfNewerSkipsUnchanged(t *testing.T) {
	s := NewSource[int](nil)
	s.Update(1, nil)

	version, payload := s.LoadCurrent()
	payload.Release()

	if _, p := s.LoadIfNewer(version); p != nil {
		t.Fatalf("expected nil payload for unchanged version")
	}

	s.Update(2, nil)
	newVersion, p := s.LoadIfNewer(version)
	if p == nil {
		t.Fatalf("expected a payload after update")
	}
	if newVersion == version {
		t.Fatalf("expected version to advance")
	}
	p.Release()
}

func TestReaderInitAndFastPath(t *testing.T) {
	s := NewSource[string](nil)
	s.Update("v1", nil)
	r := NewReader(s)

	g := r.Load()
	v, ok := g.Get()
	if !ok || *v != "v1" {
		t.Fatalf("got (%v, %v), want (v1, true)", v, ok)
	}
	g.Release()

	s.Update("v2", nil)
	g2 := r.Load()
	v2, _ := g2.Get()
	if *v2 != "v2" {
		t.Fatalf("got %v, want v2", *v2)
	}
	g2.Release()
}

func TestReaderNestedSeesStableSnapshot(t *testing.T) {
	s := NewSource[int](nil)
	s.Update(1, nil)
	r := NewReader(s)

	outer := r.Load()
	s.Update(2, nil) // advance source while scope is open

	inner := r.Load()
	v, _ := inner.Get()
	if *v != 1 {
		t.Fatalf("nested guard observed %d, want 1 (stale outer snapshot)", *v)
	}
	if inner.RefCount() != 2 {
		t.Fatalf("RefCount = %d, want 2", inner.RefCount())
	}
	inner.Release()

	outerV, _ := outer.Get()
	if *outerV != 1 {
		t.Fatalf("outer guard value changed under us")
	}
	outer.Release()

	// New scope after the old one closed: source's later value is visible.
	fresh := r.Load()
	freshV, _ := fresh.Get()
	if *freshV != 2 {
		t.Fatalf("fresh guard observed %d, want 2", *freshV)
	}
	fresh.Release()
}

func TestGuardLoadWithReleaseForcesRefresh(t *testing.T) {
	s := NewSource[int](nil)
	s.Update(1, nil)
	r := NewReader(s)

	g := r.LoadWithRelease()
	if !g.ReleaseScheduled() {
		t.Fatalf("expected release to be scheduled")
	}
	g.Release()

	s.Update(2, nil)
	g2 := r.Load()
	v, _ := g2.Get()
	if *v != 2 {
		t.Fatalf("expected forced refresh to observe 2, got %d", *v)
	}
	g2.Release()
}

func TestSourceUpdateAbsentThenPresent(t *testing.T) {
	s := NewSource[string](nil)

	_, p := s.LoadCurrent()
	_, present := p.Value()
	if present {
		t.Fatalf("expected a freshly constructed Source to hold an absent payload")
	}
	p.Release()

	s.Update("v1", nil)
	_, p2 := s.LoadCurrent()
	v, present2 := p2.Value()
	if !present2 || v != "v1" {
		t.Fatalf("got (%v, %v), want (v1, true)", v, present2)
	}
	p2.Release()

	s.UpdateAbsent(nil)
	_, p3 := s.LoadCurrent()
	_, present3 := p3.Value()
	if present3 {
		t.Fatalf("expected UpdateAbsent to clear the present value")
	}
	p3.Release()
}

func TestSourceDirectRetireRespectsRefcount(t *testing.T) {
	var released []int
	var mu sync.Mutex

	s := NewSource[int](nil)
	s.Update(1, func(v int) {
		mu.Lock()
		released = append(released, v)
		mu.Unlock()
	})

	_, held := s.LoadCurrent() // a second reference besides the Source's replacement below

	s.Update(2, func(v int) {
		mu.Lock()
		released = append(released, v)
		mu.Unlock()
	})

	mu.Lock()
	got := append([]int(nil), released...)
	mu.Unlock()
	if len(got) != 0 {
		t.Fatalf("expected no release yet while a reference is held, got %v", got)
	}

	held.Release()

	mu.Lock()
	got = append([]int(nil), released...)
	mu.Unlock()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("released = %v, want [1]", got)
	}
}
