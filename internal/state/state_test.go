package state

import (
	"errors"
	"sync"
	"testing"
)

type Counter struct{ N int }

type Greeting string

func TestSetAndGet(t *testing.T) {
	m := NewManager()
	if err := m.Set(Counter{N: 1}); err != nil {
		t.Fatalf("Set counter: %v", err)
	}
	if err := m.Set(Greeting("hi")); err != nil {
		t.Fatalf("Set greeting: %v", err)
	}

	c, err := Get[Counter](m)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.N != 1 {
		t.Fatalf("counter = %d, want 1", c.N)
	}
	if g := MustGet[Greeting](m); g != "hi" {
		t.Fatalf("greeting = %q", g)
	}
	if !Has[Counter](m) {
		t.Fatal("Has[Counter] = false")
	}
	if n := len(m.Types()); n != 2 {
		t.Fatalf("types = %d, want 2", n)
	}
}

func TestDuplicateTypeIsRejectedAndFirstValueKept(t *testing.T) {
	m := NewManager()
	if err := m.Set(Counter{N: 0}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(Counter{N: 42}); !errors.Is(err, ErrStateAlreadyManaged) {
		t.Fatalf("second Set error = %v, want ErrStateAlreadyManaged", err)
	}
	if c := MustGet[Counter](m); c.N != 0 {
		t.Fatalf("counter = %d, first value should win", c.N)
	}
}

func TestPointerAndValueAreDistinctTypes(t *testing.T) {
	m := NewManager()
	if err := m.Set(Counter{}); err != nil {
		t.Fatalf("Set value: %v", err)
	}
	if err := m.Set(&Counter{N: 7}); err != nil {
		t.Fatalf("Set pointer: %v", err)
	}
	if n := MustGet[*Counter](m).N; n != 7 {
		t.Fatalf("pointer counter = %d, want 7", n)
	}
}

func TestGetUnmanaged(t *testing.T) {
	m := NewManager()
	if _, err := Get[Counter](m); !errors.Is(err, ErrStateNotManaged) {
		t.Fatalf("Get error = %v, want ErrStateNotManaged", err)
	}
	if Has[Counter](m) {
		t.Fatal("Has[Counter] = true on empty manager")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("MustGet did not panic")
		}
	}()
	MustGet[Counter](m)
}

func TestSetNil(t *testing.T) {
	if err := NewManager().Set(nil); err == nil {
		t.Fatal("expected error for nil state")
	}
}

func TestConcurrentReads(t *testing.T) {
	m := NewManager()
	if err := m.Set(&Counter{N: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n := MustGet[*Counter](m).N; n != 3 {
				t.Errorf("counter = %d, want 3", n)
			}
		}()
	}
	wg.Wait()
}
