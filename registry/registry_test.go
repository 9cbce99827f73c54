package registry

import (
	"sync"
	"testing"
)

func TestRecordIsIdempotent(t *testing.T) {
	r := New()
	r.Record("svc::db")
	r.Record("svc::db")
	r.Record("svc::db")

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestListSorted(t *testing.T) {
	r := New()
	for _, origin := range []string{"svc::db", "app", "svc::api", "zeta"} {
		r.Record(origin)
	}

	got := r.List()
	want := []string{"app", "svc::api", "svc::db", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListEmpty(t *testing.T) {
	r := New()
	if got := r.List(); len(got) != 0 {
		t.Fatalf("List() on empty registry = %v", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	r := New()
	origins := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Record(origins[i%len(origins)])
			}
		}()
	}
	wg.Wait()

	if r.Len() != len(origins) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(origins))
	}
}
