package mstor

import "testing"

func TestIDAllocatorSequential(t *testing.T) {
	a := newIDAllocator("nid", 5, 10)
	for want := uint64(5); want <= 10; want++ {
		got, err := a.alloc()
		if err != nil {
			t.Fatalf("alloc: %v", err)
		}
		if got != want {
			t.Fatalf("alloc: got %d, want %d", got, want)
		}
	}
	if _, err := a.alloc(); err == nil {
		t.Fatal("alloc: expected overflow error past ceiling")
	}
}

func TestIDAllocatorPeekDoesNotConsume(t *testing.T) {
	a := newIDAllocator("cid", 0, 100)
	if p := a.peek(); p != 0 {
		t.Fatalf("peek: got %d, want 0", p)
	}
	if _, err := a.alloc(); err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if p := a.peek(); p != 1 {
		t.Fatalf("peek after one alloc: got %d, want 1", p)
	}
}

func TestIDAllocatorConcurrentUnique(t *testing.T) {
	a := newIDAllocator("nid", 0, 1<<20)
	const n = 200
	seen := make(chan uint64, n)
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			id, err := a.alloc()
			if err != nil {
				t.Error(err)
			}
			seen <- id
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	close(seen)

	ids := make(map[uint64]bool)
	for id := range seen {
		if ids[id] {
			t.Fatalf("duplicate id allocated: %d", id)
		}
		ids[id] = true
	}
	if len(ids) != n {
		t.Fatalf("got %d unique ids, want %d", len(ids), n)
	}
}
