package replacer

import "testing"

func TestLRUInsertAndVictim(t *testing.T) {
	r := New[int]()

	r.Insert(1)
	r.Insert(2)
	r.Insert(3)

	if got := r.Size(); got != 3 {
		t.Fatalf("expected size 3, got %d", got)
	}

	// Least recent first: 1, then 2, then 3.
	v, ok := r.Victim()
	if !ok || v != 1 {
		t.Fatalf("expected victim 1, got %d ok=%v", v, ok)
	}
	v, ok = r.Victim()
	if !ok || v != 2 {
		t.Fatalf("expected victim 2, got %d ok=%v", v, ok)
	}
}

func TestLRUVictimEmpty(t *testing.T) {
	r := New[string]()
	if _, ok := r.Victim(); ok {
		t.Fatal("expected no victim from empty replacer")
	}
}

func TestLRUInsertPromotesExisting(t *testing.T) {
	r := New[int]()
	r.Insert(1)
	r.Insert(2)
	r.Insert(3)

	// Re-inserting 1 makes it the most recent; 2 is now least recent.
	r.Insert(1)

	v, ok := r.Victim()
	if !ok || v != 2 {
		t.Fatalf("expected victim 2 after promoting 1, got %d ok=%v", v, ok)
	}
	v, ok = r.Victim()
	if !ok || v != 3 {
		t.Fatalf("expected victim 3, got %d ok=%v", v, ok)
	}
	v, ok = r.Victim()
	if !ok || v != 1 {
		t.Fatalf("expected victim 1 last, got %d ok=%v", v, ok)
	}
}

func TestLRUErase(t *testing.T) {
	r := New[int]()
	r.Insert(1)
	r.Insert(2)

	if !r.Erase(1) {
		t.Fatal("expected erase of present value to succeed")
	}
	if r.Erase(1) {
		t.Fatal("expected erase of absent value to fail")
	}
	if r.Size() != 1 {
		t.Fatalf("expected size 1 after erase, got %d", r.Size())
	}

	v, ok := r.Victim()
	if !ok || v != 2 {
		t.Fatalf("expected remaining victim 2, got %d ok=%v", v, ok)
	}
}

func TestLRUSize(t *testing.T) {
	r := New[int]()
	if r.Size() != 0 {
		t.Fatalf("expected empty size 0, got %d", r.Size())
	}
	r.Insert(1)
	r.Insert(2)
	if r.Size() != 2 {
		t.Fatalf("expected size 2, got %d", r.Size())
	}
	r.Victim()
	if r.Size() != 1 {
		t.Fatalf("expected size 1 after victim, got %d", r.Size())
	}
}
