package cache

import (
	"testing"
	"time"
)

func TestNamespaceGetSet(t *testing.T) {
	m := NewManager(time.Minute)
	ints := For[[]int](m, "recebimento")

	if _, ok := ints.Get("all"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	ints.Set("all", []int{1, 2, 3})
	got, ok := ints.Get("all")
	if !ok || len(got) != 3 {
		t.Fatalf("Get() = %v, %v", got, ok)
	}
	if ints.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", ints.Size())
	}
}

func TestNamespaceTypeMismatchIsMiss(t *testing.T) {
	m := NewManager(time.Minute)
	For[string](m, "x").Set("k", "value")

	if _, ok := For[int](m, "x").Get("k"); ok {
		t.Fatalf("expected a miss for a different type")
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	m := NewManager(time.Minute)
	receipts := For[int](m, "recebimento")
	withdrawals := For[int](m, "retiradas")
	receipts.Set("a", 1)
	receipts.Set("b", 2)
	withdrawals.Set("a", 3)

	if n := receipts.Clear(); n != 2 {
		t.Fatalf("Clear() removed %d, want 2", n)
	}
	if _, ok := withdrawals.Get("a"); !ok {
		t.Fatalf("other namespace was invalidated")
	}
	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}

	m.Flush()
	if m.Size() != 0 {
		t.Fatalf("Flush() left %d entries", m.Size())
	}
}

func TestEntriesExpire(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	ns := For[int](m, "t")
	ns.Set("k", 1)
	time.Sleep(40 * time.Millisecond)

	if _, ok := ns.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
}
