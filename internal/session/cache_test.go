package session

import "testing"

func TestPutResolveInvalidate(t *testing.T) {
	cache := NewCache()
	cache.Put("msg-1", "Dishes", "Alice")

	entry, ok := cache.Resolve("msg-1")
	if !ok {
		t.Fatal("expected handle msg-1 to resolve")
	}
	if entry.Chore != "Dishes" || entry.Assignee != "Alice" {
		t.Errorf("unexpected entry: %+v", entry)
	}

	cache.Invalidate("msg-1")
	if _, ok := cache.Resolve("msg-1"); ok {
		t.Error("expected handle msg-1 to be gone after invalidation")
	}
}

func TestResolveUnknownHandle(t *testing.T) {
	cache := NewCache()
	if _, ok := cache.Resolve("nope"); ok {
		t.Error("unknown handle should not resolve")
	}
}

func TestInvalidateChore(t *testing.T) {
	cache := NewCache()
	cache.Put("msg-1", "Dishes", "Alice")
	cache.Put("msg-2", "Dishes", "Bob")
	cache.Put("msg-3", "Trash", "Cara")

	cache.InvalidateChore("Dishes")

	if _, ok := cache.Resolve("msg-1"); ok {
		t.Error("msg-1 should be invalidated with its chore")
	}
	if _, ok := cache.Resolve("msg-2"); ok {
		t.Error("msg-2 should be invalidated with its chore")
	}
	if _, ok := cache.Resolve("msg-3"); !ok {
		t.Error("msg-3 points at another chore and should survive")
	}
}

func TestClearDropsAssignmentsOnly(t *testing.T) {
	cache := NewCache()
	cache.Put("msg-1", "Dishes", "Alice")
	cache.PutVote("vote-1", "Dishes")

	cache.Clear()

	if _, ok := cache.Resolve("msg-1"); ok {
		t.Error("assignment handles should be cleared")
	}
	if _, ok := cache.ResolveVote("vote-1"); !ok {
		t.Error("vote handles should survive a schedule repost")
	}
}

func TestVoteHandles(t *testing.T) {
	cache := NewCache()
	cache.PutVote("vote-1", "Bathroom")

	chore, ok := cache.ResolveVote("vote-1")
	if !ok || chore != "Bathroom" {
		t.Fatalf("ResolveVote = %q, %v", chore, ok)
	}

	cache.InvalidateVote("vote-1")
	if _, ok := cache.ResolveVote("vote-1"); ok {
		t.Error("vote handle should be gone after invalidation")
	}
}

func TestNewHandleUnique(t *testing.T) {
	if NewHandle() == NewHandle() {
		t.Error("handles should be unique")
	}
}
