package gate

import (
	"context"
	"testing"
)

func TestMemoryCounterStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCounterStore()

	got, err := store.Get(ctx, "guest-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 0 {
		t.Errorf("Get on unknown guest = %d, want 0", got)
	}

	for want := 1; want <= 3; want++ {
		n, err := store.Increment(ctx, "guest-a")
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if n != want {
			t.Errorf("Increment = %d, want %d", n, want)
		}
	}

	// Counters are per guest.
	n, err := store.Increment(ctx, "guest-b")
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if n != 1 {
		t.Errorf("Increment for second guest = %d, want 1", n)
	}

	if err := store.Reset(ctx, "guest-a"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, _ = store.Get(ctx, "guest-a")
	if got != 0 {
		t.Errorf("Get after Reset = %d, want 0", got)
	}
	got, _ = store.Get(ctx, "guest-b")
	if got != 1 {
		t.Errorf("Reset must not touch other guests, got %d", got)
	}
}
