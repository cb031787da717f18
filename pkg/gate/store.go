package gate

import "context"

// CounterStore persists per-guest question counts. Losing a counter is not
// a correctness failure: the gate merely resets to uncapped.
type CounterStore interface {
	// Increment bumps the counter and returns the new value.
	Increment(ctx context.Context, guestId string) (int, error)
	Get(ctx context.Context, guestId string) (int, error)
	// Reset zeroes the counter, typically on successful authentication.
	Reset(ctx context.Context, guestId string) error
}
