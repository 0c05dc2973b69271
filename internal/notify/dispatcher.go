// Package notify defines the refresh fan-out port. After a mutation, services
// signal affected usernames; connected clients re-pull their dashboard.
package notify

import "context"

// Dispatcher pushes a refresh signal for a username. Implementations must be
// safe for concurrent use; delivery is best effort and must never block a
// mutation from committing.
type Dispatcher interface {
	Notify(ctx context.Context, username, reason string) error
}

// Nop discards every signal. Used by the memory backend and tests.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }

type fanout []Dispatcher

// Fanout delivers each signal to every target. All targets are attempted;
// the first error is returned.
func Fanout(targets ...Dispatcher) Dispatcher {
	return fanout(targets)
}

func (f fanout) Notify(ctx context.Context, username, reason string) error {
	var first error
	for _, d := range f {
		if err := d.Notify(ctx, username, reason); err != nil && first == nil {
			first = err
		}
	}
	return first
}
