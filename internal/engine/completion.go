package engine

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Completion is the result of an asynchronous operation. The request has
// already been written when a Completion is returned; waiting only observes
// its outcome. There is no way to cancel a submitted request.
type Completion struct {
	ID ulid.ULID
	Op string

	once sync.Once
	done chan struct{}
	err  error
}

func newCompletion(op string) *Completion {
	return &Completion{
		ID:   ulid.Make(),
		Op:   op,
		done: make(chan struct{}),
	}
}

func resolvedCompletion(op string, err error) *Completion {
	c := newCompletion(op)
	c.resolve(err)
	return c
}

func (c *Completion) resolve(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Done is closed once the operation's outcome is known.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Err returns the outcome, or nil while still pending.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the operation completes or ctx ends. A ctx error means the
// outcome is unknown; the request may still take effect.
func (c *Completion) Wait(ctx context.Context) (Status, error) {
	select {
	case <-c.done:
		return StatusOf(c.err), c.err
	case <-ctx.Done():
		return StatusFailure, ctx.Err()
	}
}
