// Package engine implements display automation on top of a platform.Backend:
// a stateless window/screen directory and a dispatcher for synthesized input
// and window-management requests.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/platform"
)

// Engine drives one display connection. It is safe for concurrent use; wire
// writes are serialized through the backend's Exclusive.
type Engine struct {
	backend platform.Backend
	opts    atomic.Pointer[Options]
}

// New wraps an open backend.
func New(backend platform.Backend, opts Options) *Engine {
	e := &Engine{backend: backend}
	e.SetOptions(opts)
	return e
}

// SetOptions replaces the timing options.
func (e *Engine) SetOptions(opts Options) {
	o := opts.normalized()
	e.opts.Store(&o)
}

func (e *Engine) options() Options { return *e.opts.Load() }

// DisplayName is the resolved display this engine talks to.
func (e *Engine) DisplayName() string { return e.backend.DisplayName() }

// IsAlive probes the connection without side effects.
func (e *Engine) IsAlive() bool { return e.backend.Alive() }

// Shutdown releases the underlying connection.
func (e *Engine) Shutdown() { e.backend.Close() }

func (e *Engine) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx).With(zap.String("display", e.backend.DisplayName()))
}

func (e *Engine) logResult(ctx context.Context, op string, target platform.WindowRef, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Stringer("window", target),
		zap.Stringer("status", StatusOf(err)),
	}
	if err != nil {
		e.log(ctx).Debug("operation failed", append(fields, zap.Error(err))...)
		return
	}
	e.log(ctx).Debug("operation done", fields...)
}

// target validates an explicit window ref. For the current window it returns
// ok=false and no error.
func (e *Engine) target(op string, ref platform.WindowRef) (platform.WindowID, bool, error) {
	id, explicit := ref.ID()
	if !explicit {
		return 0, false, nil
	}
	exists, err := e.backend.WindowExists(id)
	if err != nil {
		return 0, false, dispatchError(op, err)
	}
	if !exists {
		return 0, false, fmt.Errorf("%s: window 0x%x: %w", op, uint32(id), ErrTargetNotFound)
	}
	return id, true, nil
}

// waitFor polls cond until it holds or the wait timeout elapses. A timeout is
// not an error: the request itself already succeeded.
func (e *Engine) waitFor(cond func() bool) bool {
	opts := e.options()
	deadline := time.Now().Add(opts.WaitTimeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(opts.PollInterval)
	}
}

// async writes a request now, preserving submission order on the connection,
// and resolves the returned completion once effect holds or times out.
func (e *Engine) async(ctx context.Context, op string, ref platform.WindowRef, send func() error, effect func() bool) (*Completion, error) {
	if err := e.backend.Exclusive(send); err != nil {
		err = dispatchError(op, err)
		e.logResult(ctx, op, ref, err)
		return nil, err
	}

	c := newCompletion(op)
	log := e.log(ctx)
	go func() {
		if effect != nil && !e.waitFor(effect) {
			log.Debug("effect not observed before timeout",
				zap.String("op", op),
				zap.Stringer("window", ref),
				zap.Stringer("completion", c.ID))
		}
		c.resolve(nil)
	}()
	e.logResult(ctx, op, ref, nil)
	return c, nil
}
