package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/platform"
)

// windowCommand validates ref for a command that needs an explicit window.
// The current ref yields a completion already resolved with ErrNoTarget.
func (e *Engine) windowCommand(ctx context.Context, op string, ref platform.WindowRef) (platform.WindowID, *Completion, error) {
	if ref.IsCurrent() {
		err := fmt.Errorf("%s: %w", op, ErrNoTarget)
		e.logResult(ctx, op, ref, err)
		return 0, resolvedCompletion(op, err), nil
	}
	w, _, err := e.target(op, ref)
	if err != nil {
		e.logResult(ctx, op, ref, err)
		return 0, nil, err
	}
	return w, nil, nil
}

// Focus asks the server to give the window input focus. The completion
// resolves once the window holds focus or the wait times out.
func (e *Engine) Focus(ctx context.Context, ref platform.WindowRef) (*Completion, error) {
	const op = "focus"
	w, done, err := e.windowCommand(ctx, op, ref)
	if err != nil || done != nil {
		return done, err
	}
	return e.async(ctx, op, ref, func() error {
		return e.backend.SetInputFocus(w)
	}, func() bool {
		f, err := e.backend.FocusedWindow()
		return err != nil || f == w
	})
}

// Activate asks the window manager to activate the window (_NET_ACTIVE_WINDOW),
// switching to the window's desktop first when needed. Activation and focus
// are separate requests; neither is assumed to imply the other.
func (e *Engine) Activate(ctx context.Context, ref platform.WindowRef) (*Completion, error) {
	const op = "activate"
	w, done, err := e.windowCommand(ctx, op, ref)
	if err != nil || done != nil {
		return done, err
	}
	return e.async(ctx, op, ref, func() error {
		if err := e.switchToWindowDesktop(ctx, w); err != nil {
			return err
		}
		return e.backend.RequestActivate(w)
	}, func() bool {
		a, err := e.backend.ActiveWindow()
		return err != nil || a == w
	})
}

func (e *Engine) switchToWindowDesktop(ctx context.Context, w platform.WindowID) error {
	target, err := e.backend.WindowDesktop(w)
	if err != nil || target < 0 {
		return nil
	}
	current, err := e.backend.CurrentDesktop()
	if err != nil || current == target {
		return nil
	}
	e.log(ctx).Debug("switching desktop before activation",
		zap.Int("from", current),
		zap.Int("to", target))
	return e.backend.SetCurrentDesktop(target)
}

// Raise restacks the window above its siblings without touching focus.
func (e *Engine) Raise(ctx context.Context, ref platform.WindowRef) (*Completion, error) {
	const op = "raise"
	w, done, err := e.windowCommand(ctx, op, ref)
	if err != nil || done != nil {
		return done, err
	}
	return e.async(ctx, op, ref, func() error {
		return e.backend.Raise(w)
	}, nil)
}

// Close sends WM_DELETE_WINDOW. The owning client may ignore it; Close never
// escalates to Kill.
func (e *Engine) Close(ctx context.Context, ref platform.WindowRef) (*Completion, error) {
	const op = "close"
	w, done, err := e.windowCommand(ctx, op, ref)
	if err != nil || done != nil {
		return done, err
	}
	return e.async(ctx, op, ref, func() error {
		return e.backend.RequestClose(w)
	}, nil)
}

// Kill severs the connection of the client owning the window. Irreversible.
func (e *Engine) Kill(ctx context.Context, ref platform.WindowRef) (*Completion, error) {
	const op = "kill"
	w, done, err := e.windowCommand(ctx, op, ref)
	if err != nil || done != nil {
		return done, err
	}
	return e.async(ctx, op, ref, func() error {
		return e.backend.KillClient(w)
	}, nil)
}

// Reparent moves child under parent at the parent's origin. Both refs must be
// explicit; otherwise nothing is sent and ErrNoTarget is returned.
func (e *Engine) Reparent(ctx context.Context, child, parent platform.WindowRef) error {
	const op = "reparent"
	if child.IsCurrent() || parent.IsCurrent() {
		err := fmt.Errorf("%s: %w", op, ErrNoTarget)
		e.logResult(ctx, op, child, err)
		return err
	}
	c, _, err := e.target(op, child)
	if err != nil {
		e.logResult(ctx, op, child, err)
		return err
	}
	p, _, err := e.target(op, parent)
	if err != nil {
		e.logResult(ctx, op, child, err)
		return err
	}
	err = e.backend.Exclusive(func() error {
		return e.backend.Reparent(c, p, platform.Point{})
	})
	err = dispatchError(op, err)
	e.logResult(ctx, op, child, err)
	return err
}
