package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/isim/internal/platform"
)

// Supported buttons: 1-3 are left/middle/right, 4-7 are wheel up/down/left/right.
const (
	minButton = 1
	maxButton = 7
)

func validButton(op string, button int) (platform.Button, error) {
	if button < minButton || button > maxButton {
		return 0, fmt.Errorf("%s: button %d (want %d-%d): %w", op, button, minButton, maxButton, ErrInvalidButton)
	}
	return platform.Button(button), nil
}

// MouseDown presses a button at the current pointer position.
func (e *Engine) MouseDown(ctx context.Context, button int, ref platform.WindowRef) error {
	return e.sendButton(ctx, "mouse down", button, ref, true)
}

// MouseUp releases a button at the current pointer position.
func (e *Engine) MouseUp(ctx context.Context, button int, ref platform.WindowRef) error {
	return e.sendButton(ctx, "mouse up", button, ref, false)
}

// Click presses and releases a button as one unit.
func (e *Engine) Click(ctx context.Context, button int, ref platform.WindowRef) error {
	return e.sendButton(ctx, "click", button, ref, true, false)
}

func (e *Engine) sendButton(ctx context.Context, op string, button int, ref platform.WindowRef, presses ...bool) error {
	b, err := validButton(op, button)
	if err != nil {
		e.logResult(ctx, op, ref, err)
		return err
	}
	target, explicit, err := e.target(op, ref)
	if err != nil {
		e.logResult(ctx, op, ref, err)
		return err
	}

	delay := e.options().ClickDelay
	err = e.backend.Exclusive(func() error {
		for i, press := range presses {
			if i > 0 && delay > 0 {
				time.Sleep(delay)
			}
			var err error
			if explicit {
				err = e.backend.SendButton(target, b, press)
			} else {
				err = e.backend.FakeButton(b, press)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	err = dispatchError(op, err)
	e.logResult(ctx, op, ref, err)
	return err
}

// movedFrom reports whether the pointer has left origin.
func (e *Engine) movedFrom(origin platform.Point) func() bool {
	return func() bool {
		p, _, err := e.backend.PointerLocation()
		return err != nil || p != origin
	}
}

func (e *Engine) pointerOrigin(op string) (platform.Point, int, error) {
	p, screen, err := e.backend.PointerLocation()
	if err != nil {
		return platform.Point{}, 0, dispatchError(op, err)
	}
	return p, screen, nil
}

// MoveMouseRelativeToWindow moves the pointer to (dx, dy) relative to the
// window's origin. The current ref uses the focused window, or the root window
// when nothing is focused.
func (e *Engine) MoveMouseRelativeToWindow(ctx context.Context, dx, dy int, ref platform.WindowRef) (*Completion, error) {
	const op = "mouse move relative to window"
	w, ok, err := e.resolveCurrent(ctx, op, ref)
	if err != nil {
		e.logResult(ctx, op, ref, err)
		return nil, err
	}

	var base platform.Point
	if ok {
		base, err = e.backend.WindowOrigin(w)
		if err != nil {
			err = dispatchError(op, err)
			e.logResult(ctx, op, ref, err)
			return nil, err
		}
	}

	origin, screen, err := e.pointerOrigin(op)
	if err != nil {
		return nil, err
	}
	dest := platform.Point{X: base.X + dx, Y: base.Y + dy}
	var effect func() bool
	if dest != origin {
		effect = e.movedFrom(origin)
	}
	return e.async(ctx, op, ref, func() error {
		return e.backend.WarpPointer(screen, dest)
	}, effect)
}

// MoveMouseRelative moves the pointer by (dx, dy) from where it is.
func (e *Engine) MoveMouseRelative(ctx context.Context, dx, dy int) (*Completion, error) {
	const op = "mouse move relative"
	origin, _, err := e.pointerOrigin(op)
	if err != nil {
		return nil, err
	}
	var effect func() bool
	if dx != 0 || dy != 0 {
		effect = e.movedFrom(origin)
	}
	return e.async(ctx, op, platform.CurrentWindow(), func() error {
		return e.backend.WarpPointerRelative(platform.Point{X: dx, Y: dy})
	}, effect)
}

// MoveMouse moves the pointer to (x, y) in the screen's coordinate space.
func (e *Engine) MoveMouse(ctx context.Context, x, y int, ref platform.ScreenRef) (*Completion, error) {
	const op = "mouse move"
	screen, err := e.Screen(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	origin, originScreen, err := e.pointerOrigin(op)
	if err != nil {
		return nil, err
	}
	dest := platform.Point{X: x, Y: y}
	var effect func() bool
	if dest != origin || originScreen != screen.ID {
		effect = e.movedFrom(origin)
	}
	return e.async(ctx, op, platform.CurrentWindow(), func() error {
		return e.backend.WarpPointer(screen.ID, dest)
	}, effect)
}
