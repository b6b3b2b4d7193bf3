package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/isim/internal/keyseq"
	"github.com/1broseidon/isim/internal/platform"
)

type keyPhase int

const (
	phaseDown keyPhase = iota
	phaseUp
)

// KeyDown presses every key of the sequence in order. Keys already pressed
// when the transport fails stay pressed.
func (e *Engine) KeyDown(ctx context.Context, keys string, ref platform.WindowRef, delay time.Duration) error {
	return e.sendKeys(ctx, "key down", keys, ref, delay, phaseDown)
}

// KeyUp releases every key of the sequence in order.
func (e *Engine) KeyUp(ctx context.Context, keys string, ref platform.WindowRef, delay time.Duration) error {
	return e.sendKeys(ctx, "key up", keys, ref, delay, phaseUp)
}

// KeyPress is KeyDown immediately followed by KeyUp, written as one unit.
func (e *Engine) KeyPress(ctx context.Context, keys string, ref platform.WindowRef, delay time.Duration) error {
	return e.sendKeys(ctx, "key press", keys, ref, delay, phaseDown, phaseUp)
}

func (e *Engine) sendKeys(ctx context.Context, op, keys string, ref platform.WindowRef, delay time.Duration, phases ...keyPhase) error {
	strokes, err := keyseq.ParseAndResolve(keys, e.backend)
	if err != nil {
		err = fmt.Errorf("%s: %w: %w", op, ErrParse, err)
		e.logResult(ctx, op, ref, err)
		return err
	}
	target, explicit, err := e.target(op, ref)
	if err != nil {
		e.logResult(ctx, op, ref, err)
		return err
	}

	err = e.backend.Exclusive(func() error {
		first := true
		for _, phase := range phases {
			events := keyEvents(strokes, phase)
			for _, ev := range events {
				if !first && delay > 0 {
					time.Sleep(delay)
				}
				first = false
				var err error
				if explicit {
					err = e.backend.SendKey(target, ev.code, ev.state, ev.press)
				} else {
					err = e.backend.FakeKey(ev.code, ev.press)
				}
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	err = dispatchError(op, err)
	e.logResult(ctx, op, ref, err)
	return err
}

type keyEvent struct {
	code  platform.Keycode
	state uint16
	press bool
}

// keyEvents orders the events of one phase. state is the modifier mask in
// effect when the event is delivered, as a real keyboard would report it.
// Releases start from the full mask of the sequence and drop each modifier
// once its key is up.
func keyEvents(strokes []keyseq.Stroke, phase keyPhase) []keyEvent {
	events := make([]keyEvent, 0, len(strokes))
	var state uint16
	if phase == phaseUp {
		for _, s := range strokes {
			state |= s.Mask
		}
	}
	for _, s := range strokes {
		if phase == phaseDown {
			events = append(events, keyEvent{code: s.Code, state: state, press: true})
			state |= s.Mask
			continue
		}
		events = append(events, keyEvent{code: s.Code, state: state, press: false})
		state &^= s.Mask
	}
	return events
}
