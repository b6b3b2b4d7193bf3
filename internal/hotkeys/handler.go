// Package hotkeys binds global key combinations to operations.
package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/config"
	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/ops"
)

// Runner executes one operation.
type Runner interface {
	Execute(ctx context.Context, req ops.Request) ops.Result
}

// Binder grabs key combinations and calls back on every press.
type Binder interface {
	Bind(keys string, fn func()) error
	// Run dispatches key presses until ctx ends.
	Run(ctx context.Context) error
}

// Handler manages global keyboard shortcuts
type Handler struct {
	binder  Binder
	exec    Runner
	display string
}

// NewHandler creates a handler running its bindings on display.
func NewHandler(binder Binder, exec Runner, display string) *Handler {
	return &Handler{binder: binder, exec: exec, display: display}
}

// Register binds hk. Presses run the operation on their own goroutine so a
// slow operation never stalls the event loop.
func (h *Handler) Register(ctx context.Context, hk config.Hotkey) error {
	err := h.binder.Bind(hk.Bind, func() {
		go h.Fire(ctx, hk)
	})
	if err != nil {
		return fmt.Errorf("bind %q: %w", hk.Bind, err)
	}
	return nil
}

// RegisterAll binds every hotkey it can and returns the failures joined.
func (h *Handler) RegisterAll(ctx context.Context, hks []config.Hotkey) error {
	log := logger.FromContext(ctx)
	var errs []error
	for _, hk := range hks {
		if err := h.Register(ctx, hk); err != nil {
			log.Warn("hotkey not registered", zap.String("bind", hk.Bind), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Info("hotkey registered", zap.String("bind", hk.Bind), zap.String("op", hk.Op))
	}
	return errors.Join(errs...)
}

// Run dispatches key presses until ctx ends.
func (h *Handler) Run(ctx context.Context) error {
	return h.binder.Run(ctx)
}

// Fire runs the operation bound to hk, resolving its target window first.
func (h *Handler) Fire(ctx context.Context, hk config.Hotkey) ops.Result {
	log := logger.FromContext(ctx).With(zap.String("bind", hk.Bind), zap.String("op", hk.Op))

	req := Request(hk)
	req.Display = h.display
	if q, ok := targetQuery(hk); ok {
		res := h.exec.Execute(ctx, ops.Request{Op: q, Display: h.display})
		if !res.OK() {
			log.Warn("hotkey target lookup failed", zap.String("status", res.Status), zap.String("error", res.Error))
			return res
		}
		if res.Window == nil {
			log.Debug("hotkey has no target window")
			return ops.Result{
				Code:    int(engine.StatusFailure),
				Status:  engine.StatusFailure.String(),
				Display: res.Display,
				Error:   engine.ErrNoTarget.Error(),
			}
		}
		req.Window = res.Window
	}

	res := h.exec.Execute(ctx, req)
	if !res.OK() {
		log.Warn("hotkey operation failed", zap.String("status", res.Status), zap.String("error", res.Error))
	} else {
		log.Debug("hotkey operation done")
	}
	return res
}

// Request builds the operation request of hk without a target window.
func Request(hk config.Hotkey) ops.Request {
	return ops.Request{
		Op:     hk.Op,
		Keys:   hk.Keys,
		Button: hk.Button,
		X:      hk.X,
		Y:      hk.Y,
	}
}

// Target returns the effective target of hk: window ops default to the
// focused window, everything else to none.
func Target(hk config.Hotkey) string {
	if hk.Target != "" {
		return hk.Target
	}
	if strings.HasPrefix(hk.Op, "window.") || hk.Op == ops.MouseMoveWindow {
		return config.TargetFocused
	}
	return config.TargetNone
}

func targetQuery(hk config.Hotkey) (string, bool) {
	switch Target(hk) {
	case config.TargetFocused:
		return ops.QueryFocused, true
	case config.TargetActive:
		return ops.QueryActive, true
	case config.TargetPointer:
		return ops.QueryAtPointer, true
	}
	return "", false
}
