package ops

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/display"
	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/platform"
)

type handler func(ctx context.Context, d *display.Display, req Request, res *Result) error

// Executor runs Requests against displays pooled by an engine.Manager.
type Executor struct {
	mgr      *engine.Manager
	keyDelay atomic.Int64
	table    map[string]handler
}

// NewExecutor creates an executor. keyDelay is used for key operations whose
// request carries no delay of its own.
func NewExecutor(mgr *engine.Manager, keyDelay time.Duration) *Executor {
	x := &Executor{mgr: mgr}
	x.SetKeyDelay(keyDelay)
	x.table = map[string]handler{
		KeyDown:  x.keys((*display.Keyboard).Down),
		KeyUp:    x.keys((*display.Keyboard).Up),
		KeyPress: x.keys((*display.Keyboard).Press),

		MouseDown:       button((*display.Mouse).Down),
		MouseUp:         button((*display.Mouse).Up),
		MouseClick:      button((*display.Mouse).Click),
		MouseMove:       moveMouse,
		MouseMoveRel:    moveMouseRelative,
		MouseMoveWindow: moveMouseWindow,

		WindowFocus:    command((*display.Window).Focus),
		WindowActivate: command((*display.Window).Activate),
		WindowRaise:    command((*display.Window).Raise),
		WindowClose:    command((*display.Window).Close),
		WindowKill:     command((*display.Window).Kill),
		WindowPID:      windowPID,
		WindowName:     windowName,
		WindowDesktop:  windowDesktop,
		WindowReparent: reparent,

		QueryFocused:   lookup((*display.Display).FocusedWindow),
		QueryActive:    lookup((*display.Display).ActiveWindow),
		QueryAtPointer: lookup((*display.Display).WindowAtPointer),
		QueryPointer:   pointer,
		QueryScreens:   screens,
		QueryScreen:    currentScreen,
		QueryMonitors:  monitors,
		QueryDesktop:   currentDesktop,
	}
	return x
}

// SetKeyDelay changes the default inter-key delay.
func (x *Executor) SetKeyDelay(d time.Duration) {
	x.keyDelay.Store(int64(d))
}

// Ops lists the supported operation names in sorted order.
func (x *Executor) Ops() []string {
	names := make([]string, 0, len(x.table))
	for name := range x.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs one request. Failures are reported in the Result; Execute
// itself never fails.
func (x *Executor) Execute(ctx context.Context, req Request) Result {
	var res Result
	h, ok := x.table[req.Op]
	if !ok {
		res.fail(fmt.Errorf("%q: %w", req.Op, ErrUnknownOp))
		return res
	}

	d, err := display.Open(ctx, x.mgr, req.Display)
	if err != nil {
		res.fail(err)
		return res
	}
	res.Display = d.Name()

	if err := h(ctx, d, req, &res); err != nil {
		logger.FromContext(ctx).Debug("request failed",
			zap.String("op", req.Op),
			zap.String("display", res.Display),
			zap.Error(err))
		res.fail(err)
		return res
	}
	res.succeed()
	return res
}

func (x *Executor) delay(req Request) time.Duration {
	if req.DelayMs != nil && *req.DelayMs >= 0 {
		return time.Duration(*req.DelayMs) * time.Millisecond
	}
	return time.Duration(x.keyDelay.Load())
}

func target(d *display.Display, req Request) *display.Window {
	return d.Ref(platform.OptionalWindow(req.Window))
}

// settle waits for an asynchronous operation unless the request opted out.
func settle(ctx context.Context, req Request, res *Result, c *engine.Completion, err error) error {
	if err != nil {
		return err
	}
	res.Completion = c.ID.String()
	if req.NoWait {
		select {
		case <-c.Done():
			return c.Err()
		default:
			res.Pending = true
			return nil
		}
	}
	_, err = c.Wait(ctx)
	return err
}

func (x *Executor) keys(fn func(*display.Keyboard, context.Context, string, time.Duration) error) handler {
	return func(ctx context.Context, d *display.Display, req Request, res *Result) error {
		w := target(d, req)
		return fn(&w.Key, ctx, req.Keys, x.delay(req))
	}
}

func button(fn func(*display.Mouse, context.Context, int) error) handler {
	return func(ctx context.Context, d *display.Display, req Request, res *Result) error {
		w := target(d, req)
		return fn(&w.Mouse, ctx, req.Button)
	}
}

func command(fn func(*display.Window, context.Context) (*engine.Completion, error)) handler {
	return func(ctx context.Context, d *display.Display, req Request, res *Result) error {
		w := target(d, req)
		if id, ok := w.ID(); ok {
			res.Window = windowID(id)
		}
		c, err := fn(w, ctx)
		return settle(ctx, req, res, c, err)
	}
}

func lookup(fn func(*display.Display, context.Context) (*display.Window, error)) handler {
	return func(ctx context.Context, d *display.Display, req Request, res *Result) error {
		w, err := fn(d, ctx)
		if err != nil || w == nil {
			return err
		}
		if id, ok := w.ID(); ok {
			res.Window = windowID(id)
		}
		return nil
	}
}

func moveMouse(ctx context.Context, d *display.Display, req Request, res *Result) error {
	s, err := d.Screen(platform.OptionalScreen(req.Screen))
	if err != nil {
		return err
	}
	c, err := s.MoveMouse(ctx, req.X, req.Y)
	return settle(ctx, req, res, c, err)
}

func moveMouseRelative(ctx context.Context, d *display.Display, req Request, res *Result) error {
	c, err := d.MoveMouseRelative(ctx, req.X, req.Y)
	return settle(ctx, req, res, c, err)
}

func moveMouseWindow(ctx context.Context, d *display.Display, req Request, res *Result) error {
	w := target(d, req)
	c, err := w.Mouse.Move(ctx, req.X, req.Y)
	return settle(ctx, req, res, c, err)
}

func windowPID(ctx context.Context, d *display.Display, req Request, res *Result) error {
	pid, ok, err := target(d, req).PID(ctx)
	if ok {
		res.PID = &pid
	}
	return err
}

func windowName(ctx context.Context, d *display.Display, req Request, res *Result) error {
	name, ok, err := target(d, req).Name(ctx)
	if ok {
		res.Name = &name
	}
	return err
}

func windowDesktop(ctx context.Context, d *display.Display, req Request, res *Result) error {
	desktop, ok, err := target(d, req).Desktop(ctx)
	if ok {
		res.Desktop = &desktop
	}
	return err
}

func reparent(ctx context.Context, d *display.Display, req Request, res *Result) error {
	child := target(d, req)
	parent := d.Ref(platform.OptionalWindow(req.Parent))
	if id, ok := child.ID(); ok {
		res.Window = windowID(id)
	}
	return child.ReparentTo(ctx, parent)
}

func pointer(ctx context.Context, d *display.Display, req Request, res *Result) error {
	p, s, err := d.Pointer(ctx)
	if err != nil {
		return err
	}
	res.Pointer = &Pointer{X: p.X, Y: p.Y, Screen: s.ID()}
	return nil
}

func screens(ctx context.Context, d *display.Display, req Request, res *Result) error {
	for _, s := range d.Screens() {
		res.Screens = append(res.Screens, screenInfo(s.Info()))
	}
	return nil
}

func currentScreen(ctx context.Context, d *display.Display, req Request, res *Result) error {
	res.Screens = []ScreenInfo{screenInfo(d.CurrentScreen().Info())}
	return nil
}

func monitors(ctx context.Context, d *display.Display, req Request, res *Result) error {
	list, err := d.Monitors(ctx)
	if err != nil {
		return err
	}
	for _, m := range list {
		res.Monitors = append(res.Monitors, monitorInfo(m))
	}
	return nil
}

func currentDesktop(ctx context.Context, d *display.Display, req Request, res *Result) error {
	desktop, ok, err := d.CurrentDesktop(ctx)
	if ok {
		res.Desktop = &desktop
	}
	return err
}
