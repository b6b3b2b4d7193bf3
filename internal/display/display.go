// Package display is the object API over the engine: a Display hands out
// Screens and Windows, and each Window carries Key and Mouse method groups
// that target it.
package display

import (
	"context"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/platform"
)

// Display is one open display connection.
type Display struct {
	eng *engine.Engine
}

// Open returns the display for name from the manager's pool. An empty name
// selects the default display.
func Open(ctx context.Context, mgr *engine.Manager, name string) (*Display, error) {
	eng, err := mgr.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return New(eng), nil
}

// New wraps an engine.
func New(eng *engine.Engine) *Display {
	return &Display{eng: eng}
}

// Name is the resolved display name.
func (d *Display) Name() string { return d.eng.DisplayName() }

// Engine exposes the underlying engine for callers that need raw operations.
func (d *Display) Engine() *engine.Engine { return d.eng }

// IsAlive probes the connection.
func (d *Display) IsAlive() bool { return d.eng.IsAlive() }

// Screens lists every screen of the display.
func (d *Display) Screens() []*Screen {
	infos := d.eng.Screens()
	out := make([]*Screen, 0, len(infos))
	for _, info := range infos {
		out = append(out, &Screen{d: d, info: info})
	}
	return out
}

// Screen resolves a screen ref; an unknown index is ErrTargetNotFound.
func (d *Display) Screen(ref platform.ScreenRef) (*Screen, error) {
	info, err := d.eng.Screen(ref)
	if err != nil {
		return nil, err
	}
	return &Screen{d: d, info: info}, nil
}

// CurrentScreen is the server's default screen.
func (d *Display) CurrentScreen() *Screen {
	return &Screen{d: d, info: d.eng.CurrentScreen()}
}

// Window wraps an id without validating it.
func (d *Display) Window(id platform.WindowID) *Window {
	return newWindow(d, d.eng.Resolve(id))
}

// CurrentWindow targets whatever window is current when each operation runs.
func (d *Display) CurrentWindow() *Window {
	return newWindow(d, platform.CurrentWindow())
}

// Ref wraps an optional window reference.
func (d *Display) Ref(ref platform.WindowRef) *Window {
	return newWindow(d, ref)
}

// FocusedWindow returns the focus holder, or nil when focus is on nothing.
func (d *Display) FocusedWindow(ctx context.Context) (*Window, error) {
	return d.lookup(d.eng.FocusedWindow(ctx))
}

// ActiveWindow returns the window manager's active window, or nil.
func (d *Display) ActiveWindow(ctx context.Context) (*Window, error) {
	return d.lookup(d.eng.ActiveWindow(ctx))
}

// WindowAtPointer returns the client window under the pointer, or nil.
func (d *Display) WindowAtPointer(ctx context.Context) (*Window, error) {
	return d.lookup(d.eng.WindowAtPointer(ctx))
}

func (d *Display) lookup(id platform.WindowID, ok bool, err error) (*Window, error) {
	if err != nil || !ok {
		return nil, err
	}
	return d.Window(id), nil
}

// Pointer returns the pointer position and its screen.
func (d *Display) Pointer(ctx context.Context) (platform.Point, *Screen, error) {
	p, screen, err := d.eng.PointerLocation(ctx)
	if err != nil {
		return platform.Point{}, nil, err
	}
	s, err := d.Screen(platform.ScreenByID(screen))
	if err != nil {
		s = d.CurrentScreen()
	}
	return p, s, nil
}

// MoveMouseRelative moves the pointer by (dx, dy) from where it is.
func (d *Display) MoveMouseRelative(ctx context.Context, dx, dy int) (*engine.Completion, error) {
	return d.eng.MoveMouseRelative(ctx, dx, dy)
}

// CurrentDesktop returns the current virtual desktop; ok is false when the
// window manager does not publish one.
func (d *Display) CurrentDesktop(ctx context.Context) (int, bool, error) {
	return d.eng.CurrentDesktop(ctx)
}

// Monitors lists active RandR outputs.
func (d *Display) Monitors(ctx context.Context) ([]platform.Monitor, error) {
	return d.eng.Monitors(ctx)
}
