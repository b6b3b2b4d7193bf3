package engine

import (
	"context"
	"fmt"

	"github.com/1broseidon/isim/internal/platform"
)

// pointerRoot is the X11 PointerRoot focus value.
const pointerRoot platform.WindowID = 1

// Resolve wraps a raw id without checking that the window exists; the
// operation that uses it validates.
func (e *Engine) Resolve(id platform.WindowID) platform.WindowRef {
	return platform.WindowByID(id)
}

func (e *Engine) isRoot(w platform.WindowID) bool {
	for _, s := range e.backend.Screens() {
		if s.Root == w {
			return true
		}
	}
	return false
}

func (e *Engine) realWindow(w platform.WindowID) bool {
	return w != 0 && w != pointerRoot && !e.isRoot(w)
}

// FocusedWindow returns the window holding input focus. ok is false when focus
// is on nothing, PointerRoot or a root window.
func (e *Engine) FocusedWindow(ctx context.Context) (platform.WindowID, bool, error) {
	w, err := e.backend.FocusedWindow()
	if err != nil {
		return 0, false, dispatchError("focused window", err)
	}
	if !e.realWindow(w) {
		return 0, false, nil
	}
	return w, true, nil
}

// ActiveWindow returns the window the window manager considers active.
func (e *Engine) ActiveWindow(ctx context.Context) (platform.WindowID, bool, error) {
	w, err := e.backend.ActiveWindow()
	if err != nil {
		return 0, false, dispatchError("active window", err)
	}
	if !e.realWindow(w) {
		return 0, false, nil
	}
	return w, true, nil
}

// WindowAtPointer hit-tests the current pointer position.
func (e *Engine) WindowAtPointer(ctx context.Context) (platform.WindowID, bool, error) {
	w, err := e.backend.WindowAtPointer()
	if err != nil {
		return 0, false, dispatchError("window at pointer", err)
	}
	if !e.realWindow(w) {
		return 0, false, nil
	}
	return w, true, nil
}

// Screens lists the connection's screens in id order.
func (e *Engine) Screens() []platform.Screen {
	return e.backend.Screens()
}

// CurrentScreen returns the server's default screen.
func (e *Engine) CurrentScreen() platform.Screen {
	screens := e.backend.Screens()
	def := e.backend.DefaultScreen()
	if def >= 0 && def < len(screens) {
		return screens[def]
	}
	if len(screens) > 0 {
		return screens[0]
	}
	return platform.Screen{}
}

// Screen resolves a screen ref.
func (e *Engine) Screen(ref platform.ScreenRef) (platform.Screen, error) {
	id, explicit := ref.ID()
	if !explicit {
		return e.CurrentScreen(), nil
	}
	for _, s := range e.backend.Screens() {
		if s.ID == id {
			return s, nil
		}
	}
	return platform.Screen{}, fmt.Errorf("screen %d: %w", id, ErrTargetNotFound)
}

// PointerLocation returns the pointer position and the screen it is on.
func (e *Engine) PointerLocation(ctx context.Context) (platform.Point, int, error) {
	p, screen, err := e.backend.PointerLocation()
	if err != nil {
		return platform.Point{}, 0, dispatchError("pointer location", err)
	}
	return p, screen, nil
}

// resolveCurrent maps the current ref to the focused window.
func (e *Engine) resolveCurrent(ctx context.Context, op string, ref platform.WindowRef) (platform.WindowID, bool, error) {
	if id, ok, err := e.target(op, ref); err != nil || ok {
		return id, ok, err
	}
	return e.FocusedWindow(ctx)
}

// WindowName returns the window title (EWMH name, falling back to WM_NAME).
func (e *Engine) WindowName(ctx context.Context, ref platform.WindowRef) (string, bool, error) {
	w, ok, err := e.resolveCurrent(ctx, "window name", ref)
	if err != nil || !ok {
		return "", false, err
	}
	name, err := e.backend.WindowName(w)
	if err != nil {
		return "", false, nil
	}
	return name, true, nil
}

// CurrentDesktop returns the current virtual desktop.
func (e *Engine) CurrentDesktop(ctx context.Context) (int, bool, error) {
	d, err := e.backend.CurrentDesktop()
	if err != nil {
		if !e.backend.Alive() {
			return 0, false, dispatchError("current desktop", err)
		}
		return 0, false, nil
	}
	return d, true, nil
}

// WindowDesktop returns the desktop a window lives on (-1 for sticky windows).
func (e *Engine) WindowDesktop(ctx context.Context, ref platform.WindowRef) (int, bool, error) {
	w, ok, err := e.resolveCurrent(ctx, "window desktop", ref)
	if err != nil || !ok {
		return 0, false, err
	}
	d, err := e.backend.WindowDesktop(w)
	if err != nil {
		return 0, false, nil
	}
	return d, true, nil
}

// Monitors lists active RandR outputs.
func (e *Engine) Monitors(ctx context.Context) ([]platform.Monitor, error) {
	monitors, err := e.backend.Monitors()
	if err != nil {
		return nil, dispatchError("monitors", err)
	}
	return monitors, nil
}

// PID returns the process owning a window via _NET_WM_PID. ok is false when
// the window does not advertise one.
func (e *Engine) PID(ctx context.Context, ref platform.WindowRef) (int, bool, error) {
	w, ok, err := e.resolveCurrent(ctx, "get pid", ref)
	if err != nil || !ok {
		return 0, false, err
	}
	pid, ok, err := e.backend.WindowPID(w)
	if err != nil || !ok || pid <= 0 {
		return 0, false, nil
	}
	return pid, true, nil
}
