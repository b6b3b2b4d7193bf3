//go:build linux

package platform

import (
	"context"
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/isim/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// DialX11 opens a new connection to the named display. The dial itself is
// not interruptible; if ctx ends first the late connection is closed.
func DialX11(ctx context.Context, display string) (Backend, error) {
	type result struct {
		conn *x11.Connection
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := x11.Dial(display)
		done <- result{conn, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return NewLinuxBackend(r.conn), nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				r.conn.Close()
			}
		}()
		return nil, fmt.Errorf("dial %q: %w", display, ctx.Err())
	}
}

func (b *LinuxBackend) DisplayName() string { return b.conn.Name() }

func (b *LinuxBackend) Alive() bool { return b.conn.Ping() == nil }

func (b *LinuxBackend) Close() { b.conn.Close() }

func (b *LinuxBackend) Exclusive(fn func() error) error { return b.conn.Exclusive(fn) }

func (b *LinuxBackend) Keycodes(keysym string) []Keycode {
	codes := b.conn.Keycodes(keysym)
	out := make([]Keycode, 0, len(codes))
	for _, c := range codes {
		out = append(out, Keycode(c))
	}
	return out
}

func (b *LinuxBackend) ModifierMask(code Keycode) uint16 {
	return b.conn.ModifierMask(xproto.Keycode(code))
}

func (b *LinuxBackend) FakeKey(code Keycode, press bool) error {
	return b.conn.FakeKey(xproto.Keycode(code), press)
}

func (b *LinuxBackend) SendKey(w WindowID, code Keycode, state uint16, press bool) error {
	return b.conn.SendKey(xproto.Window(w), xproto.Keycode(code), state, press)
}

func (b *LinuxBackend) FakeButton(button Button, press bool) error {
	return b.conn.FakeButton(xproto.Button(button), press)
}

func (b *LinuxBackend) SendButton(w WindowID, button Button, press bool) error {
	return b.conn.SendButton(xproto.Window(w), xproto.Button(button), press)
}

func (b *LinuxBackend) PointerLocation() (Point, int, error) {
	x, y, screen, err := b.conn.PointerLocation()
	if err != nil {
		return Point{}, 0, err
	}
	return Point{X: x, Y: y}, screen, nil
}

func (b *LinuxBackend) WarpPointer(screen int, p Point) error {
	return b.conn.WarpPointer(screen, p.X, p.Y)
}

func (b *LinuxBackend) WarpPointerRelative(delta Point) error {
	return b.conn.WarpPointerRelative(delta.X, delta.Y)
}

func (b *LinuxBackend) WindowExists(w WindowID) (bool, error) {
	return b.conn.WindowExists(xproto.Window(w))
}

func (b *LinuxBackend) WindowOrigin(w WindowID) (Point, error) {
	x, y, err := b.conn.WindowOrigin(xproto.Window(w))
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func (b *LinuxBackend) FocusedWindow() (WindowID, error) {
	w, err := b.conn.GetFocusedWindow()
	return WindowID(w), err
}

func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	w, err := b.conn.GetActiveWindow()
	return WindowID(w), err
}

func (b *LinuxBackend) WindowAtPointer() (WindowID, error) {
	w, err := b.conn.GetWindowAtPointer()
	return WindowID(w), err
}

func (b *LinuxBackend) WindowName(w WindowID) (string, error) {
	return b.conn.GetWindowName(xproto.Window(w))
}

func (b *LinuxBackend) WindowPID(w WindowID) (int, bool, error) {
	return b.conn.GetWindowPID(xproto.Window(w))
}

func (b *LinuxBackend) CurrentDesktop() (int, error) {
	return b.conn.GetCurrentDesktop()
}

func (b *LinuxBackend) WindowDesktop(w WindowID) (int, error) {
	return b.conn.GetWindowDesktop(xproto.Window(w))
}

func (b *LinuxBackend) SetInputFocus(w WindowID) error {
	return b.conn.SetInputFocus(xproto.Window(w))
}

func (b *LinuxBackend) RequestActivate(w WindowID) error {
	return b.conn.ActivateWindow(xproto.Window(w))
}

func (b *LinuxBackend) SetCurrentDesktop(desktop int) error {
	return b.conn.SetCurrentDesktop(desktop)
}

func (b *LinuxBackend) Raise(w WindowID) error {
	return b.conn.RaiseWindow(xproto.Window(w))
}

func (b *LinuxBackend) RequestClose(w WindowID) error {
	return b.conn.CloseWindow(xproto.Window(w))
}

func (b *LinuxBackend) KillClient(w WindowID) error {
	return b.conn.KillClient(xproto.Window(w))
}

func (b *LinuxBackend) Reparent(child, parent WindowID, at Point) error {
	return b.conn.ReparentWindow(xproto.Window(child), xproto.Window(parent), at.X, at.Y)
}

func (b *LinuxBackend) Screens() []Screen {
	screens := b.conn.Screens()
	out := make([]Screen, 0, len(screens))
	for _, s := range screens {
		out = append(out, Screen{
			ID:     s.Index,
			Root:   WindowID(s.Root),
			Width:  s.Width,
			Height: s.Height,
		})
	}
	return out
}

func (b *LinuxBackend) DefaultScreen() int { return b.conn.DefaultScreen() }

// Monitors returns all active RandR outputs.
func (b *LinuxBackend) Monitors() ([]Monitor, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, monitorFromX11(m))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func monitorFromX11(m x11.Monitor) Monitor {
	return Monitor{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}
