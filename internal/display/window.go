package display

import (
	"context"
	"time"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/platform"
)

// Window targets either a specific window or the current one. Nothing is
// validated until an operation runs.
type Window struct {
	d   *Display
	ref platform.WindowRef

	// Key synthesizes keyboard input for this window.
	Key Keyboard
	// Mouse synthesizes pointer input for this window.
	Mouse Mouse
}

func newWindow(d *Display, ref platform.WindowRef) *Window {
	w := &Window{d: d, ref: ref}
	w.Key = Keyboard{w: w}
	w.Mouse = Mouse{w: w}
	return w
}

// ID returns the window id; ok is false for the current-window target.
func (w *Window) ID() (platform.WindowID, bool) { return w.ref.ID() }

func (w *Window) Ref() platform.WindowRef { return w.ref }

func (w *Window) String() string { return w.ref.String() }

func (w *Window) Focus(ctx context.Context) (*engine.Completion, error) {
	return w.d.eng.Focus(ctx, w.ref)
}

func (w *Window) Activate(ctx context.Context) (*engine.Completion, error) {
	return w.d.eng.Activate(ctx, w.ref)
}

func (w *Window) Raise(ctx context.Context) (*engine.Completion, error) {
	return w.d.eng.Raise(ctx, w.ref)
}

// Close asks the owning client to close the window.
func (w *Window) Close(ctx context.Context) (*engine.Completion, error) {
	return w.d.eng.Close(ctx, w.ref)
}

// Kill disconnects the owning client.
func (w *Window) Kill(ctx context.Context) (*engine.Completion, error) {
	return w.d.eng.Kill(ctx, w.ref)
}

// ReparentTo moves the window under parent.
func (w *Window) ReparentTo(ctx context.Context, parent *Window) error {
	return w.d.eng.Reparent(ctx, w.ref, parent.ref)
}

// PID returns the owning process id when the window advertises one.
func (w *Window) PID(ctx context.Context) (int, bool, error) {
	return w.d.eng.PID(ctx, w.ref)
}

func (w *Window) Name(ctx context.Context) (string, bool, error) {
	return w.d.eng.WindowName(ctx, w.ref)
}

// Desktop returns the window's desktop (-1 when sticky).
func (w *Window) Desktop(ctx context.Context) (int, bool, error) {
	return w.d.eng.WindowDesktop(ctx, w.ref)
}

// Keyboard is the key method group of a Window.
type Keyboard struct {
	w *Window
}

func (k Keyboard) Down(ctx context.Context, keys string, delay time.Duration) error {
	return k.w.d.eng.KeyDown(ctx, keys, k.w.ref, delay)
}

func (k Keyboard) Up(ctx context.Context, keys string, delay time.Duration) error {
	return k.w.d.eng.KeyUp(ctx, keys, k.w.ref, delay)
}

func (k Keyboard) Press(ctx context.Context, keys string, delay time.Duration) error {
	return k.w.d.eng.KeyPress(ctx, keys, k.w.ref, delay)
}

// Mouse is the pointer method group of a Window.
type Mouse struct {
	w *Window
}

func (m Mouse) Down(ctx context.Context, button int) error {
	return m.w.d.eng.MouseDown(ctx, button, m.w.ref)
}

func (m Mouse) Up(ctx context.Context, button int) error {
	return m.w.d.eng.MouseUp(ctx, button, m.w.ref)
}

func (m Mouse) Click(ctx context.Context, button int) error {
	return m.w.d.eng.Click(ctx, button, m.w.ref)
}

// Move places the pointer at (dx, dy) relative to the window's origin.
func (m Mouse) Move(ctx context.Context, dx, dy int) (*engine.Completion, error) {
	return m.w.d.eng.MoveMouseRelativeToWindow(ctx, dx, dy, m.w.ref)
}
