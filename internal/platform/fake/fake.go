// Package fake provides an in-memory display server for tests.
package fake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/isim/internal/platform"
)

// ErrTransport is returned once the backend has been severed.
var ErrTransport = errors.New("fake: transport closed")

// EventKind classifies recorded wire events.
type EventKind string

const (
	KeyEvent      EventKind = "key"
	ButtonEvent   EventKind = "button"
	WarpEvent     EventKind = "warp"
	FocusEvent    EventKind = "focus"
	ActivateEvent EventKind = "activate"
	DesktopEvent  EventKind = "desktop"
	RaiseEvent    EventKind = "raise"
	CloseEvent    EventKind = "close"
	KillEvent     EventKind = "kill"
	ReparentEvent EventKind = "reparent"
)

// Event is one request observed on the fake wire.
type Event struct {
	Kind   EventKind
	Window platform.WindowID // 0 for XTEST-style events
	Code   platform.Keycode
	Button platform.Button
	State  uint16
	Press  bool
	Point  platform.Point
}

// Window is the server-side state of a fake window.
type Window struct {
	Origin  platform.Point
	Name    string
	PID     int
	Desktop int
	Parent  platform.WindowID
	// IgnoreClose keeps the window mapped after WM_DELETE_WINDOW.
	IgnoreClose bool
}

// Backend is an in-memory platform.Backend.
type Backend struct {
	Name string

	mu       sync.Mutex
	writeMu  sync.Mutex
	windows  map[platform.WindowID]*Window
	keymap   map[string]platform.Keycode
	mods     map[platform.Keycode]uint16
	screens  []platform.Screen
	monitors []platform.Monitor
	pointer  platform.Point
	pscreen  int
	focus    platform.WindowID
	active   platform.WindowID
	desktop  int
	events   []Event
	closed   bool
	// failAfter severs the transport after that many more events; <0 disables.
	failAfter int
	// activeLag delays the active window update for that many ActiveWindow reads.
	activeLag     int
	pendingActive platform.WindowID
}

var _ platform.Backend = (*Backend)(nil)

// Modifier masks matching the core X protocol.
const (
	ShiftMask   uint16 = 1 << 0
	ControlMask uint16 = 1 << 2
	Mod1Mask    uint16 = 1 << 3
	Mod4Mask    uint16 = 1 << 6
)

// New returns a backend with one 1920x1080 screen and a US-like keymap.
func New(name string) *Backend {
	b := &Backend{
		Name:      name,
		windows:   make(map[platform.WindowID]*Window),
		keymap:    make(map[string]platform.Keycode),
		mods:      make(map[platform.Keycode]uint16),
		screens:   []platform.Screen{{ID: 0, Root: 1, Width: 1920, Height: 1080}},
		monitors:  []platform.Monitor{{ID: 0, Name: "eDP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}}},
		failAfter: -1,
	}
	code := platform.Keycode(24)
	for _, sym := range []string{
		"q", "w", "e", "r", "t", "y", "u", "i", "o", "p",
		"a", "s", "d", "f", "g", "h", "j", "k", "l",
		"z", "x", "c", "v", "b", "n", "m",
		"Return", "Tab", "space", "Escape", "BackSpace", "Delete",
		"Left", "Right", "Up", "Down", "F1", "F5",
	} {
		b.keymap[sym] = code
		code++
	}
	b.keymap["Shift_L"] = 50
	b.keymap["Control_L"] = 37
	b.keymap["Alt_L"] = 64
	b.keymap["Super_L"] = 133
	b.keymap["Meta_L"] = 64
	b.mods[50] = ShiftMask
	b.mods[37] = ControlMask
	b.mods[64] = Mod1Mask
	b.mods[133] = Mod4Mask
	return b
}

// AddWindow maps a window.
func (b *Backend) AddWindow(id platform.WindowID, w Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win := w
	b.windows[id] = &win
}

// AddScreen appends a screen.
func (b *Backend) AddScreen(s platform.Screen) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.screens = append(b.screens, s)
}

// SetFocus changes focus without recording an event, as an external client would.
func (b *Backend) SetFocus(w platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focus = w
}

// SetActive changes the active window without recording an event.
func (b *Backend) SetActive(w platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = w
}

// SetPointer moves the pointer without recording an event.
func (b *Backend) SetPointer(p platform.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pointer = p
}

// FailAfter severs the transport after n more recorded events.
func (b *Backend) FailAfter(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAfter = n
}

// LagActive makes the next n ActiveWindow reads report the previous value.
func (b *Backend) LagActive(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeLag = n
}

// Sever closes the transport.
func (b *Backend) Sever() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Events returns a copy of every recorded event.
func (b *Backend) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// EventsOf returns recorded events of one kind.
func (b *Backend) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, ev := range b.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// ResetEvents clears the event log.
func (b *Backend) ResetEvents() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// HasWindow reports whether a window is still mapped.
func (b *Backend) HasWindow(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.windows[id]
	return ok
}

// WindowState returns a copy of a window's state.
func (b *Backend) WindowState(id platform.WindowID) (Window, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// record appends an event; callers hold b.mu.
func (b *Backend) record(ev Event) error {
	if b.closed {
		return ErrTransport
	}
	if b.failAfter == 0 {
		b.closed = true
		return ErrTransport
	}
	if b.failAfter > 0 {
		b.failAfter--
	}
	b.events = append(b.events, ev)
	return nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return ErrTransport
	}
	return nil
}

func (b *Backend) DisplayName() string { return b.Name }

func (b *Backend) Alive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

func (b *Backend) Close() { b.Sever() }

func (b *Backend) Exclusive(fn func() error) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return fn()
}

func (b *Backend) Keycodes(keysym string) []platform.Keycode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code, ok := b.keymap[keysym]; ok {
		return []platform.Keycode{code}
	}
	return nil
}

func (b *Backend) ModifierMask(code platform.Keycode) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mods[code]
}

func (b *Backend) FakeKey(code platform.Keycode, press bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(Event{Kind: KeyEvent, Code: code, Press: press})
}

func (b *Backend) SendKey(w platform.WindowID, code platform.Keycode, state uint16, press bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(Event{Kind: KeyEvent, Window: w, Code: code, State: state, Press: press})
}

func (b *Backend) FakeButton(button platform.Button, press bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(Event{Kind: ButtonEvent, Button: button, Press: press, Point: b.pointer})
}

func (b *Backend) SendButton(w platform.WindowID, button platform.Button, press bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(Event{Kind: ButtonEvent, Window: w, Button: button, Press: press, Point: b.pointer})
}

func (b *Backend) PointerLocation() (platform.Point, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return platform.Point{}, 0, err
	}
	return b.pointer, b.pscreen, nil
}

func (b *Backend) WarpPointer(screen int, p platform.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if screen < 0 || screen >= len(b.screens) {
		return fmt.Errorf("fake: no screen %d", screen)
	}
	if err := b.record(Event{Kind: WarpEvent, Point: p}); err != nil {
		return err
	}
	b.pscreen = screen
	b.pointer = b.clamp(p)
	return nil
}

func (b *Backend) WarpPointerRelative(delta platform.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: WarpEvent, Point: delta}); err != nil {
		return err
	}
	b.pointer = b.clamp(platform.Point{X: b.pointer.X + delta.X, Y: b.pointer.Y + delta.Y})
	return nil
}

func (b *Backend) clamp(p platform.Point) platform.Point {
	s := b.screens[b.pscreen]
	p.X = max(0, min(p.X, s.Width-1))
	p.Y = max(0, min(p.Y, s.Height-1))
	return p
}

func (b *Backend) WindowExists(w platform.WindowID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}
	if b.isRoot(w) {
		return true, nil
	}
	_, ok := b.windows[w]
	return ok, nil
}

func (b *Backend) isRoot(w platform.WindowID) bool {
	for _, s := range b.screens {
		if s.Root == w {
			return true
		}
	}
	return false
}

func (b *Backend) WindowOrigin(w platform.WindowID) (platform.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return platform.Point{}, err
	}
	if b.isRoot(w) {
		return platform.Point{}, nil
	}
	win, ok := b.windows[w]
	if !ok {
		return platform.Point{}, fmt.Errorf("fake: bad window 0x%x", uint32(w))
	}
	return win.Origin, nil
}

func (b *Backend) FocusedWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	return b.focus, nil
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	if b.activeLag > 0 {
		b.activeLag--
		current := b.active
		if b.activeLag == 0 {
			b.active = b.pendingActive
		}
		return current, nil
	}
	return b.active, nil
}

// WindowAtPointer hit-tests mapped windows as 200x200 squares at their origin.
func (b *Backend) WindowAtPointer() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	var hit platform.WindowID
	for id, w := range b.windows {
		if b.pointer.X >= w.Origin.X && b.pointer.X < w.Origin.X+200 &&
			b.pointer.Y >= w.Origin.Y && b.pointer.Y < w.Origin.Y+200 {
			if hit == 0 || id > hit {
				hit = id
			}
		}
	}
	return hit, nil
}

func (b *Backend) WindowName(w platform.WindowID) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win, ok := b.windows[w]
	if !ok {
		return "", fmt.Errorf("fake: bad window 0x%x", uint32(w))
	}
	return win.Name, nil
}

func (b *Backend) WindowPID(w platform.WindowID) (int, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win, ok := b.windows[w]
	if !ok {
		return 0, false, fmt.Errorf("fake: bad window 0x%x", uint32(w))
	}
	return win.PID, win.PID > 0, nil
}

func (b *Backend) CurrentDesktop() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.desktop, b.checkOpen()
}

func (b *Backend) WindowDesktop(w platform.WindowID) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win, ok := b.windows[w]
	if !ok {
		return 0, fmt.Errorf("fake: bad window 0x%x", uint32(w))
	}
	return win.Desktop, nil
}

func (b *Backend) SetInputFocus(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: FocusEvent, Window: w}); err != nil {
		return err
	}
	b.focus = w
	return nil
}

func (b *Backend) RequestActivate(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: ActivateEvent, Window: w}); err != nil {
		return err
	}
	if b.activeLag == 0 {
		b.active = w
	} else {
		b.pendingActive = w
	}
	b.focus = w
	return nil
}

func (b *Backend) SetCurrentDesktop(desktop int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: DesktopEvent, Point: platform.Point{X: desktop}}); err != nil {
		return err
	}
	b.desktop = desktop
	return nil
}

func (b *Backend) Raise(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(Event{Kind: RaiseEvent, Window: w})
}

func (b *Backend) RequestClose(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: CloseEvent, Window: w}); err != nil {
		return err
	}
	if win, ok := b.windows[w]; ok && !win.IgnoreClose {
		delete(b.windows, w)
	}
	return nil
}

func (b *Backend) KillClient(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: KillEvent, Window: w}); err != nil {
		return err
	}
	delete(b.windows, w)
	return nil
}

func (b *Backend) Reparent(child, parent platform.WindowID, at platform.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(Event{Kind: ReparentEvent, Window: child, Point: at}); err != nil {
		return err
	}
	if win, ok := b.windows[child]; ok {
		win.Parent = parent
	}
	return nil
}

func (b *Backend) Screens() []platform.Screen {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Screen, len(b.screens))
	copy(out, b.screens)
	return out
}

func (b *Backend) DefaultScreen() int { return 0 }

func (b *Backend) Monitors() ([]platform.Monitor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	out := make([]platform.Monitor, len(b.monitors))
	copy(out, b.monitors)
	return out, nil
}
