package platform

// WindowID is a server-assigned window identifier (an X11 XID).
type WindowID uint32

// Keycode is a physical key code in the connection's keymap.
type Keycode uint8

// Button is a pointer button number (1=left, 2=middle, 3=right, 4-7 wheel).
type Button uint8

// Point is a position or delta in pixels.
type Point struct {
	X int
	Y int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Screen describes an X screen (one root window).
type Screen struct {
	ID     int
	Root   WindowID
	Width  int
	Height int
}

// Monitor describes a physical output reported by RandR.
type Monitor struct {
	ID     int
	Name   string
	Bounds Rect
}

// Backend is the set of wire-level primitives the engine needs from a
// display server connection. Implementations must be safe for concurrent use;
// Exclusive serializes mutating sequences.
type Backend interface {
	// DisplayName is the resolved display string this backend is connected to.
	DisplayName() string
	// Alive performs a cheap round trip to the server.
	Alive() bool
	Close()

	// Exclusive runs fn while holding the connection's write lock.
	Exclusive(fn func() error) error

	Keycodes(keysym string) []Keycode
	ModifierMask(code Keycode) uint16
	FakeKey(code Keycode, press bool) error
	SendKey(w WindowID, code Keycode, state uint16, press bool) error
	FakeButton(button Button, press bool) error
	SendButton(w WindowID, button Button, press bool) error

	PointerLocation() (Point, int, error)
	WarpPointer(screen int, p Point) error
	WarpPointerRelative(delta Point) error

	WindowExists(w WindowID) (bool, error)
	WindowOrigin(w WindowID) (Point, error)
	FocusedWindow() (WindowID, error)
	ActiveWindow() (WindowID, error)
	WindowAtPointer() (WindowID, error)
	WindowName(w WindowID) (string, error)
	WindowPID(w WindowID) (int, bool, error)
	CurrentDesktop() (int, error)
	WindowDesktop(w WindowID) (int, error)

	SetInputFocus(w WindowID) error
	RequestActivate(w WindowID) error
	SetCurrentDesktop(desktop int) error
	Raise(w WindowID) error
	RequestClose(w WindowID) error
	KillClient(w WindowID) error
	Reparent(child, parent WindowID, at Point) error

	Screens() []Screen
	DefaultScreen() int
	Monitors() ([]Monitor, error)
}
