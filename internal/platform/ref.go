package platform

import "fmt"

// WindowRef selects either an explicit window or the current window.
// The zero value is the current window.
type WindowRef struct {
	id       WindowID
	explicit bool
}

// CurrentWindow defers to whatever window the server considers current.
func CurrentWindow() WindowRef { return WindowRef{} }

// WindowByID references a window by id without validating it.
func WindowByID(id WindowID) WindowRef { return WindowRef{id: id, explicit: true} }

// OptionalWindow converts a nullable id into a ref.
func OptionalWindow(id *uint32) WindowRef {
	if id == nil {
		return CurrentWindow()
	}
	return WindowByID(WindowID(*id))
}

// ID returns the explicit window id, if any.
func (r WindowRef) ID() (WindowID, bool) { return r.id, r.explicit }

// IsCurrent reports whether the ref defers to the current window.
func (r WindowRef) IsCurrent() bool { return !r.explicit }

func (r WindowRef) String() string {
	if !r.explicit {
		return "current"
	}
	return fmt.Sprintf("0x%x", uint32(r.id))
}

// ScreenRef selects either an explicit screen or the current screen.
// The zero value is the current screen.
type ScreenRef struct {
	id       int
	explicit bool
}

// CurrentScreen defers to the server's default screen.
func CurrentScreen() ScreenRef { return ScreenRef{} }

// ScreenByID references a screen by index.
func ScreenByID(id int) ScreenRef { return ScreenRef{id: id, explicit: true} }

// OptionalScreen converts a nullable index into a ref.
func OptionalScreen(id *int) ScreenRef {
	if id == nil {
		return CurrentScreen()
	}
	return ScreenByID(*id)
}

// ID returns the explicit screen index, if any.
func (r ScreenRef) ID() (int, bool) { return r.id, r.explicit }

func (r ScreenRef) String() string {
	if !r.explicit {
		return "current"
	}
	return fmt.Sprintf("%d", r.id)
}
