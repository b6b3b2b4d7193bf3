package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowExists reports whether the server knows the window. BadWindow is a
// negative answer, any other error is a transport problem.
func (c *Connection) WindowExists(windowID xproto.Window) (bool, error) {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err == nil {
		return true, nil
	}
	var badWindow xproto.WindowError
	if errors.As(err, &badWindow) {
		return false, nil
	}
	return false, err
}

// WindowOrigin returns the window's top-left corner in root coordinates.
func (c *Connection) WindowOrigin(windowID xproto.Window) (x, y int, err error) {
	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to translate coordinates of 0x%x: %w", windowID, err)
	}
	return int(translate.DstX), int(translate.DstY), nil
}

// GetFocusedWindow returns the input focus holder. It may be None,
// PointerRoot or a root window.
func (c *Connection) GetFocusedWindow() (xproto.Window, error) {
	reply, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get input focus: %w", err)
	}
	return reply.Focus, nil
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW, or 0 when the window manager
// does not publish it.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0, c.absent(err)
	}
	return win, nil
}

// GetWindowAtPointer descends from the root through the children under the
// pointer and returns the first client window (one carrying WM_STATE). When
// no window carries WM_STATE the deepest child is returned; 0 means the
// pointer is over the bare root.
func (c *Connection) GetWindowAtPointer() (xproto.Window, error) {
	current := c.Root
	var deepest xproto.Window
	for {
		pointer, err := xproto.QueryPointer(c.XUtil.Conn(), current).Reply()
		if err != nil {
			return 0, fmt.Errorf("failed to query pointer: %w", err)
		}
		if pointer.Child == xproto.WindowNone {
			return deepest, nil
		}
		if _, err := icccm.WmStateGet(c.XUtil, pointer.Child); err == nil {
			return pointer.Child, nil
		}
		deepest = pointer.Child
		current = pointer.Child
	}
}

// GetWindowName returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) GetWindowName(windowID xproto.Window) (string, error) {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title, nil
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err != nil {
		return "", fmt.Errorf("window 0x%x has no name: %w", windowID, err)
	}
	return strings.TrimSpace(title), nil
}

// GetWindowPID returns _NET_WM_PID. ok is false when the property is unset.
func (c *Connection) GetWindowPID(windowID xproto.Window) (pid int, ok bool, err error) {
	p, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0, false, c.absent(err)
	}
	return int(p), true, nil
}

// SetInputFocus gives the window input focus directly, bypassing the
// window manager.
func (c *Connection) SetInputFocus(windowID xproto.Window) error {
	err := xproto.SetInputFocusChecked(
		c.XUtil.Conn(),
		xproto.InputFocusParent,
		windowID,
		xproto.TimeCurrentTime,
	).Check()
	if err != nil {
		return fmt.Errorf("failed to focus 0x%x: %w", windowID, err)
	}
	return nil
}

// RaiseWindow restacks the window above its siblings.
func (c *Connection) RaiseWindow(windowID xproto.Window) error {
	err := xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to raise 0x%x: %w", windowID, err)
	}
	return nil
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	deleteAtom, err := c.internAtom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := c.internAtom("WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), xproto.TimeCurrentTime, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// KillClient disconnects the client that owns the window.
func (c *Connection) KillClient(windowID xproto.Window) error {
	if err := xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check(); err != nil {
		return fmt.Errorf("failed to kill client of 0x%x: %w", windowID, err)
	}
	return nil
}

// ReparentWindow moves child under parent at (x, y) in parent coordinates.
func (c *Connection) ReparentWindow(child, parent xproto.Window, x, y int) error {
	err := xproto.ReparentWindowChecked(c.XUtil.Conn(), child, parent, int16(x), int16(y)).Check()
	if err != nil {
		return fmt.Errorf("failed to reparent 0x%x under 0x%x: %w", child, parent, err)
	}
	return nil
}
