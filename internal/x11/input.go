package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Keycodes returns every keycode producing keysym in the current keymap.
func (c *Connection) Keycodes(keysym string) []xproto.Keycode {
	return keybind.StrToKeycodes(c.XUtil, keysym)
}

// ModifierMask returns the modifier bit a keycode is bound to, or 0.
func (c *Connection) ModifierMask(code xproto.Keycode) uint16 {
	return keybind.ModGet(c.XUtil, code)
}

// FakeKey injects a key event through XTEST; it reaches whichever window has
// input focus.
func (c *Connection) FakeKey(code xproto.Keycode, press bool) error {
	kind := byte(xproto.KeyRelease)
	if press {
		kind = xproto.KeyPress
	}
	if err := xtest.FakeInputChecked(c.XUtil.Conn(), kind, byte(code), xproto.TimeCurrentTime, c.Root, 0, 0, 0).Check(); err != nil {
		return fmt.Errorf("fake key %d: %w", code, err)
	}
	return nil
}

// FakeButton injects a button event at the current pointer position.
func (c *Connection) FakeButton(button xproto.Button, press bool) error {
	kind := byte(xproto.ButtonRelease)
	if press {
		kind = xproto.ButtonPress
	}
	if err := xtest.FakeInputChecked(c.XUtil.Conn(), kind, byte(button), xproto.TimeCurrentTime, c.Root, 0, 0, 0).Check(); err != nil {
		return fmt.Errorf("fake button %d: %w", button, err)
	}
	return nil
}

// SendKey delivers a synthetic key event directly to window with SendEvent.
// Clients that ignore synthetic events will not react.
func (c *Connection) SendKey(window xproto.Window, code xproto.Keycode, state uint16, press bool) error {
	ev := xproto.KeyPressEvent{
		Detail:     code,
		Time:       xproto.TimeCurrentTime,
		Root:       c.Root,
		Event:      window,
		Child:      xproto.WindowNone,
		EventX:     1,
		EventY:     1,
		RootX:      1,
		RootY:      1,
		State:      state,
		SameScreen: true,
	}
	buf := ev.Bytes()
	mask := uint32(xproto.EventMaskKeyPress)
	if !press {
		buf[0] = xproto.KeyRelease
		mask = xproto.EventMaskKeyRelease
	}
	if err := xproto.SendEventChecked(c.XUtil.Conn(), true, window, mask, string(buf)).Check(); err != nil {
		return fmt.Errorf("send key %d to 0x%x: %w", code, window, err)
	}
	return nil
}

// SendButton delivers a synthetic button event to window at the pointer's
// position relative to it.
func (c *Connection) SendButton(window xproto.Window, button xproto.Button, press bool) error {
	ev := xproto.ButtonPressEvent{
		Detail:     button,
		Time:       xproto.TimeCurrentTime,
		Root:       c.Root,
		Event:      window,
		Child:      xproto.WindowNone,
		SameScreen: true,
	}
	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), window).Reply(); err == nil {
		ev.RootX, ev.RootY = pointer.RootX, pointer.RootY
		ev.EventX, ev.EventY = pointer.WinX, pointer.WinY
		ev.State = pointer.Mask
	}
	buf := ev.Bytes()
	mask := uint32(xproto.EventMaskButtonPress)
	if !press {
		buf[0] = xproto.ButtonRelease
		mask = xproto.EventMaskButtonRelease
	}
	if err := xproto.SendEventChecked(c.XUtil.Conn(), true, window, mask, string(buf)).Check(); err != nil {
		return fmt.Errorf("send button %d to 0x%x: %w", button, window, err)
	}
	return nil
}
