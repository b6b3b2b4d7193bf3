package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// PointerLocation returns the pointer position in root coordinates and the
// index of the screen it is on.
func (c *Connection) PointerLocation() (x, y, screen int, err error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	screen = c.DefaultScreen()
	for _, s := range c.Screens() {
		if s.Root == pointer.Root {
			screen = s.Index
			break
		}
	}
	return int(pointer.RootX), int(pointer.RootY), screen, nil
}

// WarpPointer moves the pointer to (x, y) on the given screen's root.
func (c *Connection) WarpPointer(screen, x, y int) error {
	screens := c.Screens()
	if screen < 0 || screen >= len(screens) {
		return fmt.Errorf("no screen %d", screen)
	}
	err := xproto.WarpPointerChecked(
		c.XUtil.Conn(),
		xproto.WindowNone,
		screens[screen].Root,
		0, 0,
		0, 0,
		int16(x), int16(y),
	).Check()
	if err != nil {
		return fmt.Errorf("failed to move mouse: %w", err)
	}
	return nil
}

// WarpPointerRelative moves the pointer by (dx, dy) from where it is.
func (c *Connection) WarpPointerRelative(dx, dy int) error {
	err := xproto.WarpPointerChecked(
		c.XUtil.Conn(),
		xproto.WindowNone,
		xproto.WindowNone,
		0, 0,
		0, 0,
		int16(dx), int16(dy),
	).Check()
	if err != nil {
		return fmt.Errorf("failed to move mouse: %w", err)
	}
	return nil
}
