package x11

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrClosed is returned by requests issued after Close.
var ErrClosed = errors.New("x11 connection closed")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	name    string
	writeMu sync.Mutex
	closed  atomic.Bool
}

// Dial connects to the named display and initializes XTEST and the keymap.
// An empty name lets xgb fall back to $DISPLAY.
func Dial(name string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(name)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display %q: %w", name, err)
	}

	if err := xtest.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("XTEST extension unavailable on %q: %w", name, err)
	}
	// Required for keysym to keycode lookups.
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		name:  name,
	}, nil
}

// Name is the display string this connection was dialed with.
func (c *Connection) Name() string { return c.name }

// Exclusive runs fn holding the write lock, so multi-request sequences from
// different goroutines never interleave on the wire.
func (c *Connection) Exclusive(fn func() error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	return fn()
}

// Ping performs a GetInputFocus round trip.
func (c *Connection) Ping() error {
	if c.closed.Load() {
		return ErrClosed
	}
	_, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	return err
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.XUtil.Conn().Close()
}

// absent turns a property lookup error into "no value" while the connection
// is healthy, and surfaces it when the transport is gone.
func (c *Connection) absent(err error) error {
	if err == nil {
		return nil
	}
	if pingErr := c.Ping(); pingErr != nil {
		return err
	}
	return nil
}

func (c *Connection) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}
