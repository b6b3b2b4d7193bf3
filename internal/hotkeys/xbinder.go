package hotkeys

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// XBinder grabs keys on the root window of its own X connection.
type XBinder struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var _ Binder = (*XBinder)(nil)

var ignoreModsOnce sync.Once

// DialBinder opens a dedicated connection for key grabs on display.
func DialBinder(display string) (*XBinder, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display %q: %w", display, err)
	}
	keybind.Initialize(xu)

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &XBinder{xu: xu, root: xu.RootWin()}, nil
}

// Bind grabs keys, written the xgbutil way ("Mod4-Shift-r").
func (b *XBinder) Bind(keys string, fn func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		fn()
	}).Connect(b.xu, b.root, keys, true)
}

// Run runs the xevent loop and closes the connection once ctx ends.
func (b *XBinder) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		xevent.Main(b.xu)
		close(done)
	}()

	select {
	case <-ctx.Done():
		xevent.Quit(b.xu)
		// Unblocks WaitForEvent in the loop.
		b.xu.Conn().Close()
		<-done
		return nil
	case <-done:
		return fmt.Errorf("hotkey event loop stopped")
	}
}

// configureIgnoreMods makes grabs match with CapsLock, NumLock and
// ScrollLock in any combination.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
