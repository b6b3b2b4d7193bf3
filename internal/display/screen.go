package display

import (
	"context"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/platform"
)

// Screen is one X screen of a Display.
type Screen struct {
	d    *Display
	info platform.Screen
}

func (s *Screen) ID() int                 { return s.info.ID }
func (s *Screen) Width() int              { return s.info.Width }
func (s *Screen) Height() int             { return s.info.Height }
func (s *Screen) Root() platform.WindowID { return s.info.Root }
func (s *Screen) Info() platform.Screen   { return s.info }

// MoveMouse places the pointer at (x, y) on this screen.
func (s *Screen) MoveMouse(ctx context.Context, x, y int) (*engine.Completion, error) {
	return s.d.eng.MoveMouse(ctx, x, y, platform.ScreenByID(s.info.ID))
}
