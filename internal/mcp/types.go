package mcp

// KeyInput is the input for the key tools.
type KeyInput struct {
	Keys    string  `json:"keys" jsonschema:"Key sequence such as ctrl+alt+t, shift+Return or a. Keys are joined with + and pressed in order."`
	Window  *uint32 `json:"window,omitempty" jsonschema:"Target window id. When omitted the keys go to the currently focused window via XTEST."`
	DelayMs *int    `json:"delay_ms,omitempty" jsonschema:"Pause in milliseconds between individual key events (default: config input.key_delay_ms)"`
	Display string  `json:"display,omitempty" jsonschema:"X display name such as :0 (default: resolved from config, DISPLAY or the login session)"`
}

// ButtonInput is the input for the mouse button tools.
type ButtonInput struct {
	Button  int     `json:"button" jsonschema:"Mouse button 1-7 (1 left, 2 middle, 3 right, 4/5 wheel up/down, 6/7 wheel left/right)"`
	Window  *uint32 `json:"window,omitempty" jsonschema:"Target window id. When omitted the event is injected at the pointer via XTEST."`
	Display string  `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}

// MoveInput is the input for mouse_move.
type MoveInput struct {
	X       int    `json:"x" jsonschema:"Absolute x coordinate on the screen"`
	Y       int    `json:"y" jsonschema:"Absolute y coordinate on the screen"`
	Screen  *int   `json:"screen,omitempty" jsonschema:"Screen index (default: the display's default screen)"`
	NoWait  bool   `json:"no_wait,omitempty" jsonschema:"Return as soon as the request is sent instead of waiting for the pointer to move"`
	Display string `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}

// MoveRelativeInput is the input for mouse_move_relative.
type MoveRelativeInput struct {
	DX      int    `json:"dx" jsonschema:"Horizontal offset in pixels from the current pointer position"`
	DY      int    `json:"dy" jsonschema:"Vertical offset in pixels from the current pointer position"`
	NoWait  bool   `json:"no_wait,omitempty" jsonschema:"Return as soon as the request is sent"`
	Display string `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}

// MoveWindowInput is the input for mouse_move_window.
type MoveWindowInput struct {
	X       int     `json:"x" jsonschema:"Horizontal offset from the window's top-left corner"`
	Y       int     `json:"y" jsonschema:"Vertical offset from the window's top-left corner"`
	Window  *uint32 `json:"window,omitempty" jsonschema:"Window id (default: the focused window)"`
	NoWait  bool    `json:"no_wait,omitempty" jsonschema:"Return as soon as the request is sent"`
	Display string  `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}

// WindowInput is the input for tools acting on one window.
type WindowInput struct {
	Window  *uint32 `json:"window,omitempty" jsonschema:"Window id. Commands (focus, activate, raise, close, kill) require it; queries default to the focused window."`
	NoWait  bool    `json:"no_wait,omitempty" jsonschema:"Return as soon as the request is sent instead of waiting for its effect"`
	Display string  `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}

// ReparentInput is the input for window_reparent.
type ReparentInput struct {
	Window  uint32 `json:"window" jsonschema:"Window id to move"`
	Parent  uint32 `json:"parent" jsonschema:"New parent window id"`
	Display string `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}

// DisplayInput is the input for display-wide queries.
type DisplayInput struct {
	Display string `json:"display,omitempty" jsonschema:"X display name (default: resolved automatically)"`
}
