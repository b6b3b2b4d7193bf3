// Package ops is the request/result surface shared by the CLI, the IPC
// daemon and the MCP server. Every front end builds a Request and hands it
// to an Executor.
package ops

import (
	"errors"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/platform"
)

// Operation names.
const (
	KeyDown  = "key.down"
	KeyUp    = "key.up"
	KeyPress = "key.press"

	MouseDown       = "mouse.down"
	MouseUp         = "mouse.up"
	MouseClick      = "mouse.click"
	MouseMove       = "mouse.move"
	MouseMoveRel    = "mouse.move_relative"
	MouseMoveWindow = "mouse.move_window"

	WindowFocus    = "window.focus"
	WindowActivate = "window.activate"
	WindowRaise    = "window.raise"
	WindowClose    = "window.close"
	WindowKill     = "window.kill"
	WindowPID      = "window.pid"
	WindowName     = "window.name"
	WindowDesktop  = "window.desktop"
	WindowReparent = "window.reparent"

	QueryFocused   = "query.focused"
	QueryActive    = "query.active"
	QueryAtPointer = "query.at_pointer"
	QueryPointer   = "query.pointer"
	QueryScreens   = "query.screens"
	QueryScreen    = "query.current_screen"
	QueryMonitors  = "query.monitors"
	QueryDesktop   = "query.desktop"
)

// Request is one operation against one display. Window and Screen are
// optional; nil means the current window or screen.
type Request struct {
	Op      string  `json:"op"`
	Display string  `json:"display,omitempty"`
	Window  *uint32 `json:"window,omitempty"`
	Parent  *uint32 `json:"parent,omitempty"`
	Screen  *int    `json:"screen,omitempty"`
	Keys    string  `json:"keys,omitempty"`
	Button  int     `json:"button,omitempty"`
	X       int     `json:"x,omitempty"`
	Y       int     `json:"y,omitempty"`
	DelayMs *int    `json:"delay_ms,omitempty"`
	// NoWait returns as soon as an asynchronous request is written.
	NoWait bool `json:"no_wait,omitempty"`
}

// Pointer is a pointer position on a screen.
type Pointer struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Screen int `json:"screen"`
}

// ScreenInfo describes one X screen.
type ScreenInfo struct {
	ID     int    `json:"id"`
	Root   uint32 `json:"root"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MonitorInfo describes one RandR output.
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Result is the outcome of a Request. Code is the numeric status; the
// remaining fields are set only by the operations that produce them.
type Result struct {
	Code       int           `json:"code"`
	Status     string        `json:"status"`
	Display    string        `json:"display,omitempty"`
	Window     *uint32       `json:"window,omitempty"`
	PID        *int          `json:"pid,omitempty"`
	Name       *string       `json:"name,omitempty"`
	Desktop    *int          `json:"desktop,omitempty"`
	Pointer    *Pointer      `json:"pointer,omitempty"`
	Screens    []ScreenInfo  `json:"screens,omitempty"`
	Monitors   []MonitorInfo `json:"monitors,omitempty"`
	Completion string        `json:"completion,omitempty"`
	Pending    bool          `json:"pending,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Code == int(engine.StatusOK) }

func (r *Result) fail(err error) {
	status := engine.StatusOf(err)
	r.Code = int(status)
	r.Status = status.String()
	r.Error = err.Error()
}

func (r *Result) succeed() {
	r.Code = int(engine.StatusOK)
	r.Status = engine.StatusOK.String()
}

func screenInfo(s platform.Screen) ScreenInfo {
	return ScreenInfo{ID: s.ID, Root: uint32(s.Root), Width: s.Width, Height: s.Height}
}

func monitorInfo(m platform.Monitor) MonitorInfo {
	return MonitorInfo{
		ID:     m.ID,
		Name:   m.Name,
		X:      m.Bounds.X,
		Y:      m.Bounds.Y,
		Width:  m.Bounds.Width,
		Height: m.Bounds.Height,
	}
}

func windowID(id platform.WindowID) *uint32 {
	v := uint32(id)
	return &v
}

// ErrUnknownOp is returned for a Request whose Op is not in the table.
var ErrUnknownOp = errors.New("unknown operation")
