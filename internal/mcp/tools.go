package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/isim/internal/ops"
)

// addTool registers a tool whose input maps onto one ops.Request.
func addTool[In any](s *Server, name, description string, build func(In) ops.Request) {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, ops.Result, error) {
		return s.run(ctx, name, build(in))
	})
}

func keyTool(op string) func(KeyInput) ops.Request {
	return func(in KeyInput) ops.Request {
		return ops.Request{Op: op, Display: in.Display, Window: in.Window, Keys: in.Keys, DelayMs: in.DelayMs}
	}
}

func buttonTool(op string) func(ButtonInput) ops.Request {
	return func(in ButtonInput) ops.Request {
		return ops.Request{Op: op, Display: in.Display, Window: in.Window, Button: in.Button}
	}
}

func windowTool(op string) func(WindowInput) ops.Request {
	return func(in WindowInput) ops.Request {
		return ops.Request{Op: op, Display: in.Display, Window: in.Window, NoWait: in.NoWait}
	}
}

func displayTool(op string) func(DisplayInput) ops.Request {
	return func(in DisplayInput) ops.Request {
		return ops.Request{Op: op, Display: in.Display}
	}
}

func (s *Server) registerTools() {
	addTool(s, "key_down", "Press and hold a key sequence (modifiers first). Pair with key_up.", keyTool(ops.KeyDown))
	addTool(s, "key_up", "Release a key sequence in order.", keyTool(ops.KeyUp))
	addTool(s, "key_press", "Press and release a key sequence, e.g. ctrl+l or Return.", keyTool(ops.KeyPress))

	addTool(s, "mouse_down", "Press and hold a mouse button.", buttonTool(ops.MouseDown))
	addTool(s, "mouse_up", "Release a mouse button.", buttonTool(ops.MouseUp))
	addTool(s, "mouse_click", "Click a mouse button at the current pointer position.", buttonTool(ops.MouseClick))

	addTool(s, "mouse_move", "Move the pointer to absolute screen coordinates.", func(in MoveInput) ops.Request {
		return ops.Request{Op: ops.MouseMove, Display: in.Display, Screen: in.Screen, X: in.X, Y: in.Y, NoWait: in.NoWait}
	})
	addTool(s, "mouse_move_relative", "Move the pointer by an offset from its current position.", func(in MoveRelativeInput) ops.Request {
		return ops.Request{Op: ops.MouseMoveRel, Display: in.Display, X: in.DX, Y: in.DY, NoWait: in.NoWait}
	})
	addTool(s, "mouse_move_window", "Move the pointer to an offset from a window's top-left corner.", func(in MoveWindowInput) ops.Request {
		return ops.Request{Op: ops.MouseMoveWindow, Display: in.Display, Window: in.Window, X: in.X, Y: in.Y, NoWait: in.NoWait}
	})

	addTool(s, "window_focus", "Give a window input focus.", windowTool(ops.WindowFocus))
	addTool(s, "window_activate", "Ask the window manager to activate a window, switching desktops if needed.", windowTool(ops.WindowActivate))
	addTool(s, "window_raise", "Raise a window above its siblings.", windowTool(ops.WindowRaise))
	addTool(s, "window_close", "Politely ask a window's client to close it (WM_DELETE_WINDOW). Never force-kills.", windowTool(ops.WindowClose))
	addTool(s, "window_kill", "Forcibly disconnect the client owning a window. Irreversible.", windowTool(ops.WindowKill))
	addTool(s, "window_pid", "Return the process id owning a window, when advertised.", windowTool(ops.WindowPID))
	addTool(s, "window_name", "Return a window's title.", windowTool(ops.WindowName))
	addTool(s, "window_desktop", "Return the virtual desktop a window is on (-1 for all desktops).", windowTool(ops.WindowDesktop))
	addTool(s, "window_reparent", "Move a window under a new parent window.", func(in ReparentInput) ops.Request {
		window, parent := in.Window, in.Parent
		return ops.Request{Op: ops.WindowReparent, Display: in.Display, Window: &window, Parent: &parent}
	})

	addTool(s, "get_focused_window", "Return the window holding input focus.", displayTool(ops.QueryFocused))
	addTool(s, "get_active_window", "Return the window the window manager considers active.", displayTool(ops.QueryActive))
	addTool(s, "get_window_at_pointer", "Return the client window under the pointer.", displayTool(ops.QueryAtPointer))
	addTool(s, "get_pointer", "Return the pointer position and screen.", displayTool(ops.QueryPointer))
	addTool(s, "list_screens", "List the X screens of the display.", displayTool(ops.QueryScreens))
	addTool(s, "get_current_screen", "Return the display's default screen.", displayTool(ops.QueryScreen))
	addTool(s, "list_monitors", "List active RandR monitors.", displayTool(ops.QueryMonitors))
	addTool(s, "get_current_desktop", "Return the current virtual desktop.", displayTool(ops.QueryDesktop))
}
