package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/isim/internal/ops"
)

var windowOpts struct {
	noWait bool
}

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Control and inspect windows",
	Long: `Control and inspect windows by id (decimal or 0x hex).

focus, activate, raise, close and kill need an explicit id. pid, name and
desktop default to the focused window. close only asks the client to close;
use kill to disconnect it forcibly.`,
}

func newWindowCommand(use, short, op string, idRequired bool) *cobra.Command {
	args := cobra.MaximumNArgs(1)
	if idRequired {
		args = cobra.ExactArgs(1)
	}
	return &cobra.Command{
		Use:   use + " [ID]",
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) > 0 {
				raw = args[0]
			}
			window, err := parseWindow(raw)
			if err != nil {
				return err
			}
			return runOp(cmd, ops.Request{Op: op, Window: window, NoWait: windowOpts.noWait})
		},
	}
}

var windowReparentCmd = &cobra.Command{
	Use:   "reparent CHILD PARENT",
	Short: "Move a window under a new parent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		child, err := parseWindow(args[0])
		if err != nil {
			return err
		}
		parent, err := parseWindow(args[1])
		if err != nil {
			return err
		}
		return runOp(cmd, ops.Request{Op: ops.WindowReparent, Window: child, Parent: parent})
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)

	windowCmd.PersistentFlags().BoolVar(&windowOpts.noWait, "no-wait", false,
		"Return once the request is sent instead of waiting for its effect")

	windowCmd.AddCommand(
		newWindowCommand("focus", "Give a window input focus", ops.WindowFocus, true),
		newWindowCommand("activate", "Activate a window through the window manager", ops.WindowActivate, true),
		newWindowCommand("raise", "Raise a window above its siblings", ops.WindowRaise, true),
		newWindowCommand("close", "Ask a window's client to close it", ops.WindowClose, true),
		newWindowCommand("kill", "Disconnect the client owning a window", ops.WindowKill, true),
		newWindowCommand("pid", "Print the process id owning a window", ops.WindowPID, false),
		newWindowCommand("name", "Print a window's title", ops.WindowName, false),
		newWindowCommand("desktop", "Print the desktop a window is on", ops.WindowDesktop, false),
		windowReparentCmd,
	)
}
