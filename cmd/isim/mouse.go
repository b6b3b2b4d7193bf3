package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/isim/internal/ops"
)

var mouseOpts struct {
	window string
	screen int
	noWait bool
}

var mouseCmd = &cobra.Command{
	Use:   "mouse",
	Short: "Synthesize pointer input",
	Long: `Synthesize pointer motion and button input.

Buttons are 1-7: 1 left, 2 middle, 3 right, 4/5 wheel up/down, 6/7 wheel
left/right. Negative offsets need '--', e.g. isim mouse move-relative -- -10 5.`,
}

func newButtonCommand(use, short, op string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " BUTTON",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			button, err := parseInt("button", args[0])
			if err != nil {
				return err
			}
			window, err := parseWindow(mouseOpts.window)
			if err != nil {
				return err
			}
			return runOp(cmd, ops.Request{Op: op, Button: button, Window: window})
		},
	}
}

var mouseMoveCmd = &cobra.Command{
	Use:   "move X Y",
	Short: "Move the pointer to absolute coordinates on a screen",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := moveRequest(ops.MouseMove, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("screen") {
			screen := mouseOpts.screen
			req.Screen = &screen
		}
		return runOp(cmd, req)
	},
}

var mouseMoveRelativeCmd = &cobra.Command{
	Use:   "move-relative DX DY",
	Short: "Move the pointer by an offset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := moveRequest(ops.MouseMoveRel, args)
		if err != nil {
			return err
		}
		return runOp(cmd, req)
	},
}

var mouseMoveWindowCmd = &cobra.Command{
	Use:   "move-window DX DY",
	Short: "Move the pointer relative to a window's top-left corner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := moveRequest(ops.MouseMoveWindow, args)
		if err != nil {
			return err
		}
		if req.Window, err = parseWindow(mouseOpts.window); err != nil {
			return err
		}
		return runOp(cmd, req)
	},
}

func moveRequest(op string, args []string) (ops.Request, error) {
	x, err := parseInt("x", args[0])
	if err != nil {
		return ops.Request{}, err
	}
	y, err := parseInt("y", args[1])
	if err != nil {
		return ops.Request{}, err
	}
	return ops.Request{Op: op, X: x, Y: y, NoWait: mouseOpts.noWait}, nil
}

func init() {
	rootCmd.AddCommand(mouseCmd)

	mouseCmd.PersistentFlags().StringVarP(&mouseOpts.window, "window", "w", "",
		"Target window id (decimal or 0x hex)")
	mouseCmd.PersistentFlags().BoolVar(&mouseOpts.noWait, "no-wait", false,
		"Return once the request is sent instead of waiting for the pointer to move")
	mouseMoveCmd.Flags().IntVarP(&mouseOpts.screen, "screen", "s", 0,
		"Screen index (default: the display's default screen)")

	mouseCmd.AddCommand(
		newButtonCommand("down", "Press and hold a mouse button", ops.MouseDown),
		newButtonCommand("up", "Release a mouse button", ops.MouseUp),
		newButtonCommand("click", "Click a mouse button", ops.MouseClick),
		mouseMoveCmd,
		mouseMoveRelativeCmd,
		mouseMoveWindowCmd,
	)
}
