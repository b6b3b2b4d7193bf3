package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/isim/internal/ops"
)

var keyOpts struct {
	window  string
	delayMs int
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Synthesize keyboard input",
	Long: `Synthesize keyboard input.

A key sequence joins keysym names with '+', e.g. ctrl+alt+t, shift+Return, a.
Aliases: ctrl, control, alt, meta, super, shift map to the left-hand keys.
Keys are pressed and released in sequence order.

Without --window the events are injected through XTEST and reach whatever
window has focus. With --window they are sent to that window directly.`,
}

func newKeyCommand(use, short, op string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SEQUENCE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKey(cmd, op, args[0])
		},
	}
}

func init() {
	rootCmd.AddCommand(keyCmd)

	keyCmd.PersistentFlags().StringVarP(&keyOpts.window, "window", "w", "",
		"Target window id (decimal or 0x hex; default: focused window)")
	keyCmd.PersistentFlags().IntVar(&keyOpts.delayMs, "delay", -1,
		"Milliseconds between key events (default: config input.key_delay_ms)")

	keyCmd.AddCommand(
		newKeyCommand("down", "Press and hold a key sequence", ops.KeyDown),
		newKeyCommand("up", "Release a key sequence", ops.KeyUp),
		newKeyCommand("press", "Press and release a key sequence", ops.KeyPress),
	)
}

func runKey(cmd *cobra.Command, op, keys string) error {
	window, err := parseWindow(keyOpts.window)
	if err != nil {
		return err
	}
	req := ops.Request{Op: op, Keys: keys, Window: window}
	if keyOpts.delayMs >= 0 {
		delay := keyOpts.delayMs
		req.DelayMs = &delay
	}
	return runOp(cmd, req)
}
