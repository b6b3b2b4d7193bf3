package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/isim/internal/ops"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query windows, screens and the pointer",
}

func newQueryCommand(use, short, op string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, ops.Request{Op: op})
		},
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.AddCommand(
		newQueryCommand("focused", "Print the window holding input focus", ops.QueryFocused),
		newQueryCommand("active", "Print the window manager's active window", ops.QueryActive),
		newQueryCommand("at-pointer", "Print the client window under the pointer", ops.QueryAtPointer),
		newQueryCommand("pointer", "Print the pointer position", ops.QueryPointer),
		newQueryCommand("screens", "List X screens", ops.QueryScreens),
		newQueryCommand("current-screen", "Print the default screen", ops.QueryScreen),
		newQueryCommand("monitors", "List RandR monitors", ops.QueryMonitors),
		newQueryCommand("desktop", "Print the current virtual desktop", ops.QueryDesktop),
	)
}
