package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		socket, err := socketPath()
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}
		status, err := ipc.NewClient(socket).GetStatus()
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput(out) {
			return printJSON(out, status)
		}
		uptime := time.Duration(status.UptimeSeconds) * time.Second
		displays := "none"
		if len(status.Displays) > 0 {
			displays = strings.Join(status.Displays, ", ")
		}
		fmt.Fprintf(out, "daemon:   running (pid %d)\n", status.PID)
		fmt.Fprintf(out, "started:  %s\n", humanize.Time(time.Now().Add(-uptime)))
		fmt.Fprintf(out, "socket:   %s\n", socket)
		if status.ConfigPath != "" {
			fmt.Fprintf(out, "config:   %s\n", status.ConfigPath)
		}
		fmt.Fprintf(out, "displays: %s\n", displays)
		fmt.Fprintf(out, "ops:      %s\n", humanize.Comma(int64(len(status.Ops))))
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the daemon to re-read its config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		socket, err := socketPath()
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}
		if err := ipc.NewClient(socket).Reload(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
		return nil
	},
}

func secondsOrZero(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func init() {
	rootCmd.AddCommand(statusCmd, reloadCmd)
}
