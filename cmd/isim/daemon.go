package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/daemon"
	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/hotkeys"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/x11"
)

// dialBinder opens the hotkey grab connection; tests swap it out.
var dialBinder = func(display string) (hotkeys.Binder, error) {
	return hotkeys.DialBinder(display)
}

var daemonOpts struct {
	reconcile int
	noHotkeys bool
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the long-lived connection pool and IPC server",
	Long: `Run the isim daemon.

The daemon keeps display connections open, serves operations from
'isim --via-daemon' over a unix socket, reloads timing settings when the
config file changes and drops connections whose X server went away.

Hotkeys from the config's hotkeys list are grabbed on the root window and
run their operation on every press. Hotkey changes need a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		socket, err := socketPath()
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}
		mgr, x := newExecutor()
		opts := daemon.Options{
			ConfigPath:        cfgPath,
			SocketPath:        socket,
			ReconcileInterval: secondsOrZero(daemonOpts.reconcile),
			Display:           globalOpts.display,
		}
		if len(cfg.Hotkeys) > 0 && !daemonOpts.noHotkeys {
			binder, err := dialBinder(x11.ResolveDisplay(globalOpts.display, cfg.Display))
			if err != nil {
				logger.FromContext(ctx).Warn("hotkeys disabled", zap.Error(err))
			} else {
				opts.Binder = binder
			}
		}
		d := daemon.New(cfg, mgr, x, opts)
		logger.FromContext(ctx).Info("starting daemon",
			zap.String("version", version),
			zap.String("socket", socket),
			zap.String("config", cfgPath))
		return d.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().IntVar(&daemonOpts.reconcile, "reconcile-interval", 0,
		"Seconds between dead-connection sweeps (default 10)")
	daemonCmd.Flags().BoolVar(&daemonOpts.noHotkeys, "no-hotkeys", false,
		"Do not grab the hotkeys listed in the config")
}
