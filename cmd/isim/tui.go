package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/config"
	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/ipc"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/tui"
)

var tuiOpts struct {
	refreshMs int
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive inspector for the pointer, windows and screens",
	Long: `Interactive inspector.

Live shows the pointer, the window under it and the focused and active
windows, refreshed continuously. Keys act on the window under the pointer:
f focus, a activate, r raise, c close, x kill (asks first), k send keys.
Screens lists X screens and RandR monitors. Settings edits the timing
settings and saves them to the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opts := tui.Options{
			Display:    globalOpts.display,
			Refresh:    time.Duration(tuiOpts.refreshMs) * time.Millisecond,
			Config:     cfg,
			ConfigPath: cfgPath,
		}

		socket, err := socketPath()
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}
		client := ipc.NewClient(socket)

		if globalOpts.viaDaemon {
			opts.Exec = client
			opts.Apply = func(*config.Config) {
				if err := client.Reload(); err != nil {
					logger.FromContext(ctx).Warn("daemon reload failed", zap.Error(err))
				}
			}
		} else {
			mgr, x := newExecutor()
			defer mgr.Close()
			opts.Exec = x
			opts.Apply = func(c *config.Config) {
				mgr.SetOptions(c.EngineOptions())
				x.SetKeyDelay(c.KeyDelay())
				// A running daemon watches the file too; this only speeds it up.
				if client.Ping() == nil {
					_ = client.Reload()
				}
			}
		}
		return tui.Run(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().IntVar(&tuiOpts.refreshMs, "refresh", 250, "Live tab refresh interval in milliseconds")
}
