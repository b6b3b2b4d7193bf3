package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/config"
	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	cfgPath    string
	globalOpts struct {
		display    string
		configPath string
		json       bool
		viaDaemon  bool
		verbose    bool
	}
	// exitCode is the engine status of the last operation.
	exitCode int
)

// exitError carries the process exit code for a failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withStatus(status engine.Status, err error) error {
	return &exitError{code: int(status), err: err}
}

var rootCmd = &cobra.Command{
	Use:   "isim",
	Short: "X11 input synthesis and window control",
	Long: `isim synthesizes keyboard and mouse input and controls windows on an X11
display.

Every command exits with the engine status code:
  0 ok, 1 failure or no target, 2 connection, 3 key sequence parse error,
  4 invalid button, 5 target not found, 6 dispatch error.

Commands run directly against the X server unless --via-daemon is given, in
which case they are forwarded to a running 'isim daemon'.`,
	Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.display, "display", "d", "",
		"X display to use (default: config, $DISPLAY, login session, then local sockets)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: $ISIM_CONFIG or ~/.config/isim/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.json, "json", false,
		"Print results as JSON (default when stdout is not a terminal)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.viaDaemon, "via-daemon", false,
		"Forward the operation to a running isim daemon")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable debug logging")
}

// setup loads the config and installs the logger in the command context.
func setup(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = res.Config
	cfgPath = path

	return setupLogger(cmd, cfg.Logging)
}

func resolveConfigPath() (string, error) {
	if globalOpts.configPath != "" {
		return globalOpts.configPath, nil
	}
	return config.DefaultConfigPath()
}

func setupLogger(cmd *cobra.Command, lc config.LoggingConfig) error {
	opts := logger.Options{Level: lc.Level, Format: lc.Format, File: lc.File}
	if globalOpts.verbose {
		opts.Level = "debug"
	}
	l, err := logger.Init(opts)
	if err != nil {
		return err
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), l.With(zap.String("cmd", cmd.Name()))))
	return nil
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode = 0
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		return int(engine.StatusFailure)
	}
	_ = zap.L().Sync()
	return exitCode
}
