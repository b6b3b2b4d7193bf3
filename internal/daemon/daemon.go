// Package daemon runs the long-lived isim process: the IPC server, a config
// file watcher and a reconciler that drops dead display connections.
package daemon

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/isim/internal/config"
	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/hotkeys"
	"github.com/1broseidon/isim/internal/ipc"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/ops"
)

// Options configures a Daemon.
type Options struct {
	// ConfigPath is watched and re-read on change; empty disables watching.
	ConfigPath string
	SocketPath string
	// ReconcileInterval defaults to 10s.
	ReconcileInterval time.Duration
	// Binder grabs the configured hotkeys; nil disables them. Hotkeys are
	// bound once at startup and are not rebound on reload.
	Binder hotkeys.Binder
	// Display is where hotkey operations run; empty means the default.
	Display string
}

// Daemon owns the shared connection pool for its lifetime.
type Daemon struct {
	opts       Options
	cfg        atomic.Pointer[config.Config]
	mgr        *engine.Manager
	exec       *ops.Executor
	server     *ipc.Server
	reconciler *Reconciler
}

// New wires a daemon around an existing manager and executor.
func New(cfg *config.Config, mgr *engine.Manager, exec *ops.Executor, opts Options) *Daemon {
	d := &Daemon{
		opts: opts,
		mgr:  mgr,
		exec: exec,
	}
	d.cfg.Store(cfg)
	d.server = ipc.NewServer(opts.SocketPath, exec, mgr, d.Reload)
	d.server.SetConfigPath(opts.ConfigPath)
	d.reconciler = NewReconciler(ReconcilerConfig{Interval: opts.ReconcileInterval}, mgr)
	return d
}

// Config returns the configuration currently in effect.
func (d *Daemon) Config() *config.Config { return d.cfg.Load() }

// Reload re-reads the config file and applies its timing settings to every
// pooled connection. An invalid file leaves the running config untouched.
func (d *Daemon) Reload(ctx context.Context) error {
	if d.opts.ConfigPath == "" {
		return fmt.Errorf("no config file to reload")
	}
	res, err := config.LoadFromPath(d.opts.ConfigPath)
	if err != nil {
		return err
	}
	d.apply(res.Config)
	logger.FromContext(ctx).Info("config applied",
		zap.String("path", d.opts.ConfigPath),
		zap.Int("key_delay_ms", res.Config.Input.KeyDelayMs),
		zap.Int("wait_timeout_ms", res.Config.Wait.TimeoutMs))
	return nil
}

func (d *Daemon) apply(cfg *config.Config) {
	d.cfg.Store(cfg)
	d.mgr.SetOptions(cfg.EngineOptions())
	d.exec.SetKeyDelay(cfg.KeyDelay())
}

// Run serves until ctx ends or a component fails, then closes every pooled
// connection.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.mgr.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.server.Serve(ctx)
	})
	g.Go(func() error {
		d.reconciler.Run(ctx)
		return nil
	})
	if d.opts.ConfigPath != "" {
		w, err := NewConfigWatcher(d.opts.ConfigPath, d.Reload)
		if err != nil {
			logger.FromContext(ctx).Warn("config watcher disabled", zap.Error(err))
		} else {
			g.Go(func() error {
				return w.Run(ctx)
			})
		}
	}

	if d.opts.Binder != nil && len(d.Config().Hotkeys) > 0 {
		h := hotkeys.NewHandler(d.opts.Binder, d.exec, d.opts.Display)
		// Failed binds are logged; the rest stay active.
		_ = h.RegisterAll(ctx, d.Config().Hotkeys)
		g.Go(func() error {
			return h.Run(ctx)
		})
	}

	logger.FromContext(ctx).Info("daemon started", zap.String("socket", d.opts.SocketPath))
	err := g.Wait()
	logger.FromContext(ctx).Info("daemon stopped")
	return err
}
