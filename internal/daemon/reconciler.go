package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
}

// Reconciler periodically probes pooled connections and drops the dead ones
// so a restarted X server is redialed cleanly.
type Reconciler struct {
	interval time.Duration
	mgr      *engine.Manager
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, mgr *engine.Manager) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &Reconciler{
		interval: interval,
		mgr:      mgr,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log := logger.FromContext(ctx)
	log.Info("reconciler started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	log := logger.FromContext(ctx)
	defer func() {
		if err := recover(); err != nil {
			log.Error("reconciler panic recovered", zap.Any("error", err))
		}
	}()

	if dropped := r.mgr.Prune(ctx); len(dropped) > 0 {
		log.Info("reconciler: dropped dead connections", zap.Strings("displays", dropped))
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
