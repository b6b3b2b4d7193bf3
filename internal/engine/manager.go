package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/platform"
)

// Dialer opens a backend for a resolved display name.
type Dialer func(ctx context.Context, display string) (platform.Backend, error)

// Resolver turns an optional display name into a concrete one. An empty
// result means no display server could be located.
type Resolver func(name string) string

// Manager opens and pools one engine per resolved display name.
type Manager struct {
	dial    Dialer
	resolve Resolver

	mu      sync.Mutex
	opts    Options
	engines map[string]*Engine
}

// NewManager creates a manager. A nil resolver uses the name as given.
func NewManager(dial Dialer, resolve Resolver, opts Options) *Manager {
	if resolve == nil {
		resolve = func(name string) string { return strings.TrimSpace(name) }
	}
	return &Manager{
		dial:    dial,
		resolve: resolve,
		opts:    opts.normalized(),
		engines: make(map[string]*Engine),
	}
}

// Open returns the engine for name ("" selects the default display). Repeated
// calls with the same resolved name share one live connection.
func (m *Manager) Open(ctx context.Context, name string) (*Engine, error) {
	display := m.resolve(name)
	if display == "" {
		return nil, fmt.Errorf("no display server found (name %q): %w", name, ErrConnection)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[display]; ok {
		if e.IsAlive() {
			return e, nil
		}
		logger.FromContext(ctx).Info("pooled display connection is dead, redialing", zap.String("display", display))
		e.Shutdown()
		delete(m.engines, display)
	}

	backend, err := m.dial(ctx, display)
	if err != nil {
		return nil, fmt.Errorf("open display %q: %w: %w", display, ErrConnection, err)
	}

	e := New(backend, m.opts)
	m.engines[display] = e
	logger.FromContext(ctx).Debug("display connection opened", zap.String("display", display))
	return e, nil
}

// SetOptions updates the options of the manager and every pooled engine.
func (m *Manager) SetOptions(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts.normalized()
	for _, e := range m.engines {
		e.SetOptions(m.opts)
	}
}

// Displays lists the names of pooled connections.
func (m *Manager) Displays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.engines))
	for name := range m.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prune closes and forgets pooled connections that no longer answer, and
// returns their names. The next Open for a pruned name redials.
func (m *Manager) Prune(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dropped []string
	for name, e := range m.engines {
		if e.IsAlive() {
			continue
		}
		logger.FromContext(ctx).Info("dropping dead display connection", zap.String("display", name))
		e.Shutdown()
		delete(m.engines, name)
		dropped = append(dropped, name)
	}
	sort.Strings(dropped)
	return dropped
}

// Close closes every pooled connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, e := range m.engines {
		e.Shutdown()
		delete(m.engines, name)
	}
}
