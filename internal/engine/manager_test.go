package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/isim/internal/platform"
	"github.com/1broseidon/isim/internal/platform/fake"
)

type dialRecorder struct {
	dials    []string
	backends []*fake.Backend
	fail     bool
}

func (d *dialRecorder) dial(_ context.Context, display string) (platform.Backend, error) {
	d.dials = append(d.dials, display)
	if d.fail {
		return nil, errors.New("connection refused")
	}
	b := fake.New(display)
	d.backends = append(d.backends, b)
	return b, nil
}

func TestManager_PoolsByResolvedName(t *testing.T) {
	rec := &dialRecorder{}
	resolve := func(name string) string {
		if name == "" {
			return ":0"
		}
		return name
	}
	m := NewManager(rec.dial, resolve, DefaultOptions())
	ctx := context.Background()

	a, err := m.Open(ctx, "")
	require.NoError(t, err)
	b, err := m.Open(ctx, ":0")
	require.NoError(t, err)
	c, err := m.Open(ctx, ":1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, []string{":0", ":1"}, rec.dials)
	assert.ElementsMatch(t, []string{":0", ":1"}, m.Displays())
}

func TestManager_RedialsDeadConnection(t *testing.T) {
	rec := &dialRecorder{}
	m := NewManager(rec.dial, nil, DefaultOptions())
	ctx := context.Background()

	first, err := m.Open(ctx, ":3")
	require.NoError(t, err)
	rec.backends[0].Sever()
	assert.False(t, first.IsAlive())

	second, err := m.Open(ctx, ":3")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, second.IsAlive())
	assert.Len(t, rec.dials, 2)
}

func TestManager_ConnectionErrors(t *testing.T) {
	rec := &dialRecorder{fail: true}
	m := NewManager(rec.dial, func(string) string { return "" }, DefaultOptions())

	_, err := m.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrConnection)
	assert.Empty(t, rec.dials)

	m = NewManager(rec.dial, nil, DefaultOptions())
	_, err = m.Open(context.Background(), ":9")
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, StatusConnection, StatusOf(err))
}

func TestManager_CloseClosesPooled(t *testing.T) {
	rec := &dialRecorder{}
	m := NewManager(rec.dial, nil, DefaultOptions())

	e, err := m.Open(context.Background(), ":0")
	require.NoError(t, err)
	m.Close()

	assert.False(t, e.IsAlive())
	assert.Empty(t, m.Displays())
}

func TestManager_PruneDropsDeadConnections(t *testing.T) {
	rec := &dialRecorder{}
	m := NewManager(rec.dial, nil, DefaultOptions())
	ctx := context.Background()

	_, err := m.Open(ctx, ":0")
	require.NoError(t, err)
	_, err = m.Open(ctx, ":1")
	require.NoError(t, err)

	assert.Empty(t, m.Prune(ctx))

	rec.backends[1].Sever()
	assert.Equal(t, []string{":1"}, m.Prune(ctx))
	assert.Equal(t, []string{":0"}, m.Displays())
}
