package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/ops"
	"github.com/1broseidon/isim/internal/platform"
	"github.com/1broseidon/isim/internal/platform/fake"
)

func newTestServer(t *testing.T) (*Server, *fake.Backend) {
	t.Helper()
	b := fake.New(":7")
	b.AddWindow(0x600002, fake.Window{Name: "firefox", PID: 5150})
	mgr := engine.NewManager(func(context.Context, string) (platform.Backend, error) {
		return b, nil
	}, nil, engine.Options{WaitTimeout: 100 * time.Millisecond, PollInterval: time.Millisecond})
	t.Cleanup(mgr.Close)
	return NewServer(ops.NewExecutor(mgr, 0), ":7"), b
}

func TestRun_UsesDefaultDisplay(t *testing.T) {
	s, b := newTestServer(t)

	result, res, err := s.run(logger.NopContext(), "key_press", keyTool(ops.KeyPress)(KeyInput{Keys: "ctrl+t"}))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, res.OK(), res.Error)
	assert.Equal(t, ":7", res.Display)
	assert.Len(t, b.EventsOf(fake.KeyEvent), 4)
}

func TestRun_FailureIsToolError(t *testing.T) {
	s, _ := newTestServer(t)

	result, res, err := s.run(logger.NopContext(), "mouse_click", buttonTool(ops.MouseClick)(ButtonInput{Button: 0}))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "invalid_button (code 4)")
	assert.Equal(t, int(engine.StatusInvalidButton), res.Code)
}

func TestToolBuilders(t *testing.T) {
	w := uint32(0x600002)
	delay := 5

	req := windowTool(ops.WindowClose)(WindowInput{Window: &w, NoWait: true})
	assert.Equal(t, ops.Request{Op: ops.WindowClose, Window: &w, NoWait: true}, req)

	req = keyTool(ops.KeyDown)(KeyInput{Keys: "super", Window: &w, DelayMs: &delay, Display: ":2"})
	assert.Equal(t, ops.Request{Op: ops.KeyDown, Keys: "super", Window: &w, DelayMs: &delay, Display: ":2"}, req)

	req = displayTool(ops.QueryMonitors)(DisplayInput{Display: ":1"})
	assert.Equal(t, ops.Request{Op: ops.QueryMonitors, Display: ":1"}, req)
}

func connect(t *testing.T, s *Server) *mcpsdk.ClientSession {
	t.Helper()
	ctx := logger.NopContext()
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()

	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestServer_ListsOneToolPerOperation(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	list, err := cs.ListTools(logger.NopContext(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Len(t, names, len(s.exec.Ops()))
	assert.Contains(t, names, "key_press")
	assert.Contains(t, names, "window_reparent")
	assert.Contains(t, names, "list_monitors")
}

func TestServer_CallTool(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	out, err := cs.CallTool(logger.NopContext(), &mcpsdk.CallToolParams{
		Name:      "window_pid",
		Arguments: map[string]any{"window": 0x600002},
	})
	require.NoError(t, err)
	assert.False(t, out.IsError)

	raw, err := json.Marshal(out.StructuredContent)
	require.NoError(t, err)
	var res ops.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	require.NotNil(t, res.PID)
	assert.Equal(t, 5150, *res.PID)
	assert.Equal(t, ":7", res.Display)
}
