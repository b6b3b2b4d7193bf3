package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/ops"
	"github.com/1broseidon/isim/internal/platform"
	"github.com/1broseidon/isim/internal/platform/fake"
)

type testDaemon struct {
	server  *Server
	client  *Client
	backend *fake.Backend
	reloads atomic.Int32
}

func startTestServer(t *testing.T, reloadErr error) *testDaemon {
	t.Helper()

	dir, err := os.MkdirTemp("", "isim-ipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "isim.sock")

	b := fake.New(":0")
	b.AddWindow(0x400001, fake.Window{Name: "xterm", PID: 31})
	mgr := engine.NewManager(func(context.Context, string) (platform.Backend, error) {
		return b, nil
	}, func(string) string { return ":0" }, engine.Options{WaitTimeout: 100 * time.Millisecond, PollInterval: time.Millisecond})
	t.Cleanup(mgr.Close)

	d := &testDaemon{backend: b}
	d.server = NewServer(socket, ops.NewExecutor(mgr, 0), mgr, func(context.Context) error {
		d.reloads.Add(1)
		return reloadErr
	})
	d.server.SetConfigPath("/etc/isim.yaml")

	ctx, cancel := context.WithCancel(logger.NopContext())
	done := make(chan error, 1)
	go func() { done <- d.server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
		_, err := os.Stat(socket)
		assert.True(t, os.IsNotExist(err), "socket should be removed on shutdown")
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)

	d.client = NewClient(socket)
	return d
}

func TestServer_SocketPermissions(t *testing.T) {
	d := startTestServer(t, nil)
	info, err := os.Stat(d.server.SocketPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestServer_Exec(t *testing.T) {
	d := startTestServer(t, nil)

	res, err := d.client.Exec(ops.Request{Op: ops.KeyPress, Keys: "shift+a"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, ":0", res.Display)
	assert.Len(t, d.backend.EventsOf(fake.KeyEvent), 4)

	id := uint32(0x400001)
	res, err = d.client.Exec(ops.Request{Op: ops.WindowPID, Window: &id})
	require.NoError(t, err)
	require.NotNil(t, res.PID)
	assert.Equal(t, 31, *res.PID)
}

func TestServer_ExecFailureCarriesResult(t *testing.T) {
	d := startTestServer(t, nil)

	res, err := d.client.Exec(ops.Request{Op: ops.MouseClick, Button: 12})
	require.NoError(t, err)
	assert.Equal(t, int(engine.StatusInvalidButton), res.Code)
	assert.Equal(t, "invalid_button", res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestServer_GetStatus(t *testing.T) {
	d := startTestServer(t, nil)

	_, err := d.client.Exec(ops.Request{Op: ops.QueryScreens})
	require.NoError(t, err)

	status, err := d.client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, []string{":0"}, status.Displays)
	assert.Equal(t, "/etc/isim.yaml", status.ConfigPath)
	assert.Contains(t, status.Ops, ops.WindowFocus)
	assert.NoError(t, d.client.Ping())
}

func TestServer_GetMonitors(t *testing.T) {
	d := startTestServer(t, nil)

	monitors, err := d.client.GetMonitors("")
	require.NoError(t, err)
	require.Len(t, monitors, 1)
	assert.Equal(t, "eDP-1", monitors[0].Name)
}

func TestServer_Reload(t *testing.T) {
	d := startTestServer(t, nil)
	require.NoError(t, d.client.Reload())
	assert.Equal(t, int32(1), d.reloads.Load())
}

func TestServer_ReloadFailure(t *testing.T) {
	d := startTestServer(t, errors.New("bad yaml"))

	err := d.client.Reload()
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, int(engine.StatusFailure), respErr.Code)
	assert.Contains(t, respErr.Message, "bad yaml")
}

func TestServer_RejectsGarbage(t *testing.T) {
	d := startTestServer(t, nil)

	conn, err := net.Dial("unix", d.server.SocketPath())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(line, &resp))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Invalid request")
}

func TestServer_UnknownCommand(t *testing.T) {
	d := startTestServer(t, nil)

	_, err := d.client.sendRequest(&Request{Command: "TELEPORT"})
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Contains(t, respErr.Message, "Unknown command")
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	c.SetTimeout(100 * time.Millisecond)
	err := c.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running?")
}

func TestClient_ExecuteFoldsTransportErrors(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	c.SetTimeout(100 * time.Millisecond)

	res := c.Execute(logger.NopContext(), ops.Request{Op: ops.QueryFocused, Display: ":3"})
	assert.Equal(t, int(engine.StatusConnection), res.Code)
	assert.Equal(t, "connection_error", res.Status)
	assert.Equal(t, ":3", res.Display)
	assert.Contains(t, res.Error, "is the daemon running?")

	d := startTestServer(t, nil)
	res = d.client.Execute(logger.NopContext(), ops.Request{Op: ops.QueryScreens})
	assert.True(t, res.OK(), res.Error)
	assert.Len(t, res.Screens, 1)
}
