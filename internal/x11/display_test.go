package x11

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHost answers loginctl from a table and has no session unless one is
// configured.
func stubHost(t *testing.T, env map[string]string) host {
	t.Helper()
	return host{
		getenv: func(k string) string { return env[k] },
		command: func(string, ...string) (string, error) {
			return "", errors.New("loginctl: not found")
		},
		readFile:  os.ReadFile,
		homeDir:   func() (string, error) { return t.TempDir(), nil },
		uid:       1000,
		socketDir: filepath.Join(t.TempDir(), "missing"),
	}
}

func withSession(h host, list, props string, environ map[string]string) host {
	h.command = func(_ string, args ...string) (string, error) {
		if args[0] == "list-sessions" {
			return list, nil
		}
		return props, nil
	}
	h.readFile = func(path string) ([]byte, error) {
		data, ok := environ[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(data), nil
	}
	return h
}

func TestHostDisplay_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		configured string
		env        string
		want       string
	}{
		{"explicit wins", ":3", ":1", ":7", ":3"},
		{"config before env", "", ":1", ":7", ":1"},
		{"env before session", "", "", ":7", ":7"},
		{"session before sockets", "", "", "", ":5"},
		{"whitespace ignored", "  ", " ", " :7 ", ":7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := withSession(stubHost(t, map[string]string{"DISPLAY": tt.env}),
				"c1 1000 me seat0\n", "Display=:5\nLeader=0\n", nil)
			assert.Equal(t, tt.want, h.display(tt.explicit, tt.configured))
		})
	}
}

func TestHostDisplay_FallsBackToNewestSocket(t *testing.T) {
	h := stubHost(t, nil)
	h.socketDir = t.TempDir()
	for _, name := range []string{"X0", "X2", "X10", "not-a-display", "Xabc"} {
		require.NoError(t, os.WriteFile(filepath.Join(h.socketDir, name), nil, 0600))
	}

	assert.Equal(t, ":10", h.display("", ""))
}

func TestHostDisplay_NothingFound(t *testing.T) {
	assert.Empty(t, stubHost(t, nil).display("", ""))
}

func TestHostSession_LeaderEnvironWins(t *testing.T) {
	h := withSession(stubHost(t, nil),
		"c2 1000 me seat0\n7 1001 other seat0\n",
		"Display=n/a\nLeader=4242\n",
		map[string]string{
			"/proc/4242/environ": "DISPLAY=:0\x00XAUTHORITY=/run/user/1000/gdm/Xauthority\x00",
		})

	s := h.session()
	assert.Equal(t, ":0", s.Display)
	assert.Equal(t, "/run/user/1000/gdm/Xauthority", s.XAuthority)
}

func TestHostSession_SkipsSessionsWithoutDisplay(t *testing.T) {
	h := withSession(stubHost(t, nil), "c2 1000 me seat0\n", "Display=n/a\nLeader=0\n", nil)
	assert.Equal(t, session{}, h.session())
}

func TestHostXAuthority_Order(t *testing.T) {
	h := withSession(stubHost(t, map[string]string{"XAUTHORITY": " /tmp/xauth-existing "}),
		"c1 1000 me seat0\n", "Display=:1\nLeader=77\n",
		map[string]string{"/proc/77/environ": "XAUTHORITY=/tmp/xauth-session"})
	assert.Equal(t, "/tmp/xauth-existing", h.xauthority("/tmp/cfg"))

	h.getenv = func(string) string { return "" }
	assert.Equal(t, "/tmp/cfg", h.xauthority("/tmp/cfg"))
	assert.Equal(t, "/tmp/xauth-session", h.xauthority(""))
}

func TestHostXAuthority_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	xauth := filepath.Join(home, ".Xauthority")
	require.NoError(t, os.WriteFile(xauth, []byte("cookie"), 0600))

	h := stubHost(t, nil)
	h.homeDir = func() (string, error) { return home, nil }
	assert.Equal(t, xauth, h.xauthority(""))

	h.homeDir = func() (string, error) { return t.TempDir(), nil }
	assert.Empty(t, h.xauthority(""))
}

func TestEnsureXAuthority_ExportsConfigured(t *testing.T) {
	t.Setenv("XAUTHORITY", "")
	assert.Equal(t, "/tmp/cfg", EnsureXAuthority("/tmp/cfg"))
	assert.Equal(t, "/tmp/cfg", os.Getenv("XAUTHORITY"))
}

func TestUserSessions(t *testing.T) {
	out := "1 1000 george seat0\n2 1001 alice seat0\n3 1000 george seat1\n\n"
	assert.Equal(t, []string{"1", "3"}, userSessions(out, "1000"))
}
