package x11

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// SocketDir is where local X servers listen.
const SocketDir = "/tmp/.X11-unix"

// session is the graphical session logind reports for the calling user.
type session struct {
	Display    string
	XAuthority string
}

// host is the machine state display resolution reads.
type host struct {
	getenv    func(string) string
	command   func(name string, args ...string) (string, error)
	readFile  func(string) ([]byte, error)
	homeDir   func() (string, error)
	uid       int
	socketDir string
}

func localHost() host {
	return host{
		getenv:    os.Getenv,
		command:   runCommand,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
		uid:       os.Getuid(),
		socketDir: SocketDir,
	}
}

// ResolveDisplay picks the display to dial: the explicit name, then the
// configured one, then $DISPLAY, then the logind session's display, then the
// highest numbered local socket. It returns "" when nothing is found.
func ResolveDisplay(explicit, configured string) string {
	return localHost().display(explicit, configured)
}

// EnsureXAuthority exports XAUTHORITY when the process has none, preferring
// the configured path, then the session leader's, then ~/.Xauthority.
func EnsureXAuthority(configured string) string {
	h := localHost()
	path := h.xauthority(configured)
	if path != "" && strings.TrimSpace(h.getenv("XAUTHORITY")) == "" {
		_ = os.Setenv("XAUTHORITY", path)
	}
	return path
}

func (h host) display(explicit, configured string) string {
	for _, candidate := range []string{explicit, configured, h.getenv("DISPLAY")} {
		if d := strings.TrimSpace(candidate); d != "" {
			return d
		}
	}
	if s := h.session(); s.Display != "" {
		return s.Display
	}
	return h.newestSocket()
}

func (h host) xauthority(configured string) string {
	if current := strings.TrimSpace(h.getenv("XAUTHORITY")); current != "" {
		return current
	}
	if path := strings.TrimSpace(configured); path != "" {
		return path
	}
	if s := h.session(); s.XAuthority != "" {
		return s.XAuthority
	}
	home, err := h.homeDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(home, ".Xauthority")
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// session returns the first session of the user that has an X display. The
// session leader's environment wins over the Display property.
func (h host) session() session {
	out, err := h.command("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return session{}
	}
	for _, id := range userSessions(out, strconv.Itoa(h.uid)) {
		props, err := h.command("loginctl", "show-session", id, "-p", "Display", "-p", "Leader")
		if err != nil {
			continue
		}
		kv := pairs(props, "\n")
		s := session{Display: kv["Display"]}
		if leader := kv["Leader"]; leader != "" && leader != "0" {
			if environ, err := h.readFile(filepath.Join("/proc", leader, "environ")); err == nil {
				env := pairs(string(environ), "\x00")
				if d := env["DISPLAY"]; d != "" {
					s.Display = d
				}
				s.XAuthority = env["XAUTHORITY"]
			}
		}
		if s.Display == "" || strings.EqualFold(s.Display, "n/a") {
			continue
		}
		return s
	}
	return session{}
}

// newestSocket names the display behind the highest numbered X socket.
func (h host) newestSocket() string {
	entries, err := os.ReadDir(h.socketDir)
	if err != nil {
		return ""
	}
	best := -1
	for _, entry := range entries {
		n, ok := strings.CutPrefix(entry.Name(), "X")
		if !ok {
			continue
		}
		if num, err := strconv.Atoi(n); err == nil && num > best {
			best = num
		}
	}
	if best < 0 {
		return ""
	}
	return fmt.Sprintf(":%d", best)
}

// userSessions lists the ids of sessions owned by uid in
// `loginctl list-sessions --no-legend` output.
func userSessions(out, uid string) []string {
	var ids []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

// pairs splits KEY=VALUE records separated by sep.
func pairs(s, sep string) map[string]string {
	out := make(map[string]string)
	for _, rec := range strings.Split(s, sep) {
		k, v, ok := strings.Cut(strings.TrimSpace(rec), "=")
		if ok && k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

func runCommand(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}
