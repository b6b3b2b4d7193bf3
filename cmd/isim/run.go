package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/ipc"
	"github.com/1broseidon/isim/internal/ops"
	"github.com/1broseidon/isim/internal/platform"
	"github.com/1broseidon/isim/internal/runtimepath"
	"github.com/1broseidon/isim/internal/x11"
)

// dialBackend opens display connections; tests swap in a fake server.
var dialBackend engine.Dialer = platform.DialX11

// newExecutor builds a connection pool and executor from the loaded config.
func newExecutor() (*engine.Manager, *ops.Executor) {
	x11.EnsureXAuthority(cfg.XAuthority)
	configured := cfg.Display
	mgr := engine.NewManager(dialBackend, func(name string) string {
		return x11.ResolveDisplay(name, configured)
	}, cfg.EngineOptions())
	return mgr, ops.NewExecutor(mgr, cfg.KeyDelay())
}

func socketPath() (string, error) {
	return runtimepath.ResolveSocketPath(cfg.IPC.Socket)
}

// runOp executes req directly or through the daemon, prints the result and
// records its status as the exit code.
func runOp(cmd *cobra.Command, req ops.Request) error {
	if req.Display == "" {
		req.Display = globalOpts.display
	}

	var res ops.Result
	if globalOpts.viaDaemon {
		socket, err := socketPath()
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}
		res, err = ipc.NewClient(socket).Exec(req)
		if err != nil {
			return withStatus(engine.StatusConnection, err)
		}
	} else {
		mgr, x := newExecutor()
		defer mgr.Close()
		res = x.Execute(cmd.Context(), req)
	}

	if err := printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res); err != nil {
		return err
	}
	exitCode = res.Code
	return nil
}

// jsonOutput reports whether results should be printed as JSON.
func jsonOutput(w io.Writer) bool {
	if globalOpts.json {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(out, errOut io.Writer, res ops.Result) error {
	if jsonOutput(out) {
		return printJSON(out, res)
	}
	if !res.OK() {
		fmt.Fprintf(errOut, "%s: %s\n", res.Status, res.Error)
		return nil
	}

	switch {
	case res.Pending:
		fmt.Fprintf(out, "pending %s\n", res.Completion)
	case res.PID != nil:
		fmt.Fprintln(out, *res.PID)
	case res.Name != nil:
		fmt.Fprintln(out, *res.Name)
	case res.Desktop != nil:
		fmt.Fprintln(out, *res.Desktop)
	case res.Pointer != nil:
		fmt.Fprintf(out, "x:%d y:%d screen:%d\n", res.Pointer.X, res.Pointer.Y, res.Pointer.Screen)
	case len(res.Screens) > 0:
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SCREEN\tROOT\tSIZE")
		for _, s := range res.Screens {
			fmt.Fprintf(tw, "%d\t%s\t%dx%d\n", s.ID, formatWindow(s.Root), s.Width, s.Height)
		}
		return tw.Flush()
	case len(res.Monitors) > 0:
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tGEOMETRY")
		for _, m := range res.Monitors {
			fmt.Fprintf(tw, "%d\t%s\t%dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
		}
		return tw.Flush()
	case res.Window != nil:
		fmt.Fprintln(out, formatWindow(*res.Window))
	}
	return nil
}

func formatWindow(id uint32) string {
	return fmt.Sprintf("0x%x", id)
}

// parseWindow accepts decimal or 0x-prefixed hex window ids.
func parseWindow(s string) (*uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return nil, withStatus(engine.StatusFailure, fmt.Errorf("invalid window id %q", s))
	}
	id := uint32(v)
	return &id, nil
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, withStatus(engine.StatusFailure, fmt.Errorf("invalid %s %q", name, s))
	}
	return v, nil
}
