// Package tui is an interactive inspector: it polls the pointer and window
// directory of one display and drives window commands against the window
// under the pointer.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/isim/internal/config"
	"github.com/1broseidon/isim/internal/ops"
)

// Executor runs one operation; *ops.Executor and the IPC client both fit.
type Executor interface {
	Execute(ctx context.Context, req ops.Request) ops.Result
}

// Options configures the inspector.
type Options struct {
	Exec    Executor
	Display string
	// Refresh is the poll interval of the Live tab; defaults to 250ms.
	Refresh time.Duration

	Config     *config.Config
	ConfigPath string
	// Apply is called after the Settings tab saved a new config.
	Apply func(*config.Config)
}

const defaultRefresh = 250 * time.Millisecond

// Run starts the inspector and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}
