package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/isim/internal/ops"
)

// snapshot is one poll of the pointer and window directory.
type snapshot struct {
	Pointer   *ops.Pointer
	AtPointer *uint32
	Name      string
	PID       int
	Focused   *uint32
	Active    *uint32
	Desktop   *int
	Err       string
}

type (
	tickMsg     time.Time
	snapshotMsg snapshot
	actionMsg   struct {
		label string
		res   ops.Result
	}
)

// fetchSnapshot queries everything the Live tab shows. The first failing
// query is reported in Err; later queries still run.
func fetchSnapshot(ctx context.Context, x Executor, display string) snapshot {
	var s snapshot
	query := func(op string, window *uint32) ops.Result {
		res := x.Execute(ctx, ops.Request{Op: op, Display: display, Window: window})
		if !res.OK() && s.Err == "" {
			s.Err = fmt.Sprintf("%s: %s", res.Status, res.Error)
		}
		return res
	}

	s.Pointer = query(ops.QueryPointer, nil).Pointer
	s.AtPointer = query(ops.QueryAtPointer, nil).Window
	s.Focused = query(ops.QueryFocused, nil).Window
	s.Active = query(ops.QueryActive, nil).Window
	s.Desktop = query(ops.QueryDesktop, nil).Desktop

	if s.AtPointer != nil {
		// Windows without a title or pid are normal; only connection
		// errors from these are worth surfacing.
		if res := x.Execute(ctx, ops.Request{Op: ops.WindowName, Display: display, Window: s.AtPointer}); res.Name != nil {
			s.Name = *res.Name
		}
		if res := x.Execute(ctx, ops.Request{Op: ops.WindowPID, Display: display, Window: s.AtPointer}); res.PID != nil {
			s.PID = *res.PID
		}
	}
	return s
}

// LiveTab polls the display and runs window commands on the window under
// the pointer.
type LiveTab struct {
	ctx     context.Context
	exec    Executor
	display string
	refresh time.Duration

	snap    snapshot
	polled  bool
	lastErr string
	status  string

	// Key entry
	typing bool
	input  textinput.Model
	target *uint32

	// Kill confirmation
	confirm *huh.Form
	kill    *bool

	width  int
	height int
}

// NewLiveTab creates a LiveTab polling every refresh.
func NewLiveTab(ctx context.Context, x Executor, display string, refresh time.Duration) LiveTab {
	in := textinput.New()
	in.Placeholder = "ctrl+shift+t"
	in.Prompt = "keys> "
	in.CharLimit = 128
	return LiveTab{
		ctx:     ctx,
		exec:    x,
		display: display,
		refresh: refresh,
		input:   in,
	}
}

// Capturing reports whether the tab owns the keyboard.
func (l LiveTab) Capturing() bool { return l.typing || l.confirm != nil }

// Init implements tea.Model.
func (l LiveTab) Init() tea.Cmd {
	return l.poll()
}

func (l LiveTab) poll() tea.Cmd {
	ctx, x, display := l.ctx, l.exec, l.display
	return func() tea.Msg {
		return snapshotMsg(fetchSnapshot(ctx, x, display))
	}
}

func (l LiveTab) tick() tea.Cmd {
	return tea.Tick(l.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (l LiveTab) run(label string, req ops.Request) tea.Cmd {
	ctx, x := l.ctx, l.exec
	req.Display = l.display
	return func() tea.Msg {
		return actionMsg{label: label, res: x.Execute(ctx, req)}
	}
}

// Update implements tea.Model.
func (l LiveTab) Update(msg tea.Msg) (LiveTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
		return l, nil
	case snapshotMsg:
		l.snap = snapshot(msg)
		l.polled = true
		l.lastErr = msg.Err
		return l, l.tick()
	case tickMsg:
		return l, l.poll()
	case actionMsg:
		if msg.res.OK() {
			l.status = okStyle.Render(msg.label + ": ok")
		} else {
			l.status = errStyle.Render(fmt.Sprintf("%s: %s (%s)", msg.label, msg.res.Error, msg.res.Status))
		}
		return l, nil
	}

	if l.confirm != nil {
		return l.updateConfirm(msg)
	}
	if l.typing {
		return l.updateTyping(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	target := l.snap.AtPointer
	switch km.String() {
	case "f", "a", "r", "c", "x", "k":
		if target == nil {
			l.status = dimStyle.Render("no window under the pointer")
			return l, nil
		}
	}
	switch km.String() {
	case "f":
		return l, l.run("focus", ops.Request{Op: ops.WindowFocus, Window: target})
	case "a":
		return l, l.run("activate", ops.Request{Op: ops.WindowActivate, Window: target})
	case "r":
		return l, l.run("raise", ops.Request{Op: ops.WindowRaise, Window: target})
	case "c":
		return l, l.run("close", ops.Request{Op: ops.WindowClose, Window: target})
	case "x":
		l.target = target
		l.kill = new(bool)
		l.confirm = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Kill the client owning 0x%x?", *target)).
				Description(l.snap.Name).
				Affirmative("Kill").
				Negative("Cancel").
				Value(l.kill),
		)).WithShowHelp(false)
		return l, l.confirm.Init()
	case "k":
		l.target = target
		l.typing = true
		l.input.SetValue("")
		return l, l.input.Focus()
	}
	return l, nil
}

func (l LiveTab) updateConfirm(msg tea.Msg) (LiveTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		l.confirm = nil
		return l, nil
	}
	form, cmd := l.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.confirm = f
	}
	switch l.confirm.State {
	case huh.StateCompleted:
		l.confirm = nil
		if *l.kill {
			return l, l.run("kill", ops.Request{Op: ops.WindowKill, Window: l.target})
		}
		return l, nil
	case huh.StateAborted:
		l.confirm = nil
		return l, nil
	}
	return l, cmd
}

func (l LiveTab) updateTyping(msg tea.Msg) (LiveTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			l.typing = false
			l.input.Blur()
			return l, nil
		case "enter":
			keys := strings.TrimSpace(l.input.Value())
			l.typing = false
			l.input.Blur()
			if keys == "" {
				return l, nil
			}
			return l, l.run("keys "+keys, ops.Request{Op: ops.KeyPress, Keys: keys, Window: l.target})
		}
	}
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

// View implements tea.Model.
func (l LiveTab) View() string {
	style := lipgloss.NewStyle().
		Width(l.width).
		Height(l.height).
		Padding(1, 2)

	if !l.polled {
		return style.Render(dimStyle.Render("waiting for the display..."))
	}

	s := l.snap
	pointer := "-"
	if s.Pointer != nil {
		pointer = fmt.Sprintf("%d,%d on screen %d", s.Pointer.X, s.Pointer.Y, s.Pointer.Screen)
	}
	under := formatOptionalWindow(s.AtPointer)
	if s.AtPointer != nil && s.Name != "" {
		under += "  " + s.Name
	}
	pid := "-"
	if s.PID > 0 {
		pid = fmt.Sprint(s.PID)
	}
	desktop := "-"
	if s.Desktop != nil {
		desktop = fmt.Sprint(*s.Desktop)
	}

	lines := []string{
		row("Pointer", pointer),
		row("Under pointer", under),
		row("PID", pid),
		"",
		row("Focused", formatOptionalWindow(s.Focused)),
		row("Active", formatOptionalWindow(s.Active)),
		row("Desktop", desktop),
		"",
	}
	switch {
	case l.confirm != nil:
		lines = append(lines, l.confirm.View())
	case l.typing:
		lines = append(lines, l.input.View(), dimStyle.Render("enter to send to the window under the pointer, esc to cancel"))
	case l.status != "":
		lines = append(lines, l.status)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func formatOptionalWindow(w *uint32) string {
	if w == nil {
		return "-"
	}
	return fmt.Sprintf("0x%x", *w)
}
