package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/isim/internal/ops"
)

// outputItem is a screen or RandR monitor in the list.
type outputItem struct {
	screen  *ops.ScreenInfo
	monitor *ops.MonitorInfo
}

func (i outputItem) FilterValue() string { return i.Title() }

func (i outputItem) Title() string {
	if i.screen != nil {
		return fmt.Sprintf("screen %d", i.screen.ID)
	}
	return fmt.Sprintf("monitor %s", i.monitor.Name)
}

func (i outputItem) Description() string {
	if i.screen != nil {
		return fmt.Sprintf("%dx%d", i.screen.Width, i.screen.Height)
	}
	m := i.monitor
	return fmt.Sprintf("%dx%d+%d+%d", m.Width, m.Height, m.X, m.Y)
}

type screensMsg struct {
	items []list.Item
	err   string
}

func fetchOutputs(ctx context.Context, x Executor, display string) screensMsg {
	var msg screensMsg
	res := x.Execute(ctx, ops.Request{Op: ops.QueryScreens, Display: display})
	if !res.OK() {
		msg.err = res.Error
		return msg
	}
	for i := range res.Screens {
		msg.items = append(msg.items, outputItem{screen: &res.Screens[i]})
	}

	// Servers without RandR still have screens.
	res = x.Execute(ctx, ops.Request{Op: ops.QueryMonitors, Display: display})
	for i := range res.Monitors {
		msg.items = append(msg.items, outputItem{monitor: &res.Monitors[i]})
	}
	return msg
}

// ScreensTab lists X screens and RandR monitors.
type ScreensTab struct {
	ctx     context.Context
	exec    Executor
	display string

	list list.Model
	err  string

	width  int
	height int
}

// NewScreensTab creates an empty ScreensTab; Init loads its items.
func NewScreensTab(ctx context.Context, x Executor, display string) ScreensTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Outputs"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return ScreensTab{ctx: ctx, exec: x, display: display, list: l}
}

// Init implements tea.Model.
func (s ScreensTab) Init() tea.Cmd {
	return s.load()
}

func (s ScreensTab) load() tea.Cmd {
	ctx, x, display := s.ctx, s.exec, s.display
	return func() tea.Msg { return fetchOutputs(ctx, x, display) }
}

// Update implements tea.Model.
func (s ScreensTab) Update(msg tea.Msg) (ScreensTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.SetSize(s.width/2, s.height)
		return s, nil
	case screensMsg:
		s.err = msg.err
		return s, s.list.SetItems(msg.items)
	case tea.KeyMsg:
		if msg.String() == "g" {
			return s, s.load()
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// View implements tea.Model.
func (s ScreensTab) View() string {
	if s.err != "" {
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Padding(1, 2).
			Render(errStyle.Render(s.err) + "\n\n" + dimStyle.Render("press g to retry"))
	}

	left := lipgloss.NewStyle().
		Width(s.width / 2).
		Height(s.height).
		Render(s.list.View())

	var detail []string
	if item, ok := s.list.SelectedItem().(outputItem); ok {
		if sc := item.screen; sc != nil {
			detail = append(detail,
				row("Screen", fmt.Sprint(sc.ID)),
				row("Root", fmt.Sprintf("0x%x", sc.Root)),
				row("Size", fmt.Sprintf("%dx%d", sc.Width, sc.Height)),
			)
		} else if m := item.monitor; m != nil {
			detail = append(detail,
				row("Monitor", m.Name),
				row("Output id", fmt.Sprint(m.ID)),
				row("Position", fmt.Sprintf("%d,%d", m.X, m.Y)),
				row("Size", fmt.Sprintf("%dx%d", m.Width, m.Height)),
			)
		}
	}
	detail = append(detail, "", dimStyle.Render("  press g to refresh"))

	right := lipgloss.NewStyle().
		Width(s.width-s.width/2).
		Height(s.height).
		Padding(1, 2).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("236")).
		Render(strings.Join(detail, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
