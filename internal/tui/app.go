package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// model is the root bubbletea model for the TUI.
type model struct {
	ctx     context.Context
	display string

	activeTab Tab

	liveTab     LiveTab
	screensTab  ScreensTab
	settingsTab SettingsTab

	width  int
	height int
}

func newModel(ctx context.Context, opts Options) model {
	if opts.Refresh <= 0 {
		opts.Refresh = defaultRefresh
	}
	return model{
		ctx:         ctx,
		display:     opts.Display,
		activeTab:   TabLive,
		liveTab:     NewLiveTab(ctx, opts.Exec, opts.Display, opts.Refresh),
		screensTab:  NewScreensTab(ctx, opts.Exec, opts.Display),
		settingsTab: NewSettingsTab(opts.Config, opts.ConfigPath, opts.Apply),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.liveTab.Init(), m.screensTab.Init())
}

// capturing reports whether a sub-model owns the keyboard.
func (m model) capturing() bool {
	switch m.activeTab {
	case TabLive:
		return m.liveTab.Capturing()
	case TabSettings:
		return m.settingsTab.editing
	}
	return false
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.liveTab, _ = m.liveTab.Update(subMsg)
		m.screensTab, _ = m.screensTab.Update(subMsg)
		m.settingsTab, _ = m.settingsTab.Update(subMsg)
		return m, nil

	case snapshotMsg, tickMsg, actionMsg:
		// Polling continues while other tabs are shown.
		var cmd tea.Cmd
		m.liveTab, cmd = m.liveTab.Update(msg)
		return m, cmd

	case screensMsg:
		var cmd tea.Cmd
		m.screensTab, cmd = m.screensTab.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.capturing() {
			break
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabLive
			return m, nil
		case "2":
			m.activeTab = TabScreens
			return m, nil
		case "3":
			m.activeTab = TabSettings
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabLive:
		m.liveTab, cmd = m.liveTab.Update(msg)
	case TabScreens:
		m.screensTab, cmd = m.screensTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	}
	return m, cmd
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var content string
	switch m.activeTab {
	case TabLive:
		content = m.liveTab.View()
	case TabScreens:
		content = m.screensTab.View()
	case TabSettings:
		content = m.settingsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.display, m.liveTab.lastErr, m.width),
		renderTabBar(m.activeTab, m.width),
		content,
		renderHelpBar(m.activeTab, m.width),
	)
}
