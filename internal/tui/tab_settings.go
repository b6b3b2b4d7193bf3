package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/isim/internal/config"
)

// settingsForm holds the form-bound values as strings for huh.
type settingsForm struct {
	KeyDelay     string
	ClickDelay   string
	WaitTimeout  string
	PollInterval string
	LogLevel     string
}

func formFromConfig(cfg *config.Config) *settingsForm {
	return &settingsForm{
		KeyDelay:     strconv.Itoa(cfg.Input.KeyDelayMs),
		ClickDelay:   strconv.Itoa(cfg.Input.ClickDelayMs),
		WaitTimeout:  strconv.Itoa(cfg.Wait.TimeoutMs),
		PollInterval: strconv.Itoa(cfg.Wait.PollIntervalMs),
		LogLevel:     cfg.Logging.Level,
	}
}

// apply returns a copy of cfg with the form values, validated.
func (f *settingsForm) apply(cfg *config.Config) (*config.Config, error) {
	next := *cfg
	for _, field := range []struct {
		value string
		dst   *int
		name  string
	}{
		{f.KeyDelay, &next.Input.KeyDelayMs, "input.key_delay_ms"},
		{f.ClickDelay, &next.Input.ClickDelayMs, "input.click_delay_ms"},
		{f.WaitTimeout, &next.Wait.TimeoutMs, "wait.timeout_ms"},
		{f.PollInterval, &next.Wait.PollIntervalMs, "wait.poll_interval_ms"},
	} {
		v, err := strconv.Atoi(strings.TrimSpace(field.value))
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", field.name, field.value)
		}
		*field.dst = v
	}
	next.Logging.Level = f.LogLevel
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func validInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a whole number of milliseconds")
	}
	return nil
}

// SettingsTab shows and edits the timing settings.
type SettingsTab struct {
	cfg   *config.Config
	path  string
	apply func(*config.Config)

	editing bool
	form    *huh.Form
	values  *settingsForm
	status  string

	width  int
	height int
}

// NewSettingsTab creates a SettingsTab; a nil cfg shows the defaults.
func NewSettingsTab(cfg *config.Config, path string, apply func(*config.Config)) SettingsTab {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return SettingsTab{cfg: cfg, path: path, apply: apply}
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if wm, ok := msg.(tea.WindowSizeMsg); ok {
		s.width = wm.Width
		s.height = wm.Height
	}
	if s.editing {
		return s.updateEditing(msg)
	}
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "e" {
		s.startEditing()
		return s, s.form.Init()
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		s.editing = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.save()
		s.editing = false
		s.form = nil
		return s, nil
	case huh.StateAborted:
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func (s *SettingsTab) startEditing() {
	s.values = formFromConfig(s.cfg)

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("key_delay_ms").
				Title("Key Delay (ms)").
				Description("Pause between key events of one sequence").
				Validate(validInt).
				Value(&s.values.KeyDelay),
			huh.NewInput().
				Key("click_delay_ms").
				Title("Click Delay (ms)").
				Description("Pause between press and release of a click").
				Validate(validInt).
				Value(&s.values.ClickDelay),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("timeout_ms").
				Title("Wait Timeout (ms)").
				Description("How long focus, activate and pointer moves are watched").
				Validate(validInt).
				Value(&s.values.WaitTimeout),
			huh.NewInput().
				Key("poll_interval_ms").
				Title("Poll Interval (ms)").
				Validate(validInt).
				Value(&s.values.PollInterval),
			huh.NewSelect[string]().
				Key("level").
				Title("Log Level").
				Description("Takes effect on restart").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&s.values.LogLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func (s *SettingsTab) save() {
	next, err := s.values.apply(s.cfg)
	if err != nil {
		s.status = errStyle.Render(err.Error())
		return
	}
	if s.path != "" {
		if err := next.SaveTo(s.path); err != nil {
			s.status = errStyle.Render(err.Error())
			return
		}
	}
	s.cfg = next
	if s.apply != nil {
		s.apply(next)
	}
	s.status = okStyle.Render("saved")
	if s.path != "" {
		s.status += dimStyle.Render("  " + s.path)
	}
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	style := lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2)

	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			dimStyle.Render("  (esc to cancel)")
		return style.Render(header + "\n\n" + s.form.View())
	}

	cfg := s.cfg
	lines := []string{
		row("Key Delay", fmt.Sprintf("%dms", cfg.Input.KeyDelayMs)),
		row("Click Delay", fmt.Sprintf("%dms", cfg.Input.ClickDelayMs)),
		row("Wait Timeout", fmt.Sprintf("%dms", cfg.Wait.TimeoutMs)),
		row("Poll Interval", fmt.Sprintf("%dms", cfg.Wait.PollIntervalMs)),
		row("Log Level", cfg.Logging.Level),
		"",
	}
	if s.status != "" {
		lines = append(lines, s.status, "")
	}
	lines = append(lines, dimStyle.Render("  Press 'e' to edit settings"))
	return style.Render(strings.Join(lines, "\n"))
}
