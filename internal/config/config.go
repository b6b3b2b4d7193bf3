package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/isim/internal/engine"
)

// InputConfig tunes synthesized input timing.
type InputConfig struct {
	// KeyDelayMs is the default pause between key events of one sequence.
	KeyDelayMs int `yaml:"key_delay_ms"`
	// ClickDelayMs separates press and release of a click.
	ClickDelayMs int `yaml:"click_delay_ms"`
}

// WaitConfig bounds how long asynchronous operations watch for their effect.
type WaitConfig struct {
	TimeoutMs      int `yaml:"timeout_ms"`
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format is console or json.
	Format string `yaml:"format"`
	// File receives logs in addition to stderr when set.
	File string `yaml:"file,omitempty"`
}

// IPCConfig configures the daemon socket.
type IPCConfig struct {
	// Socket overrides the default runtime-dir socket path.
	Socket string `yaml:"socket,omitempty"`
}

// Hotkey binds a global key combination to one operation run by the daemon.
type Hotkey struct {
	// Bind is an xgbutil key string such as "Mod4-Shift-r".
	Bind string `yaml:"bind"`
	Op   string `yaml:"op"`
	// Target selects the window the op runs against: focused, active,
	// pointer or none. Window ops default to focused, input ops to none.
	Target string `yaml:"target,omitempty"`
	Keys   string `yaml:"keys,omitempty"`
	Button int    `yaml:"button,omitempty"`
	X      int    `yaml:"x,omitempty"`
	Y      int    `yaml:"y,omitempty"`
}

// Hotkey targets.
const (
	TargetFocused = "focused"
	TargetActive  = "active"
	TargetPointer = "pointer"
	TargetNone    = "none"
)

type Config struct {
	Display    string        `yaml:"display,omitempty"`
	XAuthority string        `yaml:"xauthority,omitempty"`
	Input      InputConfig   `yaml:"input"`
	Wait       WaitConfig    `yaml:"wait"`
	Logging    LoggingConfig `yaml:"logging"`
	IPC        IPCConfig     `yaml:"ipc,omitempty"`
	Hotkeys    []Hotkey      `yaml:"hotkeys,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			KeyDelayMs:   0,
			ClickDelayMs: 12,
		},
		Wait: WaitConfig{
			TimeoutMs:      1000,
			PollIntervalMs: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) KeyDelay() time.Duration {
	return time.Duration(c.Input.KeyDelayMs) * time.Millisecond
}

func (c *Config) ClickDelay() time.Duration {
	return time.Duration(c.Input.ClickDelayMs) * time.Millisecond
}

func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Wait.TimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Wait.PollIntervalMs) * time.Millisecond
}

// EngineOptions converts the timing settings for the engine.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		ClickDelay:   c.ClickDelay(),
		WaitTimeout:  c.WaitTimeout(),
		PollInterval: c.PollInterval(),
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Input.KeyDelayMs < 0 {
		return &ValidationError{Path: "input.key_delay_ms", Err: fmt.Errorf("key_delay_ms must be >= 0")}
	}
	if c.Input.ClickDelayMs < 0 {
		return &ValidationError{Path: "input.click_delay_ms", Err: fmt.Errorf("click_delay_ms must be >= 0")}
	}
	if c.Wait.TimeoutMs <= 0 {
		return &ValidationError{Path: "wait.timeout_ms", Err: fmt.Errorf("timeout_ms must be > 0")}
	}
	if c.Wait.PollIntervalMs <= 0 {
		return &ValidationError{Path: "wait.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}
	if c.Wait.PollIntervalMs > c.Wait.TimeoutMs {
		return &ValidationError{Path: "wait.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must not exceed timeout_ms")}
	}
	if !isValidLogLevel(c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: console, json")}
	}
	if d := strings.TrimSpace(c.Display); d != "" && !strings.Contains(d, ":") {
		return &ValidationError{Path: "display", Err: fmt.Errorf("display %q must look like [host]:N[.S]", d)}
	}
	seen := make(map[string]int, len(c.Hotkeys))
	for i, hk := range c.Hotkeys {
		path := fmt.Sprintf("hotkeys[%d]", i)
		if strings.TrimSpace(hk.Bind) == "" {
			return &ValidationError{Path: path + ".bind", Err: fmt.Errorf("bind is required")}
		}
		if prev, ok := seen[hk.Bind]; ok {
			return &ValidationError{Path: path + ".bind", Err: fmt.Errorf("%q is already bound by hotkeys[%d]", hk.Bind, prev)}
		}
		seen[hk.Bind] = i
		if strings.TrimSpace(hk.Op) == "" {
			return &ValidationError{Path: path + ".op", Err: fmt.Errorf("op is required")}
		}
		switch hk.Target {
		case "", TargetFocused, TargetActive, TargetPointer, TargetNone:
		default:
			return &ValidationError{Path: path + ".target", Err: fmt.Errorf("target must be one of: focused, active, pointer, none")}
		}
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
