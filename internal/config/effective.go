package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw overrides on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = expandHome(strings.TrimSpace(*raw.XAuthority))
	}
	if raw.Input != nil {
		if raw.Input.KeyDelayMs != nil {
			cfg.Input.KeyDelayMs = *raw.Input.KeyDelayMs
		}
		if raw.Input.ClickDelayMs != nil {
			cfg.Input.ClickDelayMs = *raw.Input.ClickDelayMs
		}
	}
	if raw.Wait != nil {
		if raw.Wait.TimeoutMs != nil {
			cfg.Wait.TimeoutMs = *raw.Wait.TimeoutMs
		}
		if raw.Wait.PollIntervalMs != nil {
			cfg.Wait.PollIntervalMs = *raw.Wait.PollIntervalMs
		}
	}
	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*raw.Logging.Level))
		}
		if raw.Logging.Format != nil {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(*raw.Logging.Format))
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = expandHome(strings.TrimSpace(*raw.Logging.File))
		}
	}
	if raw.IPC != nil && raw.IPC.Socket != nil {
		cfg.IPC.Socket = expandHome(strings.TrimSpace(*raw.IPC.Socket))
	}
	for _, hk := range raw.Hotkeys {
		hk.Bind = strings.TrimSpace(hk.Bind)
		hk.Op = strings.TrimSpace(hk.Op)
		hk.Target = strings.ToLower(strings.TrimSpace(hk.Target))
		cfg.Hotkeys = append(cfg.Hotkeys, hk)
	}

	return cfg
}
