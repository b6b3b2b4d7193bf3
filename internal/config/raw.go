package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawInputConfig struct {
	KeyDelayMs   *int `yaml:"key_delay_ms"`
	ClickDelayMs *int `yaml:"click_delay_ms"`
}

type RawWaitConfig struct {
	TimeoutMs      *int `yaml:"timeout_ms"`
	PollIntervalMs *int `yaml:"poll_interval_ms"`
}

type RawLoggingConfig struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	File   *string `yaml:"file"`
}

type RawIPCConfig struct {
	Socket *string `yaml:"socket"`
}

// RawConfig mirrors Config with every field optional, so merged files only
// override what they set.
type RawConfig struct {
	Include    IncludeList       `yaml:"include"`
	Display    *string           `yaml:"display"`
	XAuthority *string           `yaml:"xauthority"`
	Input      *RawInputConfig   `yaml:"input"`
	Wait       *RawWaitConfig    `yaml:"wait"`
	Logging    *RawLoggingConfig `yaml:"logging"`
	IPC        *RawIPCConfig     `yaml:"ipc"`
	Hotkeys    []Hotkey          `yaml:"hotkeys"`
}

// merge returns r overridden by every field set in other.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	if other.Display != nil {
		out.Display = other.Display
	}
	if other.XAuthority != nil {
		out.XAuthority = other.XAuthority
	}
	if other.Input != nil {
		in := RawInputConfig{}
		if r.Input != nil {
			in = *r.Input
		}
		if other.Input.KeyDelayMs != nil {
			in.KeyDelayMs = other.Input.KeyDelayMs
		}
		if other.Input.ClickDelayMs != nil {
			in.ClickDelayMs = other.Input.ClickDelayMs
		}
		out.Input = &in
	}
	if other.Wait != nil {
		w := RawWaitConfig{}
		if r.Wait != nil {
			w = *r.Wait
		}
		if other.Wait.TimeoutMs != nil {
			w.TimeoutMs = other.Wait.TimeoutMs
		}
		if other.Wait.PollIntervalMs != nil {
			w.PollIntervalMs = other.Wait.PollIntervalMs
		}
		out.Wait = &w
	}
	if other.Logging != nil {
		l := RawLoggingConfig{}
		if r.Logging != nil {
			l = *r.Logging
		}
		if other.Logging.Level != nil {
			l.Level = other.Logging.Level
		}
		if other.Logging.Format != nil {
			l.Format = other.Logging.Format
		}
		if other.Logging.File != nil {
			l.File = other.Logging.File
		}
		out.Logging = &l
	}
	if other.IPC != nil {
		ipc := RawIPCConfig{}
		if r.IPC != nil {
			ipc = *r.IPC
		}
		if other.IPC.Socket != nil {
			ipc.Socket = other.IPC.Socket
		}
		out.IPC = &ipc
	}
	// A later file's hotkey list replaces the earlier one.
	if other.Hotkeys != nil {
		out.Hotkeys = other.Hotkeys
	}
	out.Include = nil
	return out
}
