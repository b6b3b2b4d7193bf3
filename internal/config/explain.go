package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	display
//	xauthority
//	input.key_delay_ms
//	input.click_delay_ms
//	wait.timeout_ms
//	wait.poll_interval_ms
//	logging.level
//	logging.format
//	logging.file
//	ipc.socket
//	hotkeys
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	case "input.key_delay_ms":
		return cfg.Input.KeyDelayMs, nil
	case "input.click_delay_ms":
		return cfg.Input.ClickDelayMs, nil
	case "wait.timeout_ms":
		return cfg.Wait.TimeoutMs, nil
	case "wait.poll_interval_ms":
		return cfg.Wait.PollIntervalMs, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	case "logging.file":
		return cfg.Logging.File, nil
	case "ipc.socket":
		return cfg.IPC.Socket, nil
	case "hotkeys":
		return cfg.Hotkeys, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}
