package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ClickDelay() != 12*time.Millisecond {
		t.Fatalf("click delay = %v, want 12ms", cfg.ClickDelay())
	}
	if cfg.WaitTimeout() != time.Second || cfg.PollInterval() != 30*time.Millisecond {
		t.Fatalf("wait = %v/%v, want 1s/30ms", cfg.WaitTimeout(), cfg.PollInterval())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Logging.Level != "info" {
		t.Fatalf("expected default level info, got %q", res.Config.Logging.Level)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Wait.TimeoutMs != 1000 {
		t.Fatalf("expected default timeout, got %d", res.Config.Wait.TimeoutMs)
	}
}

func TestLoadFromPath_OverridesAndSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		`display: ":1"`,
		`xauthority: "/tmp/test-xauth"`,
		`input:`,
		`  key_delay_ms: 8`,
		`logging:`,
		`  level: DEBUG`,
		`  format: json`,
		``,
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" || cfg.XAuthority != "/tmp/test-xauth" {
		t.Fatalf("display/xauthority = %q/%q", cfg.Display, cfg.XAuthority)
	}
	if cfg.KeyDelay() != 8*time.Millisecond {
		t.Fatalf("key delay = %v, want 8ms", cfg.KeyDelay())
	}
	if cfg.Input.ClickDelayMs != 12 {
		t.Fatalf("unset click delay should keep default, got %d", cfg.Input.ClickDelayMs)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}

	val, src, err := Explain(res, "input.key_delay_ms")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 8 || src.Kind != SourceFile || src.Line != 4 {
		t.Fatalf("explain = %v @ %+v", val, src)
	}

	_, src, err = Explain(res, "wait.timeout_ms")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %+v", src)
	}

	if _, _, err := Explain(res, "nope"); err == nil {
		t.Fatal("expected error for unknown path")
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "hotkey: Mod4-t\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "wait:\n  timeout_ms: 0\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "wait.timeout_ms" {
		t.Fatalf("path = %q", verr.Path)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("expected file:line in %q", err.Error())
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf.d", "10-wait.yaml"), "wait:\n  timeout_ms: 2000\n  poll_interval_ms: 50\n")
	writeFile(t, filepath.Join(dir, "conf.d", "20-wait.yaml"), "wait:\n  timeout_ms: 3000\n")
	writeFile(t, filepath.Join(dir, "conf.d", "README.txt"), "ignored")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\nwait:\n  poll_interval_ms: 40\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Wait.TimeoutMs != 3000 {
		t.Fatalf("timeout = %d, want 3000", res.Config.Wait.TimeoutMs)
	}
	if res.Config.Wait.PollIntervalMs != 40 {
		t.Fatalf("poll interval = %d, want 40 (main file wins)", res.Config.Wait.PollIntervalMs)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_HotkeyErrorPointsAtList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "input:\n  key_delay_ms: 5\nhotkeys:\n  - bind: Mod4-q\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "hotkeys[0].op" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Line != 4 {
		t.Fatalf("source = %+v, want the hotkeys list on line 4", verr.Source)
	}
}

func TestLoadFromPath_MissingIncludeHasPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "wait:\n  timeout_ms: 900\ninclude: nowhere.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "config.yaml:3:") {
		t.Fatalf("expected include error at config.yaml:3, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative key delay", func(c *Config) { c.Input.KeyDelayMs = -1 }, "input.key_delay_ms"},
		{"negative click delay", func(c *Config) { c.Input.ClickDelayMs = -1 }, "input.click_delay_ms"},
		{"zero timeout", func(c *Config) { c.Wait.TimeoutMs = 0 }, "wait.timeout_ms"},
		{"poll above timeout", func(c *Config) { c.Wait.PollIntervalMs = 5000 }, "wait.poll_interval_ms"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad display", func(c *Config) { c.Display = "localhost" }, "display"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "warning", "error", "DEBUG"} {
		cfg := DefaultConfig()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Fatalf("level %q rejected: %v", level, err)
		}
	}
	cfg := DefaultConfig()
	cfg.Logging.Level = "trace"
	var verr *ValidationError
	if !errors.As(cfg.Validate(), &verr) || verr.Path != "logging.level" {
		t.Fatalf("expected logging.level error for trace")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Display = ":2"
	cfg.IPC.Socket = "/tmp/isim-test.sock"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Display != ":2" || res.Config.IPC.Socket != "/tmp/isim-test.sock" {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/isim/custom.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/etc/isim/custom.yaml" {
		t.Fatalf("path = %q", path)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigPath, "")
	path, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(home, ".config", "isim", "config.yaml") {
		t.Fatalf("path = %q", path)
	}
}

func TestLoadFromPath_Hotkeys(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	writeFile(t, base, strings.Join([]string{
		`hotkeys:`,
		`  - bind: Mod4-q`,
		`    op: window.close`,
		``,
	}, "\n"))
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		`include: base.yaml`,
		`hotkeys:`,
		`  - bind: " Mod4-Shift-r "`,
		`    op: window.raise`,
		`    target: Pointer`,
		`  - bind: Mod4-F5`,
		`    op: key.press`,
		`    keys: ctrl+r`,
		``,
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hks := res.Config.Hotkeys
	if len(hks) != 2 {
		t.Fatalf("expected the including file's list to replace the included one, got %+v", hks)
	}
	if hks[0].Bind != "Mod4-Shift-r" || hks[0].Target != TargetPointer {
		t.Fatalf("hotkey[0] = %+v", hks[0])
	}
	if hks[1].Keys != "ctrl+r" || hks[1].Target != "" {
		t.Fatalf("hotkey[1] = %+v", hks[1])
	}
}

func TestValidate_Hotkeys(t *testing.T) {
	tests := []struct {
		name    string
		hotkeys []Hotkey
		path    string
	}{
		{"missing bind", []Hotkey{{Op: "window.raise"}}, "hotkeys[0].bind"},
		{"missing op", []Hotkey{{Bind: "Mod4-r"}}, "hotkeys[0].op"},
		{"bad target", []Hotkey{{Bind: "Mod4-r", Op: "window.raise", Target: "mouse"}}, "hotkeys[0].target"},
		{"duplicate bind", []Hotkey{
			{Bind: "Mod4-r", Op: "window.raise"},
			{Bind: "Mod4-r", Op: "window.close"},
		}, "hotkeys[1].bind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Hotkeys = tt.hotkeys
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}
