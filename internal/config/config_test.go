package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points every config location at a fresh temp dir
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("TICKS_CONFIG", "")
	for _, name := range []string{
		"TICKS_BASE_URL", "TICKS_API_KEY", "TICKS_USER_ID", "TICKS_WORKSPACE",
		"TICKS_PROJECT", "TICKS_DB_PATH", "TICKS_SOCKET", "TICKS_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "ticks")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestDefaultKeyMappings(t *testing.T) {
	defaults := DefaultKeyMappings()

	if defaults.Quit != "q" {
		t.Errorf("Default Quit key = %s, want q", defaults.Quit)
	}
	if defaults.ToggleItem != "space" {
		t.Errorf("Default ToggleItem key = %s, want space", defaults.ToggleItem)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without config file failed: %v", err)
	}

	if cfg.Server.BaseURL != DefaultBaseURL || cfg.LogLevel != "info" {
		t.Errorf("Expected defaults, got %+v", cfg.Server)
	}
	if cfg.Server.DBPath != filepath.Join(dir, ".ticks", "ticks.db") {
		t.Errorf("Unexpected db path %s", cfg.Server.DBPath)
	}
	if cfg.Daemon.Socket != filepath.Join(dir, ".ticks", "ticks.sock") {
		t.Errorf("Unexpected socket path %s", cfg.Daemon.Socket)
	}
	if cfg.KeyMappings.Quit != "q" || cfg.ColorScheme.Accent == "" {
		t.Error("Expected key mappings and colors to be defaulted")
	}
}

func TestLoadConfigWithFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `server:
  base_url: "https://plane.example.com"
  api_key: "secret"
user:
  id: "u1"
workspace: acme
key_mappings:
  quit: "x"
theme:
  preset: monochrome
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://plane.example.com" || cfg.Server.APIKey != "secret" {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if cfg.User.ID != "u1" || cfg.Workspace != "acme" {
		t.Errorf("Unexpected identity %+v / %s", cfg.User, cfg.Workspace)
	}
	if cfg.KeyMappings.Quit != "x" {
		t.Errorf("Quit key = %s, want x", cfg.KeyMappings.Quit)
	}
	if cfg.KeyMappings.AddItem != "a" {
		t.Errorf("AddItem should default to a, got %s", cfg.KeyMappings.AddItem)
	}
	if cfg.ColorScheme.Accent != MonochromeColorScheme().Accent {
		t.Errorf("Expected monochrome accent, got %s", cfg.ColorScheme.Accent)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "workspace: acme\nuser:\n  id: u1\n")
	t.Setenv("TICKS_WORKSPACE", "globex")
	t.Setenv("TICKS_BASE_URL", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Workspace != "globex" || cfg.User.ID != "u1" {
		t.Errorf("Expected env to win only where set, got workspace=%s user=%s", cfg.Workspace, cfg.User.ID)
	}
	if cfg.Server.BaseURL != "http://localhost:9999" {
		t.Errorf("Unexpected base URL %s", cfg.Server.BaseURL)
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("project: p9\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("TICKS_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Project != "p9" {
		t.Errorf("Expected project p9, got %q", cfg.Project)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "server: [not, a, map")

	if _, err := Load(); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	cfg.Workspace = "acme"
	cfg.User.ID = "u42"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	path, _ := Path()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	reloaded, err := Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Workspace != "acme" || reloaded.User.ID != "u42" {
		t.Errorf("Expected saved values, got %+v", reloaded)
	}
}
