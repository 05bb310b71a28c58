package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither the config file nor the environment set a value
const (
	DefaultBaseURL    = "http://127.0.0.1:8420"
	DefaultListenAddr = "127.0.0.1:8420"
	DefaultLogLevel   = "info"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig `yaml:"server"`
	User        UserConfig   `yaml:"user"`
	Workspace   string       `yaml:"workspace"`
	Project     string       `yaml:"project"`
	Daemon      DaemonConfig `yaml:"daemon"`
	LogLevel    string       `yaml:"log_level"`
	KeyMappings KeyMappings  `yaml:"key_mappings"`
	ColorScheme ColorScheme  `yaml:"theme"`
}

// ServerConfig configures both the API client and the local API server
type ServerConfig struct {
	// BaseURL is where the client sends API requests
	BaseURL string `yaml:"base_url"`
	// APIKey is sent as X-API-Key when set
	APIKey string `yaml:"api_key"`
	// ListenAddr is the address `ticks serve` binds to
	ListenAddr string `yaml:"listen_addr"`
	// DBPath is the SQLite database used by `ticks serve`
	DBPath string `yaml:"db_path"`
}

// UserConfig identifies the acting user
type UserConfig struct {
	ID string `yaml:"id"`
}

// DaemonConfig configures the live-update relay
type DaemonConfig struct {
	Socket string `yaml:"socket"`
	// Disabled turns live updates off entirely
	Disabled bool `yaml:"disabled"`
}

// Load reads the config file, falling back to defaults when it does not exist,
// then applies environment overrides.
func Load() (*Config, error) {
	config, err := LoadFile()
	if err != nil {
		return nil, err
	}

	config.applyEnv()
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile reads only the config file, without environment overrides or
// defaults. Use it to edit and Save the file.
func LoadFile() (*Config, error) {
	config := &Config{}

	configPath, err := getConfigPath()
	if err != nil {
		return config, nil
	}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	return config, nil
}

// Save writes the config to the user's config file
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// The file may hold an API key.
	return os.WriteFile(configPath, data, 0o600)
}

// Path returns the config file location
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath honours TICKS_CONFIG, then XDG_CONFIG_HOME, then ~/.config
func getConfigPath() (string, error) {
	if explicit := os.Getenv("TICKS_CONFIG"); explicit != "" {
		return explicit, nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "ticks", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "ticks", "config.yaml"), nil
}

// applyEnv overrides file values with TICKS_* environment variables
func (c *Config) applyEnv() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"TICKS_BASE_URL", &c.Server.BaseURL},
		{"TICKS_API_KEY", &c.Server.APIKey},
		{"TICKS_USER_ID", &c.User.ID},
		{"TICKS_WORKSPACE", &c.Workspace},
		{"TICKS_PROJECT", &c.Project},
		{"TICKS_DB_PATH", &c.Server.DBPath},
		{"TICKS_SOCKET", &c.Daemon.Socket},
		{"TICKS_LOG_LEVEL", &c.LogLevel},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(v) != "" {
			*o.target = strings.TrimSpace(v)
		}
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() error {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = DefaultBaseURL
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.Server.DBPath == "" || c.Daemon.Socket == "" {
		dataDir, err := DataDir()
		if err != nil {
			return err
		}
		if c.Server.DBPath == "" {
			c.Server.DBPath = filepath.Join(dataDir, "ticks.db")
		}
		if c.Daemon.Socket == "" {
			c.Daemon.Socket = filepath.Join(dataDir, "ticks.sock")
		}
	}

	c.KeyMappings.applyDefaults()
	c.ColorScheme.ApplyDefaults()
	return nil
}

// DataDir returns ~/.ticks, where the database, socket and logs live
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ticks"), nil
}
