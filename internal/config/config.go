package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/Octrafic/stepexec/internal/core/auth"
)

const (
	appName    = "stepexec"
	homeEnvVar = "STEPEXEC_HOME"
)

// Config holds the application configuration
type Config struct {
	BaseURL    string `json:"base_url,omitempty" split_words:"true"`
	LogFile    string `json:"log_file,omitempty" split_words:"true"`
	Debug      bool   `json:"debug,omitempty" split_words:"true"`
	HistoryDir string `json:"history_dir,omitempty" split_words:"true"`
	NoColor    bool   `json:"no_color,omitempty" split_words:"true"`
}

// Dir returns the configuration directory, creating it when missing.
// STEPEXEC_HOME overrides the default ~/.stepexec.
func Dir() (string, error) {
	dir := os.Getenv(homeEnvVar)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(homeDir, "."+appName)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return dir, nil
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file and overlays STEPEXEC_* environment variables.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	config := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(appName, config); err != nil {
		return nil, err
	}

	if config.HistoryDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		config.HistoryDir = filepath.Join(dir, "history")
	}

	return config, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadAuth reads STEPEXEC_AUTH_* variables.
func LoadAuth() (auth.Settings, error) {
	var s auth.Settings
	if err := envconfig.Process(appName+"_auth", &s); err != nil {
		return auth.Settings{}, err
	}
	return s, nil
}

// GetEnvVarName returns the environment variable name for a config key
func GetEnvVarName(key string) string {
	return "STEPEXEC_" + strings.ToUpper(key)
}
