package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

const (
	configDirName  = ".pythrun"
	configFileName = "config.json"
	envsDirName    = "envs"

	// Environment overrides, checked after the config file.
	envPythonVar  = "PYTHRUN_PYTHON"
	envEnvsDirVar = "PYTHRUN_ENVS_DIR"

	defaultInterpreter = "python3"
)

// Config holds user preferences from ~/.pythrun/config.json.
// The file is user-edited, so it is parsed tolerantly (comments and
// trailing commas allowed).
type Config struct {
	EnvsDir string `json:"envsDir,omitempty"` // base directory for environments
	Python  string `json:"python,omitempty"`  // base interpreter
	Quiet   bool   `json:"quiet,omitempty"`   // default for --quiet
}

// ConfigManager handles reading pythrun's configuration.
type ConfigManager struct {
	configDir string
}

// NewConfigManager creates a ConfigManager using the default config
// path (~/.pythrun/).
func NewConfigManager() (*ConfigManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return &ConfigManager{configDir: filepath.Join(home, configDirName)}, nil
}

// NewConfigManagerWithDir creates a ConfigManager using a custom config
// directory. Useful for testing.
func NewConfigManagerWithDir(dir string) *ConfigManager {
	return &ConfigManager{configDir: dir}
}

// ConfigDir returns the configuration directory path.
func (cm *ConfigManager) ConfigDir() string {
	return cm.configDir
}

// ConfigPath returns the full path to the config file.
func (cm *ConfigManager) ConfigPath() string {
	return filepath.Join(cm.configDir, configFileName)
}

// Load reads the config from disk, fills in defaults, and applies
// PYTHRUN_PYTHON / PYTHRUN_ENVS_DIR environment overrides. A missing
// file yields the defaults; a file that exists but cannot be parsed is
// an error.
func (cm *ConfigManager) Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(cm.ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		// Standardize strips comments and trailing commas before the
		// strict JSON decode.
		standardized, herr := hujson.Standardize(data)
		if herr != nil {
			return nil, fmt.Errorf("parsing config %s: %w", cm.ConfigPath(), herr)
		}
		if jerr := json.Unmarshal(standardized, cfg); jerr != nil {
			return nil, fmt.Errorf("parsing config %s: %w", cm.ConfigPath(), jerr)
		}
	}

	if cfg.EnvsDir == "" {
		cfg.EnvsDir = filepath.Join(cm.configDir, envsDirName)
	}
	if cfg.Python == "" {
		cfg.Python = defaultInterpreter
	}

	if v := os.Getenv(envPythonVar); v != "" {
		cfg.Python = v
	}
	if v := os.Getenv(envEnvsDirVar); v != "" {
		cfg.EnvsDir = v
	}

	return cfg, nil
}
