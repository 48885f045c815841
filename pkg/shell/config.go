package shell

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/krillsh/krill/pkg/eval"
)

// Config is the rc file, ~/.config/krill/rc.yaml. Every field is optional.
type Config struct {
	// Prompt is the prompt format; %u expands to the user name, %w to the
	// working directory with the home prefix shortened to ~.
	Prompt string `yaml:"prompt"`
	// RecursionLimit caps function call nesting.
	RecursionLimit int `yaml:"recursion_limit"`
	// HistoryFile is the path of the history database.
	HistoryFile string `yaml:"history_file"`
	// Aliases maps command names to replacement text.
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultConfig returns the configuration used when no rc file exists.
func DefaultConfig() Config {
	return Config{
		Prompt:         "%u %w> ",
		RecursionLimit: eval.DefaultMaxDepth,
	}
}

// RCPath returns the default rc file location.
func RCPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "krill", "rc.yaml"), nil
}

// HistoryPath returns the default history database location.
func HistoryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "krill", "history.db"), nil
}

// LoadConfig reads the rc file at path. A missing file is not an error; it
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = eval.DefaultMaxDepth
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultConfig().Prompt
	}
	return cfg, nil
}
