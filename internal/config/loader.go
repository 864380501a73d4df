package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "PLAYTESTSHOT_CONFIG"

// Loader finds and reads the configuration file.
type Loader struct {
	Version      string // build version, "dev" enables the working directory file
	OverridePath string // explicit path, e.g. from a flag
}

// NewLoader creates a Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads and validates the configuration, returning defaults when no
// file exists.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads one file, choosing the YAML or RC parser by extension.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(f)
	default:
		cfg, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: validation failed: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the first existing config path, or "".
func (l *Loader) GetConfigPath() string {
	for _, p := range []string{l.OverridePath, os.Getenv(EnvPath)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		for _, name := range []string{".playtestshotrc", ".playtestshot.yaml"} {
			local := filepath.Join(wd, name)
			if _, err := os.Stat(local); err == nil {
				return local
			}
		}
	}

	home, _ := os.UserHomeDir()
	for _, name := range []string{"config.rc", "config.yaml", "playtestshot.rc"} {
		p := filepath.Join(home, ".config", "playtestshot", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where a new config file is written.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home dir: %w", err)
	}
	return filepath.Join(home, ".config", "playtestshot", "config.rc"), nil
}
