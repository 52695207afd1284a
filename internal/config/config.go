package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds user settings. Dynamic state (tracked repositories, recorded
// base branches) lives in the state store, not here.
type Config struct {
	// WorktreeBasePath is where new worktrees are created, as
	// <base>/<repoName>/<worktreeName>. Supports a leading ~.
	WorktreeBasePath string `yaml:"worktree_base_path"`

	// DefaultEditor is the editor identifier handed to the system opener.
	DefaultEditor string `yaml:"default_editor"`

	// CopyPatterns are the global default scaffolding patterns copied into
	// every new worktree; repositories may override them in the state store.
	CopyPatterns []string `yaml:"copy_patterns"`

	Theme    string `yaml:"theme"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		WorktreeBasePath: "~/worktrees",
		Theme:            "mocha",
		LogLevel:         "info",
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir loads config.yaml from an explicit directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	if cfg.WorktreeBasePath == "" {
		cfg.WorktreeBasePath = "~/worktrees"
	}
	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// ResolvedWorktreeBase expands a leading ~ in the worktree base path.
func (c *Config) ResolvedWorktreeBase() string {
	return expandHome(c.WorktreeBasePath)
}

// ResolveDataDir returns the directory for the state database, log file and
// instance lock. An explicit configDir wins; otherwise XDG data conventions.
func ResolveDataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share", "arbor")
	}
	return filepath.Join(home, ".local", "share", "arbor")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "arbor", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "arbor", "config.yaml")
	}

	return filepath.Join(home, ".config", "arbor", "config.yaml")
}
