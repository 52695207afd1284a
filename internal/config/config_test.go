package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFullConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `
worktree_base_path: /srv/worktrees
default_editor: code
copy_patterns:
  - .env
  - config/local/
theme: latte
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.WorktreeBasePath != "/srv/worktrees" {
		t.Errorf("WorktreeBasePath: got %q, want %q", cfg.WorktreeBasePath, "/srv/worktrees")
	}
	if cfg.DefaultEditor != "code" {
		t.Errorf("DefaultEditor: got %q, want %q", cfg.DefaultEditor, "code")
	}
	if len(cfg.CopyPatterns) != 2 || cfg.CopyPatterns[0] != ".env" {
		t.Errorf("CopyPatterns: got %v", cfg.CopyPatterns)
	}
	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "latte")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed for missing file: %v", err)
	}

	want := DefaultConfig()
	if cfg.WorktreeBasePath != want.WorktreeBasePath || cfg.Theme != want.Theme || cfg.LogLevel != want.LogLevel {
		t.Errorf("got %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadInvalidYAMLFallsBackToDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("worktree_base_path: [broken"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
	if cfg.WorktreeBasePath != DefaultConfig().WorktreeBasePath {
		t.Errorf("invalid YAML did not fall back to defaults: %+v", cfg)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("default_editor: zed\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.DefaultEditor != "zed" {
		t.Errorf("DefaultEditor: got %q, want %q", cfg.DefaultEditor, "zed")
	}
	if cfg.WorktreeBasePath != "~/worktrees" {
		t.Errorf("WorktreeBasePath default lost: %q", cfg.WorktreeBasePath)
	}
}

func TestResolvedWorktreeBaseExpandsHome(t *testing.T) {
	cfg := Config{WorktreeBasePath: "~/worktrees"}

	got := cfg.ResolvedWorktreeBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got != filepath.Join(home, "worktrees") {
		t.Errorf("ResolvedWorktreeBase() = %q", got)
	}
}

func TestResolveDataDirExplicitWins(t *testing.T) {
	if got := ResolveDataDir("/custom/data"); got != "/custom/data" {
		t.Errorf("ResolveDataDir(explicit) = %q", got)
	}
}

func TestResolveDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if got := ResolveDataDir(""); got != "/xdg/data/arbor" {
		t.Errorf("ResolveDataDir() = %q, want /xdg/data/arbor", got)
	}
}
