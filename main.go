// pattern: Imperative Shell
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"arbor/internal/cli"
	"arbor/internal/config"
	"arbor/internal/events"
	"arbor/internal/git"
	"arbor/internal/instance"
	"arbor/internal/logging"
	"arbor/internal/orchestrator"
	"arbor/internal/process"
	"arbor/internal/state"
	"arbor/internal/system"
	"arbor/internal/tui"
	"arbor/internal/watch"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/arbor)")
	logLevel := flag.String("log-level", "", "minimum log level (debug, info, warn, error)")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)

	if app.Execute(flag.Args()) {
		runTUI(*configDir, *logLevel)
	}
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// runTUI launches the interactive TUI.
func runTUI(configDir, logLevel string) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	dataDir := config.ResolveDataDir(configDir)

	// Acquire single-instance lock
	fl, err := instance.Lock(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer instance.Cleanup(fl)

	logManager, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, "arbor.log"),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("application starting")

	store, err := state.Open(dataDir)
	if err != nil {
		appLogger.Error("failed to open state store", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	watcher, err := watch.New(logManager.For("watch"))
	if err != nil {
		appLogger.Error("failed to start file watcher", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = watcher.Close() }()

	runner := process.NewExecRunner(logManager.For("process"))
	gateway := git.NewGateway(runner, logManager.For("git"))
	opener := system.NewExecOpener(runner, cfg.DefaultEditor, logManager.For("system"))

	orch := orchestrator.New(gateway, store, watcher, orchestrator.Options{
		WorktreeBase:        cfg.ResolvedWorktreeBase(),
		DefaultCopyPatterns: cfg.CopyPatterns,
		OpenURL:             func(url string) { _ = opener.OpenURL(url) },
	}, logManager.For("orchestrator"))

	model := tui.NewModel(orch, opener, logManager.Entries(), cfg.Theme)
	p := tea.NewProgram(model, tea.WithAltScreen())

	orch.OnChange(func() {
		p.Send(events.StateChangedMsg{})
	})

	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	appLogger.Info("application stopped")
}
