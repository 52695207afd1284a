// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"arbor/internal/config"
	"arbor/internal/git"
	"arbor/internal/instance"
	"arbor/internal/logging"
	"arbor/internal/orchestrator"
	"arbor/internal/process"
	"arbor/internal/state"
)

// Engine is the slice of the orchestrator the headless commands drive.
// *orchestrator.Orchestrator satisfies it; tests substitute fakes.
type Engine interface {
	LoadRepositories(ctx context.Context) error
	AddRepository(ctx context.Context, path string) error
	RemoveRepository(ctx context.Context, id string) error
	RenameRepository(id, name string) error
	SelectRepository(ctx context.Context, id string) error
	RefreshWorktrees(ctx context.Context) error
	CreateWorktree(ctx context.Context, name, branch string, createBranch bool, baseBranch string, copyPatterns []string) error
	RecreateBranchAndWorktree(ctx context.Context, name, branch, baseBranch string, copyPatterns []string) error
	RemoveWorktree(ctx context.Context, worktree git.Worktree, force, deleteBranch bool) error
	CompleteWorktree(ctx context.Context, worktree git.Worktree, opts orchestrator.CompleteOptions) error
	PruneWorktrees(ctx context.Context) error
	BranchExists(name string) bool
	DefaultBaseBranch() string
	State() orchestrator.Snapshot
	Status(worktreePath string) (git.Status, bool)
}

// Connector builds an Engine plus its teardown for one command invocation.
type Connector func() (Engine, func(), error)

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, configDir string) *App {
	return buildApp(version, defaultConnector(configDir))
}

func buildApp(version string, connect Connector) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: arbor version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	repoGroup := app.AddGroup("repo", "Manage tracked repositories")
	RegisterRepoCommands(repoGroup, connect)

	wtGroup := app.AddGroup("wt", "Manage git worktrees")
	RegisterWorktreeCommands(wtGroup, connect)

	return app
}

// defaultConnector wires a full local engine: config, instance lock, store,
// git gateway. The lock is held for the whole command so a headless mutation
// never races a running TUI on the same worktree set.
func defaultConnector(configDir string) Connector {
	return func() (Engine, func(), error) {
		var cfg config.Config
		var err error
		if configDir != "" {
			cfg, err = config.LoadFromDir(configDir)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, nil, err
		}

		dataDir := config.ResolveDataDir(configDir)
		fl, err := instance.Lock(dataDir)
		if err != nil {
			return nil, nil, err
		}

		store, err := state.Open(dataDir)
		if err != nil {
			instance.Cleanup(fl)
			return nil, nil, err
		}

		logger := logging.NopLogger()
		gateway := git.NewGateway(process.NewExecRunner(logger), logger)
		eng := orchestrator.New(gateway, store, nil, orchestrator.Options{
			WorktreeBase:        cfg.ResolvedWorktreeBase(),
			DefaultCopyPatterns: cfg.CopyPatterns,
		}, logger)

		cleanup := func() {
			_ = store.Close()
			instance.Cleanup(fl)
		}
		return eng, cleanup, nil
	}
}

// withEngine connects, loads the tracked repositories, selects the one
// containing the current working directory, and runs fn. Errors print to
// stderr and exit non-zero, matching the per-command error handling contract.
func withEngine(connect Connector, fn func(eng Engine) error) error {
	eng, cleanup, err := connect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := eng.LoadRepositories(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	selectForCwd(eng)

	if err := fn(eng); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return nil
}

// selectForCwd prefers the tracked repository whose root contains the
// current working directory over the default first-entry selection.
func selectForCwd(eng Engine) {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	for _, repo := range eng.State().Repositories {
		if cwd == repo.Path || strings.HasPrefix(cwd, repo.Path+string(os.PathSeparator)) {
			_ = eng.SelectRepository(context.Background(), repo.ID)
			return
		}
	}
}

// findWorktree resolves a user-supplied name to a published worktree,
// matching by display name first, then by exact path.
func findWorktree(eng Engine, name string) (git.Worktree, error) {
	for _, w := range eng.State().Worktrees {
		if w.Name() == name || w.Path == name {
			return w, nil
		}
	}
	return git.Worktree{}, fmt.Errorf("no worktree named %q", name)
}

// findRepository resolves a user-supplied name or path to a tracked repository.
func findRepository(eng Engine, name string) (state.Repository, error) {
	for _, r := range eng.State().Repositories {
		if r.Name == name || r.Path == name {
			return r, nil
		}
	}
	return state.Repository{}, fmt.Errorf("no tracked repository %q", name)
}
