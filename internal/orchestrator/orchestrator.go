// pattern: Imperative Shell

// Package orchestrator owns the published repository/worktree/branch state and
// serializes every mutating git operation against it. All other components are
// stateless or own only private caches; the presentation layer renders the
// snapshot this package publishes and invokes its use cases.
package orchestrator

import (
	"errors"
	"sync"

	"arbor/internal/git"
	"arbor/internal/logging"
	"arbor/internal/scaffold"
	"arbor/internal/state"
	"arbor/internal/status"
)

// GitService abstracts the git/forge gateway for testing.
type GitService interface {
	RepositoryRoot(path string) (string, error)
	ListBranches(repoPath string) ([]string, error)
	BranchExists(repoPath, name string) bool
	DeleteBranch(repoPath, name string, force bool) error
	DeleteRemoteBranch(repoPath, branch string) error
	ListWorktrees(repoPath string) ([]git.Worktree, error)
	CreateWorktree(repoPath, worktreePath, branch string, createBranch bool, baseBranch string) error
	RemoveWorktree(repoPath, worktreePath string, force bool) error
	LockWorktree(repoPath, worktreePath string) error
	UnlockWorktree(repoPath, worktreePath string) error
	PruneWorktrees(repoPath string) error
	WorktreeStatus(worktreePath string) git.Status
	Push(worktreePath string, setUpstream bool) error
	Pull(worktreePath string) error
	CreatePR(worktreePath, title, body, baseBranch string) (string, error)
	MergeBranch(repoPath, source, target string) error
}

// StateStore abstracts the persistence layer for testing.
type StateStore interface {
	ListRepositories() ([]state.Repository, error)
	AddRepository(path, name string) (state.Repository, error)
	RemoveRepository(id string) error
	RenameRepository(id, name string) error
	BaseBranch(worktreePath string) (string, bool, error)
	SetBaseBranch(worktreePath, baseBranch string) error
	ClearBaseBranch(worktreePath string) error
	PreferredBaseBranch(repositoryID string) (string, bool, error)
	SetPreferredBaseBranch(repositoryID, branch string) error
	CopyPatternOverride(repositoryID string) ([]string, bool, error)
}

// PathWatcher abstracts the filesystem change watcher for testing.
type PathWatcher interface {
	SetChangeHandler(fn func(changed map[string]struct{}))
	UpdateWatchedPaths(paths map[string]struct{})
}

// Validation errors raised before any I/O is attempted.
var (
	ErrNoRepositorySelected = errors.New("no repository selected")
	ErrRepositoryTracked    = errors.New("repository is already tracked")
	ErrNameRequired         = errors.New("worktree name is required")
	ErrBranchRequired       = errors.New("branch name is required")
)

// CompleteOptions is the plan for a completeWorktree run, built fresh per call.
type CompleteOptions struct {
	TargetBranch       string
	MergeIntoTarget    bool
	PullTargetFirst    bool
	DeleteLocalBranch  bool
	DeleteRemoteBranch bool
	Force              bool
}

// Options carries the environment the orchestrator operates in.
type Options struct {
	// WorktreeBase is the directory new worktrees are created under,
	// as <WorktreeBase>/<repoName>/<worktreeName>.
	WorktreeBase string
	// DefaultCopyPatterns is the global scaffolding pattern set, used when a
	// repository has no override and the caller passes none.
	DefaultCopyPatterns []string
	// OpenURL is invoked with the PR URL after successful PR creation.
	// Optional; nil disables the side effect.
	OpenURL func(url string)
}

// Snapshot is a consistent copy of the published state for rendering.
type Snapshot struct {
	Repositories []state.Repository
	Selected     *state.Repository
	Worktrees    []git.Worktree
	Branches     []string
	IsLoading    bool
	LastError    string
	HasError     bool
}

// Orchestrator serializes worktree lifecycle operations for the selected
// repository and keeps the published view reconciled with disk.
type Orchestrator struct {
	git      GitService
	store    StateStore
	watcher  PathWatcher
	statuses *status.Cache
	opts     Options
	logger   *logging.ScopedLogger

	mu           sync.RWMutex // protects the published fields below
	repositories []state.Repository
	selected     *state.Repository
	worktrees    []git.Worktree
	branches     []string
	loading      int // nesting count; >0 means a refresh is in flight
	lastError    string
	hasError     bool

	onChange func() // called after published state changes
}

// New wires an orchestrator over the given collaborators. watcher may be nil
// (headless one-shot commands need no change notifications).
func New(gitSvc GitService, store StateStore, watcher PathWatcher, opts Options, logger *logging.ScopedLogger) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	o := &Orchestrator{
		git:     gitSvc,
		store:   store,
		watcher: watcher,
		opts:    opts,
		logger:  logger,
	}
	o.statuses = status.NewCache(gitSvc.WorktreeStatus, logger)
	o.statuses.SetOnChange(func(string) { o.notifyChange() })
	if watcher != nil {
		watcher.SetChangeHandler(o.HandleFileSystemChange)
	}
	return o
}

// OnChange registers a callback invoked after any published-state change.
// Must be set before concurrent use.
func (o *Orchestrator) OnChange(fn func()) {
	o.onChange = fn
}

func (o *Orchestrator) notifyChange() {
	if o.onChange != nil {
		o.onChange()
	}
}

// State returns a copy of the published state.
func (o *Orchestrator) State() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := Snapshot{
		Repositories: append([]state.Repository(nil), o.repositories...),
		Worktrees:    append([]git.Worktree(nil), o.worktrees...),
		Branches:     append([]string(nil), o.branches...),
		IsLoading:    o.loading > 0,
		LastError:    o.lastError,
		HasError:     o.hasError,
	}
	if o.selected != nil {
		sel := *o.selected
		snap.Selected = &sel
	}
	return snap
}

// Status returns the cached status for a worktree path, if known.
func (o *Orchestrator) Status(worktreePath string) (git.Status, bool) {
	return o.statuses.Get(worktreePath)
}

// ClearError resets the latest-error surface. A new error overwrites the
// previous one; there is no error history.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	o.lastError = ""
	o.hasError = false
	o.mu.Unlock()
	o.notifyChange()
}

// reportError records err as the latest user-visible error and returns it.
func (o *Orchestrator) reportError(err error) error {
	o.logger.Error("operation failed", "error", err)
	o.mu.Lock()
	o.lastError = err.Error()
	o.hasError = true
	o.mu.Unlock()
	o.notifyChange()
	return err
}

func (o *Orchestrator) beginLoading() {
	o.mu.Lock()
	o.loading++
	o.mu.Unlock()
	o.notifyChange()
}

func (o *Orchestrator) endLoading() {
	o.mu.Lock()
	o.loading--
	o.mu.Unlock()
	o.notifyChange()
}

// selectedRepo returns a copy of the current selection.
func (o *Orchestrator) selectedRepo() (state.Repository, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.selected == nil {
		return state.Repository{}, false
	}
	return *o.selected, true
}

// currentWorktrees returns a copy of the published worktree list.
func (o *Orchestrator) currentWorktrees() []git.Worktree {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]git.Worktree(nil), o.worktrees...)
}

// PreviewCopyPatterns stats the effective scaffolding patterns against the
// selected repository's root, read-only, for a confirmation UI.
func (o *Orchestrator) PreviewCopyPatterns(patterns []string) []scaffold.PreviewEntry {
	repo, ok := o.selectedRepo()
	if !ok {
		return nil
	}
	if len(patterns) == 0 {
		patterns = o.effectiveCopyPatterns(repo.ID)
	}
	return scaffold.Preview(patterns, repo.Path)
}

// effectiveCopyPatterns resolves the pattern set for a repository: explicit
// per-repo override first (an empty override means "copy nothing"), then the
// global defaults.
func (o *Orchestrator) effectiveCopyPatterns(repositoryID string) []string {
	if patterns, ok, err := o.store.CopyPatternOverride(repositoryID); err == nil && ok {
		return patterns
	}
	return o.opts.DefaultCopyPatterns
}
