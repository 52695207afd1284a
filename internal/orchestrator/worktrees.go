// pattern: Imperative Shell

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"arbor/internal/git"
	"arbor/internal/scaffold"
	"arbor/internal/state"
)

// RefreshWorktrees re-derives the worktree list for the selected repository
// from git, enriches it with stored base-branch associations, republishes it
// only when it actually changed, recomputes the watched-path set, and fans out
// a status refresh. No selection is a no-op.
func (o *Orchestrator) RefreshWorktrees(ctx context.Context) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return nil
	}

	o.beginLoading()
	defer o.endLoading()

	worktrees, err := o.git.ListWorktrees(repo.Path)
	if err != nil {
		return o.reportError(err)
	}
	for i := range worktrees {
		if base, ok, err := o.store.BaseBranch(worktrees[i].Path); err == nil && ok {
			worktrees[i].BaseBranch = base
		}
	}

	o.mu.Lock()
	stale := o.selected == nil || o.selected.ID != repo.ID
	changed := !stale && !slices.Equal(o.worktrees, worktrees)
	if changed {
		o.worktrees = worktrees
	}
	o.mu.Unlock()
	if stale {
		return nil
	}
	if changed {
		o.notifyChange()
	}

	o.updateWatchedPaths(repo)
	o.statuses.RefreshAll(worktrees)
	return nil
}

// RefreshStatuses recomputes every worktree's status without re-listing.
func (o *Orchestrator) RefreshStatuses() {
	o.statuses.RefreshAll(o.currentWorktrees())
}

// updateWatchedPaths points the watcher at the worktree base directory and
// the repository's worktree metadata directory. The watcher filters out
// paths that do not exist.
func (o *Orchestrator) updateWatchedPaths(repo state.Repository) {
	if o.watcher == nil {
		return
	}
	paths := map[string]struct{}{
		filepath.Join(repo.Path, ".git", "worktrees"): {},
	}
	if o.opts.WorktreeBase != "" {
		paths[o.opts.WorktreeBase] = struct{}{}
	}
	o.watcher.UpdateWatchedPaths(paths)
}

// HandleFileSystemChange is the watcher callback. An empty changed set means
// the watcher lost track of what happened, so the safe answer is a full
// refresh. A hit under .git/worktrees means the worktree set itself may have
// changed; anything else is assumed to be file-content churn and only
// statuses are recomputed.
func (o *Orchestrator) HandleFileSystemChange(changed map[string]struct{}) {
	repo, ok := o.selectedRepo()
	if !ok {
		return
	}

	full := len(changed) == 0
	if !full {
		meta := filepath.Join(repo.Path, ".git", "worktrees")
		for path := range changed {
			if path == meta || strings.HasPrefix(path, meta+string(os.PathSeparator)) {
				full = true
				break
			}
		}
	}

	if full {
		o.logger.Debug("filesystem change triggers full refresh", "paths", len(changed))
		if err := o.RefreshWorktrees(context.Background()); err != nil {
			o.logger.Warn("watcher-triggered refresh failed", "error", err)
		}
		return
	}

	o.logger.Debug("filesystem change triggers status refresh", "paths", len(changed))
	o.RefreshStatuses()
}

// CreateWorktree creates <WorktreeBase>/<repoName>/<name> checked out to
// branch, records the base-branch association, and scaffolds copy patterns
// from the repository root. Any failing step aborts the remaining ones.
func (o *Orchestrator) CreateWorktree(ctx context.Context, name, branch string, createBranch bool, baseBranch string, copyPatterns []string) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}
	if strings.TrimSpace(name) == "" {
		return o.reportError(ErrNameRequired)
	}
	if strings.TrimSpace(branch) == "" {
		return o.reportError(ErrBranchRequired)
	}

	parent := filepath.Join(o.opts.WorktreeBase, repo.Name)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return o.reportError(err)
	}
	worktreePath := filepath.Join(parent, name)

	if err := o.git.CreateWorktree(repo.Path, worktreePath, branch, createBranch, baseBranch); err != nil {
		return o.reportError(err)
	}
	o.logger.Info("worktree created", "path", worktreePath, "branch", branch, "base", baseBranch)

	if baseBranch != "" {
		if err := o.store.SetBaseBranch(worktreePath, baseBranch); err != nil {
			o.logger.Warn("failed to record base branch", "path", worktreePath, "error", err)
		}
		if err := o.store.SetPreferredBaseBranch(repo.ID, baseBranch); err != nil {
			o.logger.Warn("failed to record preferred base branch", "error", err)
		}
	}

	if len(copyPatterns) == 0 {
		copyPatterns = o.effectiveCopyPatterns(repo.ID)
	}
	if len(copyPatterns) > 0 {
		o.scaffoldInto(copyPatterns, repo.Path, worktreePath)
	}

	o.refreshAfterMutation(ctx, repo)
	return nil
}

// scaffoldInto copies the pattern set and logs the per-pattern outcome.
// Pattern failures do not fail the creation; the worktree already exists.
func (o *Orchestrator) scaffoldInto(patterns []string, sourceRoot, destRoot string) {
	result := scaffold.Copy(patterns, sourceRoot, destRoot)
	o.logger.Info("scaffolding finished",
		"copied", len(result.Copied), "skipped", len(result.Skipped), "failed", len(result.Failed))
	for _, f := range result.Failed {
		o.logger.Warn("scaffold pattern failed", "pattern", f.Pattern, "error", f.Message)
	}
}

// BranchExists reports whether the branch already exists in the selected
// repository. Non-throwing; no selection reads as false.
func (o *Orchestrator) BranchExists(name string) bool {
	repo, ok := o.selectedRepo()
	if !ok {
		return false
	}
	return o.git.BranchExists(repo.Path, name)
}

// RecreateBranchAndWorktree force-deletes an existing branch and creates a
// fresh worktree on a new branch of the same name. This is the only path that
// destroys a branch to make room; callers must have confirmed with the user.
func (o *Orchestrator) RecreateBranchAndWorktree(ctx context.Context, name, branch, baseBranch string, copyPatterns []string) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}
	if err := o.git.DeleteBranch(repo.Path, branch, true); err != nil {
		return o.reportError(err)
	}
	o.logger.Info("branch force-deleted for recreate", "branch", branch)
	return o.CreateWorktree(ctx, name, branch, true, baseBranch, copyPatterns)
}

// RemoveWorktree removes a worktree and its stored base-branch association.
// The main worktree is refused before any I/O. Local branch deletion, when
// requested, is best-effort and never rolls back the completed removal.
func (o *Orchestrator) RemoveWorktree(ctx context.Context, worktree git.Worktree, force, deleteBranch bool) error {
	if worktree.IsMain {
		return o.reportError(git.ErrCannotRemoveMain)
	}
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}

	if err := o.git.RemoveWorktree(repo.Path, worktree.Path, force); err != nil {
		return o.reportError(err)
	}
	if err := o.store.ClearBaseBranch(worktree.Path); err != nil {
		o.logger.Warn("failed to clear base branch", "path", worktree.Path, "error", err)
	}

	if deleteBranch && worktree.Branch != "" && worktree.Branch != git.DetachedBranch {
		if err := o.git.DeleteBranch(repo.Path, worktree.Branch, force); err != nil {
			o.logger.Warn("branch deletion failed after worktree removal", "branch", worktree.Branch, "error", err)
		}
	}

	o.logger.Info("worktree removed", "path", worktree.Path)
	o.refreshAfterMutation(ctx, repo)
	return nil
}

// CompleteWorktree runs the merge/pull/remove/cleanup sequence. Merge and
// removal failures abort the run; branch cleanup failures are swallowed so
// the already-removed worktree is not obscured by a cleanup hiccup.
func (o *Orchestrator) CompleteWorktree(ctx context.Context, worktree git.Worktree, opts CompleteOptions) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}

	if opts.MergeIntoTarget {
		if err := o.git.MergeBranch(repo.Path, worktree.Branch, opts.TargetBranch); err != nil {
			return o.reportError(err)
		}
		o.logger.Info("branch merged", "source", worktree.Branch, "target", opts.TargetBranch)
	}

	if opts.PullTargetFirst {
		if target, found := o.worktreeForBranch(opts.TargetBranch); found {
			if err := o.git.Pull(target.Path); err != nil {
				return o.reportError(err)
			}
		} else {
			o.logger.Debug("no worktree holds target branch, pull skipped", "target", opts.TargetBranch)
		}
	}

	if err := o.git.RemoveWorktree(repo.Path, worktree.Path, opts.Force); err != nil {
		return o.reportError(err)
	}
	if err := o.store.ClearBaseBranch(worktree.Path); err != nil {
		o.logger.Warn("failed to clear base branch", "path", worktree.Path, "error", err)
	}

	if opts.DeleteLocalBranch && worktree.Branch != "" && worktree.Branch != git.DetachedBranch {
		if err := o.git.DeleteBranch(repo.Path, worktree.Branch, opts.Force); err != nil {
			o.logger.Warn("local branch deletion failed", "branch", worktree.Branch, "error", err)
		}
	}
	if opts.DeleteRemoteBranch && worktree.Branch != "" {
		if err := o.git.DeleteRemoteBranch(repo.Path, worktree.Branch); err != nil {
			o.logger.Warn("remote branch deletion failed", "branch", worktree.Branch, "error", err)
		}
	}

	o.logger.Info("worktree completed", "path", worktree.Path, "branch", worktree.Branch)
	o.refreshAfterMutation(ctx, repo)
	return nil
}

// LockWorktree marks a worktree's administrative files as locked.
func (o *Orchestrator) LockWorktree(ctx context.Context, worktree git.Worktree) error {
	return o.simpleWorktreeOp(ctx, worktree, o.git.LockWorktree)
}

// UnlockWorktree removes the lock again.
func (o *Orchestrator) UnlockWorktree(ctx context.Context, worktree git.Worktree) error {
	return o.simpleWorktreeOp(ctx, worktree, o.git.UnlockWorktree)
}

func (o *Orchestrator) simpleWorktreeOp(ctx context.Context, worktree git.Worktree, op func(repoPath, worktreePath string) error) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}
	if err := op(repo.Path, worktree.Path); err != nil {
		return o.reportError(err)
	}
	return o.RefreshWorktrees(ctx)
}

// PruneWorktrees drops stale worktree metadata and refreshes.
func (o *Orchestrator) PruneWorktrees(ctx context.Context) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}
	if err := o.git.PruneWorktrees(repo.Path); err != nil {
		return o.reportError(err)
	}
	o.logger.Info("worktrees pruned", "repo", repo.Name)
	return o.RefreshWorktrees(ctx)
}

// Push pushes the worktree's branch, setting upstream tracking when the live
// status shows none, then refreshes just that worktree's status.
func (o *Orchestrator) Push(ctx context.Context, worktree git.Worktree) error {
	live := o.git.WorktreeStatus(worktree.Path)
	if err := o.git.Push(worktree.Path, !live.HasRemote); err != nil {
		return o.reportError(err)
	}
	o.logger.Info("pushed", "path", worktree.Path, "setUpstream", !live.HasRemote)
	o.statuses.Refresh(worktree)
	return nil
}

// CreatePR ensures the branch is pushed, creates a pull request, refreshes
// the worktree's status, and opens the returned URL.
func (o *Orchestrator) CreatePR(ctx context.Context, worktree git.Worktree, title, body, baseBranch string) (string, error) {
	live := o.git.WorktreeStatus(worktree.Path)
	if live.Ahead > 0 || !live.HasRemote {
		if err := o.git.Push(worktree.Path, !live.HasRemote); err != nil {
			return "", o.reportError(err)
		}
	}

	url, err := o.git.CreatePR(worktree.Path, title, body, baseBranch)
	if err != nil {
		return "", o.reportError(err)
	}
	o.logger.Info("pull request created", "path", worktree.Path, "url", url)

	o.statuses.Refresh(worktree)
	if o.opts.OpenURL != nil && url != "" {
		o.opts.OpenURL(url)
	}
	return url, nil
}

// MergeBranch merges the worktree's branch into target and refreshes the
// whole worktree list; the merge can move ahead/behind counts for every
// worktree tracking the target.
func (o *Orchestrator) MergeBranch(ctx context.Context, worktree git.Worktree, target string) error {
	repo, ok := o.selectedRepo()
	if !ok {
		return o.reportError(ErrNoRepositorySelected)
	}
	if err := o.git.MergeBranch(repo.Path, worktree.Branch, target); err != nil {
		return o.reportError(err)
	}
	o.logger.Info("branch merged", "source", worktree.Branch, "target", target)
	return o.RefreshWorktrees(ctx)
}

// worktreeForBranch finds the published worktree currently on branch.
func (o *Orchestrator) worktreeForBranch(branch string) (git.Worktree, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, w := range o.worktrees {
		if w.Branch == branch {
			return w, true
		}
	}
	return git.Worktree{}, false
}

// refreshAfterMutation re-derives both published lists after a mutation.
func (o *Orchestrator) refreshAfterMutation(ctx context.Context, repo state.Repository) {
	if err := o.RefreshWorktrees(ctx); err != nil {
		o.logger.Warn("worktree refresh after mutation failed", "error", err)
	}
	o.refreshBranches(repo)
}
