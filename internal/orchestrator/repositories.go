// pattern: Imperative Shell

package orchestrator

import (
	"context"
	"path/filepath"
	"sync"

	"arbor/internal/state"
)

// LoadRepositories reads the tracked repository list from the store and, when
// nothing is selected yet, selects the first entry (triggering its refresh).
func (o *Orchestrator) LoadRepositories(ctx context.Context) error {
	repos, err := o.store.ListRepositories()
	if err != nil {
		return o.reportError(err)
	}

	o.mu.Lock()
	o.repositories = repos
	needSelect := o.selected == nil && len(repos) > 0
	o.mu.Unlock()
	o.notifyChange()

	o.logger.Debug("repositories loaded", "count", len(repos))

	if needSelect {
		return o.SelectRepository(ctx, repos[0].ID)
	}
	return nil
}

// AddRepository resolves path to its git root and tracks it. Adding a path
// that resolves to an already-tracked root is rejected without touching the
// store, and the tracked list is left unchanged.
func (o *Orchestrator) AddRepository(ctx context.Context, path string) error {
	root, err := o.git.RepositoryRoot(path)
	if err != nil {
		return o.reportError(err)
	}

	o.mu.RLock()
	for _, r := range o.repositories {
		if r.Path == root {
			o.mu.RUnlock()
			return o.reportError(ErrRepositoryTracked)
		}
	}
	o.mu.RUnlock()

	repo, err := o.store.AddRepository(root, filepath.Base(root))
	if err != nil {
		return o.reportError(err)
	}

	o.mu.Lock()
	o.repositories = append(o.repositories, repo)
	o.mu.Unlock()
	o.notifyChange()

	o.logger.Info("repository added", "path", root, "name", repo.Name)
	return o.SelectRepository(ctx, repo.ID)
}

// RemoveRepository drops a repository from tracking. Worktrees on disk are
// untouched. If the removed repository was selected, selection falls back to
// the first remaining entry.
func (o *Orchestrator) RemoveRepository(ctx context.Context, id string) error {
	if err := o.store.RemoveRepository(id); err != nil {
		return o.reportError(err)
	}

	o.mu.Lock()
	kept := o.repositories[:0]
	for _, r := range o.repositories {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	o.repositories = kept
	wasSelected := o.selected != nil && o.selected.ID == id
	if wasSelected {
		o.selected = nil
		o.worktrees = nil
		o.branches = nil
	}
	var next string
	if wasSelected && len(kept) > 0 {
		next = kept[0].ID
	}
	o.mu.Unlock()
	o.notifyChange()

	o.logger.Info("repository removed", "id", id)

	if next != "" {
		return o.SelectRepository(ctx, next)
	}
	return nil
}

// RenameRepository changes a repository's display name.
func (o *Orchestrator) RenameRepository(id, name string) error {
	if name == "" {
		return o.reportError(ErrNameRequired)
	}
	if err := o.store.RenameRepository(id, name); err != nil {
		return o.reportError(err)
	}

	o.mu.Lock()
	for i := range o.repositories {
		if o.repositories[i].ID == id {
			o.repositories[i].Name = name
		}
	}
	if o.selected != nil && o.selected.ID == id {
		o.selected.Name = name
	}
	o.mu.Unlock()
	o.notifyChange()
	return nil
}

// SelectRepository makes the repository with the given id the active one and
// refreshes its worktree and branch lists. The two refreshes are independent
// and run concurrently.
func (o *Orchestrator) SelectRepository(ctx context.Context, id string) error {
	var repo state.Repository
	found := false

	o.mu.Lock()
	for _, r := range o.repositories {
		if r.ID == id {
			repo = r
			found = true
			break
		}
	}
	if found {
		sel := repo
		o.selected = &sel
		o.worktrees = nil
		o.branches = nil
	}
	o.mu.Unlock()

	if !found {
		return o.reportError(ErrNoRepositorySelected)
	}
	o.notifyChange()
	o.logger.Info("repository selected", "name", repo.Name, "path", repo.Path)

	var wg sync.WaitGroup
	var wtErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		wtErr = o.RefreshWorktrees(ctx)
	}()
	go func() {
		defer wg.Done()
		o.refreshBranches(repo)
	}()
	wg.Wait()
	return wtErr
}

// DefaultBaseBranch returns the preferred base branch recorded for the
// selected repository, or "main" when none is recorded.
func (o *Orchestrator) DefaultBaseBranch() string {
	repo, ok := o.selectedRepo()
	if !ok {
		return "main"
	}
	if branch, ok, err := o.store.PreferredBaseBranch(repo.ID); err == nil && ok {
		return branch
	}
	return "main"
}

func (o *Orchestrator) refreshBranches(repo state.Repository) {
	branches, err := o.git.ListBranches(repo.Path)
	if err != nil {
		o.logger.Warn("branch list refresh failed", "repo", repo.Name, "error", err)
		return
	}

	o.mu.Lock()
	stale := o.selected == nil || o.selected.ID != repo.ID
	if !stale {
		o.branches = branches
	}
	o.mu.Unlock()
	if !stale {
		o.notifyChange()
	}
}
