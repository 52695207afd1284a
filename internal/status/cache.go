// pattern: Imperative Shell

package status

import (
	"sync"

	"arbor/internal/git"
	"arbor/internal/logging"
)

// QueryFunc computes a fresh status for a worktree path. In production it is
// Gateway.WorktreeStatus; tests substitute a scripted function.
type QueryFunc func(worktreePath string) git.Status

// Cache holds the last-known status per worktree path and suppresses
// notifications when a refresh produces a value-equal result, so a no-op
// refresh never causes UI churn.
type Cache struct {
	query  QueryFunc
	logger *logging.ScopedLogger

	mu       sync.Mutex
	entries  map[string]git.Status
	onChange func(worktreePath string)
}

// NewCache creates an empty status cache backed by query.
func NewCache(query QueryFunc, logger *logging.ScopedLogger) *Cache {
	return &Cache{
		query:   query,
		logger:  logger,
		entries: make(map[string]git.Status),
	}
}

// SetOnChange registers the callback invoked (outside the cache lock) when a
// refresh actually changed or cleared an entry.
func (c *Cache) SetOnChange(fn func(worktreePath string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Get returns the cached status for a worktree path, if any.
func (c *Cache) Get(worktreePath string) (git.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[worktreePath]
	return s, ok
}

// Refresh recomputes the status for one worktree. Prunable worktrees have a
// missing or corrupt checkout and are never queried; their entry is cleared
// instead.
func (c *Cache) Refresh(worktree git.Worktree) {
	if worktree.IsPrunable {
		c.clear(worktree.Path)
		return
	}

	fresh := c.query(worktree.Path)

	c.mu.Lock()
	cached, existed := c.entries[worktree.Path]
	if existed && cached.Equal(fresh) {
		c.mu.Unlock()
		return
	}
	c.entries[worktree.Path] = fresh
	notify := c.onChange
	c.mu.Unlock()

	c.logger.Debug("worktree status changed", "path", worktree.Path, "summary", fresh.Summary())
	if notify != nil {
		notify(worktree.Path)
	}
}

// RefreshAll refreshes every non-prunable worktree concurrently and waits
// for all refreshes to finish. Entries for paths no longer in the worktree
// set are dropped. There is no cross-worktree ordering; each status is
// independently re-derivable from disk.
func (c *Cache) RefreshAll(worktrees []git.Worktree) {
	c.dropStale(worktrees)

	var wg sync.WaitGroup
	for _, w := range worktrees {
		wg.Add(1)
		go func(w git.Worktree) {
			defer wg.Done()
			c.Refresh(w)
		}(w)
	}
	wg.Wait()
}

func (c *Cache) clear(worktreePath string) {
	c.mu.Lock()
	_, existed := c.entries[worktreePath]
	delete(c.entries, worktreePath)
	notify := c.onChange
	c.mu.Unlock()

	if existed && notify != nil {
		notify(worktreePath)
	}
}

func (c *Cache) dropStale(worktrees []git.Worktree) {
	live := make(map[string]struct{}, len(worktrees))
	for _, w := range worktrees {
		live[w.Path] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for path := range c.entries {
		if _, ok := live[path]; !ok {
			delete(c.entries, path)
		}
	}
}
