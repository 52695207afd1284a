// pattern: Functional Core

package git

import (
	"path/filepath"
	"sort"
	"strings"
)

// parseWorktreeList parses `git worktree list --porcelain` output into
// worktree entries. Records are separated by a `worktree <path>` line,
// followed by optional attribute lines:
//
//	worktree /path/to/checkout
//	HEAD abc123def456
//	branch refs/heads/feature-x
//	detached
//	locked [reason]
//	prunable [reason]
//
// Bare entries are dropped. repoRoot decides which entry is the main
// worktree, by standardized path equality.
func parseWorktreeList(output, repoRoot string) []Worktree {
	var (
		worktrees []Worktree
		current   *Worktree
	)

	flush := func() {
		if current != nil && current.Path != "" {
			worktrees = append(worktrees, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			path := filepath.FromSlash(strings.TrimPrefix(line, "worktree "))
			current = &Worktree{
				Path:   path,
				Branch: DetachedBranch,
				IsMain: standardizePath(path) == standardizePath(repoRoot),
			}
		case current == nil:
			// Attribute line without a record header; ignore.
		case strings.HasPrefix(line, "HEAD "):
			current.CommitHash = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "detached":
			current.Branch = DetachedBranch
		case line == "locked" || strings.HasPrefix(line, "locked "):
			current.IsLocked = true
		case line == "prunable" || strings.HasPrefix(line, "prunable "):
			current.IsPrunable = true
		case line == "bare":
			current.Path = ""
		}
	}
	flush()

	return worktrees
}

// sortForDisplay orders the main worktree first, then the rest
// case-insensitively by name. This ordering is a presentation contract the
// rest of arbor relies on; git itself guarantees no ordering.
func sortForDisplay(worktrees []Worktree) {
	sort.SliceStable(worktrees, func(i, j int) bool {
		a, b := worktrees[i], worktrees[j]
		if a.IsMain != b.IsMain {
			return a.IsMain
		}
		return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
	})
}

// standardizePath normalizes a path for identity comparison. Symlinks are
// resolved when possible so /var vs /private/var style aliases compare equal.
func standardizePath(path string) string {
	cleaned := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		return resolved
	}
	return cleaned
}
