// pattern: Functional Core

package git

import (
	"fmt"
	"strings"
)

// DetachedBranch is the branch sentinel reported for worktrees whose HEAD is
// detached or unborn.
const DetachedBranch = "detached HEAD"

// Worktree is one entry of a repository's worktree set, re-derived on every
// listing; it is never persisted directly.
type Worktree struct {
	Path       string
	Branch     string
	IsMain     bool
	CommitHash string
	IsLocked   bool
	IsPrunable bool

	// BaseBranch is filled in by the orchestrator from the recorded
	// association for this path; git itself does not track it.
	BaseBranch string
}

// Name returns the display name of the worktree (its directory base name).
func (w Worktree) Name() string {
	if i := strings.LastIndexByte(w.Path, '/'); i >= 0 {
		return w.Path[i+1:]
	}
	return w.Path
}

// PRState is the lifecycle state of a pull request on the forge.
type PRState string

const (
	PROpen   PRState = "OPEN"
	PRClosed PRState = "CLOSED"
	PRMerged PRState = "MERGED"
)

// PRStatus describes the pull request associated with a branch, as reported
// by the forge CLI.
type PRStatus struct {
	Number int
	State  PRState
	URL    string
	Title  string
}

// IsMerged reports whether the PR has been merged.
func (p PRStatus) IsMerged() bool {
	return p.State == PRMerged
}

// Status is the derived per-worktree state shown in the UI. It is advisory:
// a failed sub-query degrades the affected field instead of failing the
// whole status fetch.
type Status struct {
	IsDirty   bool
	HasRemote bool
	Ahead     int
	Behind    int
	PR        *PRStatus
}

// Equal reports value equality, including the PR field. The status cache
// uses this to suppress no-op change notifications.
func (s Status) Equal(other Status) bool {
	if s.IsDirty != other.IsDirty || s.HasRemote != other.HasRemote ||
		s.Ahead != other.Ahead || s.Behind != other.Behind {
		return false
	}
	if (s.PR == nil) != (other.PR == nil) {
		return false
	}
	if s.PR != nil && *s.PR != *other.PR {
		return false
	}
	return true
}

// Summary renders the status as a short display line, e.g.
// "uncommitted changes · 2 unpushed · 1 behind · PR #10 open".
// A status with nothing to report renders as "Clean".
func (s Status) Summary() string {
	var parts []string
	if s.IsDirty {
		parts = append(parts, "uncommitted changes")
	}
	if s.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("%d unpushed", s.Ahead))
	}
	if s.Behind > 0 {
		parts = append(parts, fmt.Sprintf("%d behind", s.Behind))
	}
	if s.PR != nil {
		parts = append(parts, fmt.Sprintf("PR #%d %s", s.PR.Number, strings.ToLower(string(s.PR.State))))
	}
	if len(parts) == 0 {
		return "Clean"
	}
	return strings.Join(parts, " · ")
}
