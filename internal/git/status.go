// pattern: Imperative Shell

package git

import (
	"strconv"
	"strings"
)

// WorktreeStatus derives the dirty/ahead/behind/PR state for the checkout at
// worktreePath. It never fails: each sub-query that errors degrades its field
// (no remote, zero counts, no PR) because status is advisory display state,
// not a precondition for other operations.
func (g *Gateway) WorktreeStatus(worktreePath string) Status {
	var status Status

	if res, err := g.git(worktreePath, "status", "--porcelain"); err == nil && res.ExitCode == 0 {
		status.IsDirty = strings.TrimSpace(res.Stdout) != ""
	}

	branch := g.currentBranch(worktreePath)
	if branch == "" {
		// Detached or unborn HEAD: no upstream to compare against.
		return status
	}

	status.HasRemote = g.hasUpstream(worktreePath, branch)
	if status.HasRemote {
		status.Behind, status.Ahead = g.aheadBehind(worktreePath, branch)
	}

	status.PR = g.prForBranch(worktreePath, branch)
	return status
}

// currentBranch returns the checked-out branch name, or "" when HEAD is
// detached or the query fails.
func (g *Gateway) currentBranch(worktreePath string) string {
	res, err := g.git(worktreePath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	name := strings.TrimSpace(res.Stdout)
	if name == "HEAD" {
		return ""
	}
	return name
}

// hasUpstream reports whether branch has a remote tracking branch.
func (g *Gateway) hasUpstream(worktreePath, branch string) bool {
	res, err := g.git(worktreePath, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	return err == nil && res.ExitCode == 0
}

// aheadBehind counts commits relative to the upstream tracking branch. The
// left-right count of `upstream...branch` prints "{behind}\t{ahead}".
func (g *Gateway) aheadBehind(worktreePath, branch string) (behind, ahead int) {
	spec := branch + "@{upstream}..." + branch
	res, err := g.git(worktreePath, "rev-list", "--left-right", "--count", spec)
	if err != nil || res.ExitCode != 0 {
		return 0, 0
	}

	fields := strings.Fields(strings.TrimSpace(res.Stdout))
	if len(fields) != 2 {
		return 0, 0
	}
	behind, _ = strconv.Atoi(fields[0])
	ahead, _ = strconv.Atoi(fields[1])
	return behind, ahead
}
