// pattern: Imperative Shell

package git

import (
	"strings"

	"github.com/rotisserie/eris"

	"arbor/internal/logging"
	"arbor/internal/process"
)

// Gateway wraps git and forge CLI invocations into typed operations. It is
// stateless; all repository context is passed per call so one gateway can
// serve every tracked repository.
type Gateway struct {
	runner process.Runner
	logger *logging.ScopedLogger

	gitExe   string
	forgeExe string
}

// NewGateway creates a gateway that shells out to `git` and `gh`.
func NewGateway(runner process.Runner, logger *logging.ScopedLogger) *Gateway {
	return &Gateway{
		runner:   runner,
		logger:   logger,
		gitExe:   "git",
		forgeExe: "gh",
	}
}

// git runs a git subcommand in dir. A spawn failure is wrapped; a non-zero
// exit is returned as a normal result for the caller to classify.
func (g *Gateway) git(dir string, args ...string) (process.Result, error) {
	res, err := g.runner.Run(g.gitExe, args, dir)
	if err != nil {
		return res, eris.Wrapf(err, "failed to run git %s", firstArg(args))
	}
	return res, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// RepositoryRoot resolves path to the root of its working tree.
func (g *Gateway) RepositoryRoot(path string) (string, error) {
	res, err := g.git(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", eris.Wrapf(ErrNotARepository, "%s", path)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ListBranches returns local branch names, excluding HEAD pseudo-entries.
func (g *Gateway) ListBranches(repoPath string) ([]string, error) {
	res, err := g.git(repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, commandFailed(res.Stdout, res.Stderr)
	}

	branches := []string{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.Contains(name, "HEAD") {
			continue
		}
		branches = append(branches, name)
	}
	return branches, nil
}

// BranchExists reports whether a local branch exists. Non-throwing: any
// failure to query counts as "does not exist".
func (g *Gateway) BranchExists(repoPath, name string) bool {
	res, err := g.git(repoPath, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil && res.ExitCode == 0
}

// DeleteBranch deletes a local branch, forcibly when force is set.
func (g *Gateway) DeleteBranch(repoPath, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	res, err := g.git(repoPath, "branch", flag, name)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	g.logger.Info("deleted branch", "repo", repoPath, "branch", name, "force", force)
	return nil
}

// DeleteRemoteBranch deletes a branch on the origin remote.
func (g *Gateway) DeleteRemoteBranch(repoPath, branch string) error {
	res, err := g.git(repoPath, "push", "origin", "--delete", branch)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	g.logger.Info("deleted remote branch", "repo", repoPath, "branch", branch)
	return nil
}

// HasRemoteBranch reports whether origin has a branch with the given name.
func (g *Gateway) HasRemoteBranch(repoPath, branch string) bool {
	res, err := g.git(repoPath, "ls-remote", "--exit-code", "--heads", "origin", branch)
	return err == nil && res.ExitCode == 0
}

// ListWorktrees lists the repository's worktrees in display order: main
// worktree first, then the rest case-insensitively by name.
func (g *Gateway) ListWorktrees(repoPath string) ([]Worktree, error) {
	root, err := g.RepositoryRoot(repoPath)
	if err != nil {
		return nil, err
	}

	res, err := g.git(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, commandFailed(res.Stdout, res.Stderr)
	}

	worktrees := parseWorktreeList(res.Stdout, root)
	sortForDisplay(worktrees)
	return worktrees, nil
}

// CreateWorktree adds a worktree at worktreePath checked out to branch.
// With createBranch the branch is created (from baseBranch when given);
// otherwise the existing branch is checked out. Conflicting names surface
// as ErrBranchExists or ErrWorktreeExists.
func (g *Gateway) CreateWorktree(repoPath, worktreePath, branch string, createBranch bool, baseBranch string) error {
	args := []string{"worktree", "add"}
	if createBranch {
		args = append(args, "-b", branch, worktreePath)
		if baseBranch != "" {
			args = append(args, baseBranch)
		}
	} else {
		args = append(args, worktreePath, branch)
	}

	res, err := g.git(repoPath, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return classifyCreateFailure(res.Stdout, res.Stderr)
	}
	g.logger.Info("created worktree",
		"repo", repoPath, "path", worktreePath, "branch", branch,
		"new_branch", createBranch, "base", baseBranch)
	return nil
}

// RemoveWorktree removes the worktree at worktreePath.
func (g *Gateway) RemoveWorktree(repoPath, worktreePath string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreePath)

	res, err := g.git(repoPath, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	g.logger.Info("removed worktree", "repo", repoPath, "path", worktreePath, "force", force)
	return nil
}

// LockWorktree locks a worktree against pruning and moving.
func (g *Gateway) LockWorktree(repoPath, worktreePath string) error {
	return g.simpleWorktreeOp(repoPath, "lock", worktreePath)
}

// UnlockWorktree releases a worktree lock.
func (g *Gateway) UnlockWorktree(repoPath, worktreePath string) error {
	return g.simpleWorktreeOp(repoPath, "unlock", worktreePath)
}

func (g *Gateway) simpleWorktreeOp(repoPath, op, worktreePath string) error {
	res, err := g.git(repoPath, "worktree", op, worktreePath)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	return nil
}

// PruneWorktrees drops worktree metadata whose checkouts are gone.
func (g *Gateway) PruneWorktrees(repoPath string) error {
	res, err := g.git(repoPath, "worktree", "prune")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	return nil
}

// Push pushes the worktree's current branch. With setUpstream the current
// HEAD is pushed to origin with tracking configured.
func (g *Gateway) Push(worktreePath string, setUpstream bool) error {
	args := []string{"push"}
	if setUpstream {
		args = []string{"push", "-u", "origin", "HEAD"}
	}
	res, err := g.git(worktreePath, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	g.logger.Info("pushed", "path", worktreePath, "set_upstream", setUpstream)
	return nil
}

// Pull pulls the worktree's current branch from its upstream.
func (g *Gateway) Pull(worktreePath string) error {
	res, err := g.git(worktreePath, "pull")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	return nil
}

// MergeBranch checks out target in the repository root and merges source
// into it. A conflicted merge surfaces as CommandError and the repository is
// left exactly as git left it; arbor never auto-aborts a merge.
func (g *Gateway) MergeBranch(repoPath, source, target string) error {
	res, err := g.git(repoPath, "checkout", target)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}

	res, err = g.git(repoPath, "merge", source)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandFailed(res.Stdout, res.Stderr)
	}
	g.logger.Info("merged branch", "repo", repoPath, "source", source, "target", target)
	return nil
}
