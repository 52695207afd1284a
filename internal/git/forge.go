// pattern: Imperative Shell

package git

import (
	"encoding/json"
	"strings"
)

// ghPullRequest mirrors the fields requested from `gh pr view --json`.
type ghPullRequest struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// prForBranch queries the forge CLI for the pull request attached to branch.
// Best-effort: any failure (gh missing, not authenticated, no PR for the
// branch, unparseable output) yields nil rather than an error, because PR
// state is decoration on the status line.
func (g *Gateway) prForBranch(worktreePath, branch string) *PRStatus {
	res, err := g.runner.Run(g.forgeExe,
		[]string{"pr", "view", branch, "--json", "number,state,url,title"},
		worktreePath)
	if err != nil || res.ExitCode != 0 {
		return nil
	}

	var pr ghPullRequest
	if err := json.Unmarshal([]byte(res.Stdout), &pr); err != nil {
		g.logger.Debug("unparseable forge output", "path", worktreePath, "branch", branch, "error", err)
		return nil
	}
	if pr.Number == 0 {
		return nil
	}

	return &PRStatus{
		Number: pr.Number,
		State:  PRState(strings.ToUpper(pr.State)),
		URL:    pr.URL,
		Title:  pr.Title,
	}
}

// CreatePR creates a pull request for the worktree's current branch and
// returns its URL. baseBranch may be empty, in which case the forge picks
// the repository default.
func (g *Gateway) CreatePR(worktreePath, title, body, baseBranch string) (string, error) {
	args := []string{"pr", "create", "--title", title, "--body", body}
	if baseBranch != "" {
		args = append(args, "--base", baseBranch)
	}

	res, err := g.runner.Run(g.forgeExe, args, worktreePath)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", commandFailed(res.Stdout, res.Stderr)
	}

	url := strings.TrimSpace(res.Stdout)
	g.logger.Info("created pull request", "path", worktreePath, "url", url)
	return url, nil
}
