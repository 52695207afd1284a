// pattern: Functional Core

package git

import (
	"errors"
	"strings"
)

// Domain errors raised by the gateway and the orchestrator. ErrBranchNotFound
// and ErrWorktreeNotFound are reserved for callers that want to pre-validate;
// the gateway itself reports those cases as CommandError today.
var (
	ErrNotARepository   = errors.New("not a git repository")
	ErrWorktreeExists   = errors.New("worktree already exists")
	ErrBranchExists     = errors.New("branch already exists")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrWorktreeNotFound = errors.New("worktree not found")
	ErrCannotRemoveMain = errors.New("cannot remove the main worktree")
	ErrInvalidPath      = errors.New("invalid path")
)

// CommandError is a git or forge CLI invocation that exited non-zero without
// matching a more specific domain error.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// commandFailed builds a CommandError from captured stderr, falling back to
// stdout when the tool wrote its complaint there.
func commandFailed(stdout, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}
	if msg == "" {
		msg = "command failed"
	}
	return &CommandError{Message: msg}
}

// classifyCreateFailure distinguishes "branch exists" from "worktree exists"
// by substring-matching the lower-cased CLI error text. The heuristic is
// fragile across git versions and locales but is the only signal the CLI
// offers; keep all of it here so it can be swapped for structured codes if
// git ever grows them.
func classifyCreateFailure(stdout, stderr string) error {
	text := strings.ToLower(stderr)
	if text == "" {
		text = strings.ToLower(stdout)
	}
	if strings.Contains(text, "already exists") {
		if strings.Contains(text, "branch") {
			return ErrBranchExists
		}
		return ErrWorktreeExists
	}
	return commandFailed(stdout, stderr)
}
