// package events contains message types shared between the orchestrator
// bridge and the tui package.
package events

// StateChangedMsg is sent whenever the orchestrator's published state
// (repositories, worktrees, branches, statuses, loading, error) changed.
type StateChangedMsg struct{}
