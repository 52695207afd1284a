// pattern: Imperative Shell

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"arbor/internal/events"
	"arbor/internal/logging"
	"arbor/internal/orchestrator"
)

// maxLogEntries bounds the in-memory log tail.
const maxLogEntries = 500

// actionDoneMsg is sent when an engine operation completes.
type actionDoneMsg struct {
	action string
	err    error
}

// prCreatedMsg is sent when PR creation completes.
type prCreatedMsg struct {
	url string
	err error
}

// tickMsg drives the periodic status re-derivation.
type tickMsg struct{}

// logEntryMsg delivers one entry from the logging channel.
type logEntryMsg struct {
	entry logging.LogEntry
}

// waitForLogEntry returns a command blocking on the next log entry.
func waitForLogEntry(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return logEntryMsg{entry: entry}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
		m.worktreeList.SetSize(m.width-4, layout.ContentListHeight())
		return m, nil

	case events.StateChangedMsg:
		m.syncSnapshot()
		return m, nil

	case actionDoneMsg:
		if msg.err == nil && msg.action != "load" {
			m.status = msg.action + " done"
		}
		m.syncSnapshot()
		return m, nil

	case prCreatedMsg:
		if msg.err == nil {
			m.status = "PR created: " + msg.url
		}
		m.syncSnapshot()
		return m, nil

	case tickMsg:
		eng := m.eng
		refresh := func() tea.Msg {
			eng.RefreshStatuses()
			return nil
		}
		return m, tea.Batch(refresh, m.tick())

	case logEntryMsg:
		m.entries = append(m.entries, msg.entry)
		if len(m.entries) > maxLogEntries {
			m.entries = m.entries[len(m.entries)-maxLogEntries:]
		}
		return m, waitForLogEntry(m.logs)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.worktreeList, cmd = m.worktreeList.Update(msg)
	return m, cmd
}

// handleKey routes a key press to the active mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formOpen {
		return m.handleFormKey(msg)
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		return m, m.selectNextRepository()

	case "r":
		return m, m.doAction("refresh", func(eng Engine) error {
			return eng.RefreshWorktrees(context.Background())
		})

	case "n":
		m.openForm()
		return m, nil

	case "x":
		m.eng.ClearError()
		m.status = ""
		m.syncSnapshot()
		return m, nil

	case "g":
		m.logPanelOpen = !m.logPanelOpen
		layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
		m.worktreeList.SetSize(m.width-4, layout.ContentListHeight())
		return m, nil

	case "d", "D":
		wt, ok := m.selectedWorktree()
		if !ok {
			return m, nil
		}
		force := msg.String() == "D"
		prompt := fmt.Sprintf("Remove %s and delete branch %s?", wt.Name(), wt.Branch)
		if force {
			prompt = fmt.Sprintf("Force-remove %s (discarding changes) and delete branch %s?", wt.Name(), wt.Branch)
		}
		m.confirm = &confirmState{
			prompt: prompt,
			action: m.doAction("remove", func(eng Engine) error {
				return eng.RemoveWorktree(context.Background(), wt, force, true)
			}),
		}
		return m, nil

	case "c":
		wt, ok := m.selectedWorktree()
		if !ok {
			return m, nil
		}
		target := wt.BaseBranch
		if target == "" {
			target = m.eng.DefaultBaseBranch()
		}
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Complete %s: merge %s into %s, remove worktree, delete branch?", wt.Name(), wt.Branch, target),
			action: m.doAction("complete", func(eng Engine) error {
				return eng.CompleteWorktree(context.Background(), wt, orchestrator.CompleteOptions{
					TargetBranch:      target,
					MergeIntoTarget:   true,
					PullTargetFirst:   true,
					DeleteLocalBranch: true,
				})
			}),
		}
		return m, nil

	case "L":
		wt, ok := m.selectedWorktree()
		if !ok {
			return m, nil
		}
		if wt.IsLocked {
			return m, m.doAction("unlock", func(eng Engine) error {
				return eng.UnlockWorktree(context.Background(), wt)
			})
		}
		return m, m.doAction("lock", func(eng Engine) error {
			return eng.LockWorktree(context.Background(), wt)
		})

	case "P":
		m.confirm = &confirmState{
			prompt: "Prune stale worktree metadata?",
			action: m.doAction("prune", func(eng Engine) error {
				return eng.PruneWorktrees(context.Background())
			}),
		}
		return m, nil

	case "p":
		wt, ok := m.selectedWorktree()
		if !ok {
			return m, nil
		}
		return m, m.doAction("push", func(eng Engine) error {
			return eng.Push(context.Background(), wt)
		})

	case "R":
		wt, ok := m.selectedWorktree()
		if !ok {
			return m, nil
		}
		eng := m.eng
		return m, func() tea.Msg {
			url, err := eng.CreatePR(context.Background(), wt, wt.Branch, "", wt.BaseBranch)
			return prCreatedMsg{url: url, err: err}
		}

	case "e":
		return m, m.openSelected(func(path string) error { return m.opener.OpenEditor(path) })

	case "o":
		return m, m.openSelected(func(path string) error { return m.opener.Reveal(path) })

	case "t":
		return m, m.openSelected(func(path string) error { return m.opener.OpenTerminal(path) })
	}

	var cmd tea.Cmd
	m.worktreeList, cmd = m.worktreeList.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := m.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = nil
		return m, confirm.action
	case "n", "N", "esc":
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetForm()
		return m, nil

	case "tab", "down":
		m.formField = (m.formField + 1) % fieldCount
		return m, nil

	case "shift+tab", "up":
		m.formField = (m.formField + fieldCount - 1) % fieldCount
		return m, nil

	case "enter":
		if !m.validateForm() {
			return m, nil
		}
		name := m.formName
		branch := m.effectiveBranch()
		base := m.formBase
		m.resetForm()
		if m.eng.BranchExists(branch) {
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Branch %s already exists. Delete it and recreate from %s?", branch, base),
				action: m.doAction("recreate", func(eng Engine) error {
					return eng.RecreateBranchAndWorktree(context.Background(), name, branch, base, nil)
				}),
			}
			return m, nil
		}
		return m, m.doAction("create", func(eng Engine) error {
			return eng.CreateWorktree(context.Background(), name, branch, true, base, nil)
		})

	case "backspace":
		input := m.focusedInput()
		if len(*input) > 0 {
			*input = (*input)[:len(*input)-1]
		}
		return m, nil

	default:
		if msg.Type == tea.KeyRunes || msg.String() == " " {
			input := m.focusedInput()
			*input += string(msg.Runes)
		}
		return m, nil
	}
}

// doAction wraps an engine call in a command; errors surface through the
// orchestrator's error state, so only completion is reported here.
func (m Model) doAction(name string, fn func(eng Engine) error) tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		return actionDoneMsg{action: name, err: fn(eng)}
	}
}

// openSelected runs a best-effort opener side effect for the cursor's worktree.
func (m Model) openSelected(open func(path string) error) tea.Cmd {
	wt, ok := m.selectedWorktree()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return actionDoneMsg{action: "open", err: open(wt.Path)}
	}
}

// selectNextRepository cycles the selection through the tracked repositories.
func (m Model) selectNextRepository() tea.Cmd {
	snap := m.snapshot
	if len(snap.Repositories) < 2 || snap.Selected == nil {
		return nil
	}
	next := 0
	for i, r := range snap.Repositories {
		if r.ID == snap.Selected.ID {
			next = (i + 1) % len(snap.Repositories)
			break
		}
	}
	id := snap.Repositories[next].ID
	return m.doAction("select", func(eng Engine) error {
		return eng.SelectRepository(context.Background(), id)
	})
}
