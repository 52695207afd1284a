package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"arbor/internal/git"
	"arbor/internal/logging"
	"arbor/internal/orchestrator"
	"arbor/internal/system"
)

// Engine is the slice of the orchestrator the TUI drives.
// *orchestrator.Orchestrator satisfies it; tests substitute fakes.
type Engine interface {
	LoadRepositories(ctx context.Context) error
	SelectRepository(ctx context.Context, id string) error
	RefreshWorktrees(ctx context.Context) error
	RefreshStatuses()
	CreateWorktree(ctx context.Context, name, branch string, createBranch bool, baseBranch string, copyPatterns []string) error
	BranchExists(name string) bool
	RecreateBranchAndWorktree(ctx context.Context, name, branch, baseBranch string, copyPatterns []string) error
	RemoveWorktree(ctx context.Context, worktree git.Worktree, force, deleteBranch bool) error
	CompleteWorktree(ctx context.Context, worktree git.Worktree, opts orchestrator.CompleteOptions) error
	LockWorktree(ctx context.Context, worktree git.Worktree) error
	UnlockWorktree(ctx context.Context, worktree git.Worktree) error
	PruneWorktrees(ctx context.Context) error
	Push(ctx context.Context, worktree git.Worktree) error
	CreatePR(ctx context.Context, worktree git.Worktree, title, body, baseBranch string) (string, error)
	DefaultBaseBranch() string
	State() orchestrator.Snapshot
	Status(worktreePath string) (git.Status, bool)
	ClearError()
}

// confirmState holds a pending destructive action awaiting y/n.
type confirmState struct {
	prompt string
	action tea.Cmd
}

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles

	eng    Engine
	opener system.Opener
	logs   <-chan logging.LogEntry

	snapshot     orchestrator.Snapshot
	worktreeList list.Model
	delegate     worktreeDelegate

	logPanelOpen bool
	entries      []logging.LogEntry

	confirm *confirmState
	status  string

	// Creation form state, see form.go.
	formOpen   bool
	formName   string
	formBranch string
	formBase   string
	formField  FormField
	formError  string
}

// NewModel creates a new TUI model over an engine. logs may be nil to
// disable the log panel feed.
func NewModel(eng Engine, opener system.Opener, logs <-chan logging.LogEntry, theme string) Model {
	styles := NewStyles(theme)
	delegate := newWorktreeDelegate(styles, eng)

	worktreeList := list.New([]list.Item{}, delegate, 0, 0)
	worktreeList.SetShowTitle(false)
	worktreeList.SetShowStatusBar(false)
	worktreeList.SetFilteringEnabled(false)
	worktreeList.SetShowHelp(false)

	return Model{
		styles:       styles,
		eng:          eng,
		opener:       opener,
		logs:         logs,
		worktreeList: worktreeList,
		delegate:     delegate,
	}
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadRepositories(),
		m.tick(),
	}
	if m.logs != nil {
		cmds = append(cmds, waitForLogEntry(m.logs))
	}
	return tea.Batch(cmds...)
}

// loadRepositories returns a command that performs the initial load.
func (m Model) loadRepositories() tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		return actionDoneMsg{action: "load", err: eng.LoadRepositories(context.Background())}
	}
}

// tick returns a command for the periodic status re-derivation.
func (m Model) tick() tea.Cmd {
	return tea.Tick(15*time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// selectedWorktree returns the worktree under the cursor.
func (m Model) selectedWorktree() (git.Worktree, bool) {
	item, ok := m.worktreeList.SelectedItem().(worktreeItem)
	if !ok {
		return git.Worktree{}, false
	}
	return item.worktree, true
}

// syncSnapshot re-reads the published state and rebuilds the list items,
// keeping the cursor in place when possible.
func (m *Model) syncSnapshot() {
	m.snapshot = m.eng.State()
	index := m.worktreeList.Index()
	m.worktreeList.SetItems(toListItems(m.snapshot.Worktrees))
	if index < len(m.snapshot.Worktrees) {
		m.worktreeList.Select(index)
	}
}
