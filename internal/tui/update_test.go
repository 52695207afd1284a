package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"arbor/internal/events"
	"arbor/internal/git"
	"arbor/internal/orchestrator"
	"arbor/internal/state"
)

type fakeEngine struct {
	snap         orchestrator.Snapshot
	calls        []string
	branchExists bool
	prURL        string
	err          error
	base         string
}

func (f *fakeEngine) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeEngine) LoadRepositories(ctx context.Context) error { return f.record("load") }
func (f *fakeEngine) SelectRepository(ctx context.Context, id string) error {
	return f.record("select " + id)
}
func (f *fakeEngine) RefreshWorktrees(ctx context.Context) error { return f.record("refresh") }
func (f *fakeEngine) RefreshStatuses()                           { _ = f.record("refresh-statuses") }
func (f *fakeEngine) CreateWorktree(ctx context.Context, name, branch string, createBranch bool, baseBranch string, copyPatterns []string) error {
	return f.record(fmt.Sprintf("create %s %s %s", name, branch, baseBranch))
}
func (f *fakeEngine) BranchExists(name string) bool { return f.branchExists }
func (f *fakeEngine) RecreateBranchAndWorktree(ctx context.Context, name, branch, baseBranch string, copyPatterns []string) error {
	return f.record(fmt.Sprintf("recreate %s %s %s", name, branch, baseBranch))
}
func (f *fakeEngine) RemoveWorktree(ctx context.Context, worktree git.Worktree, force, deleteBranch bool) error {
	return f.record(fmt.Sprintf("remove %s force=%t deleteBranch=%t", worktree.Name(), force, deleteBranch))
}
func (f *fakeEngine) CompleteWorktree(ctx context.Context, worktree git.Worktree, opts orchestrator.CompleteOptions) error {
	return f.record(fmt.Sprintf("complete %s into %s", worktree.Name(), opts.TargetBranch))
}
func (f *fakeEngine) LockWorktree(ctx context.Context, worktree git.Worktree) error {
	return f.record("lock " + worktree.Name())
}
func (f *fakeEngine) UnlockWorktree(ctx context.Context, worktree git.Worktree) error {
	return f.record("unlock " + worktree.Name())
}
func (f *fakeEngine) PruneWorktrees(ctx context.Context) error { return f.record("prune") }
func (f *fakeEngine) Push(ctx context.Context, worktree git.Worktree) error {
	return f.record("push " + worktree.Name())
}
func (f *fakeEngine) CreatePR(ctx context.Context, worktree git.Worktree, title, body, baseBranch string) (string, error) {
	return f.prURL, f.record(fmt.Sprintf("pr %s %q", worktree.Name(), title))
}
func (f *fakeEngine) DefaultBaseBranch() string {
	if f.base != "" {
		return f.base
	}
	return "main"
}
func (f *fakeEngine) State() orchestrator.Snapshot { return f.snap }
func (f *fakeEngine) Status(worktreePath string) (git.Status, bool) {
	return git.Status{}, false
}
func (f *fakeEngine) ClearError() { _ = f.record("clear-error") }

type fakeOpener struct {
	calls []string
}

func (f *fakeOpener) OpenEditor(path string) error {
	f.calls = append(f.calls, "editor "+path)
	return nil
}
func (f *fakeOpener) Reveal(path string) error {
	f.calls = append(f.calls, "reveal "+path)
	return nil
}
func (f *fakeOpener) OpenTerminal(path string) error {
	f.calls = append(f.calls, "terminal "+path)
	return nil
}
func (f *fakeOpener) OpenURL(url string) error {
	f.calls = append(f.calls, "url "+url)
	return nil
}

func newTestModel(t *testing.T, eng *fakeEngine) (Model, *fakeOpener) {
	t.Helper()
	opener := &fakeOpener{}
	m := NewModel(eng, opener, nil, "mocha")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	m.syncSnapshot()
	return m, opener
}

func snapshotWith(worktrees ...git.Worktree) orchestrator.Snapshot {
	repo := state.Repository{ID: "r1", Path: "/repo", Name: "repo"}
	return orchestrator.Snapshot{
		Repositories: []state.Repository{repo},
		Selected:     &repo,
		Worktrees:    worktrees,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs a command and feeds its message back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if msg == nil {
		return m
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestStateChangedRebuildsList(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)

	eng.snap = snapshotWith(
		git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"},
		git.Worktree{Path: "/wt/feature-2", Branch: "feature-2"},
	)
	updated, _ := m.Update(events.StateChangedMsg{})
	m = updated.(Model)

	if got := len(m.worktreeList.Items()); got != 2 {
		t.Fatalf("expected 2 list items, got %d", got)
	}
	wt, ok := m.selectedWorktree()
	if !ok || wt.Branch != "feature-1" {
		t.Fatalf("expected first worktree selected, got %+v ok=%t", wt, ok)
	}
}

func TestRefreshKeyTriggersRefresh(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, cmd := m.Update(keyRunes("r"))
	drain(t, updated.(Model), cmd)

	if len(eng.calls) == 0 || eng.calls[0] != "refresh" {
		t.Fatalf("expected refresh call, got %v", eng.calls)
	}
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"})}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("d"))
	m = updated.(Model)
	if m.confirm == nil {
		t.Fatal("expected confirmation prompt")
	}
	if len(eng.calls) != 0 {
		t.Fatalf("expected no engine calls before confirmation, got %v", eng.calls)
	}

	updated, cmd := m.Update(keyRunes("y"))
	m = drain(t, updated.(Model), cmd)
	if m.confirm != nil {
		t.Fatal("expected confirmation cleared")
	}
	if len(eng.calls) != 1 || eng.calls[0] != "remove feature-1 force=false deleteBranch=true" {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
}

func TestConfirmationDeclinedRunsNothing(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"})}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("d"))
	m = updated.(Model)
	updated, cmd := m.Update(keyRunes("n"))
	m = drain(t, updated.(Model), cmd)

	if m.confirm != nil {
		t.Fatal("expected confirmation cleared")
	}
	if len(eng.calls) != 0 {
		t.Fatalf("expected no engine calls, got %v", eng.calls)
	}
}

func TestCompleteUsesBaseBranchAsTarget(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1", BaseBranch: "develop"})}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("c"))
	m = updated.(Model)
	updated, cmd := m.Update(keyRunes("y"))
	drain(t, updated.(Model), cmd)

	if len(eng.calls) != 1 || eng.calls[0] != "complete feature-1 into develop" {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
}

func TestCompleteFallsBackToDefaultBase(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"})}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("c"))
	m = updated.(Model)
	updated, cmd := m.Update(keyRunes("y"))
	drain(t, updated.(Model), cmd)

	if len(eng.calls) != 1 || eng.calls[0] != "complete feature-1 into main" {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
}

func TestLockToggle(t *testing.T) {
	tests := []struct {
		name   string
		locked bool
		want   string
	}{
		{name: "unlocked worktree locks", locked: false, want: "lock feature-1"},
		{name: "locked worktree unlocks", locked: true, want: "unlock feature-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1", IsLocked: tt.locked})}
			m, _ := newTestModel(t, eng)
			eng.calls = nil

			updated, cmd := m.Update(keyRunes("L"))
			drain(t, updated.(Model), cmd)

			if len(eng.calls) != 1 || eng.calls[0] != tt.want {
				t.Fatalf("unexpected calls %v", eng.calls)
			}
		})
	}
}

func TestCreatePRUsesBranchAsTitle(t *testing.T) {
	eng := &fakeEngine{
		snap:  snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"}),
		prURL: "https://example.com/pr/1",
	}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, cmd := m.Update(keyRunes("R"))
	m = drain(t, updated.(Model), cmd)

	if len(eng.calls) != 1 || eng.calls[0] != `pr feature-1 "feature-1"` {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
	if !strings.Contains(m.status, "https://example.com/pr/1") {
		t.Fatalf("expected PR URL in status, got %q", m.status)
	}
}

func TestOpenerKeys(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "e", want: "editor /wt/feature-1"},
		{key: "o", want: "reveal /wt/feature-1"},
		{key: "t", want: "terminal /wt/feature-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"})}
			m, opener := newTestModel(t, eng)

			updated, cmd := m.Update(keyRunes(tt.key))
			drain(t, updated.(Model), cmd)

			if len(opener.calls) != 1 || opener.calls[0] != tt.want {
				t.Fatalf("unexpected opener calls %v", opener.calls)
			}
		})
	}
}

func TestClearErrorKey(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	eng.snap.HasError = true
	eng.snap.LastError = "merge failed"
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("x"))
	_ = updated.(Model)

	if len(eng.calls) == 0 || eng.calls[0] != "clear-error" {
		t.Fatalf("expected clear-error call, got %v", eng.calls)
	}
}

func TestLogPanelToggle(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)

	updated, _ := m.Update(keyRunes("g"))
	m = updated.(Model)
	if !m.logPanelOpen {
		t.Fatal("expected log panel open")
	}
	updated, _ = m.Update(keyRunes("g"))
	m = updated.(Model)
	if m.logPanelOpen {
		t.Fatal("expected log panel closed")
	}
}

func TestTabCyclesRepositories(t *testing.T) {
	first := state.Repository{ID: "r1", Path: "/repo1", Name: "repo1"}
	second := state.Repository{ID: "r2", Path: "/repo2", Name: "repo2"}
	eng := &fakeEngine{snap: orchestrator.Snapshot{
		Repositories: []state.Repository{first, second},
		Selected:     &first,
	}}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	drain(t, updated.(Model), cmd)

	if len(eng.calls) != 1 || eng.calls[0] != "select r2" {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
}

func TestFormSubmitCreatesWorktree(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)
	if !m.IsFormOpen() {
		t.Fatal("expected form open")
	}
	if m.FormBase() != "main" {
		t.Fatalf("expected base prefilled with main, got %q", m.FormBase())
	}

	for _, r := range "fix" {
		updated, _ = m.Update(keyRunes(string(r)))
		m = updated.(Model)
	}
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, updated.(Model), cmd)

	if m.IsFormOpen() {
		t.Fatal("expected form closed after submit")
	}
	if len(eng.calls) != 1 || eng.calls[0] != "create fix fix main" {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
}

func TestFormSubmitExistingBranchAsksToRecreate(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(), branchExists: true}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)
	for _, r := range "fix" {
		updated, _ = m.Update(keyRunes(string(r)))
		m = updated.(Model)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.confirm == nil {
		t.Fatal("expected recreate confirmation")
	}
	if len(eng.calls) != 0 {
		t.Fatalf("expected no calls before confirmation, got %v", eng.calls)
	}

	updated, cmd := m.Update(keyRunes("y"))
	drain(t, updated.(Model), cmd)
	if len(eng.calls) != 1 || eng.calls[0] != "recreate fix fix main" {
		t.Fatalf("unexpected calls %v", eng.calls)
	}
}

func TestFormSubmitRequiresName(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)
	eng.calls = nil

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if cmd != nil {
		t.Fatal("expected no command on invalid form")
	}
	if !m.IsFormOpen() {
		t.Fatal("expected form to stay open")
	}
	if m.FormError() == "" {
		t.Fatal("expected validation error")
	}
}

func TestFormEscCancels(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.IsFormOpen() {
		t.Fatal("expected form closed")
	}
}

func TestFormTabCyclesFields(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)
	if m.FormFocusedField() != int(FieldName) {
		t.Fatalf("expected name focused first, got %d", m.FormFocusedField())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.FormFocusedField() != int(FieldBranch) {
		t.Fatalf("expected branch focused, got %d", m.FormFocusedField())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.FormFocusedField() != int(FieldName) {
		t.Fatalf("expected name focused again, got %d", m.FormFocusedField())
	}
}
