package tui

import (
	"strings"
	"testing"

	"arbor/internal/git"
)

func TestViewShowsRepositoryHeader(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"})}
	m, _ := newTestModel(t, eng)

	view := m.View()
	if !strings.Contains(view, "arbor") {
		t.Fatal("expected title in view")
	}
	if !strings.Contains(view, "repo") {
		t.Fatal("expected repository name in view")
	}
	if !strings.Contains(view, "feature-1") {
		t.Fatal("expected worktree in view")
	}
}

func TestViewShowsLastError(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	eng.snap.HasError = true
	eng.snap.LastError = "merge failed: conflict in main.go"
	m, _ := newTestModel(t, eng)

	if !strings.Contains(m.View(), "merge failed: conflict in main.go") {
		t.Fatal("expected error in status bar")
	}
}

func TestViewShowsConfirmPromptOverError(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith(git.Worktree{Path: "/wt/feature-1", Branch: "feature-1"})}
	eng.snap.HasError = true
	eng.snap.LastError = "push failed"
	m, _ := newTestModel(t, eng)

	updated, _ := m.Update(keyRunes("d"))
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "[y/n]") {
		t.Fatal("expected confirmation prompt")
	}
	if strings.Contains(view, "push failed") {
		t.Fatal("expected confirmation to displace the error line")
	}
}

func TestViewRendersForm(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m, _ := newTestModel(t, eng)

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"New worktree", "name", "branch", "base"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in form view", want)
		}
	}
}

func TestViewNoRepositorySelected(t *testing.T) {
	eng := &fakeEngine{}
	m, _ := newTestModel(t, eng)

	if !strings.Contains(m.View(), "no repository selected") {
		t.Fatal("expected empty-state header")
	}
}

func TestViewBeforeFirstResize(t *testing.T) {
	eng := &fakeEngine{snap: snapshotWith()}
	m := NewModel(eng, &fakeOpener{}, nil, "mocha")
	if m.View() != "loading..." {
		t.Fatalf("expected loading placeholder, got %q", m.View())
	}
}
