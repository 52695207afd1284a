package tui

import (
	"strings"
	"testing"

	"arbor/internal/git"
)

type fixedStatuses struct {
	statuses map[string]git.Status
}

func (f fixedStatuses) Status(path string) (git.Status, bool) {
	st, ok := f.statuses[path]
	return st, ok
}

func TestWorktreeItemDescription(t *testing.T) {
	tests := []struct {
		name     string
		worktree git.Worktree
		want     string
	}{
		{
			name:     "branch only",
			worktree: git.Worktree{Path: "/wt/fix", Branch: "fix"},
			want:     "fix",
		},
		{
			name:     "with base branch",
			worktree: git.Worktree{Path: "/wt/fix", Branch: "fix", BaseBranch: "main"},
			want:     "fix | from main",
		},
		{
			name:     "locked and prunable",
			worktree: git.Worktree{Path: "/wt/fix", Branch: "fix", IsLocked: true, IsPrunable: true},
			want:     "fix | locked | prunable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := worktreeItem{worktree: tt.worktree}.Description()
			if got != tt.want {
				t.Fatalf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryForStates(t *testing.T) {
	styles := NewStyles("mocha")
	statuses := fixedStatuses{statuses: map[string]git.Status{
		"/wt/clean": {HasRemote: true},
		"/wt/dirty": {IsDirty: true, Ahead: 2, HasRemote: true},
	}}
	d := newWorktreeDelegate(styles, statuses)

	tests := []struct {
		name     string
		worktree git.Worktree
		want     string
	}{
		{name: "prunable", worktree: git.Worktree{Path: "/wt/clean", IsPrunable: true}, want: "missing on disk"},
		{name: "no cached status", worktree: git.Worktree{Path: "/wt/unknown"}, want: "…"},
		{name: "dirty", worktree: git.Worktree{Path: "/wt/dirty"}, want: "uncommitted changes"},
		{name: "clean", worktree: git.Worktree{Path: "/wt/clean"}, want: "Clean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, bullet := d.summaryFor(tt.worktree)
			if !strings.Contains(summary, tt.want) {
				t.Fatalf("summary = %q, want substring %q", summary, tt.want)
			}
			if bullet == "" {
				t.Fatal("expected a state bullet")
			}
		})
	}
}

func TestToListItems(t *testing.T) {
	items := toListItems([]git.Worktree{
		{Path: "/wt/a", Branch: "a"},
		{Path: "/wt/b", Branch: "b"},
	})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].(worktreeItem).worktree.Branch != "a" {
		t.Fatal("expected order preserved")
	}
}
