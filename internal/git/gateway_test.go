package git

import (
	"errors"
	"strings"
	"testing"

	"arbor/internal/logging"
	"arbor/internal/process"
)

// fakeRunner scripts process results per command line and records every call.
type fakeRunner struct {
	calls   []string
	results map[string]process.Result
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results: make(map[string]process.Result),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) key(exe string, args []string) string {
	return exe + " " + strings.Join(args, " ")
}

func (f *fakeRunner) on(cmdline string, res process.Result) {
	f.results[cmdline] = res
}

func (f *fakeRunner) Run(exe string, args []string, dir string) (process.Result, error) {
	key := f.key(exe, args)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return process.Result{ExitCode: -1}, err
	}
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	// Unscripted commands succeed with empty output.
	return process.Result{}, nil
}

func (f *fakeRunner) called(cmdline string) bool {
	for _, c := range f.calls {
		if c == cmdline {
			return true
		}
	}
	return false
}

func newTestGateway(f *fakeRunner) *Gateway {
	return NewGateway(f, logging.NopLogger())
}

func TestRepositoryRoot(t *testing.T) {
	f := newFakeRunner()
	f.on("git rev-parse --show-toplevel", process.Result{Stdout: "/repo\n"})

	g := newTestGateway(f)
	root, err := g.RepositoryRoot("/repo/sub/dir")
	if err != nil {
		t.Fatalf("RepositoryRoot() error = %v", err)
	}
	if root != "/repo" {
		t.Errorf("root = %q, want %q", root, "/repo")
	}
}

func TestRepositoryRootNotARepository(t *testing.T) {
	f := newFakeRunner()
	f.on("git rev-parse --show-toplevel", process.Result{
		ExitCode: 128,
		Stderr:   "fatal: not a git repository",
	})

	g := newTestGateway(f)
	_, err := g.RepositoryRoot("/tmp/nowhere")
	if !errors.Is(err, ErrNotARepository) {
		t.Errorf("error = %v, want ErrNotARepository", err)
	}
}

func TestListBranchesExcludesHEAD(t *testing.T) {
	f := newFakeRunner()
	f.on("git branch --format=%(refname:short)", process.Result{
		Stdout: "main\nfeature-1\norigin/HEAD\n\n",
	})

	g := newTestGateway(f)
	branches, err := g.ListBranches("/repo")
	if err != nil {
		t.Fatalf("ListBranches() error = %v", err)
	}

	want := []string{"main", "feature-1"}
	if len(branches) != len(want) {
		t.Fatalf("branches = %v, want %v", branches, want)
	}
	for i := range want {
		if branches[i] != want[i] {
			t.Errorf("branches[%d] = %q, want %q", i, branches[i], want[i])
		}
	}
}

func TestBranchExists(t *testing.T) {
	f := newFakeRunner()
	f.on("git show-ref --verify --quiet refs/heads/main", process.Result{})
	f.on("git show-ref --verify --quiet refs/heads/gone", process.Result{ExitCode: 1})

	g := newTestGateway(f)
	if !g.BranchExists("/repo", "main") {
		t.Error("BranchExists(main) = false, want true")
	}
	if g.BranchExists("/repo", "gone") {
		t.Error("BranchExists(gone) = true, want false")
	}
}

func TestCreateWorktreeArgs(t *testing.T) {
	tests := []struct {
		name         string
		createBranch bool
		baseBranch   string
		wantCmd      string
	}{
		{
			name:         "new branch from base",
			createBranch: true,
			baseBranch:   "main",
			wantCmd:      "git worktree add -b feature-1 /wt/repo/feature-1 main",
		},
		{
			name:         "new branch from HEAD",
			createBranch: true,
			wantCmd:      "git worktree add -b feature-1 /wt/repo/feature-1",
		},
		{
			name:    "existing branch",
			wantCmd: "git worktree add /wt/repo/feature-1 feature-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRunner()
			g := newTestGateway(f)

			err := g.CreateWorktree("/repo", "/wt/repo/feature-1", "feature-1", tt.createBranch, tt.baseBranch)
			if err != nil {
				t.Fatalf("CreateWorktree() error = %v", err)
			}
			if !f.called(tt.wantCmd) {
				t.Errorf("git invoked as %v, want %q", f.calls, tt.wantCmd)
			}
		})
	}
}

func TestCreateWorktreeClassification(t *testing.T) {
	tests := []struct {
		name    string
		stderr  string
		wantErr error
	}{
		{
			name:    "branch conflict",
			stderr:  "fatal: a branch named 'feature-1' already exists",
			wantErr: ErrBranchExists,
		},
		{
			name:    "worktree conflict",
			stderr:  "fatal: '/wt/repo/feature-1' already exists",
			wantErr: ErrWorktreeExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRunner()
			f.on("git worktree add -b feature-1 /wt/repo/feature-1 main", process.Result{
				ExitCode: 128,
				Stderr:   tt.stderr,
			})

			g := newTestGateway(f)
			err := g.CreateWorktree("/repo", "/wt/repo/feature-1", "feature-1", true, "main")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateWorktreeGenericFailure(t *testing.T) {
	f := newFakeRunner()
	f.on("git worktree add -b x /wt/x", process.Result{
		ExitCode: 1,
		Stderr:   "fatal: invalid reference: nope",
	})

	g := newTestGateway(f)
	err := g.CreateWorktree("/repo", "/wt/x", "x", true, "")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if !strings.Contains(cmdErr.Message, "invalid reference") {
		t.Errorf("message = %q, want stderr text preserved", cmdErr.Message)
	}
}

func TestRemoveWorktreeForce(t *testing.T) {
	f := newFakeRunner()
	g := newTestGateway(f)

	if err := g.RemoveWorktree("/repo", "/wt/repo/feature-1", true); err != nil {
		t.Fatalf("RemoveWorktree() error = %v", err)
	}
	if !f.called("git worktree remove --force /wt/repo/feature-1") {
		t.Errorf("calls = %v, want forced removal", f.calls)
	}
}

func TestPushUpstreamFlag(t *testing.T) {
	f := newFakeRunner()
	g := newTestGateway(f)

	if err := g.Push("/wt/repo/feature-1", true); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if !f.called("git push -u origin HEAD") {
		t.Errorf("calls = %v, want push -u origin HEAD", f.calls)
	}

	f2 := newFakeRunner()
	g2 := newTestGateway(f2)
	if err := g2.Push("/wt/repo/feature-1", false); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if !f2.called("git push") {
		t.Errorf("calls = %v, want plain push", f2.calls)
	}
}

func TestMergeBranchCheckoutFailureStopsMerge(t *testing.T) {
	f := newFakeRunner()
	f.on("git checkout main", process.Result{
		ExitCode: 1,
		Stderr:   "error: your local changes would be overwritten",
	})

	g := newTestGateway(f)
	err := g.MergeBranch("/repo", "feature-1", "main")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if f.called("git merge feature-1") {
		t.Error("merge invoked despite checkout failure")
	}
}

func TestMergeBranchConflictSurfacesError(t *testing.T) {
	f := newFakeRunner()
	f.on("git merge feature-1", process.Result{
		ExitCode: 1,
		Stdout:   "CONFLICT (content): Merge conflict in main.go",
	})

	g := newTestGateway(f)
	err := g.MergeBranch("/repo", "feature-1", "main")
	if err == nil {
		t.Fatal("expected error for conflicted merge")
	}
	// No abort must be attempted; the repository stays as git left it.
	for _, c := range f.calls {
		if strings.Contains(c, "merge --abort") {
			t.Errorf("unexpected merge --abort call: %v", f.calls)
		}
	}
}

func TestListWorktreesOrdering(t *testing.T) {
	f := newFakeRunner()
	f.on("git rev-parse --show-toplevel", process.Result{Stdout: "/repo\n"})
	f.on("git worktree list --porcelain", process.Result{Stdout: strings.Join([]string{
		"worktree /wt/repo/zeta",
		"HEAD 1111111",
		"branch refs/heads/zeta",
		"",
		"worktree /repo",
		"HEAD 0000000",
		"branch refs/heads/main",
		"",
		"worktree /wt/repo/Alpha",
		"HEAD 2222222",
		"branch refs/heads/alpha",
		"",
	}, "\n")})

	g := newTestGateway(f)
	worktrees, err := g.ListWorktrees("/repo")
	if err != nil {
		t.Fatalf("ListWorktrees() error = %v", err)
	}

	if len(worktrees) != 3 {
		t.Fatalf("got %d worktrees, want 3", len(worktrees))
	}
	if !worktrees[0].IsMain || worktrees[0].Path != "/repo" {
		t.Errorf("first entry = %+v, want main worktree", worktrees[0])
	}
	if worktrees[1].Name() != "Alpha" || worktrees[2].Name() != "zeta" {
		t.Errorf("ordering = %q, %q; want case-insensitive by name", worktrees[1].Name(), worktrees[2].Name())
	}
}
