// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"arbor/internal/git"
	"arbor/internal/orchestrator"
)

// RegisterWorktreeCommands registers the wt command group commands.
func RegisterWorktreeCommands(group *Group, connect Connector) {
	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List worktrees of the current repository with status",
		Usage:   "Usage: arbor wt list",
		Run: func(args []string) error {
			return withEngine(connect, func(eng Engine) error {
				printWorktrees(os.Stdout, eng)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "create",
		Summary: "Create a worktree on a new or existing branch",
		Usage:   "Usage: arbor wt create <name> [--branch name] [--base branch] [--existing] [--recreate] [--copy pattern]...",
		Run: func(args []string) error {
			if len(args) < 1 {
				fmt.Fprintf(os.Stderr, "Usage: arbor wt create <name> [--branch name] [--base branch] [--existing] [--recreate] [--copy pattern]...\n")
				os.Exit(1)
			}
			name := args[0]

			fs := flag.NewFlagSet("wt create", flag.ContinueOnError)
			branch := fs.String("branch", name, "branch to check out (defaults to the worktree name)")
			base := fs.String("base", "", "base branch for a new branch (defaults to the repository's preferred base)")
			existing := fs.Bool("existing", false, "check out an existing branch instead of creating one")
			recreate := fs.Bool("recreate", false, "force-delete an existing branch of the same name first")
			patterns := fs.StringArray("copy", nil, "scaffolding pattern to copy from the repository root (repeatable)")
			if err := fs.Parse(args[1:]); err != nil {
				os.Exit(1)
			}

			return withEngine(connect, func(eng Engine) error {
				ctx := context.Background()
				createBranch := !*existing
				baseBranch := *base
				if createBranch && baseBranch == "" {
					baseBranch = eng.DefaultBaseBranch()
				}

				if createBranch && eng.BranchExists(*branch) {
					if !*recreate {
						return fmt.Errorf("branch %q already exists; pass --existing to check it out or --recreate to replace it", *branch)
					}
					if err := eng.RecreateBranchAndWorktree(ctx, name, *branch, baseBranch, *patterns); err != nil {
						return err
					}
				} else if err := eng.CreateWorktree(ctx, name, *branch, createBranch, baseBranch, *patterns); err != nil {
					return err
				}

				wt, err := findWorktree(eng, name)
				if err != nil {
					return err
				}
				fmt.Printf("Created %s on %s\n", wt.Path, wt.Branch)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "remove",
		Summary: "Remove a worktree and, by default, its branch",
		Usage:   "Usage: arbor wt remove <name> [--force] [--keep-branch]",
		Run: func(args []string) error {
			if len(args) < 1 {
				fmt.Fprintf(os.Stderr, "Usage: arbor wt remove <name> [--force] [--keep-branch]\n")
				os.Exit(1)
			}
			fs := flag.NewFlagSet("wt remove", flag.ContinueOnError)
			force := fs.Bool("force", false, "remove even with uncommitted changes")
			keepBranch := fs.Bool("keep-branch", false, "leave the local branch in place")
			if err := fs.Parse(args[1:]); err != nil {
				os.Exit(1)
			}

			return withEngine(connect, func(eng Engine) error {
				wt, err := findWorktree(eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.RemoveWorktree(context.Background(), wt, *force, !*keepBranch); err != nil {
					return err
				}
				fmt.Printf("Removed %s\n", wt.Path)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "complete",
		Summary: "Merge a worktree's branch, remove it, and clean up",
		Usage:   "Usage: arbor wt complete <name> [--target branch] [--no-merge] [--pull-target] [--delete-remote] [--force]",
		Run: func(args []string) error {
			if len(args) < 1 {
				fmt.Fprintf(os.Stderr, "Usage: arbor wt complete <name> [--target branch] [--no-merge] [--pull-target] [--delete-remote] [--force]\n")
				os.Exit(1)
			}
			fs := flag.NewFlagSet("wt complete", flag.ContinueOnError)
			target := fs.String("target", "", "merge target (defaults to the worktree's recorded base branch)")
			noMerge := fs.Bool("no-merge", false, "skip the merge step")
			pullTarget := fs.Bool("pull-target", false, "pull the target branch's worktree before removal")
			deleteRemote := fs.Bool("delete-remote", false, "also delete the remote branch")
			force := fs.Bool("force", false, "force worktree removal and branch deletion")
			if err := fs.Parse(args[1:]); err != nil {
				os.Exit(1)
			}

			return withEngine(connect, func(eng Engine) error {
				wt, err := findWorktree(eng, args[0])
				if err != nil {
					return err
				}
				opts := orchestrator.CompleteOptions{
					TargetBranch:       completionTarget(*target, wt, eng),
					MergeIntoTarget:    !*noMerge,
					PullTargetFirst:    *pullTarget,
					DeleteLocalBranch:  true,
					DeleteRemoteBranch: *deleteRemote,
					Force:              *force,
				}
				if err := eng.CompleteWorktree(context.Background(), wt, opts); err != nil {
					return err
				}
				fmt.Printf("Completed %s into %s\n", wt.Branch, opts.TargetBranch)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "prune",
		Summary: "Drop stale worktree metadata",
		Usage:   "Usage: arbor wt prune",
		Run: func(args []string) error {
			return withEngine(connect, func(eng Engine) error {
				if err := eng.PruneWorktrees(context.Background()); err != nil {
					return err
				}
				fmt.Println("Pruned stale worktrees")
				return nil
			})
		},
	})
}

// completionTarget picks the merge target: explicit flag, then the worktree's
// recorded base branch, then the repository's preferred base.
func completionTarget(flagValue string, wt git.Worktree, eng Engine) string {
	if flagValue != "" {
		return flagValue
	}
	if wt.BaseBranch != "" {
		return wt.BaseBranch
	}
	return eng.DefaultBaseBranch()
}

// printWorktrees writes one line per worktree: name, branch, markers, and the
// status summary.
func printWorktrees(w io.Writer, eng Engine) {
	snap := eng.State()
	if snap.Selected == nil {
		fmt.Fprintln(w, "No repository selected. Run \"arbor repo add\" inside one.")
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", snap.Selected.Name, snap.Selected.Path)
	for _, wt := range snap.Worktrees {
		var markers []string
		if wt.IsMain {
			markers = append(markers, "main")
		}
		if wt.IsLocked {
			markers = append(markers, "locked")
		}
		if wt.IsPrunable {
			markers = append(markers, "prunable")
		}
		if wt.BaseBranch != "" {
			markers = append(markers, "from "+wt.BaseBranch)
		}
		marker := ""
		if len(markers) > 0 {
			marker = " [" + strings.Join(markers, ", ") + "]"
		}

		summary := ""
		if st, ok := eng.Status(wt.Path); ok {
			summary = "  " + st.Summary()
		}
		fmt.Fprintf(w, "  %-20s %s%s%s\n", wt.Name(), wt.Branch, marker, summary)
	}
}
