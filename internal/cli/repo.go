// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// RegisterRepoCommands registers the repo command group commands.
func RegisterRepoCommands(group *Group, connect Connector) {
	group.AddCommand(&Command{
		Name:    "add",
		Summary: "Track a repository (defaults to the current directory)",
		Usage:   "Usage: arbor repo add [path]",
		Run: func(args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return withEngine(connect, func(eng Engine) error {
				if err := eng.AddRepository(context.Background(), abs); err != nil {
					return err
				}
				snap := eng.State()
				fmt.Printf("Tracking %s (%s)\n", snap.Selected.Name, snap.Selected.Path)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List tracked repositories",
		Usage:   "Usage: arbor repo list",
		Run: func(args []string) error {
			return withEngine(connect, func(eng Engine) error {
				printRepositories(os.Stdout, eng)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "remove",
		Summary: "Stop tracking a repository (worktrees stay on disk)",
		Usage:   "Usage: arbor repo remove <name>",
		Run: func(args []string) error {
			if len(args) < 1 {
				fmt.Fprintf(os.Stderr, "Usage: arbor repo remove <name>\n")
				os.Exit(1)
			}
			return withEngine(connect, func(eng Engine) error {
				repo, err := findRepository(eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.RemoveRepository(context.Background(), repo.ID); err != nil {
					return err
				}
				fmt.Printf("No longer tracking %s\n", repo.Name)
				return nil
			})
		},
	})

	group.AddCommand(&Command{
		Name:    "rename",
		Summary: "Change a repository's display name",
		Usage:   "Usage: arbor repo rename <name> <new-name>",
		Run: func(args []string) error {
			if len(args) < 2 {
				fmt.Fprintf(os.Stderr, "Usage: arbor repo rename <name> <new-name>\n")
				os.Exit(1)
			}
			return withEngine(connect, func(eng Engine) error {
				repo, err := findRepository(eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.RenameRepository(repo.ID, args[1]); err != nil {
					return err
				}
				fmt.Printf("Renamed %s to %s\n", repo.Name, args[1])
				return nil
			})
		},
	})
}

// printRepositories writes the tracked repository table, marking the selection.
func printRepositories(w io.Writer, eng Engine) {
	snap := eng.State()
	if len(snap.Repositories) == 0 {
		fmt.Fprintln(w, "No repositories tracked. Run \"arbor repo add\" inside one.")
		return
	}
	for _, r := range snap.Repositories {
		marker := " "
		if snap.Selected != nil && snap.Selected.ID == r.ID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-20s %s\n", marker, r.Name, r.Path)
	}
}
