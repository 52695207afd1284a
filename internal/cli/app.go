// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"os"
)

// Command is one CLI command: name, help strings and the handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// Group is a set of related subcommands dispatched as "arbor <group> <cmd>".
type Group struct {
	Name     string
	Summary  string
	commands []*Command
}

// App is the headless command registry. Registration order is display order.
type App struct {
	version  string
	commands []*Command
	groups   []*Group
}

// NewApp creates an empty registry for the given version string.
func NewApp(version string) *App {
	return &App{version: version}
}

// AddGroup registers a command group and returns it for population.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{Name: name, Summary: summary}
	a.groups = append(a.groups, g)
	return g
}

// AddCommand registers an ungrouped (top-level) command.
func (a *App) AddCommand(cmd *Command) {
	a.commands = append(a.commands, cmd)
}

// AddCommand registers a subcommand in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.commands = append(g.commands, cmd)
}

func (a *App) findCommand(name string) *Command {
	for _, cmd := range a.commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func (a *App) findGroup(name string) *Group {
	for _, g := range a.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (g *Group) find(name string) *Command {
	for _, cmd := range g.commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpFlag(arg string) bool {
	return arg == "--help" || arg == "-h"
}

// Execute dispatches the CLI arguments. The true return means no command
// matched a headless invocation and the TUI should launch. Commands handle
// their own error reporting and exit codes.
func (a *App) Execute(args []string) bool {
	if len(args) == 0 {
		return true
	}

	if cmd := a.findCommand(args[0]); cmd != nil {
		_ = cmd.Run(args[1:])
		return false
	}

	group := a.findGroup(args[0])
	if group == nil {
		a.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	if len(args) < 2 || args[1] == "help" || isHelpFlag(args[1]) {
		group.PrintHelp(os.Stderr)
		return false
	}

	cmd := group.find(args[1])
	if cmd == nil {
		group.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	for _, arg := range args[2:] {
		if isHelpFlag(arg) {
			fmt.Fprintf(os.Stderr, "%s\n", cmd.Usage)
			return false
		}
	}

	_ = cmd.Run(args[2:])
	return false
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: arbor [options] [command]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range a.commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Launch interactive TUI")

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, g := range a.groups {
			fmt.Fprintf(w, "  %-10s %s\n", g.Name, g.Summary)
		}
	}

	fmt.Fprintf(w, "\nUse \"arbor <group> help\" for group details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: arbor %s <command>\n\n", g.Name)
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range g.commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "\nUse \"arbor %s <command> --help\" for command details.\n", g.Name)
}
