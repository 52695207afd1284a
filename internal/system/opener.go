// pattern: Imperative Shell

// Package system shells out to platform tools for "open this thing" side
// effects: launching the editor, revealing a path in the file browser,
// opening a terminal, and opening URLs. Everything here is best-effort
// convenience; failures are surfaced but never block orchestration.
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"arbor/internal/logging"
	"arbor/internal/process"
)

// Opener abstracts desktop-integration side effects for testing.
type Opener interface {
	OpenEditor(path string) error
	Reveal(path string) error
	OpenTerminal(path string) error
	OpenURL(url string) error
}

// ExecOpener implements Opener by spawning platform commands.
type ExecOpener struct {
	runner process.Runner
	editor string // editor executable, e.g. "code" or "vim"
	logger *logging.ScopedLogger
}

// NewExecOpener builds an opener that launches editor for OpenEditor.
// An empty editor falls back to $EDITOR, then "vi".
func NewExecOpener(runner process.Runner, editor string, logger *logging.ScopedLogger) *ExecOpener {
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &ExecOpener{runner: runner, editor: editor, logger: logger}
}

func (o *ExecOpener) run(exe string, args ...string) error {
	result, err := o.runner.Run(exe, args, "")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%s exited with code %d: %s", exe, result.ExitCode, result.Stderr)
	}
	return nil
}

// OpenEditor opens path in the configured editor.
func (o *ExecOpener) OpenEditor(path string) error {
	o.logger.Debug("opening editor", "editor", o.editor, "path", path)
	return o.run(o.editor, path)
}

// Reveal shows path in the platform file browser.
func (o *ExecOpener) Reveal(path string) error {
	o.logger.Debug("revealing path", "path", path)
	if runtime.GOOS == "darwin" {
		return o.run("open", "-R", path)
	}
	// xdg-open has no reveal mode; open the containing directory instead.
	return o.run("xdg-open", filepath.Dir(path))
}

// OpenTerminal opens a terminal window at path.
func (o *ExecOpener) OpenTerminal(path string) error {
	o.logger.Debug("opening terminal", "path", path)
	if runtime.GOOS == "darwin" {
		return o.run("open", "-a", "Terminal", path)
	}
	if term := os.Getenv("TERMINAL"); term != "" {
		return o.run(term, "--working-directory="+path)
	}
	return o.run("x-terminal-emulator", "--working-directory="+path)
}

// OpenURL opens url in the default browser.
func (o *ExecOpener) OpenURL(url string) error {
	o.logger.Debug("opening url", "url", url)
	if runtime.GOOS == "darwin" {
		return o.run("open", url)
	}
	return o.run("xdg-open", url)
}
