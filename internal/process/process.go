// pattern: Imperative Shell

package process

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"arbor/internal/logging"
)

// fallbackPathDirs are merged into the child PATH so git and gh remain
// discoverable when arbor is launched from a minimal environment (e.g. a
// desktop launcher that never sourced a shell profile).
var fallbackPathDirs = []string{
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/usr/bin",
	"/bin",
	"/usr/sbin",
	"/sbin",
}

// Result captures the outcome of a finished child process. A non-zero exit
// code is a normal, inspectable result, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands synchronously.
type Runner interface {
	// Run executes the command and waits for it to exit. dir may be empty,
	// in which case the child inherits arbor's working directory. An error
	// is returned only when the process could not be spawned at all.
	Run(exe string, args []string, dir string) (Result, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct {
	logger *logging.ScopedLogger
}

// NewExecRunner creates a Runner that spawns real OS processes.
func NewExecRunner(logger *logging.ScopedLogger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run implements Runner. Stdout and stderr are captured in full; the call
// blocks until the child exits so no zombies are left behind.
func (r *ExecRunner) Run(exe string, args []string, dir string) (Result, error) {
	start := time.Now()

	cmd := exec.Command(exe, args...)
	cmd.Dir = dir
	cmd.Env = mergedEnv(os.Environ())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Spawn failure: binary missing, permission denied, bad dir.
			r.logger.Error("failed to start process", "exe", exe, "dir", dir, "error", err)
			return Result{ExitCode: -1}, err
		}
	}

	r.logger.Debug("process finished",
		"exe", exe,
		"args", strings.Join(args, " "),
		"dir", dir,
		"exit_code", res.ExitCode,
		"duration_ms", time.Since(start).Milliseconds())

	return res, nil
}

// mergedEnv returns env with the fallback bin directories appended to PATH.
// Pre-existing PATH entries keep their order; only missing directories are
// appended. When no PATH variable is present one is synthesized from the
// fallback list alone.
func mergedEnv(env []string) []string {
	out := make([]string, 0, len(env)+1)
	patched := false

	for _, kv := range env {
		if name, value, ok := strings.Cut(kv, "="); ok && name == "PATH" {
			out = append(out, "PATH="+mergePath(value))
			patched = true
			continue
		}
		out = append(out, kv)
	}

	if !patched {
		out = append(out, "PATH="+strings.Join(fallbackPathDirs, string(os.PathListSeparator)))
	}

	return out
}

func mergePath(path string) string {
	sep := string(os.PathListSeparator)
	existing := strings.Split(path, sep)

	seen := make(map[string]struct{}, len(existing))
	for _, dir := range existing {
		seen[dir] = struct{}{}
	}

	merged := existing
	for _, dir := range fallbackPathDirs {
		if _, ok := seen[dir]; !ok {
			merged = append(merged, dir)
		}
	}

	return strings.Join(merged, sep)
}
