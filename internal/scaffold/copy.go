// pattern: Functional Core

package scaffold

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyFailure records one pattern whose copy attempt failed.
type CopyFailure struct {
	Pattern string
	Message string
}

// CopyResult is the per-pattern outcome of a scaffolding run. A pattern
// lands in exactly one bucket: copied, skipped (source missing, not an
// error) or failed.
type CopyResult struct {
	Copied  []string
	Skipped []string
	Failed  []CopyFailure
}

// PreviewEntry describes what a pattern would copy, for confirmation UIs.
type PreviewEntry struct {
	Pattern     string
	Exists      bool
	IsDirectory bool
	// SizeBytes is meaningful only for existing regular files.
	SizeBytes int64
}

// Copy copies each pattern from sourceRoot into destRoot, creating parent
// directories as needed. Patterns are relative paths; a trailing slash is
// tolerated and stripped. One failing pattern never aborts the rest.
func Copy(patterns []string, sourceRoot, destRoot string) CopyResult {
	var result CopyResult

	for _, pattern := range patterns {
		rel := strings.TrimSuffix(pattern, "/")
		if rel == "" {
			continue
		}

		src := filepath.Join(sourceRoot, rel)
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			result.Skipped = append(result.Skipped, pattern)
			continue
		}
		if err != nil {
			result.Failed = append(result.Failed, CopyFailure{Pattern: pattern, Message: err.Error()})
			continue
		}

		dst := filepath.Join(destRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			result.Failed = append(result.Failed, CopyFailure{Pattern: pattern, Message: err.Error()})
			continue
		}

		if info.IsDir() {
			err = copyDir(src, dst)
		} else {
			err = copyFile(src, dst, info.Mode())
		}
		if err != nil {
			result.Failed = append(result.Failed, CopyFailure{Pattern: pattern, Message: err.Error()})
			continue
		}

		result.Copied = append(result.Copied, pattern)
	}

	return result
}

// Preview stats each pattern under repoRoot without copying anything.
func Preview(patterns []string, repoRoot string) []PreviewEntry {
	entries := make([]PreviewEntry, 0, len(patterns))

	for _, pattern := range patterns {
		rel := strings.TrimSuffix(pattern, "/")
		entry := PreviewEntry{Pattern: pattern}

		if info, err := os.Stat(filepath.Join(repoRoot, rel)); err == nil {
			entry.Exists = true
			entry.IsDirectory = info.IsDir()
			if !info.IsDir() {
				entry.SizeBytes = info.Size()
			}
		}
		entries = append(entries, entry)
	}

	return entries
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}
