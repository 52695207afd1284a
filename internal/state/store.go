// pattern: Imperative Shell

package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Repository is a tracked repository. Identity is the generated id; the
// resolved root path is unique across the store. Everything except the
// display name is immutable after creation.
type Repository struct {
	ID   string
	Path string
	Name string
}

// Store persists the small amount of state that cannot be re-derived from
// git: tracked repositories, recorded base branches, per-repo preferences.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database in dataDir and applies
// pending migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "failed to create data dir %s", dataDir)
	}

	dbPath := filepath.Join(dataDir, "arbor.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open database: %s", dbPath)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to enable foreign keys")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to ping database")
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListRepositories returns tracked repositories in insertion order.
func (s *Store) ListRepositories() ([]Repository, error) {
	rows, err := s.db.Query("SELECT id, path, name FROM repositories ORDER BY created_at, id")
	if err != nil {
		return nil, eris.Wrap(err, "failed to query repositories")
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.Path, &r.Name); err != nil {
			return nil, eris.Wrap(err, "failed to scan repository row")
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// AddRepository tracks a new repository at the given resolved root path and
// returns it with a freshly generated id.
func (s *Store) AddRepository(path, name string) (Repository, error) {
	repo := Repository{ID: uuid.NewString(), Path: path, Name: name}
	_, err := s.db.Exec(
		"INSERT INTO repositories (id, path, name) VALUES (?, ?, ?)",
		repo.ID, repo.Path, repo.Name,
	)
	if err != nil {
		return Repository{}, eris.Wrapf(err, "failed to insert repository %s", path)
	}
	return repo, nil
}

// RemoveRepository untracks a repository; its settings row cascades away.
func (s *Store) RemoveRepository(id string) error {
	if _, err := s.db.Exec("DELETE FROM repositories WHERE id = ?", id); err != nil {
		return eris.Wrapf(err, "failed to delete repository %s", id)
	}
	return nil
}

// RenameRepository updates the display name, the only mutable field.
func (s *Store) RenameRepository(id, name string) error {
	if _, err := s.db.Exec("UPDATE repositories SET name = ? WHERE id = ?", name, id); err != nil {
		return eris.Wrapf(err, "failed to rename repository %s", id)
	}
	return nil
}

// BaseBranch returns the recorded base branch for a worktree path.
func (s *Store) BaseBranch(worktreePath string) (string, bool, error) {
	var branch string
	err := s.db.QueryRow(
		"SELECT base_branch FROM base_branches WHERE worktree_path = ?", worktreePath,
	).Scan(&branch)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "failed to query base branch")
	}
	return branch, true, nil
}

// SetBaseBranch records which branch a worktree was created from.
func (s *Store) SetBaseBranch(worktreePath, baseBranch string) error {
	_, err := s.db.Exec(`
		INSERT INTO base_branches (worktree_path, base_branch) VALUES (?, ?)
		ON CONFLICT(worktree_path) DO UPDATE SET base_branch = excluded.base_branch
	`, worktreePath, baseBranch)
	if err != nil {
		return eris.Wrapf(err, "failed to record base branch for %s", worktreePath)
	}
	return nil
}

// ClearBaseBranch drops the association for a removed worktree.
func (s *Store) ClearBaseBranch(worktreePath string) error {
	if _, err := s.db.Exec("DELETE FROM base_branches WHERE worktree_path = ?", worktreePath); err != nil {
		return eris.Wrapf(err, "failed to clear base branch for %s", worktreePath)
	}
	return nil
}

// PreferredBaseBranch returns the repository's preferred base branch.
func (s *Store) PreferredBaseBranch(repositoryID string) (string, bool, error) {
	var branch sql.NullString
	err := s.db.QueryRow(
		"SELECT preferred_base_branch FROM repo_settings WHERE repository_id = ?", repositoryID,
	).Scan(&branch)
	if err == sql.ErrNoRows || (err == nil && !branch.Valid) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "failed to query preferred base branch")
	}
	return branch.String, true, nil
}

// SetPreferredBaseBranch stores the repository's preferred base branch.
func (s *Store) SetPreferredBaseBranch(repositoryID, branch string) error {
	_, err := s.db.Exec(`
		INSERT INTO repo_settings (repository_id, preferred_base_branch) VALUES (?, ?)
		ON CONFLICT(repository_id) DO UPDATE SET preferred_base_branch = excluded.preferred_base_branch
	`, repositoryID, branch)
	if err != nil {
		return eris.Wrapf(err, "failed to set preferred base branch for %s", repositoryID)
	}
	return nil
}

// CopyPatternOverride returns the repository-specific copy patterns, if set.
func (s *Store) CopyPatternOverride(repositoryID string) ([]string, bool, error) {
	var joined sql.NullString
	err := s.db.QueryRow(
		"SELECT copy_patterns FROM repo_settings WHERE repository_id = ?", repositoryID,
	).Scan(&joined)
	if err == sql.ErrNoRows || (err == nil && !joined.Valid) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "failed to query copy patterns")
	}
	return splitPatterns(joined.String), true, nil
}

// SetCopyPatternOverride stores repository-specific copy patterns. An empty
// list is a meaningful override ("copy nothing").
func (s *Store) SetCopyPatternOverride(repositoryID string, patterns []string) error {
	_, err := s.db.Exec(`
		INSERT INTO repo_settings (repository_id, copy_patterns) VALUES (?, ?)
		ON CONFLICT(repository_id) DO UPDATE SET copy_patterns = excluded.copy_patterns
	`, repositoryID, strings.Join(patterns, "\n"))
	if err != nil {
		return eris.Wrapf(err, "failed to set copy patterns for %s", repositoryID)
	}
	return nil
}

func splitPatterns(joined string) []string {
	if joined == "" {
		return []string{}
	}
	var patterns []string
	seen := make(map[string]struct{})
	for _, p := range strings.Split(joined, "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Pattern identity is the string itself; duplicates collapse.
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	return patterns
}
