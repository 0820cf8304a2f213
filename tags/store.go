package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// Store persists the list of known tags. Stores do not deduplicate; callers pass a Set's slice.
type Store interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, tags []string) error
}

// FileStore keeps the tags in a YAML file
type FileStore struct {
	path string
	mu   sync.Mutex
}

type tagFile struct {
	SavedTags []string `yaml:"savedTags"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	var f tagFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if f.SavedTags == nil {
		return []string{}, nil
	}
	return f.SavedTags, nil
}

func (s *FileStore) Set(ctx context.Context, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := yaml.Marshal(tagFile{SavedTags: tags})
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create tag directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tags: %w", err)
	}
	return nil
}

// SQLiteStore keeps the tags in a single table of a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS saved_tags (
	position INTEGER PRIMARY KEY,
	tag      TEXT NOT NULL
)`

// OpenSQLiteStore opens (and creates) the database at path
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM saved_tags ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Set(ctx context.Context, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_tags`); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO saved_tags (position, tag) VALUES (?, ?)`, i, tag); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	return tx.Commit()
}
