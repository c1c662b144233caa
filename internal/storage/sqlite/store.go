// Package sqlite provides a SQLite-backed taskdeck storage implementation.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
	sqlitemigrate "github.com/louisbranch/taskdeck/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/taskdeck/internal/storage"
	"github.com/louisbranch/taskdeck/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	_ "modernc.org/sqlite"
)

// SQLite extended result codes for unique-constraint violations.
const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

// Store persists users, tags, tasks, and task-tag links in a single SQLite
// file so every task write can share one transaction boundary.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// uniqueViolation reports whether err is a SQLite unique-constraint failure
// and returns its message for column matching.
func uniqueViolation(err error) (string, bool) {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}
	if sqliteErr.Code() != sqliteConstraintUnique && sqliteErr.Code() != sqliteConstraintPrimaryKey {
		return "", false
	}
	return sqliteErr.Error(), true
}

// mapConstraintError translates anticipated unique-constraint violations
// into typed domain errors; anything else becomes an opaque storage failure.
func mapConstraintError(err error, operation string) error {
	message, ok := uniqueViolation(err)
	if ok {
		switch {
		case strings.Contains(message, "users.email"):
			return apperrors.New(apperrors.CodeUserEmailTaken, "email is already registered")
		case strings.Contains(message, "users.username"):
			return apperrors.New(apperrors.CodeUserUsernameTaken, "username is already registered")
		case strings.Contains(message, "tags.name"):
			return apperrors.New(apperrors.CodeTagNameTaken, "tag name already exists")
		case strings.Contains(message, "tasks.owner_id") || strings.Contains(message, "tasks.title"):
			return apperrors.New(apperrors.CodeTaskTitleTaken, "task title already exists for this user")
		}
	}
	return apperrors.Wrap(apperrors.CodeStorageFailure, operation, err)
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)
var _ storage.TaskStore = (*Store)(nil)
