package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/taskdeck/internal/storage"
)

// CreateTag inserts a tag row and returns it with its assigned id.
func (s *Store) CreateTag(ctx context.Context, name string) (storage.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TagRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TagRecord{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.TagRecord{}, fmt.Errorf("tag name is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		return storage.TagRecord{}, mapConstraintError(err, "create tag")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.TagRecord{}, fmt.Errorf("create tag id: %w", err)
	}
	return storage.TagRecord{ID: id, Name: name}, nil
}

// GetTag returns one tag row by id.
func (s *Store) GetTag(ctx context.Context, tagID int64) (storage.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TagRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TagRecord{}, fmt.Errorf("storage is not configured")
	}

	var record storage.TagRecord
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name FROM tags WHERE id = ?`,
		tagID,
	).Scan(&record.ID, &record.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TagRecord{}, storage.ErrNotFound
		}
		return storage.TagRecord{}, fmt.Errorf("get tag: %w", err)
	}
	return record, nil
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]storage.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []storage.TagRecord
	for rows.Next() {
		var record storage.TagRecord
		if err := rows.Scan(&record.ID, &record.Name); err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		tags = append(tags, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// ListTagsByIDs resolves the given ids, silently omitting absent ones.
func (s *Store) ListTagsByIDs(ctx context.Context, tagIDs []int64) ([]storage.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if len(tagIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(tagIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(tagIDs))
	for _, id := range tagIDs {
		args = append(args, id)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name FROM tags WHERE id IN (`+placeholders+`) ORDER BY id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags by ids: %w", err)
	}
	defer rows.Close()

	var tags []storage.TagRecord
	for rows.Next() {
		var record storage.TagRecord
		if err := rows.Scan(&record.ID, &record.Name); err != nil {
			return nil, fmt.Errorf("list tags by ids: %w", err)
		}
		tags = append(tags, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags by ids: %w", err)
	}
	return tags, nil
}

// TagNameExists reports whether another tag already holds the given name.
// Matching is a case-sensitive exact comparison.
func (s *Store) TagNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	var found int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM tags WHERE name = ? AND id != ?`,
		name,
		excludeID,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check tag name: %w", err)
	}
	return true, nil
}

// RenameTag replaces a tag's name.
func (s *Store) RenameTag(ctx context.Context, tagID int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("tag name is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, tagID)
	if err != nil {
		return mapConstraintError(err, "rename tag")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename tag: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTag removes one tag row. Reference guards live in the service layer.
func (s *Store) DeleteTag(ctx context.Context, tagID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountTagReferences returns the number of task links referencing a tag.
func (s *Store) CountTagReferences(ctx context.Context, tagID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM task_tags WHERE tag_id = ?`,
		tagID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tag references: %w", err)
	}
	return count, nil
}
