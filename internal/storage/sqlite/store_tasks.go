package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/taskdeck/internal/storage"
)

// ListTasksForOwner returns every task owned by ownerID with its resolved
// tag set, ordered by id.
func (s *Store) ListTasksForOwner(ctx context.Context, ownerID int64) ([]storage.TaskWithTags, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		taskSelectColumns+` FROM tasks WHERE owner_id = ? ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []storage.TaskWithTags
	for rows.Next() {
		record, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, storage.TaskWithTags{Task: record})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	for idx := range tasks {
		tags, err := s.listTagsForTask(ctx, tasks[idx].Task.ID)
		if err != nil {
			return nil, err
		}
		tasks[idx].Tags = tags
	}
	return tasks, nil
}

// GetTask returns one task scoped to its owner. A task owned by someone
// else is reported as not found, never as a permission failure.
func (s *Store) GetTask(ctx context.Context, taskID int64, ownerID int64) (storage.TaskWithTags, error) {
	if err := ctx.Err(); err != nil {
		return storage.TaskWithTags{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TaskWithTags{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		taskSelectColumns+` FROM tasks WHERE id = ? AND owner_id = ?`,
		taskID,
		ownerID,
	)
	record, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TaskWithTags{}, storage.ErrNotFound
		}
		return storage.TaskWithTags{}, fmt.Errorf("get task: %w", err)
	}

	tags, err := s.listTagsForTask(ctx, record.ID)
	if err != nil {
		return storage.TaskWithTags{}, err
	}
	return storage.TaskWithTags{Task: record, Tags: tags}, nil
}

// CreateTask inserts a task row plus its tag links in one transaction.
func (s *Store) CreateTask(ctx context.Context, record storage.TaskRecord, tagIDs []int64) (storage.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TaskRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TaskRecord{}, fmt.Errorf("storage is not configured")
	}
	record.Title = strings.TrimSpace(record.Title)
	if record.Title == "" {
		return storage.TaskRecord{}, fmt.Errorf("task title is required")
	}
	if record.OwnerID == 0 {
		return storage.TaskRecord{}, fmt.Errorf("task owner is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.TaskRecord{}, fmt.Errorf("begin create task: %w", err)
	}

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO tasks (owner_id, title, description, start_date, end_date, status, priority, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.OwnerID,
		record.Title,
		record.Description,
		toMillis(record.StartDate),
		nullableMillis(record.EndDate),
		record.Status,
		record.Priority,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		_ = tx.Rollback()
		return storage.TaskRecord{}, mapConstraintError(err, "create task")
	}
	id, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return storage.TaskRecord{}, fmt.Errorf("create task id: %w", err)
	}
	record.ID = id

	if err := insertTaskLinks(ctx, tx, record.ID, tagIDs); err != nil {
		_ = tx.Rollback()
		return storage.TaskRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return storage.TaskRecord{}, fmt.Errorf("commit create task: %w", err)
	}
	return record, nil
}

// UpdateTask rewrites a task row scoped to its owner; when replaceTags is
// true the existing links are cleared and replaced by tagIDs in the same
// transaction.
func (s *Store) UpdateTask(ctx context.Context, record storage.TaskRecord, tagIDs []int64, replaceTags bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update task: %w", err)
	}

	result, err := tx.ExecContext(
		ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, start_date = ?, end_date = ?, status = ?, priority = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		record.Title,
		record.Description,
		toMillis(record.StartDate),
		nullableMillis(record.EndDate),
		record.Status,
		record.Priority,
		toMillis(record.UpdatedAt),
		record.ID,
		record.OwnerID,
	)
	if err != nil {
		_ = tx.Rollback()
		return mapConstraintError(err, "update task")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return storage.ErrNotFound
	}

	if replaceTags {
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, record.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear task links: %w", err)
		}
		if err := insertTaskLinks(ctx, tx, record.ID, tagIDs); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task row and its links in one transaction, scoped to
// its owner.
func (s *Store) DeleteTask(ctx context.Context, taskID int64, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete task links: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, taskID, ownerID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete task: %w", err)
	}
	return nil
}

// TaskTitleExists reports whether ownerID already holds a task with the
// given title, excluding one record id (zero to exclude nothing).
func (s *Store) TaskTitleExists(ctx context.Context, ownerID int64, title string, excludeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return false, nil
	}

	var found int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM tasks WHERE owner_id = ? AND title = ? AND id != ?`,
		ownerID,
		title,
		excludeID,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check task title: %w", err)
	}
	return true, nil
}

// CountTasksForOwner returns the number of tasks owned by ownerID.
func (s *Store) CountTasksForOwner(ctx context.Context, ownerID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM tasks WHERE owner_id = ?`,
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

const taskSelectColumns = `SELECT id, owner_id, title, description, start_date, end_date, status, priority, created_at, updated_at`

func scanTask(scan func(dest ...any) error) (storage.TaskRecord, error) {
	var record storage.TaskRecord
	var startDate int64
	var endDate sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.OwnerID,
		&record.Title,
		&record.Description,
		&startDate,
		&endDate,
		&record.Status,
		&record.Priority,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.TaskRecord{}, err
	}
	record.StartDate = fromMillis(startDate)
	if endDate.Valid {
		value := fromMillis(endDate.Int64)
		record.EndDate = &value
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func nullableMillis(value *time.Time) any {
	if value == nil {
		return nil
	}
	return toMillis(*value)
}

func insertTaskLinks(ctx context.Context, tx *sql.Tx, taskID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`,
			taskID,
			tagID,
		); err != nil {
			return fmt.Errorf("link task tag %d: %w", tagID, err)
		}
	}
	return nil
}

func (s *Store) listTagsForTask(ctx context.Context, taskID int64) ([]storage.TagRecord, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT t.id, t.name
		 FROM tags t
		 JOIN task_tags tt ON tt.tag_id = t.id
		 WHERE tt.task_id = ?
		 ORDER BY t.id ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	defer rows.Close()

	var tags []storage.TagRecord
	for rows.Next() {
		var record storage.TagRecord
		if err := rows.Scan(&record.ID, &record.Name); err != nil {
			return nil, fmt.Errorf("list task tags: %w", err)
		}
		tags = append(tags, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	return tags, nil
}
