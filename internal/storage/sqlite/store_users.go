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

// CreateUser inserts a user row and returns it with its assigned id.
func (s *Store) CreateUser(ctx context.Context, record storage.UserRecord) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, fmt.Errorf("storage is not configured")
	}
	record.Email = strings.TrimSpace(record.Email)
	record.Username = strings.TrimSpace(record.Username)
	if record.Email == "" {
		return storage.UserRecord{}, fmt.Errorf("email is required")
	}
	if record.Username == "" {
		return storage.UserRecord{}, fmt.Errorf("username is required")
	}
	if record.PasswordHash == "" {
		return storage.UserRecord{}, fmt.Errorf("password hash is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (email, username, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.Email,
		record.Username,
		record.PasswordHash,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return storage.UserRecord{}, mapConstraintError(err, "create user")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.UserRecord{}, fmt.Errorf("create user id: %w", err)
	}
	record.ID = id
	return record, nil
}

// GetUser returns one user row by id.
func (s *Store) GetUser(ctx context.Context, userID int64) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users
		 WHERE id = ?`,
		userID,
	)
	return scanUser(row)
}

// GetUserByEmail returns one user row by its unique email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, fmt.Errorf("storage is not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return storage.UserRecord{}, fmt.Errorf("email is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users
		 WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

// EmailExists reports whether any user holds the given email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.userFieldExists(ctx, "email", strings.TrimSpace(email))
}

// UsernameExists reports whether any user holds the given username.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.userFieldExists(ctx, "username", strings.TrimSpace(username))
}

// UpdateUserPassword replaces a user's password hash and refreshes updated_at.
func (s *Store) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash,
		toMillis(updatedAt),
		userID,
	)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes one user row. Ownership guards live in the service
// layer; the store only reports absence.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) userFieldExists(ctx context.Context, column string, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	if value == "" {
		return false, nil
	}

	var found int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM users WHERE `+column+` = ?`,
		value,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check user %s: %w", column, err)
	}
	return true, nil
}

func scanUser(row *sql.Row) (storage.UserRecord, error) {
	var record storage.UserRecord
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&record.ID,
		&record.Email,
		&record.Username,
		&record.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("scan user: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
