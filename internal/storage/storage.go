// Package storage defines persistence contracts for taskdeck records.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/taskdeck/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing or not visible to the
// caller's scope.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// UserRecord is a persisted user identity. PasswordHash never leaves the
// service layer.
type UserRecord struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TagRecord is a persisted, globally shared tag.
type TagRecord struct {
	ID   int64
	Name string
}

// TaskRecord is a persisted, owner-scoped task.
type TaskRecord struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Status      int
	Priority    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskWithTags pairs a task row with its resolved tag set.
type TaskWithTags struct {
	Task TaskRecord
	Tags []TagRecord
}

// UserStore persists user identity records.
type UserStore interface {
	CreateUser(ctx context.Context, record UserRecord) (UserRecord, error)
	GetUser(ctx context.Context, userID int64) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string, updatedAt time.Time) error
	DeleteUser(ctx context.Context, userID int64) error
}

// TagStore persists globally shared tags.
type TagStore interface {
	CreateTag(ctx context.Context, name string) (TagRecord, error)
	GetTag(ctx context.Context, tagID int64) (TagRecord, error)
	ListTags(ctx context.Context) ([]TagRecord, error)
	// ListTagsByIDs resolves the given ids, silently omitting absent ones;
	// callers diff the result against the request to report missing ids.
	ListTagsByIDs(ctx context.Context, tagIDs []int64) ([]TagRecord, error)
	TagNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	RenameTag(ctx context.Context, tagID int64, name string) error
	DeleteTag(ctx context.Context, tagID int64) error
	// CountTagReferences returns the number of task links referencing a tag.
	CountTagReferences(ctx context.Context, tagID int64) (int64, error)
}

// TaskStore persists owner-scoped tasks and their tag associations.
//
// CreateTask, UpdateTask, and DeleteTask must write the task row and its
// link rows in a single transaction so a crash mid-operation cannot leave a
// task without its requested links, or orphaned links without their task.
type TaskStore interface {
	ListTasksForOwner(ctx context.Context, ownerID int64) ([]TaskWithTags, error)
	GetTask(ctx context.Context, taskID int64, ownerID int64) (TaskWithTags, error)
	CreateTask(ctx context.Context, record TaskRecord, tagIDs []int64) (TaskRecord, error)
	// UpdateTask rewrites the task row; when replaceTags is true all existing
	// links are cleared and replaced by tagIDs (full-replacement semantics).
	UpdateTask(ctx context.Context, record TaskRecord, tagIDs []int64, replaceTags bool) error
	DeleteTask(ctx context.Context, taskID int64, ownerID int64) error
	TaskTitleExists(ctx context.Context, ownerID int64, title string, excludeID int64) (bool, error)
	CountTasksForOwner(ctx context.Context, ownerID int64) (int64, error)
}
