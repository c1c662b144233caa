// Package task manages owner-scoped tasks and their tag associations.
//
// Every operation runs in the scope of a resolved user id. A task owned by
// a different user is reported as not found rather than forbidden so
// ownership is never leaked across accounts.
package task

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
	"github.com/louisbranch/taskdeck/internal/platform/field"
	"github.com/louisbranch/taskdeck/internal/storage"
)

const (
	titleMinLength       = 3
	titleMaxLength       = 100
	descriptionMaxLength = 500
)

// Status is a task's lifecycle state. No transition graph is enforced; any
// status may be set to any other via update.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
	StatusLate
)

// Valid reports whether the status is one of the four defined values.
func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusLate
}

// Priority is a task's urgency level.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Valid reports whether the priority is one of the three defined values.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// TagRef is a resolved tag attached to a task.
type TagRef struct {
	ID   int64
	Name string
}

// Task is a caller-facing task with its resolved tag set.
type Task struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []TagRef
}

// CreateInput carries the fields for a new task. Zero-valued Status and
// Priority default to Pending and Low.
type CreateInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Status      Status
	Priority    Priority
	TagIDs      []int64
}

// UpdateInput carries a sparse update. Absent fields keep their stored
// values; a present TagIDs (even an empty list) replaces every existing
// link.
type UpdateInput struct {
	Title       field.Optional[string]
	Description field.Optional[string]
	StartDate   field.Optional[time.Time]
	EndDate     field.Optional[time.Time]
	Status      field.Optional[Status]
	Priority    field.Optional[Priority]
	TagIDs      field.Optional[[]int64]
}

// Service coordinates task operations over the stores.
type Service struct {
	tasks storage.TaskStore
	tags  storage.TagStore
	now   func() time.Time
}

// NewService builds a task service. A nil now falls back to time.Now.
func NewService(tasks storage.TaskStore, tags storage.TagStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{tasks: tasks, tags: tags, now: now}
}

// ListForOwner returns every task owned by ownerID with resolved tags.
func (s *Service) ListForOwner(ctx context.Context, ownerID int64) ([]Task, error) {
	if s == nil || s.tasks == nil {
		return nil, fmt.Errorf("task service is not configured")
	}
	records, err := s.tasks.ListTasksForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, toTask(record))
	}
	return tasks, nil
}

// Get returns one task scoped to its owner.
func (s *Service) Get(ctx context.Context, taskID int64, ownerID int64) (Task, error) {
	if s == nil || s.tasks == nil {
		return Task{}, fmt.Errorf("task service is not configured")
	}
	record, err := s.tasks.GetTask(ctx, taskID, ownerID)
	if err != nil {
		return Task{}, err
	}
	return toTask(record), nil
}

// Create adds a task for ownerID. Supplied tag ids are resolved up front
// and every missing id is reported at once.
func (s *Service) Create(ctx context.Context, ownerID int64, input CreateInput) (Task, error) {
	if s == nil || s.tasks == nil || s.tags == nil {
		return Task{}, fmt.Errorf("task service is not configured")
	}

	input.Title = strings.TrimSpace(input.Title)
	if err := validateTitle(input.Title); err != nil {
		return Task{}, err
	}
	if err := validateDescription(input.Description); err != nil {
		return Task{}, err
	}
	if input.StartDate.IsZero() {
		return Task{}, apperrors.New(apperrors.CodeTaskStartDateRequired, "start date is required")
	}
	if !input.Status.Valid() {
		return Task{}, apperrors.New(apperrors.CodeTaskStatusInvalid, "status is not a known value")
	}
	if !input.Priority.Valid() {
		return Task{}, apperrors.New(apperrors.CodeTaskPriorityInvalid, "priority is not a known value")
	}

	taken, err := s.tasks.TaskTitleExists(ctx, ownerID, input.Title, 0)
	if err != nil {
		return Task{}, err
	}
	if taken {
		return Task{}, apperrors.New(apperrors.CodeTaskTitleTaken, "task title already exists for this user")
	}

	tagIDs := dedupeIDs(input.TagIDs)
	if err := s.resolveTagIDs(ctx, tagIDs); err != nil {
		return Task{}, err
	}

	now := s.now().UTC()
	record := storage.TaskRecord{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate.UTC(),
		EndDate:     normalizeEndDate(input.EndDate),
		Status:      int(input.Status),
		Priority:    int(input.Priority),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.tasks.CreateTask(ctx, record, tagIDs)
	if err != nil {
		return Task{}, err
	}
	return s.Get(ctx, created.ID, ownerID)
}

// Update applies a sparse update to a task scoped to its owner. Fields
// absent from the payload keep their stored values, the tag link set is
// fully replaced when TagIDs is present, and updatedAt is refreshed even
// when nothing else changed.
func (s *Service) Update(ctx context.Context, taskID int64, ownerID int64, input UpdateInput) (Task, error) {
	if s == nil || s.tasks == nil || s.tags == nil {
		return Task{}, fmt.Errorf("task service is not configured")
	}

	current, err := s.tasks.GetTask(ctx, taskID, ownerID)
	if err != nil {
		return Task{}, err
	}
	record := current.Task

	if title, ok := input.Title.Value(); ok {
		title = strings.TrimSpace(title)
		if err := validateTitle(title); err != nil {
			return Task{}, err
		}
		if title != record.Title {
			taken, err := s.tasks.TaskTitleExists(ctx, ownerID, title, record.ID)
			if err != nil {
				return Task{}, err
			}
			if taken {
				return Task{}, apperrors.New(apperrors.CodeTaskTitleTaken, "task title already exists for this user")
			}
		}
		record.Title = title
	}
	if description, ok := input.Description.Value(); ok {
		if err := validateDescription(description); err != nil {
			return Task{}, err
		}
		record.Description = description
	}
	if startDate, ok := input.StartDate.Value(); ok {
		if startDate.IsZero() {
			return Task{}, apperrors.New(apperrors.CodeTaskStartDateRequired, "start date is required")
		}
		record.StartDate = startDate.UTC()
	}
	if input.EndDate.Present() {
		if input.EndDate.IsNull() {
			record.EndDate = nil
		} else if endDate, ok := input.EndDate.Value(); ok {
			utc := endDate.UTC()
			record.EndDate = &utc
		}
	}
	if status, ok := input.Status.Value(); ok {
		if !status.Valid() {
			return Task{}, apperrors.New(apperrors.CodeTaskStatusInvalid, "status is not a known value")
		}
		record.Status = int(status)
	}
	if priority, ok := input.Priority.Value(); ok {
		if !priority.Valid() {
			return Task{}, apperrors.New(apperrors.CodeTaskPriorityInvalid, "priority is not a known value")
		}
		record.Priority = int(priority)
	}

	var tagIDs []int64
	replaceTags := input.TagIDs.Present()
	if replaceTags {
		requested, _ := input.TagIDs.Value()
		tagIDs = dedupeIDs(requested)
		if err := s.resolveTagIDs(ctx, tagIDs); err != nil {
			return Task{}, err
		}
	}

	record.UpdatedAt = s.now().UTC()
	if err := s.tasks.UpdateTask(ctx, record, tagIDs, replaceTags); err != nil {
		return Task{}, err
	}
	return s.Get(ctx, record.ID, ownerID)
}

// Delete removes a task and its tag links, scoped to its owner.
func (s *Service) Delete(ctx context.Context, taskID int64, ownerID int64) error {
	if s == nil || s.tasks == nil {
		return fmt.Errorf("task service is not configured")
	}
	return s.tasks.DeleteTask(ctx, taskID, ownerID)
}

// resolveTagIDs verifies every requested tag id exists. Missing ids are
// collected and reported together rather than failing on the first one.
func (s *Service) resolveTagIDs(ctx context.Context, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	found, err := s.tags.ListTagsByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	known := make(map[int64]bool, len(found))
	for _, record := range found {
		known[record.ID] = true
	}
	var missing []string
	for _, id := range tagIDs {
		if !known[id] {
			missing = append(missing, strconv.FormatInt(id, 10))
		}
	}
	if len(missing) > 0 {
		return apperrors.WithMetadata(
			apperrors.CodeTaskTagsMissing,
			"one or more tag ids do not exist",
			map[string]string{"missing_tag_ids": strings.Join(missing, ",")},
		)
	}
	return nil
}

func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < titleMinLength || length > titleMaxLength {
		return apperrors.New(apperrors.CodeTaskTitleInvalid, "title must be between 3 and 100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > descriptionMaxLength {
		return apperrors.New(apperrors.CodeTaskDescriptionTooLong, "description must be at most 500 characters")
	}
	return nil
}

func normalizeEndDate(endDate *time.Time) *time.Time {
	if endDate == nil {
		return nil
	}
	utc := endDate.UTC()
	return &utc
}

func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func toTask(record storage.TaskWithTags) Task {
	tags := make([]TagRef, 0, len(record.Tags))
	for _, tag := range record.Tags {
		tags = append(tags, TagRef(tag))
	}
	return Task{
		ID:          record.Task.ID,
		OwnerID:     record.Task.OwnerID,
		Title:       record.Task.Title,
		Description: record.Task.Description,
		StartDate:   record.Task.StartDate,
		EndDate:     record.Task.EndDate,
		Status:      Status(record.Task.Status),
		Priority:    Priority(record.Task.Priority),
		CreatedAt:   record.Task.CreatedAt,
		UpdatedAt:   record.Task.UpdatedAt,
		Tags:        tags,
	}
}
