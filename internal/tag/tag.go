// Package tag manages the global tag catalog. Tags are shared across all
// users and deletion is blocked while any task still references one.
package tag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
	"github.com/louisbranch/taskdeck/internal/storage"
)

const (
	nameMinLength = 3
	nameMaxLength = 50
)

// Tag is a caller-facing tag.
type Tag struct {
	ID   int64
	Name string
}

// Service coordinates tag operations over the store.
type Service struct {
	tags storage.TagStore
}

// NewService builds a tag service.
func NewService(tags storage.TagStore) *Service {
	return &Service{tags: tags}
}

// Create adds a tag. Names are unique system-wide under case-sensitive
// exact matching.
func (s *Service) Create(ctx context.Context, name string) (Tag, error) {
	if s == nil || s.tags == nil {
		return Tag{}, fmt.Errorf("tag service is not configured")
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return Tag{}, err
	}

	record, err := s.tags.CreateTag(ctx, name)
	if err != nil {
		return Tag{}, err
	}
	return Tag(record), nil
}

// Get returns one tag by id.
func (s *Service) Get(ctx context.Context, tagID int64) (Tag, error) {
	if s == nil || s.tags == nil {
		return Tag{}, fmt.Errorf("tag service is not configured")
	}
	record, err := s.tags.GetTag(ctx, tagID)
	if err != nil {
		return Tag{}, err
	}
	return Tag(record), nil
}

// List returns every tag ordered by name.
func (s *Service) List(ctx context.Context) ([]Tag, error) {
	if s == nil || s.tags == nil {
		return nil, fmt.Errorf("tag service is not configured")
	}
	records, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, 0, len(records))
	for _, record := range records {
		tags = append(tags, Tag(record))
	}
	return tags, nil
}

// Update renames a tag. Uniqueness is re-checked excluding the tag itself,
// so a no-op rename to the current name succeeds.
func (s *Service) Update(ctx context.Context, tagID int64, name string) (Tag, error) {
	if s == nil || s.tags == nil {
		return Tag{}, fmt.Errorf("tag service is not configured")
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return Tag{}, err
	}

	if _, err := s.tags.GetTag(ctx, tagID); err != nil {
		return Tag{}, err
	}
	taken, err := s.tags.TagNameExists(ctx, name, tagID)
	if err != nil {
		return Tag{}, err
	}
	if taken {
		return Tag{}, apperrors.New(apperrors.CodeTagNameTaken, "tag name already exists")
	}
	if err := s.tags.RenameTag(ctx, tagID, name); err != nil {
		return Tag{}, err
	}
	return Tag{ID: tagID, Name: name}, nil
}

// Delete removes a tag once no task references it.
func (s *Service) Delete(ctx context.Context, tagID int64) error {
	if s == nil || s.tags == nil {
		return fmt.Errorf("tag service is not configured")
	}

	if _, err := s.tags.GetTag(ctx, tagID); err != nil {
		return err
	}
	references, err := s.tags.CountTagReferences(ctx, tagID)
	if err != nil {
		return err
	}
	if references > 0 {
		return apperrors.New(apperrors.CodeTagInUse, "tag is referenced by existing tasks")
	}
	return s.tags.DeleteTag(ctx, tagID)
}

func validateName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < nameMinLength || length > nameMaxLength {
		return apperrors.New(apperrors.CodeTagNameInvalid, "tag name must be between 3 and 50 characters")
	}
	return nil
}
