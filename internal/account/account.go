// Package account manages user identities: registration, login, password
// rotation, and deletion. Passwords are stored as one-way hashes and never
// read back in plaintext.
package account

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/louisbranch/taskdeck/internal/auth/password"
	"github.com/louisbranch/taskdeck/internal/auth/token"
	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
	"github.com/louisbranch/taskdeck/internal/storage"
)

const (
	usernameMinLength = 6
	usernameMaxLength = 50
)

// User is a caller-facing user profile. The password hash stays inside the
// service boundary.
type User struct {
	ID        int64
	Email     string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoginResult pairs a bearer credential with the profile it was issued for.
type LoginResult struct {
	Credential string
	User       User
}

// Service coordinates user identity operations over the stores.
type Service struct {
	users  storage.UserStore
	tasks  storage.TaskStore
	tokens *token.Service
	now    func() time.Time
}

// NewService builds an account service. A nil now falls back to time.Now.
func NewService(users storage.UserStore, tasks storage.TaskStore, tokens *token.Service, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{users: users, tasks: tasks, tokens: tokens, now: now}
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, email, username, plaintext string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("account service is not configured")
	}
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	if err := validateUsername(username); err != nil {
		return User{}, err
	}
	if plaintext == "" {
		return User{}, apperrors.New(apperrors.CodeUserPasswordRequired, "password is required")
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	record, err := s.users.CreateUser(ctx, storage.UserRecord{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, err
	}
	return toUser(record), nil
}

// Login verifies credentials and issues a bearer token. An unknown email and
// a wrong password both collapse into the same generic failure so the caller
// cannot probe which addresses are registered.
func (s *Service) Login(ctx context.Context, email, plaintext string) (LoginResult, error) {
	if s == nil || s.users == nil || s.tokens == nil {
		return LoginResult{}, fmt.Errorf("account service is not configured")
	}

	record, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return LoginResult{}, apperrors.New(apperrors.CodeCredentialsInvalid, "invalid email or password")
		}
		return LoginResult{}, err
	}
	if !password.Verify(plaintext, record.PasswordHash) {
		return LoginResult{}, apperrors.New(apperrors.CodeCredentialsInvalid, "invalid email or password")
	}

	credential, err := s.tokens.Issue(token.Identity{
		ID:       record.ID,
		Username: record.Username,
		Email:    record.Email,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue credential: %w", err)
	}
	return LoginResult{Credential: credential, User: toUser(record)}, nil
}

// Get returns one user profile. Single-resource reads are self-access only:
// absence is checked before the access guard so a missing id reports as not
// found rather than forbidden.
func (s *Service) Get(ctx context.Context, userID int64, callerID int64) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("account service is not configured")
	}

	record, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if record.ID != callerID {
		return User{}, apperrors.New(apperrors.CodeForbidden, "users may only read their own profile")
	}
	return toUser(record), nil
}

// GetCurrent returns the caller's own profile.
func (s *Service) GetCurrent(ctx context.Context, callerID int64) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("account service is not configured")
	}
	record, err := s.users.GetUser(ctx, callerID)
	if err != nil {
		return User{}, err
	}
	return toUser(record), nil
}

// ChangePassword rotates the caller's password. The replacement is rejected
// if it verifies against the stored hash, so rotating to the same plaintext
// always fails. That check runs before the replacement is hashed.
func (s *Service) ChangePassword(ctx context.Context, userID int64, callerID int64, plaintext string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("account service is not configured")
	}

	record, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if record.ID != callerID {
		return User{}, apperrors.New(apperrors.CodeForbidden, "users may only update their own profile")
	}
	if plaintext == "" {
		return User{}, apperrors.New(apperrors.CodeUserPasswordRequired, "password is required")
	}
	if password.Verify(plaintext, record.PasswordHash) {
		return User{}, apperrors.New(apperrors.CodeUserPasswordReused, "new password must differ from the current one")
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	updatedAt := s.now().UTC()
	if err := s.users.UpdateUserPassword(ctx, record.ID, hash, updatedAt); err != nil {
		return User{}, err
	}
	record.UpdatedAt = updatedAt
	return toUser(record), nil
}

// Delete removes the caller's account. Deletion is refused while the user
// still owns tasks so no task can be orphaned.
func (s *Service) Delete(ctx context.Context, userID int64, callerID int64) error {
	if s == nil || s.users == nil || s.tasks == nil {
		return fmt.Errorf("account service is not configured")
	}

	record, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if record.ID != callerID {
		return apperrors.New(apperrors.CodeForbidden, "users may only delete their own profile")
	}

	owned, err := s.tasks.CountTasksForOwner(ctx, record.ID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return apperrors.New(apperrors.CodeUserOwnsTasks, "user still owns tasks")
	}
	return s.users.DeleteUser(ctx, record.ID)
}

func validateEmail(email string) error {
	if email == "" {
		return apperrors.New(apperrors.CodeUserEmailRequired, "email is required")
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return apperrors.New(apperrors.CodeUserEmailInvalid, "email format is invalid")
	}
	return nil
}

func validateUsername(username string) error {
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return apperrors.New(apperrors.CodeUserUsernameInvalid, "username must be between 6 and 50 characters")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return apperrors.New(apperrors.CodeUserUsernameInvalid, "username may only contain letters, digits, and underscores")
		}
	}
	return nil
}

func toUser(record storage.UserRecord) User {
	return User{
		ID:        record.ID,
		Email:     record.Email,
		Username:  record.Username,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
