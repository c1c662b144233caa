package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
	"github.com/louisbranch/taskdeck/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskdeck.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})
	return store
}

func testClock() time.Time {
	return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
}

func seedUser(t *testing.T, store *Store, email, username string) storage.UserRecord {
	t.Helper()
	record, err := store.CreateUser(context.Background(), storage.UserRecord{
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    testClock(),
		UpdatedAt:    testClock(),
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return record
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Open() expected error for blank path")
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "ada@example.com", "ada_lovelace")
	if created.ID == 0 {
		t.Fatal("CreateUser() returned zero id")
	}

	byID, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if byID.Email != "ada@example.com" || byID.Username != "ada_lovelace" {
		t.Fatalf("GetUser() = %+v", byID)
	}
	if !byID.CreatedAt.Equal(testClock()) {
		t.Fatalf("GetUser() CreatedAt = %v, want %v", byID.CreatedAt, testClock())
	}

	byEmail, err := store.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetUserByEmail() id = %d, want %d", byEmail.ID, created.ID)
	}
}

func TestUserNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetUser(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetUser() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteUser(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteUser() error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateUserPassword(ctx, 999, "hash", testClock()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UpdateUserPassword() error = %v, want ErrNotFound", err)
	}
}

func TestUserUniqueConstraints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "ada@example.com", "ada_lovelace")

	_, err := store.CreateUser(ctx, storage.UserRecord{
		Email:        "ada@example.com",
		Username:     "different_name",
		PasswordHash: "hash",
		CreatedAt:    testClock(),
		UpdatedAt:    testClock(),
	})
	if apperrors.CodeOf(err) != apperrors.CodeUserEmailTaken {
		t.Fatalf("CreateUser() duplicate email code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeUserEmailTaken)
	}

	_, err = store.CreateUser(ctx, storage.UserRecord{
		Email:        "other@example.com",
		Username:     "ada_lovelace",
		PasswordHash: "hash",
		CreatedAt:    testClock(),
		UpdatedAt:    testClock(),
	})
	if apperrors.CodeOf(err) != apperrors.CodeUserUsernameTaken {
		t.Fatalf("CreateUser() duplicate username code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeUserUsernameTaken)
	}
}

func TestUserFieldExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "ada@example.com", "ada_lovelace")

	exists, err := store.EmailExists(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if !exists {
		t.Fatal("EmailExists() = false for registered email")
	}
	exists, err = store.UsernameExists(ctx, "someone_else")
	if err != nil {
		t.Fatalf("UsernameExists() error = %v", err)
	}
	if exists {
		t.Fatal("UsernameExists() = true for unknown username")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "ada@example.com", "ada_lovelace")
	rotatedAt := testClock().Add(time.Hour)
	if err := store.UpdateUserPassword(ctx, user.ID, "new-hash", rotatedAt); err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}

	updated, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if updated.PasswordHash != "new-hash" {
		t.Fatalf("GetUser() PasswordHash = %q, want %q", updated.PasswordHash, "new-hash")
	}
	if !updated.UpdatedAt.Equal(rotatedAt) {
		t.Fatalf("GetUser() UpdatedAt = %v, want %v", updated.UpdatedAt, rotatedAt)
	}
}

func TestTagRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTag(ctx, "  urgent  ")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if created.Name != "urgent" {
		t.Fatalf("CreateTag() name = %q, want trimmed %q", created.Name, "urgent")
	}

	got, err := store.GetTag(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTag() error = %v", err)
	}
	if got != created {
		t.Fatalf("GetTag() = %+v, want %+v", got, created)
	}

	if _, err := store.CreateTag(ctx, "urgent"); apperrors.CodeOf(err) != apperrors.CodeTagNameTaken {
		t.Fatalf("CreateTag() duplicate code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeTagNameTaken)
	}
}

func TestListTagsOrdersByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"work", "errand", "home"} {
		if _, err := store.CreateTag(ctx, name); err != nil {
			t.Fatalf("CreateTag(%q) error = %v", name, err)
		}
	}

	tags, err := store.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	want := []string{"errand", "home", "work"}
	if len(tags) != len(want) {
		t.Fatalf("ListTags() returned %d tags, want %d", len(tags), len(want))
	}
	for idx, name := range want {
		if tags[idx].Name != name {
			t.Fatalf("ListTags()[%d] = %q, want %q", idx, tags[idx].Name, name)
		}
	}
}

func TestListTagsByIDsOmitsAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	tags, err := store.ListTagsByIDs(ctx, []int64{first.ID, 999})
	if err != nil {
		t.Fatalf("ListTagsByIDs() error = %v", err)
	}
	if len(tags) != 1 || tags[0].ID != first.ID {
		t.Fatalf("ListTagsByIDs() = %+v, want only id %d", tags, first.ID)
	}

	tags, err = store.ListTagsByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListTagsByIDs(nil) error = %v", err)
	}
	if tags != nil {
		t.Fatalf("ListTagsByIDs(nil) = %+v, want nil", tags)
	}
}

func TestRenameTag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	other, err := store.CreateTag(ctx, "work")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	if err := store.RenameTag(ctx, tag.ID, "household"); err != nil {
		t.Fatalf("RenameTag() error = %v", err)
	}
	got, err := store.GetTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("GetTag() error = %v", err)
	}
	if got.Name != "household" {
		t.Fatalf("GetTag() name = %q, want %q", got.Name, "household")
	}

	if err := store.RenameTag(ctx, other.ID, "household"); apperrors.CodeOf(err) != apperrors.CodeTagNameTaken {
		t.Fatalf("RenameTag() duplicate code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeTagNameTaken)
	}
	if err := store.RenameTag(ctx, 999, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("RenameTag() error = %v, want ErrNotFound", err)
	}
}

func TestTagNameExistsExcludesSelf(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	exists, err := store.TagNameExists(ctx, "home", tag.ID)
	if err != nil {
		t.Fatalf("TagNameExists() error = %v", err)
	}
	if exists {
		t.Fatal("TagNameExists() = true when only match is excluded")
	}
	exists, err = store.TagNameExists(ctx, "home", 0)
	if err != nil {
		t.Fatalf("TagNameExists() error = %v", err)
	}
	if !exists {
		t.Fatal("TagNameExists() = false for existing name")
	}
}

func TestDeleteTagAndReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "ada@example.com", "ada_lovelace")
	tag, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	task, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   user.ID,
		Title:     "water plants",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, []int64{tag.ID})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	count, err := store.CountTagReferences(ctx, tag.ID)
	if err != nil {
		t.Fatalf("CountTagReferences() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("CountTagReferences() = %d, want 1", count)
	}

	if err := store.DeleteTask(ctx, task.ID, user.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	count, err = store.CountTagReferences(ctx, tag.ID)
	if err != nil {
		t.Fatalf("CountTagReferences() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("CountTagReferences() after task delete = %d, want 0", count)
	}

	if err := store.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}
	if err := store.DeleteTag(ctx, tag.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteTag() repeat error = %v, want ErrNotFound", err)
	}
}

func TestTaskRoundTripWithTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "ada@example.com", "ada_lovelace")
	home, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	work, err := store.CreateTag(ctx, "work")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	end := testClock().Add(48 * time.Hour)
	created, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:     user.ID,
		Title:       "file taxes",
		Description: "gather receipts first",
		StartDate:   testClock(),
		EndDate:     &end,
		Status:      1,
		Priority:    2,
		CreatedAt:   testClock(),
		UpdatedAt:   testClock(),
	}, []int64{home.ID, work.ID})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateTask() returned zero id")
	}

	got, err := store.GetTask(ctx, created.ID, user.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Task.Title != "file taxes" || got.Task.Status != 1 || got.Task.Priority != 2 {
		t.Fatalf("GetTask() task = %+v", got.Task)
	}
	if got.Task.EndDate == nil || !got.Task.EndDate.Equal(end) {
		t.Fatalf("GetTask() EndDate = %v, want %v", got.Task.EndDate, end)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("GetTask() returned %d tags, want 2", len(got.Tags))
	}
}

func TestGetTaskScopedToOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "ada@example.com", "ada_lovelace")
	intruder := seedUser(t, store, "eve@example.com", "eve_listens")

	task, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   owner.ID,
		Title:     "private errand",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if _, err := store.GetTask(ctx, task.ID, intruder.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetTask() cross-owner error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTask(ctx, task.ID, intruder.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteTask() cross-owner error = %v, want ErrNotFound", err)
	}
}

func TestUpdateTaskReplacesLinks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "ada@example.com", "ada_lovelace")
	home, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	work, err := store.CreateTag(ctx, "work")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	task, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   user.ID,
		Title:     "plan sprint",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, []int64{home.ID})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	task.Title = "plan next sprint"
	task.Status = 2
	task.UpdatedAt = testClock().Add(time.Hour)
	if err := store.UpdateTask(ctx, task, []int64{work.ID}, true); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}

	got, err := store.GetTask(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Task.Title != "plan next sprint" || got.Task.Status != 2 {
		t.Fatalf("GetTask() task = %+v", got.Task)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != work.ID {
		t.Fatalf("GetTask() tags = %+v, want only %d", got.Tags, work.ID)
	}

	// Omitting replaceTags keeps the existing links intact.
	task.UpdatedAt = testClock().Add(2 * time.Hour)
	if err := store.UpdateTask(ctx, task, nil, false); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	got, err = store.GetTask(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != work.ID {
		t.Fatalf("GetTask() tags after no-replace update = %+v", got.Tags)
	}
}

func TestUpdateTaskClearsLinksWithEmptySet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "ada@example.com", "ada_lovelace")
	tag, err := store.CreateTag(ctx, "home")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	task, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   user.ID,
		Title:     "declutter desk",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, []int64{tag.ID})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if err := store.UpdateTask(ctx, task, nil, true); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	got, err := store.GetTask(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("GetTask() tags = %+v, want none", got.Tags)
	}
}

func TestListTasksForOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada := seedUser(t, store, "ada@example.com", "ada_lovelace")
	grace := seedUser(t, store, "grace@example.com", "grace_hopper")

	for _, title := range []string{"first", "second"} {
		if _, err := store.CreateTask(ctx, storage.TaskRecord{
			OwnerID:   ada.ID,
			Title:     title,
			StartDate: testClock(),
			CreatedAt: testClock(),
			UpdatedAt: testClock(),
		}, nil); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
	}
	if _, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   grace.ID,
		Title:     "compile",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, nil); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	tasks, err := store.ListTasksForOwner(ctx, ada.ID)
	if err != nil {
		t.Fatalf("ListTasksForOwner() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("ListTasksForOwner() returned %d tasks, want 2", len(tasks))
	}
	if tasks[0].Task.Title != "first" || tasks[1].Task.Title != "second" {
		t.Fatalf("ListTasksForOwner() order = %q, %q", tasks[0].Task.Title, tasks[1].Task.Title)
	}

	count, err := store.CountTasksForOwner(ctx, ada.ID)
	if err != nil {
		t.Fatalf("CountTasksForOwner() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("CountTasksForOwner() = %d, want 2", count)
	}
}

func TestTaskTitleUniquePerOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada := seedUser(t, store, "ada@example.com", "ada_lovelace")
	grace := seedUser(t, store, "grace@example.com", "grace_hopper")

	task, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   ada.ID,
		Title:     "write notes",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	_, err = store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   ada.ID,
		Title:     "write notes",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, nil)
	if apperrors.CodeOf(err) != apperrors.CodeTaskTitleTaken {
		t.Fatalf("CreateTask() duplicate code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeTaskTitleTaken)
	}

	// Different owners may reuse the same title.
	if _, err := store.CreateTask(ctx, storage.TaskRecord{
		OwnerID:   grace.ID,
		Title:     "write notes",
		StartDate: testClock(),
		CreatedAt: testClock(),
		UpdatedAt: testClock(),
	}, nil); err != nil {
		t.Fatalf("CreateTask() cross-owner error = %v", err)
	}

	exists, err := store.TaskTitleExists(ctx, ada.ID, "write notes", 0)
	if err != nil {
		t.Fatalf("TaskTitleExists() error = %v", err)
	}
	if !exists {
		t.Fatal("TaskTitleExists() = false for existing title")
	}
	exists, err = store.TaskTitleExists(ctx, ada.ID, "write notes", task.ID)
	if err != nil {
		t.Fatalf("TaskTitleExists() error = %v", err)
	}
	if exists {
		t.Fatal("TaskTitleExists() = true when only match is excluded")
	}
}
