package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippet-vault/internal/apperror"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/repository"
)

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "$2a$04$fakehashfortesting"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "alice")

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "alice")

	dup := &model.User{Username: "alice", PasswordHash: "hash"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser(duplicate username) error = %v, want conflict", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "alice")

	got, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("stored hash did not round-trip")
	}

	if _, err := db.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername(missing) error = %v, want not found", err)
	}
}

// One *DB backs all three repositories at once, so the per-entity method
// sets must not shadow each other across the shared receiver.
func TestDBServesAllRepositories(t *testing.T) {
	db := newTestDB(t)

	var users repository.UserRepository = db
	var tags repository.TagRepository = db
	var snippets repository.SnippetRepository = db

	owner := &model.User{Username: "alice", PasswordHash: "hash"}
	if err := users.CreateUser(context.Background(), owner); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tag, err := tags.GetOrCreateByTitle(context.Background(), "go")
	if err != nil {
		t.Fatalf("GetOrCreateByTitle() error = %v", err)
	}

	snippet := &model.Snippet{Title: "t", Content: "c", UserID: owner.ID, Tags: []model.Tag{*tag}}
	if err := snippets.Create(context.Background(), snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	gotUser, err := users.GetUserByID(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	gotSnippet, err := snippets.GetByID(context.Background(), snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if gotUser.Username != "alice" || gotSnippet.CreatedBy != "alice" {
		t.Errorf("round trip mismatch: user %q, snippet created_by %q", gotUser.Username, gotSnippet.CreatedBy)
	}
}
