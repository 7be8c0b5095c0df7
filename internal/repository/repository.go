// Package repository declares the storage interfaces consumed by the service
// layer. The concrete SQLite implementation lives in repository/sqlite;
// service tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/snippet-vault/internal/model"
)

// ListOptions holds limit/offset pagination parameters. The service clamps
// them to sane values before they reach a repository.
type ListOptions struct {
	Limit  int
	Offset int
}

// SnippetRepository persists snippets together with their tag associations.
//
// Create and Update receive snippets whose Tags are already resolved (each
// tag has an ID); the repository only maintains the association rows.
// Loaded snippets come back with Tags and CreatedBy populated.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Count(ctx context.Context) (int, error)
	// ListByTagTitle matches the tag title case-insensitively.
	ListByTagTitle(ctx context.Context, title string, opts ListOptions) ([]model.Snippet, error)
	CountByTagTitle(ctx context.Context, title string) (int, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

// TagRepository persists tags.
//
// GetOrCreateByTitle is the storage half of tag resolution: it returns the
// existing tag with exactly that title, or inserts a new one. Concurrent
// calls with the same new title must converge on a single row.
type TagRepository interface {
	GetOrCreateByTitle(ctx context.Context, title string) (*model.Tag, error)
	ListAll(ctx context.Context) ([]model.Tag, error)
}

// UserRepository persists user accounts.
//
// Method names carry the entity so one implementation can satisfy this
// interface alongside SnippetRepository on the same receiver.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}
