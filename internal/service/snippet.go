package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippet-vault/internal/apperror"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/repository"
)

// Validation limits, matching the storage schema.
const (
	MaxSnippetTitleLength = 255
	MaxTagTitleLength     = 100
	DefaultListLimit      = 20
	MaxListLimit          = 100
)

// permissionDeniedMessage is the message for every ownership failure.
// Delete formerly conflated "not yours" with "not found"; both mutations now
// report a permission error consistently.
const permissionDeniedMessage = "You do not have permission to perform this action."

// SnippetService handles business logic for snippets, including tag
// resolution and ownership authorization on mutations.
type SnippetService struct {
	snippets repository.SnippetRepository
	tags     repository.TagRepository
	logger   *slog.Logger
}

// NewSnippetService creates a SnippetService.
func NewSnippetService(snippets repository.SnippetRepository, tags repository.TagRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		tags:     tags,
		logger:   logger,
	}
}

// UpdateSnippetInput carries a partial update. Nil fields are unset and leave
// the stored value untouched; a non-nil Tags fully replaces the tag set.
type UpdateSnippetInput struct {
	Title   *string
	Content *string
	Tags    []string
}

// Create validates and saves a new snippet owned by userID.
//
// Fields are validated in order (title, content, tags) and the first failure
// aborts before any persistence — no tag rows are created for a snippet that
// fails validation.
func (s *SnippetService) Create(ctx context.Context, userID, title, content string, tagTitles []string) (*model.Snippet, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Content field is required.")
	}
	if err := validateTagTitles(tagTitles); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, tagTitles)
	if err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Title:   title,
		Content: content,
		UserID:  userID,
		Tags:    tags,
	}
	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("user_id", userID),
	)

	// Reload so CreatedBy carries the owner's username.
	return s.snippets.GetByID(ctx, snippet.ID)
}

// GetByID retrieves a snippet. Any authenticated user may read any snippet.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required.")
	}
	return s.snippets.GetByID(ctx, id)
}

// List retrieves snippets with pagination and the total count.
func (s *SnippetService) List(ctx context.Context, limit, offset int) ([]model.Snippet, int, error) {
	opts := clampListOptions(limit, offset)

	total, err := s.snippets.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting snippets: %w", err)
	}
	snippets, err := s.snippets.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, total, nil
}

// ListByTag retrieves snippets carrying a tag whose title matches tagTitle
// case-insensitively, with pagination and the total match count.
func (s *SnippetService) ListByTag(ctx context.Context, tagTitle string, limit, offset int) ([]model.Snippet, int, error) {
	tagTitle = strings.TrimSpace(tagTitle)
	if tagTitle == "" {
		return nil, 0, apperror.ValidationFailed("tag_name", "Tag name is required.")
	}
	opts := clampListOptions(limit, offset)

	total, err := s.snippets.CountByTagTitle(ctx, tagTitle)
	if err != nil {
		return nil, 0, fmt.Errorf("counting snippets by tag: %w", err)
	}
	snippets, err := s.snippets.ListByTagTitle(ctx, tagTitle, opts)
	if err != nil {
		s.logger.Error("failed to list snippets by tag",
			slog.String("tag", tagTitle),
			slog.String("error", err.Error()),
		)
		return nil, 0, fmt.Errorf("listing snippets by tag: %w", err)
	}

	return snippets, total, nil
}

// Update applies a partial update to a snippet owned by userID.
//
// A non-owner gets a permission error and nothing changes. Supplied tags are
// validated and resolved like on create, then fully replace the snippet's tag
// set. The owner and created_at are immutable.
func (s *SnippetService) Update(ctx context.Context, id, userID string, in UpdateSnippetInput) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required.")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != userID {
		return nil, apperror.Forbidden(permissionDeniedMessage)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		snippet.Title = title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, apperror.ValidationFailed("content", "Content field is required.")
		}
		snippet.Content = *in.Content
	}
	if in.Tags != nil {
		if err := validateTagTitles(in.Tags); err != nil {
			return nil, err
		}
		tags, err := s.resolveTags(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		snippet.Tags = tags
	}

	if err := s.snippets.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", id))

	return s.snippets.GetByID(ctx, id)
}

// Delete removes a snippet owned by userID and returns its last
// representation. A non-owner gets a permission error and the snippet is
// left untouched.
func (s *SnippetService) Delete(ctx context.Context, id, userID string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required.")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != userID {
		return nil, apperror.Forbidden(permissionDeniedMessage)
	}

	if err := s.snippets.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("deleting snippet: %w", err)
	}

	s.logger.Info("snippet deleted", slog.String("id", id))

	return snippet, nil
}

// resolveTags maps each title to an existing or freshly created tag, in
// input order. Titles must already be validated.
func (s *SnippetService) resolveTags(ctx context.Context, titles []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(titles))
	for _, title := range titles {
		tag, err := s.tags.GetOrCreateByTitle(ctx, title)
		if err != nil {
			s.logger.Error("failed to resolve tag",
				slog.String("title", title),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("resolving tag %q: %w", title, err)
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "Title field is required.")
	}
	if len(title) > MaxSnippetTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be %d characters or less.", MaxSnippetTitleLength))
	}
	return nil
}

// validateTagTitles enforces the tag list contract: non-empty, no blank
// titles, and pairwise-distinct titles (case-sensitive exact comparison).
func validateTagTitles(titles []string) error {
	if len(titles) == 0 {
		return apperror.ValidationFailed("tags", "Tags field is required.")
	}

	seen := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		if strings.TrimSpace(title) == "" {
			return apperror.ValidationFailed("tags", "Tag title is required.")
		}
		if len(title) > MaxTagTitleLength {
			return apperror.ValidationFailed("tags",
				fmt.Sprintf("Tag title must be %d characters or less.", MaxTagTitleLength))
		}
		if _, dup := seen[title]; dup {
			return apperror.ValidationFailed("tags", "Duplicate tags are not allowed.")
		}
		seen[title] = struct{}{}
	}
	return nil
}

func clampListOptions(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
