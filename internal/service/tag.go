package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/repository"
)

// TagService exposes read operations over tags. Tags are created only
// implicitly through snippet creation/update (see SnippetService) and never
// deleted here.
type TagService struct {
	tags   repository.TagRepository
	logger *slog.Logger
}

// NewTagService creates a TagService.
func NewTagService(tags repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

// List returns every known tag.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tags.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}
