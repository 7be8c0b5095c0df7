package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/service"
)

// TagHandler exposes the tag listing endpoint.
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a TagHandler.
func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// HandleList returns every known tag, unpaginated, in the standard envelope.
// No authentication required.
//
// GET /tags/
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}

	writeSuccess(w, http.StatusOK, "Success", tags)
}
