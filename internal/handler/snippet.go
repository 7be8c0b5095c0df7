package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/snippet-vault/internal/apperror"
	"github.com/sakif/snippet-vault/internal/auth"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/service"
)

// SnippetHandler exposes the snippet CRUD endpoints plus the tag-filtered
// listing.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// tagInput is the wire shape of one tag reference in a snippet body.
type tagInput struct {
	Title string `json:"title"`
}

// snippetRequest is the create/update body. Pointer fields distinguish
// "absent" from "present but empty" for partial updates; a nil Tags slice
// means the tag set is untouched.
type snippetRequest struct {
	Title   *string    `json:"title"`
	Content *string    `json:"content"`
	Tags    []tagInput `json:"tags"`
}

func (req *snippetRequest) tagTitles() []string {
	if req.Tags == nil {
		return nil
	}
	titles := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		titles = append(titles, t.Title)
	}
	return titles
}

// snippetJSON is the wire representation of a snippet. DetailPageURL is a
// per-endpoint projection: present in list responses, stripped from the
// single retrieve.
type snippetJSON struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Tags          []model.Tag `json:"tags"`
	CreatedBy     string      `json:"created_by"`
	CreatedAt     time.Time   `json:"created_at"`
	DetailPageURL string      `json:"detail_page_url,omitempty"`
}

func renderSnippet(r *http.Request, s model.Snippet, withDetailURL bool) snippetJSON {
	out := snippetJSON{
		ID:        s.ID,
		Title:     s.Title,
		Content:   s.Content,
		Tags:      s.Tags,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
	if withDetailURL {
		out.DetailPageURL = detailPageURL(r, s.ID)
	}
	return out
}

func renderSnippets(r *http.Request, snippets []model.Snippet) []snippetJSON {
	out := make([]snippetJSON, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, renderSnippet(r, s, true))
	}
	return out
}

// HandleList returns all snippets, paginated.
//
// GET /snippets/?limit=20&offset=0
// An empty page yields the 204 "No data" envelope rather than an empty list.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := clampListParams(parseListParams(r))

	snippets, total, err := h.snippets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(snippets) == 0 {
		writeNoData(w)
		return
	}

	data := newPage(r, total, limit, offset, renderSnippets(r, snippets))
	writeSuccess(w, http.StatusOK, "Success", data)
}

// HandleGetByID returns a single snippet without its detail URL.
//
// GET /snippets/{id}/
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Success", renderSnippet(r, *snippet, false))
}

// HandleCreate creates a snippet owned by the authenticated caller.
//
// POST /snippets/ with {"title", "content", "tags": [{"title"}]}
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Authentication credentials were not provided."))
		return
	}

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	var title, content string
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}

	snippet, err := h.snippets.Create(r.Context(), userID, title, content, req.tagTitles())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Snippet created successfully.",
		renderSnippet(r, *snippet, true))
}

// HandleUpdate applies a partial or full update; owner only.
//
// PUT/PATCH /snippets/{id}/ — absent fields keep their stored values,
// supplied tags replace the tag set.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Authentication credentials were not provided."))
		return
	}

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	snippet, err := h.snippets.Update(r.Context(), r.PathValue("id"), userID, service.UpdateSnippetInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.tagTitles(),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Snippet updated successfully.",
		renderSnippet(r, *snippet, true))
}

// HandleDelete removes a snippet; owner only. The response carries the
// deleted representation.
//
// DELETE /snippets/{id}/
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Authentication credentials were not provided."))
		return
	}

	snippet, err := h.snippets.Delete(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Success", renderSnippet(r, *snippet, true))
}

// HandleListByTag returns snippets carrying the named tag, matched
// case-insensitively, paginated like HandleList.
//
// GET /tag_snippet/{tag_name}/
func (h *SnippetHandler) HandleListByTag(w http.ResponseWriter, r *http.Request) {
	limit, offset := clampListParams(parseListParams(r))

	snippets, total, err := h.snippets.ListByTag(r.Context(), r.PathValue("tag_name"), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(snippets) == 0 {
		writeNoData(w)
		return
	}

	data := newPage(r, total, limit, offset, renderSnippets(r, snippets))
	writeSuccess(w, http.StatusOK, "Success", data)
}

// clampListParams mirrors the service's pagination clamping so page URLs are
// computed from the effective values.
func clampListParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = service.DefaultListLimit
	}
	if limit > service.MaxListLimit {
		limit = service.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
