// Package handler contains the HTTP layer: request parsing, the uniform
// response envelope, and per-endpoint projections of domain records.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sakif/snippet-vault/internal/apperror"
)

// Envelope is the uniform response shape. Success responses carry Data,
// error responses carry Errors (per-field validation details); both always
// carry Success and Message.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// page is the paginated payload placed under Envelope.Data, shaped as
// {count, next, previous, results} with absolute page URLs.
type page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

const (
	genericServerError = "An error occurred while processing the request. Please try again later."
	genericNotFound    = "Not found!"
	noDataMessage      = "No data"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeSuccess sends a success envelope. Pass nil data to omit the field.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// writeErrorMessage sends an error envelope with an explicit status.
func writeErrorMessage(w http.ResponseWriter, status int, message string, errs map[string][]string) {
	writeJSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

// writeNoData sends the empty-result condition: HTTP 204 with the
// error-shaped envelope and message "No data".
//
// net/http strips bodies from 204 responses on a real connection, so over
// the wire clients see the status code alone; only recorder-based tests
// observe the envelope. Clients must treat 204 itself as "no data".
func writeNoData(w http.ResponseWriter) {
	writeErrorMessage(w, http.StatusNoContent, noDataMessage, nil)
}

// writeError translates a domain error into the envelope.
//
// Validation errors surface their own message plus a {field: [messages]}
// detail; not-found collapses to a generic message so identifiers do not
// leak; unknown errors are logged with full context and reported as a
// generic 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			var errs map[string][]string
			if appErr.Field != "" {
				errs = map[string][]string{appErr.Field: {appErr.Message}}
			}
			writeErrorMessage(w, http.StatusBadRequest, appErr.Message, errs)
		case errors.Is(err, apperror.ErrNotFound):
			writeErrorMessage(w, http.StatusNotFound, genericNotFound, nil)
		case errors.Is(err, apperror.ErrForbidden):
			writeErrorMessage(w, http.StatusForbidden, appErr.Message, nil)
		case errors.Is(err, apperror.ErrUnauthorized):
			writeErrorMessage(w, http.StatusUnauthorized, appErr.Message, nil)
		case errors.Is(err, apperror.ErrConflict):
			writeErrorMessage(w, http.StatusConflict, appErr.Message, nil)
		default:
			logger.Error("unmapped app error", slog.String("error", err.Error()))
			writeErrorMessage(w, http.StatusInternalServerError, genericServerError, nil)
		}
		return
	}

	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeErrorMessage(w, http.StatusInternalServerError, genericServerError, nil)
}

// NotFoundHandler is mounted as the router's fallback so unknown paths get
// the enveloped 404 instead of chi's plain-text default.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	writeErrorMessage(w, http.StatusNotFound, genericNotFound, nil)
}

// MethodNotAllowedHandler is the router's 405 fallback, enveloped like
// every other error.
func MethodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	writeErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed.", nil)
}

// parseListParams reads limit/offset query parameters; absent or malformed
// values fall back to zero and the service applies its defaults.
func parseListParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

// newPage builds the paginated payload, deriving next/previous URLs from the
// request URL so clients can walk pages without reconstructing query strings.
func newPage(r *http.Request, count, limit, offset int, results any) page {
	p := page{Count: count, Results: results}
	if offset+limit < count {
		p.Next = pageURL(r, limit, offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		p.Previous = pageURL(r, limit, prev)
	}
	return p
}

// pageURL returns the absolute URL for the page starting at offset.
func pageURL(r *http.Request, limit, offset int) *string {
	u := &url.URL{
		Scheme: requestScheme(r),
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// detailPageURL computes the absolute URL of a snippet's retrieve endpoint.
func detailPageURL(r *http.Request, id string) string {
	return fmt.Sprintf("%s://%s/snippets/%s/", requestScheme(r), r.Host, id)
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
