package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/snippet-vault/internal/service"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	users  *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registeredUser is the registration response: identity only, never the
// credential.
type registeredUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// HandleRegister creates a new user account.
//
// POST /register with {"username", "password"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully.",
		registeredUser{ID: user.ID, Username: user.Username})
}

// HandleLogin verifies credentials and returns an access token.
//
// POST /login with {"username", "password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Success", map[string]any{
		"token": token,
		"user":  registeredUser{ID: user.ID, Username: user.Username},
	})
}
