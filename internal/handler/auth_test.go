package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippet-vault/internal/apperror"
	"github.com/sakif/snippet-vault/internal/auth"
	"github.com/sakif/snippet-vault/internal/handler"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/service"
)

type memUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func (m *memUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if _, taken := m.users[user.Username]; taken {
		return apperror.Conflict("username is already taken")
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *memUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *memUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *u
	return &result, nil
}

func newAuthHandler(t *testing.T) *handler.AuthHandler {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 15*time.Minute)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewAuthService(
		&memUserRepo{users: make(map[string]*model.User)},
		auth.NewPasswordServiceForTest(4),
		tokens,
		logger,
	)
	return handler.NewAuthHandler(svc, logger)
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleRegister(t *testing.T) {
	h := newAuthHandler(t)

	rr := httptest.NewRecorder()
	h.HandleRegister(rr, postJSON("/register", `{"username":"alice","password":"s3cret"}`))

	assert.Equal(t, http.StatusCreated, rr.Code)

	env := decodeEnvelope(t, rr)
	assert.Equal(t, true, env["success"])

	data := env["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.NotEmpty(t, data["id"])
	assert.NotContains(t, data, "password", "credential must never be echoed")
	assert.NotContains(t, rr.Body.String(), "s3cret")
}

func TestHandleRegister_MissingUsername(t *testing.T) {
	h := newAuthHandler(t)

	rr := httptest.NewRecorder()
	h.HandleRegister(rr, postJSON("/register", `{"password":"pw"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["errors"].(map[string]any), "username")
}

func TestHandleLogin(t *testing.T) {
	h := newAuthHandler(t)

	rr := httptest.NewRecorder()
	h.HandleRegister(rr, postJSON("/register", `{"username":"alice","password":"s3cret"}`))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleLogin(rr, postJSON("/login", `{"username":"alice","password":"s3cret"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	data := env["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	rr := httptest.NewRecorder()
	h.HandleRegister(rr, postJSON("/register", `{"username":"alice","password":"s3cret"}`))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleLogin(rr, postJSON("/login", `{"username":"alice","password":"nope"}`))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Invalid username or password.", env["message"])
}
