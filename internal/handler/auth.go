package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/service"
)

// AuthHandler exposes registration, login and the current-user profile.
//
// HANDLER RESPONSIBILITIES:
//   - Register → POST /api/auth/register (public)
//   - Login    → POST /api/auth/login    (public)
//   - Health   → GET  /api/auth/health   (public)
//   - Me       → GET  /api/auth/me       (authenticated)
//
// The handler only parses HTTP and writes responses; every rule lives in
// service.AuthService.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// UserResponse is the public view of a user. It deliberately has no
// password field at all.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register creates an account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY:  {"username":"alice","email":"alice@x.com","password":"secret1"}
// RESPONSE: 201 {"token":"...","userId":"...","username":"alice","email":"alice@x.com"}
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Login exchanges credentials for a token.
//
// HTTP: POST /api/auth/login
// REQUEST BODY:  {"email":"alice@x.com","password":"secret1"}
// RESPONSE: 200, same shape as Register.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Health is a plain-text liveness probe.
func (h *AuthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Authentication service is running"))
}

// Me returns the profile of the authenticated caller.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}
