package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/repository"
	"github.com/sakif/todo-api/internal/service"
)

// TodoHandler serves /api/todos. Every route sits behind auth.RequireAuth,
// so the caller's user ID is always present in the request context.
type TodoHandler struct {
	todos  *service.TodoService
	logger *slog.Logger
}

func NewTodoHandler(todos *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		todos:  todos,
		logger: logger,
	}
}

// HTTP: GET /api/todos?completed=true|false
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repository.TodoFilter
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, h.logger,
				apperror.ValidationFailed("completed", "completed must be true or false"))
			return
		}
		filter.Completed = &completed
	}

	todos, err := h.todos.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// Count responds with a bare JSON number.
//
// HTTP: GET /api/todos/count
func (h *TodoHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.todos.Count(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// HTTP: GET /api/todos/{id}
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, err := h.todos.Get(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Create adds a todo owned by the caller.
//
// HTTP: POST /api/todos
// REQUEST BODY: {"title":"Buy milk","description":"2 litres","completed":false}
// Only title is required.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.TodoInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	todo, err := h.todos.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Replace handles PUT. Title is required; omitted optional fields keep
// their stored values.
//
// HTTP: PUT /api/todos/{id}
func (h *TodoHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var patch service.TodoPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	todo, err := h.todos.Replace(r.Context(), chi.URLParam(r, "id"), userID(r), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Update handles PATCH: only the fields present in the body change.
//
// HTTP: PATCH /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.TodoPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	todo, err := h.todos.Update(r.Context(), chi.URLParam(r, "id"), userID(r), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HTTP: PATCH /api/todos/{id}/toggle
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	todo, err := h.todos.Toggle(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HTTP: DELETE /api/todos/{id} → 204 No Content
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.todos.Delete(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userID returns the authenticated caller. RequireAuth guarantees it is set;
// an empty value makes the service answer 401.
func userID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
