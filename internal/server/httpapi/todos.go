package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todoapi/internal/server/service"
	"todoapi/internal/shared/models"
)

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (r *Router) handleListTodos(w http.ResponseWriter, req *http.Request) {
	q := service.PageQuery{
		Page:    queryInt(req, "page"),
		PerPage: queryInt(req, "per_page"),
	}
	page, err := r.services.Tasks.List(req.Context(), getUserID(req.Context()), q)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (r *Router) handleCreateTodo(w http.ResponseWriter, req *http.Request) {
	var body createTodoRequest
	if !r.decodeJSON(w, req, &body) {
		return
	}
	task, err := r.services.Tasks.Create(req.Context(), getUserID(req.Context()), body.Title, body.Description)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (r *Router) handleGetTodo(w http.ResponseWriter, req *http.Request) {
	task, err := r.services.Tasks.Get(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"))
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (r *Router) handleUpdateTodo(w http.ResponseWriter, req *http.Request) {
	var patch models.TaskPatch
	if !r.decodeJSON(w, req, &patch) {
		return
	}
	task, err := r.services.Tasks.Update(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"), patch)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (r *Router) handleDeleteTodo(w http.ResponseWriter, req *http.Request) {
	if err := r.services.Tasks.Delete(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id")); err != nil {
		r.writeError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt returns nil when the parameter is absent or not an integer, so
// the service falls back to its default.
func queryInt(req *http.Request, key string) *int {
	v := req.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
