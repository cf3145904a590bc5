package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"todoapi/internal/server/service"
)

type Router struct {
	services        *service.Services
	logger          *log.Logger
	maxRequestBytes int64
}

// Options tune the HTTP surface. The zero value is usable.
type Options struct {
	MaxRequestBytes int64
	CORSOrigins     []string
}

func NewRouter(services *service.Services, logger *log.Logger, opts Options) http.Handler {
	r := &Router{services: services, logger: logger, maxRequestBytes: opts.MaxRequestBytes}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	if logger != nil {
		mux.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	}
	mux.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorStatus(w, http.StatusNotFound, "route not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	mux.Get("/health", r.handleHealth)
	mux.Get("/swagger.yaml", r.handleSwagger)

	mux.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/register", r.handleRegister)
		api.Post("/auth/login", r.handleLogin)
		api.Post("/auth/refresh", r.handleRefresh)

		api.Group(func(pr chi.Router) {
			pr.Use(r.authMiddleware)
			pr.Get("/todos", r.handleListTodos)
			pr.Post("/todos", r.handleCreateTodo)
			pr.Get("/todos/{id}", r.handleGetTodo)
			pr.Put("/todos/{id}", r.handleUpdateTodo)
			pr.Delete("/todos/{id}", r.handleDeleteTodo)
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: message})
}

// writeError maps a service error to its status code. Internal causes are
// logged and replaced with a generic message.
func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if kind.Internal() {
		r.logf("%s %s: %v", req.Method, req.URL.Path, err)
		writeErrorStatus(w, status, "internal server error")
		return
	}
	var se *service.Error
	msg := http.StatusText(status)
	if errors.As(err, &se) && se.Message != "" {
		msg = se.Message
	}
	writeErrorStatus(w, status, msg)
}

func statusFor(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized, service.KindInvalidCredentials, service.KindTokenExpired:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

// decodeJSON reads a JSON body into v, enforcing the request size limit.
// It writes the error response itself and reports whether decoding succeeded.
func (r *Router) decodeJSON(w http.ResponseWriter, req *http.Request, v any) bool {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeErrorStatus(w, http.StatusRequestEntityTooLarge, "request entity too large")
		case errors.Is(err, io.EOF):
			writeErrorStatus(w, http.StatusBadRequest, "empty body")
		default:
			writeErrorStatus(w, http.StatusBadRequest, "invalid json")
		}
		return false
	}
	return true
}
