package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todoapi/internal/server/config"
	"todoapi/internal/server/repository/sqlite"
	"todoapi/internal/server/service"
	"todoapi/internal/shared/models"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := sqlite.New("file:httpapi_" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	svcs := service.NewServices(repo, config.Config{JWTSecret: "test"})
	return NewRouter(svcs, nil, Options{MaxRequestBytes: 1 << 10})
}

func doJSON(t *testing.T, ts http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func register(t *testing.T, ts http.Handler, email, password string) models.TokenResponse {
	t.Helper()
	rr := doJSON(t, ts, "POST", "/api/v1/auth/register", map[string]string{"email": email, "password": password}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, rr.Code, rr.Body.String())
	}
	var tok models.TokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &tok); err != nil {
		t.Fatal(err)
	}
	return tok
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := doJSON(t, ts, "GET", "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health status: %d", rr.Code)
	}
}

func TestSwagger(t *testing.T) {
	ts := newTestServer(t)
	rr := doJSON(t, ts, "GET", "/swagger.yaml", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/todos/{id}") {
		t.Fatalf("swagger: %d", rr.Code)
	}
}

func TestAuthAndCRUD(t *testing.T) {
	ts := newTestServer(t)

	// Register
	reg := register(t, ts, "u@example.com", "pass")
	if reg.TokenType != "Bearer" || reg.ExpiresIn != 900 || reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Fatalf("bad token pair: %+v", reg)
	}

	// Login -> tokens
	rr := doJSON(t, ts, "POST", "/api/v1/auth/login", map[string]string{"email": "u@example.com", "password": "pass"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var tokens models.TokenResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &tokens)
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("tokens empty")
	}

	// Refresh rotates both tokens
	rr = doJSON(t, ts, "POST", "/api/v1/auth/refresh", map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rr.Code, rr.Body.String())
	}
	var rotated models.TokenResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &rotated)
	if rotated.AccessToken == tokens.AccessToken || rotated.RefreshToken == tokens.RefreshToken {
		t.Fatalf("refresh must issue a new pair")
	}

	authz := bearer(rotated.AccessToken)

	// Create
	rr = doJSON(t, ts, "POST", "/api/v1/todos", map[string]any{"title": "  buy milk ", "description": "2l"}, authz)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	var todo models.Task
	_ = json.Unmarshal(rr.Body.Bytes(), &todo)
	if todo.ID == "" || todo.Title != "buy milk" || todo.Completed || todo.Description == nil || *todo.Description != "2l" {
		t.Fatalf("bad todo: %+v", todo)
	}
	if strings.Contains(rr.Body.String(), "owner") || strings.Contains(rr.Body.String(), "user_id") {
		t.Fatalf("owner must not be serialized: %s", rr.Body.String())
	}

	// List
	rr = doJSON(t, ts, "GET", "/api/v1/todos", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: %d", rr.Code)
	}
	var page models.TaskPage
	_ = json.Unmarshal(rr.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Todos) != 1 || page.Page != 1 || page.PerPage != 20 {
		t.Fatalf("bad page: %+v", page)
	}

	// Get one
	rr = doJSON(t, ts, "GET", "/api/v1/todos/"+todo.ID, nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: %d", rr.Code)
	}

	// Partial update
	rr = doJSON(t, ts, "PUT", "/api/v1/todos/"+todo.ID, map[string]any{"completed": true}, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rr.Code, rr.Body.String())
	}
	var updated models.Task
	_ = json.Unmarshal(rr.Body.Bytes(), &updated)
	if !updated.Completed || updated.Title != "buy milk" || updated.Description == nil || *updated.Description != "2l" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}
	if updated.UpdatedAt.Before(todo.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}

	// Delete twice
	rr = doJSON(t, ts, "DELETE", "/api/v1/todos/"+todo.ID, nil, authz)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = doJSON(t, ts, "DELETE", "/api/v1/todos/"+todo.ID, nil, authz)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rr.Code)
	}
}

func TestAuthMiddleware_Unauthorized(t *testing.T) {
	ts := newTestServer(t)
	rr := doJSON(t, ts, "GET", "/api/v1/todos", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 got %d", rr.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Unauthorized" || body.Message == "" {
		t.Fatalf("bad error body: %+v", body)
	}
}
