package app

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoapi/internal/server/config"
	"todoapi/internal/server/repository/memory"
	"todoapi/internal/server/repository/sqlite"
)

func TestOpenRepositorySelectsBackend(t *testing.T) {
	ctx := context.Background()

	repo, err := openRepository(ctx, "memory")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.(*memory.Repository); !ok {
		t.Fatalf("memory DSN opened %T", repo)
	}

	repo, err = openRepository(ctx, "file:app_open?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	if _, ok := repo.(*sqlite.Repository); !ok {
		t.Fatalf("sqlite DSN opened %T", repo)
	}
}

func TestOpenRepositoryPostgresUnreachable(t *testing.T) {
	_, err := openRepository(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	if err == nil {
		t.Fatal("expected error for unreachable postgres")
	}
}

func TestNewWithConfigServesHealth(t *testing.T) {
	cfg := config.Config{HTTPAddr: "127.0.0.1:0", DatabaseDSN: "memory", JWTSecret: "test"}
	a, err := NewWithConfig("test", "now", log.New(io.Discard, "", 0), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health: %d", rr.Code)
	}
}
