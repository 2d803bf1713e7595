package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mykitchen/internal/auth"
	"mykitchen/internal/db/mock"
	"mykitchen/internal/handlers"
	"mykitchen/internal/recipes"
	"mykitchen/internal/shopping"
	"mykitchen/internal/social"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewAppliesDefaults(t *testing.T) {
	srv, err := New(Config{Addr: ":8080"})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}
	if srv.httpServer.ReadHeaderTimeout != defaultReadHeaderTimeout {
		t.Fatalf("expected default read header timeout, got %s", srv.httpServer.ReadHeaderTimeout)
	}
	if srv.config.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("expected default shutdown timeout, got %s", srv.config.ShutdownTimeout)
	}
}

func TestNewRejectsInvalidOrigins(t *testing.T) {
	if _, err := New(Config{Addr: ":8080", AllowedOrigins: []string{"not a url"}}); err == nil {
		t.Fatal("expected invalid origin to be rejected")
	}
}

func TestServerHandler(t *testing.T) {
	srv, err := New(Config{Addr: ":9090"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	handler := srv.Handler()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/recipes", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected API routes to be absent without services, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, err := New(Config{Addr: ":0", AllowedOrigins: []string{"https://kitchen.example.com"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "https://kitchen.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://kitchen.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestAPIRoutesMounted(t *testing.T) {
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	revoked := auth.NewMemoryRevocationList(time.Minute)
	t.Cleanup(revoked.Close)

	repo := recipes.NewRepository(database)
	api := &handlers.API{
		Auth:     auth.NewService(database, auth.TokenService{Secret: []byte("server-test-secret-0123456789abcdef"), Issuer: "t", Duration: time.Hour}, revoked),
		Recipes:  recipes.NewService(repo, nil, 0),
		Social:   social.NewService(database, repo),
		Shopping: shopping.NewService(shopping.NewGormStore(database), repo),
	}

	srv, err := New(Config{Addr: ":0", API: api})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/recipes", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected public recipe listing, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/shopping-lists", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected shopping lists to require a token, got %d", rr.Code)
	}
}

func TestStartStop(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	srv, err := New(Config{Addr: addr, ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected ErrServerClosed, got %v", err)
	}
}
