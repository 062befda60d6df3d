package paas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"yieldmarket/internal/config"
)

type sink struct {
	mu     sync.Mutex
	logins int
	logs   []CreateLogRequest
	auth   []string
}

func (s *sink) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.logins++
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "tok",
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/api/v1/logs", func(w http.ResponseWriter, r *http.Request) {
		var req CreateLogRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.logs = append(s.logs, req)
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func TestNewClientRequiresConfig(t *testing.T) {
	if c := NewClient(config.PaaSConfig{}); c != nil {
		t.Fatalf("expected nil client without base url")
	}
	if c := NewClient(config.PaaSConfig{BaseURL: "http://x", APIKey: "k"}); c == nil {
		t.Fatalf("expected client")
	}
}

func TestCreateLogLogsInOnce(t *testing.T) {
	s := &sink{}
	srv := httptest.NewServer(s.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key"}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := c.CreateLog(ctx, CreateLogRequest{Action: "reset_user_yield", Level: "info"}); err != nil {
			t.Fatalf("create log: %v", err)
		}
	}
	if s.logins != 1 {
		t.Fatalf("logins=%d want=1", s.logins)
	}
	if len(s.logs) != 2 {
		t.Fatalf("logs=%d want=2", len(s.logs))
	}
	if s.logs[0].Agent != defaultAgent {
		t.Fatalf("agent=%q want=%q", s.logs[0].Agent, defaultAgent)
	}
	if s.auth[1] != "Bearer tok" {
		t.Fatalf("auth=%q", s.auth[1])
	}
}

func TestLogBestEffortCtxWithoutClient(t *testing.T) {
	// No client in context: must return without panicking.
	LogBestEffortCtx(context.Background(), "x", "info", nil)

	s := &sink{}
	srv := httptest.NewServer(s.handler())
	defer srv.Close()
	c := &Client{BaseURL: srv.URL, APIKey: "key", Agent: "custom"}
	LogBestEffortCtx(WithClient(context.Background(), c), "x", "warn", map[string]any{"k": "v"})
	if len(s.logs) != 1 || s.logs[0].Agent != "custom" || s.logs[0].Level != "warn" {
		t.Fatalf("logs=%+v", s.logs)
	}
}

func TestLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL, APIKey: "key"}
	if err := c.Login(context.Background()); err == nil {
		t.Fatalf("expected login error")
	}
}
