package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/config"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/service"
)

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, model.SearchRequest) (*service.SearchResult, error) {
	return &service.SearchResult{State: service.StateEmptyNoCandidates, Products: []model.Product{}}, nil
}

type stubAdvisor struct{}

func (stubAdvisor) Advise(context.Context, model.AdviceRequest) (*model.AdviceResult, error) {
	return &model.AdviceResult{StylingAdvice: "ok", OutfitImageURL: "https://img.example/o.png"}, nil
}

func testServer() *Server {
	cfg := &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Auth:      config.AuthConfig{APIKeys: []string{"user-key"}, AdminKeys: []string{"admin-key"}},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:9002"}},
		LLM:       config.LLMConfig{Timeout: 10 * time.Second},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		Log:       config.LogConfig{Level: "info"},
	}
	return New(cfg, Deps{Search: stubSearcher{}, Advice: stubAdvisor{}}, zap.NewNop())
}

func TestRoutes(t *testing.T) {
	srv := testServer()

	tests := []struct {
		name     string
		method   string
		path     string
		key      string
		body     string
		wantCode int
	}{
		{"health is public", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"search needs a key", http.MethodPost, "/api/v1/search", "", `{"clothingItem":"jeans"}`, http.StatusUnauthorized},
		{"search with key", http.MethodPost, "/api/v1/search", "user-key", `{"clothingItem":"jeans"}`, http.StatusOK},
		{"advice with key", http.MethodPost, "/api/v1/advice", "user-key", `{"clothingItem":"jeans"}`, http.StatusOK},
		{"admin rejects user key", http.MethodGet, "/api/v1/admin/stats", "user-key", "", http.StatusForbidden},
		{"admin without auditing", http.MethodGet, "/api/v1/admin/stats", "admin-key", "", http.StatusServiceUnavailable},
		{"search is POST only", http.MethodGet, "/api/v1/search", "user-key", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestWriteTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Minute, writeTimeout(0))
	assert.Equal(t, 210*time.Second, writeTimeout(90*time.Second))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := testServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
