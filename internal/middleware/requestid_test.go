package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	clientID := uuid.NewString()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generated when absent", "", false},
		{"reused when valid", clientID, true},
		{"replaced when not a uuid", "my-request", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID())
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("response request ID %q is not a uuid", got)
			}
			if w.Body.String() != got {
				t.Errorf("context ID %q differs from header %q", w.Body.String(), got)
			}
			if tt.wantSame && got != tt.incoming {
				t.Errorf("expected client ID %q to be reused, got %q", tt.incoming, got)
			}
			if !tt.wantSame && got == tt.incoming {
				t.Errorf("expected a fresh ID, got %q", got)
			}
		})
	}
}
