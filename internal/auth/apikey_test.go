package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", APIKeyMiddleware(apiKey), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		target string
		header string
		want   int
	}{
		{"disabled when unset", "", "/ping", "", http.StatusOK},
		{"missing key", "secret", "/ping", "", http.StatusUnauthorized},
		{"wrong key", "secret", "/ping", "nope", http.StatusForbidden},
		{"header key", "secret", "/ping", "secret", http.StatusOK},
		{"query key", "secret", "/ping?api_key=secret", "", http.StatusOK},
		{"wrong query key", "secret", "/ping?api_key=nope", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.key)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
