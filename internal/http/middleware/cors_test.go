package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		configured []string
		origin     string
		allowed    bool
	}{
		{configured: nil, origin: "http://localhost:3000", allowed: true},
		{configured: nil, origin: "http://127.0.0.1:5173", allowed: true},
		{configured: []string{"https://dash.example"}, origin: "https://dash.example", allowed: true},
		{configured: []string{"https://dash.example"}, origin: "http://localhost:3000", allowed: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.configured))
			r.OPTIONS("/api/rag/ingest", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/rag/ingest", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.origin)
			}
			if !tc.allowed && got != "" {
				t.Fatalf("origin should be rejected, got allow-origin=%q", got)
			}
		})
	}
}
