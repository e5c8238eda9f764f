package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery(), Metrics())
	return r
}

func TestRequestID_GeneratesAndReuses(t *testing.T) {
	r := newEngine()
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get("X-Request-ID")
	if generated == "" || w.Body.String() != generated {
		t.Fatalf("generated id %q, body %q", generated, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "reused")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "reused" || w.Body.String() != "reused" {
		t.Fatalf("id not reused: header=%q body=%q", w.Header().Get("X-Request-ID"), w.Body.String())
	}
}

func TestRecovery_PanicsBecome500(t *testing.T) {
	r := newEngine()
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("body = %s", w.Body.String())
	}
}
