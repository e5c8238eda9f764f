package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/repo"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "admin.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db)
	return r, db
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, db := newTestRouter(t)

	if _, err := repo.CreateSubscription(context.Background(), db, "@alice:example.org", "!r:example.org", "tok"); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	w := doRequest(r, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Status        string `json:"status"`
		Sessions      int64  `json:"sessions"`
		Subscriptions int64  `json:"subscriptions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Sessions != 0 || body.Subscriptions != 1 {
		t.Fatalf("healthz body = %+v", body)
	}
}

func TestDeleteSession(t *testing.T) {
	r, db := newTestRouter(t)

	// No stored session yet.
	w := doRequest(r, http.MethodDelete, "/admin/sessions/@bot:example.org")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	if _, err := repo.CreateSession(context.Background(), db, "@bot:example.org", "token", "DEV"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	w = doRequest(r, http.MethodDelete, "/admin/sessions/@bot:example.org")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	if _, err := repo.GetSession(context.Background(), db, "@bot:example.org"); err == nil {
		t.Fatal("session still present after invalidation")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	// Generate at least one instrumented request first.
	_ = doRequest(r, http.MethodGet, "/healthz")

	w := doRequest(r, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "admin_http_requests_total") {
		t.Fatal("admin request counter missing from /metrics output")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Fatalf("X-Request-ID = %q, want fixed-id", got)
	}

	w = doRequest(r, http.MethodGet, "/healthz")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("no generated request id")
	}
}
