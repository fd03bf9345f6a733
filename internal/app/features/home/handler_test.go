package home_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaizenlab/gembatrack/internal/app/features/home"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *home.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return home.NewHandler(db, zap.NewNop())
}

func TestNewHandler(t *testing.T) {
	if newTestHandler(t) == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestServeRoot_SignedInRedirectsToDashboard(t *testing.T) {
	handler := newTestHandler(t)

	req := testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.RegularUser())
	rec := httptest.NewRecorder()
	handler.ServeRoot(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want /dashboard", loc)
	}
}
