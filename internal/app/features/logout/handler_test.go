package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaizenlab/gembatrack/internal/app/features/logout"
	"github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const testSessionName = "gembatrack_test"

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", testSessionName, "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler := logout.NewHandler(newSessionManager(t), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest("GET", "/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want %q", loc, "/")
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler := logout.NewHandler(newSessionManager(t), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest("GET", "/logout", nil))

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == testSessionName {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestServeLogout_ClosesActivitySession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	sessStore := sessions.New(db)
	handler := logout.NewHandler(newSessionManager(t), sessStore, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Omar Salida", "omar@test.com", "user")
	if _, err := sessStore.Create(ctx, u.ID, "10.0.0.1", "test-agent"); err != nil {
		t.Fatalf("Create session failed: %v", err)
	}

	req := testutil.WithUser(httptest.NewRequest("GET", "/logout", nil), testutil.UserWithID(u.ID, "user"))
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	count, err := db.Collection("sessions").CountDocuments(ctx, bson.M{"user_id": u.ID, "logout_at": nil})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("open activity sessions after logout: got %d, want 0", count)
	}

	var s sessions.Session
	if err := db.Collection("sessions").FindOne(ctx, bson.M{"user_id": u.ID}).Decode(&s); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if s.EndReason != "logout" {
		t.Errorf("end reason: got %q, want logout", s.EndReason)
	}
}
