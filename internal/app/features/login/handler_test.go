package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kaizenlab/gembatrack/internal/app/features/login"
	"github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "gembatrack_test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	handler := login.NewHandler(db, sm, sessions.New(db), false, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func setPassword(t *testing.T, fixtures *testutil.Fixtures, userID primitive.ObjectID, password string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}
	_, err = fixtures.DB().Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password_hash": string(hash)}})
	if err != nil {
		t.Fatalf("failed to set password hash: %v", err)
	}
}

func postLogin(email, password string) *http.Request {
	form := url.Values{
		"email":    {email},
		"password": {password},
	}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ines Ito", "ines@test.com", "user")
	setPassword(t, fixtures, u.ID, "walkthefloor")

	rec := httptest.NewRecorder()
	handler.HandleLoginPost(rec, postLogin("Ines@Test.com", "walkthefloor"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect location: got %q, want /dashboard", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie to be set")
	}

	count, err := fixtures.DB().Collection("login_records").CountDocuments(ctx, bson.M{"user_id": u.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("login records: got %d, want 1", count)
	}

	count, err = fixtures.DB().Collection("sessions").CountDocuments(ctx, bson.M{"user_id": u.ID, "logout_at": nil})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("open activity sessions: got %d, want 1", count)
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ines Ito", "ines@test.com", "user")
	setPassword(t, fixtures, u.ID, "walkthefloor")

	rec := httptest.NewRecorder()
	handler.HandleLoginPost(rec, postLogin("ines@test.com", "wrongwrong"))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("expected wrong password to be rejected")
	}

	count, err := fixtures.DB().Collection("login_records").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("login records after failed login: got %d, want 0", count)
	}
}

func TestHandleLoginPost_UnknownEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleLoginPost(rec, postLogin("nobody@test.com", "whatever1"))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("expected unknown email to be rejected")
	}
}

func TestHandleLoginPost_DisabledAccount(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Dora Baja", "dora@test.com", "user")
	setPassword(t, fixtures, u.ID, "walkthefloor")
	_, err := fixtures.DB().Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"status": "disabled"}})
	if err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.HandleLoginPost(rec, postLogin("dora@test.com", "walkthefloor"))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("expected disabled account to be rejected")
	}
}
