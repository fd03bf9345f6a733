package sessions_test

import (
	"testing"
	"time"

	"github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	sess, err := store.Create(ctx, userID, "192.168.1.1", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if sess.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if sess.UserID != userID {
		t.Errorf("UserID: got %v, want %v", sess.UserID, userID)
	}
	if sess.IP != "192.168.1.1" {
		t.Errorf("IP: got %q", sess.IP)
	}
	if sess.LoginAt.IsZero() || sess.LastActiveAt.IsZero() {
		t.Error("expected timing fields to be set")
	}
	if sess.LogoutAt != nil {
		t.Error("expected LogoutAt to be nil for new session")
	}
}

func TestStore_Create_ClosesExistingOpenSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	first, err := store.Create(ctx, userID, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, userID, "10.0.0.2", ""); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	active, err := store.GetActiveByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetActiveByUser failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active sessions: got %d, want 1", len(active))
	}
	if active[0].ID == first.ID {
		t.Error("first session should have been closed by the second login")
	}
}

func TestStore_Close(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, primitive.NewObjectID(), "10.0.0.1", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Close(ctx, sess.ID, "logout"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	closed, err := store.GetByUser(ctx, sess.UserID, 1)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(closed) != 1 {
		t.Fatalf("got %d sessions, want 1", len(closed))
	}
	if closed[0].LogoutAt == nil || closed[0].EndReason != "logout" {
		t.Errorf("session not closed: %+v", closed[0])
	}
}

func TestStore_CloseInactiveSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stale, err := store.Create(ctx, primitive.NewObjectID(), "10.0.0.1", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Make the session look idle.
	_, err = db.Collection("sessions").UpdateByID(ctx, stale.ID,
		bson.M{"$set": bson.M{
			"last_active_at": time.Now().UTC().Add(-2 * time.Hour),
		}})
	if err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	fresh, err := store.Create(ctx, primitive.NewObjectID(), "10.0.0.2", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	closed, err := store.CloseInactiveSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CloseInactiveSessions failed: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed: got %d, want 1", closed)
	}

	active, err := store.GetActiveByUser(ctx, fresh.UserID)
	if err != nil {
		t.Fatalf("GetActiveByUser failed: %v", err)
	}
	if len(active) != 1 {
		t.Error("fresh session should remain open")
	}
}

func TestStore_Touch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, primitive.NewObjectID(), "10.0.0.1", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if err := store.Touch(ctx, sess.ID); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	got, err := store.GetActiveByUser(ctx, sess.UserID)
	if err != nil {
		t.Fatalf("GetActiveByUser failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sessions, want 1", len(got))
	}
	if !got[0].LastActiveAt.After(sess.LastActiveAt) {
		t.Error("LastActiveAt not advanced")
	}
}
