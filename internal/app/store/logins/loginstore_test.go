package loginstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	loginstore "github.com/kaizenlab/gembatrack/internal/app/store/logins"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	rec := models.LoginRecord{
		UserID: userID,
		Email:  "ana@example.com",
		Method: "internal",
	}

	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var found models.LoginRecord
	err := db.Collection("login_records").FindOne(ctx, bson.M{"user_id": userID}).Decode(&found)
	if err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if found.At.IsZero() {
		t.Error("expected At to be defaulted")
	}
	if found.Method != "internal" {
		t.Errorf("method: got %q", found.Method)
	}
}

func TestStore_Create_KeepsExplicitTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	if err := store.Create(ctx, models.LoginRecord{UserID: userID, At: at}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var found models.LoginRecord
	if err := db.Collection("login_records").FindOne(ctx, bson.M{"user_id": userID}).Decode(&found); err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if !found.At.Equal(at) {
		t.Errorf("At: got %v, want %v", found.At, at)
	}
}

func TestStore_CreateFrom_ExtractsClientIP(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := httptest.NewRequest("POST", "/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	userID := primitive.NewObjectID()

	if err := store.CreateFrom(ctx, r, userID, "ana@example.com", "google"); err != nil {
		t.Fatalf("CreateFrom failed: %v", err)
	}

	var found models.LoginRecord
	if err := db.Collection("login_records").FindOne(ctx, bson.M{"user_id": userID}).Decode(&found); err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if found.IP != "203.0.113.9" {
		t.Errorf("IP: got %q, want first X-Forwarded-For entry", found.IP)
	}
	if found.Method != "google" || found.Email != "ana@example.com" {
		t.Errorf("record fields: %+v", found)
	}
}
