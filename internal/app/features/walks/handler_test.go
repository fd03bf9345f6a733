package walks_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/kaizenlab/gembatrack/internal/app/features/walks"
	"github.com/kaizenlab/gembatrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*walks.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := walks.NewHandler(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func postForm(target string, form url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestHandleCreateWalk_SchedulerSuccess(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := fixtures.DB()

	leader := fixtures.CreateUser(ctx, "Lena Leader", "lena@test.com", "user")
	part := fixtures.CreateUser(ctx, "Pat Participant", "pat@test.com", "user")

	form := url.Values{
		"date":            {"2024-06-10"},
		"areas":           {"Ensamble, Pintura"},
		"leader_id":       {leader.ID.Hex()},
		"participant_ids": {part.ID.Hex()},
	}

	rec := httptest.NewRecorder()
	handler.HandleCreateWalk(rec, postForm("/walks", form, testutil.SchedulerUser()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	count, err := db.Collection("walks").CountDocuments(ctx, bson.M{"date": time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 walk, got %d", count)
	}

	// Leader and participant each get an assignment notification.
	notifs, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"type": "gemba_walk_assigned"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if notifs != 2 {
		t.Errorf("expected 2 assignment notifications, got %d", notifs)
	}
}

func TestHandleCreateWalk_RegularUserForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := fixtures.DB()

	form := url.Values{
		"date":  {"2024-06-10"},
		"areas": {"Ensamble"},
	}

	rec := httptest.NewRecorder()
	handler.HandleCreateWalk(rec, postForm("/walks", form, testutil.RegularUser()))

	if rec.Code == http.StatusSeeOther {
		t.Fatalf("expected denial, got redirect")
	}
	count, err := db.Collection("walks").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no walks, got %d", count)
	}
}

func TestHandleCreateWalk_RecurringExpandsInstances(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := fixtures.DB()

	form := url.Values{
		"date":         {"2024-06-03"},
		"areas":        {"Soldadura"},
		"is_recurring": {"on"},
		"pattern":      {"weekly"},
		"end_date":     {"2024-06-24"},
	}

	rec := httptest.NewRecorder()
	handler.HandleCreateWalk(rec, postForm("/walks", form, testutil.SchedulerUser()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	// Seed on 6/3 plus instances 6/10, 6/17, 6/24.
	total, err := db.Collection("walks").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if total != 4 {
		t.Errorf("expected 4 walks (seed + 3 instances), got %d", total)
	}
	instances, err := db.Collection("walks").CountDocuments(ctx, bson.M{"parent_walk_id": bson.M{"$ne": nil}})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if instances != 3 {
		t.Errorf("expected 3 instances, got %d", instances)
	}
}

func TestHandleCreateWalk_BadRecurrencePattern(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := fixtures.DB()

	form := url.Values{
		"date":         {"2024-06-03"},
		"areas":        {"Soldadura"},
		"is_recurring": {"on"},
		"pattern":      {"daily"},
	}

	rec := httptest.NewRecorder()
	handler.HandleCreateWalk(rec, postForm("/walks", form, testutil.SchedulerUser()))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
	count, err := db.Collection("walks").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no walks, got %d", count)
	}
}

func TestHandleDeleteWalk_CreatorCascades(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := fixtures.DB()

	creator := fixtures.CreateScheduler(ctx, "Sam Scheduler", "sam@test.com")
	responsible := fixtures.CreateUser(ctx, "Rita Responsible", "rita@test.com", "user")
	walk := fixtures.CreateWalk(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), creator.ID, nil, []string{"Pintura"}, nil)
	fixtures.CreateFinding(ctx, walk.ID, "Pintura", "seguridad", responsible.ID)
	fixtures.CreateFinding(ctx, walk.ID, "Pintura", "calidad", responsible.ID)

	req := testutil.WithUser(httptest.NewRequest("POST", "/walks/"+walk.ID.Hex()+"/delete", nil),
		testutil.UserWithID(creator.ID, "scheduler"))
	req = testutil.WithChiURLParam(req, "id", walk.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleDeleteWalk(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	walksLeft, err := db.Collection("walks").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if walksLeft != 0 {
		t.Errorf("expected walk removed, %d remain", walksLeft)
	}
	findingsLeft, err := db.Collection("findings").CountDocuments(ctx, bson.M{"walk_id": walk.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if findingsLeft != 0 {
		t.Errorf("expected findings cascade-removed, %d remain", findingsLeft)
	}
}

func TestHandleDeleteWalk_StrangerForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := fixtures.DB()

	creator := fixtures.CreateScheduler(ctx, "Sam Scheduler", "sam@test.com")
	walk := fixtures.CreateWalk(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), creator.ID, nil, []string{"Pintura"}, nil)

	req := testutil.WithUser(httptest.NewRequest("POST", "/walks/"+walk.ID.Hex()+"/delete", nil),
		testutil.UserWithID(primitive.NewObjectID(), "user"))
	req = testutil.WithChiURLParam(req, "id", walk.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleDeleteWalk(rec, req)

	if rec.Code == http.StatusSeeOther {
		t.Fatalf("expected denial, got redirect")
	}
	walksLeft, err := db.Collection("walks").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if walksLeft != 1 {
		t.Errorf("expected walk untouched, got %d", walksLeft)
	}
}
