package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given global role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: "internal",
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin")
}

// CreateScheduler creates a test scheduler user.
func (f *Fixtures) CreateScheduler(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "scheduler")
}

// CreateWalk creates a one-off test walk on the given date.
func (f *Fixtures) CreateWalk(ctx context.Context, date time.Time, createdBy primitive.ObjectID, leaderID *primitive.ObjectID, areas []string, participants []primitive.ObjectID) models.Walk {
	f.t.Helper()

	now := time.Now().UTC()
	walk := models.Walk{
		ID:             primitive.NewObjectID(),
		Date:           time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Areas:          areas,
		LeaderID:       leaderID,
		CreatedBy:      createdBy,
		ParticipantIDs: participants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("walks").InsertOne(ctx, walk); err != nil {
		f.t.Fatalf("failed to create test walk: %v", err)
	}
	return walk
}

// CreateFinding creates an open test finding on the given walk.
func (f *Fixtures) CreateFinding(ctx context.Context, walkID primitive.ObjectID, area, category string, responsibleID primitive.ObjectID) models.Finding {
	f.t.Helper()

	now := time.Now().UTC()
	finding := models.Finding{
		ID:            primitive.NewObjectID(),
		WalkID:        walkID,
		Area:          area,
		Category:      category,
		Description:   "Test finding description",
		ResponsibleID: responsibleID,
		Status:        models.FindingOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("findings").InsertOne(ctx, finding); err != nil {
		f.t.Fatalf("failed to create test finding: %v", err)
	}
	return finding
}

// CreateNotification creates a test notification for the user.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType string, actionRequired bool, findingID *primitive.ObjectID) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		Type:             notifType,
		Title:            "Test notification",
		Message:          "Test notification message",
		RelatedFindingID: findingID,
		IsActionRequired: actionRequired,
		CreatedAt:        time.Now().UTC(),
	}

	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
