// internal/app/store/walks/walkstore.go
package walkstore

import (
	"context"
	"errors"
	"time"

	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrBadRecurrence = errors.New(`recurrence pattern must be "weekly"|"monthly"`)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("walks")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Walk, error) {
	var w models.Walk
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		return models.Walk{}, err
	}
	return w, nil
}

// Create inserts a walk. The date is normalized to UTC midnight so that
// date-range queries and recurrence arithmetic stay calendar-aligned.
func (s *Store) Create(ctx context.Context, w models.Walk) (models.Walk, error) {
	if w.Recurrence.IsRecurring &&
		w.Recurrence.Pattern != models.RecurrenceWeekly &&
		w.Recurrence.Pattern != models.RecurrenceMonthly {
		return models.Walk{}, ErrBadRecurrence
	}
	now := time.Now().UTC()
	w.ID = primitive.NewObjectID()
	w.Date = midnightUTC(w.Date)
	w.CreatedAt = now
	w.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, w); err != nil {
		return models.Walk{}, err
	}
	return w, nil
}

// Delete removes a walk by ID. Returns the number of documents deleted (0 or 1).
// Findings of the walk are removed separately by the findings store; callers
// that want the cascade go through the walks feature handler.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListAccessibleTo returns walks the user can see: walks they created, lead,
// or participate in, newest first.
func (s *Store) ListAccessibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Walk, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"created_by": userID},
		bson.M{"leader_id": userID},
		bson.M{"participant_ids": userID},
	}}
	return s.list(ctx, filter)
}

// ListAll returns every walk, newest first. Admin and scheduler views use
// this; everyone else goes through ListAccessibleTo.
func (s *Store) ListAll(ctx context.Context) ([]models.Walk, error) {
	return s.list(ctx, bson.M{})
}

// ListInstancesOf returns the expanded instances of a recurring seed walk,
// in date order.
func (s *Store) ListInstancesOf(ctx context.Context, seedID primitive.ObjectID) ([]models.Walk, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"parent_walk_id": seedID}, opts)
	if err != nil {
		return nil, err
	}
	var walks []models.Walk
	if err := cur.All(ctx, &walks); err != nil {
		return nil, err
	}
	return walks, nil
}

// CountUpcoming returns the number of walks dated on or after from.
func (s *Store) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"date": bson.M{"$gte": midnightUTC(from)}})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Walk, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var walks []models.Walk
	if err := cur.All(ctx, &walks); err != nil {
		return nil, err
	}
	return walks, nil
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
