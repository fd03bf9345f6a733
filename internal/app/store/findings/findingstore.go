// internal/app/store/findings/findingstore.go
package findingstore

import (
	"context"
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

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("findings")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Finding, error) {
	var f models.Finding
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return models.Finding{}, err
	}
	return f, nil
}

func (s *Store) Create(ctx context.Context, f models.Finding) (models.Finding, error) {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	if f.Status == "" {
		f.Status = models.FindingOpen
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Finding{}, err
	}
	return f, nil
}

// SetDueDateIfUnset assigns the due date only when none is recorded yet.
// The filter settles concurrent assignments at the database: exactly one
// caller matches, the rest see matched=false.
func (s *Store) SetDueDateIfUnset(ctx context.Context, id primitive.ObjectID, due time.Time) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "due_date": nil},
		bson.M{"$set": bson.M{
			"due_date":   due.UTC(),
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// CloseIfOpen transitions the finding to closed only if it is still open.
// A matched=false result means someone else closed it first; the close
// fields of the winner are left untouched.
func (s *Store) CloseIfOpen(ctx context.Context, id primitive.ObjectID, comment, evidenceURL string, closedAt time.Time) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.FindingOpen},
		bson.M{"$set": bson.M{
			"status":             models.FindingClosed,
			"close_comment":      comment,
			"close_evidence_url": evidenceURL,
			"closed_at":          closedAt.UTC(),
			"updated_at":         time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ListByWalk returns the walk's findings, oldest first (walk review order).
func (s *Store) ListByWalk(ctx context.Context, walkID primitive.ObjectID) ([]models.Finding, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return s.list(ctx, bson.M{"walk_id": walkID}, opts)
}

// ListByResponsible returns findings assigned to the user, open first and
// newest within each status.
func (s *Store) ListByResponsible(ctx context.Context, userID primitive.ObjectID) ([]models.Finding, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "status", Value: -1}, // "open" sorts after "closed" descending
		{Key: "created_at", Value: -1},
	})
	return s.list(ctx, bson.M{"responsible_id": userID}, opts)
}

// ListOpenOverdue returns open findings whose due date has passed.
func (s *Store) ListOpenOverdue(ctx context.Context, now time.Time) ([]models.Finding, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	filter := bson.M{
		"status":   models.FindingOpen,
		"due_date": bson.M{"$ne": nil, "$lt": now.UTC()},
	}
	return s.list(ctx, filter, opts)
}

// ListAll returns every finding, newest first. Feeds the reports export.
func (s *Store) ListAll(ctx context.Context) ([]models.Finding, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.list(ctx, bson.M{}, opts)
}

// DeleteByWalk removes all findings of a walk. Returns the number deleted.
// Used by the walk-delete cascade.
func (s *Store) DeleteByWalk(ctx context.Context, walkID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"walk_id": walkID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountOpenByResponsible returns the user's open-finding count for the
// dashboard.
func (s *Store) CountOpenByResponsible(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"responsible_id": userID,
		"status":         models.FindingOpen,
	})
}

func (s *Store) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Finding, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var findings []models.Finding
	if err := cur.All(ctx, &findings); err != nil {
		return nil, err
	}
	return findings, nil
}
