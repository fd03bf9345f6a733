// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists notifications. Rows are append-and-flip: inserts plus flag
// updates, never deletes, so a notification remains readable after the walk
// or finding it references is gone.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Emit inserts a notification.
func (s *Store) Emit(ctx context.Context, n models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, n)
	return err
}

// ListByUser returns the user's notifications, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []models.Notification
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips IsRead on one of the user's notifications. The user filter
// keeps one user from marking another's rows.
func (s *Store) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": notificationID, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}

// MarkAllRead flips IsRead on every unread notification of the user.
// Returns the number of rows updated.
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkActionCompleted sets IsActionCompleted on action-required
// notifications referencing the finding. A non-empty notifType restricts
// the update to that type; empty flips every type.
func (s *Store) MarkActionCompleted(ctx context.Context, findingID primitive.ObjectID, notifType string) error {
	filter := bson.M{
		"related_finding_id": findingID,
		"is_action_required": true,
	}
	if notifType != "" {
		filter["type"] = notifType
	}
	_, err := s.c.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"is_action_completed": true}})
	return err
}

// CountUnread returns the user's unread count for the bell badge.
func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

// PendingActionCount returns the user's pending-task count: notifications
// that demand an action which has not happened yet.
func (s *Store) PendingActionCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id":             userID,
		"is_action_required":  true,
		"is_action_completed": false,
	})
}
