// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifFindingAssigned = "finding_assigned"
	NotifWalkAssigned    = "gemba_walk_assigned"
)

// Notification is created synchronously as a side effect of walk or
// finding mutation. It is mutated only to flip IsRead or
// IsActionCompleted, and never deleted — a notification may outlive the
// finding or walk it references.
//
// Pending-task badges count rows where IsActionRequired is set and
// IsActionCompleted is not. Walk-assignment notifications are scheduling
// acknowledgements (IsActionRequired=false) and never contribute to that
// count; finding assignments do until the finding gets a due date or is
// closed.
type Notification struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Type    string `bson:"type" json:"type"`
	Title   string `bson:"title" json:"title"`
	Message string `bson:"message" json:"message"`

	RelatedFindingID *primitive.ObjectID `bson:"related_finding_id,omitempty" json:"related_finding_id,omitempty"`
	RelatedWalkID    *primitive.ObjectID `bson:"related_walk_id,omitempty" json:"related_walk_id,omitempty"`

	IsRead            bool `bson:"is_read" json:"is_read"`
	IsActionRequired  bool `bson:"is_action_required" json:"is_action_required"`
	IsActionCompleted bool `bson:"is_action_completed" json:"is_action_completed"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
