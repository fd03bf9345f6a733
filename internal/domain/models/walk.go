// internal/domain/models/walk.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recurrence patterns for walks.
const (
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Recurrence describes how a seed walk repeats.
type Recurrence struct {
	IsRecurring bool       `bson:"is_recurring" json:"is_recurring"`
	Pattern     string     `bson:"pattern,omitempty" json:"pattern,omitempty"` // weekly | monthly
	EndDate     *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
}

// Walk is a scheduled shop-floor audit (a Gemba Walk).
//
// Date is a calendar date stored at UTC midnight; it is immutable once
// the walk is created. A walk produced by recurrence expansion carries
// IsRecurring=false and a non-nil ParentWalkID; only the seed walk
// carries the recurrence descriptor.
type Walk struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date  time.Time          `bson:"date" json:"date"`
	Areas []string           `bson:"areas" json:"areas"`

	LeaderID       *primitive.ObjectID  `bson:"leader_id,omitempty" json:"leader_id,omitempty"`
	CreatedBy      primitive.ObjectID   `bson:"created_by" json:"created_by"`
	ParticipantIDs []primitive.ObjectID `bson:"participant_ids,omitempty" json:"participant_ids,omitempty"`

	Recurrence   Recurrence          `bson:"recurrence" json:"recurrence"`
	ParentWalkID *primitive.ObjectID `bson:"parent_walk_id,omitempty" json:"parent_walk_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasArea reports whether name is one of the walk's areas.
func (w Walk) HasArea(name string) bool {
	for _, a := range w.Areas {
		if a == name {
			return true
		}
	}
	return false
}

// HasParticipant reports whether the user is on the walk's participant list.
func (w Walk) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range w.ParticipantIDs {
		if p == userID {
			return true
		}
	}
	return false
}
