// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord is one row of login history.
type LoginRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email  string             `bson:"email" json:"email"`
	Method string             `bson:"method" json:"method"` // internal | google
	IP     string             `bson:"ip,omitempty" json:"ip,omitempty"`
	At     time.Time          `bson:"at" json:"at"`
}
