// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, schedulers, and plant-floor users.
//
// NOTE:
//   - Walk leadership/participation is not embedded on User.
//     Walks carry their own leader and participant references.
//   - "scheduler" is the role authorized to create walks; any active
//     user may be named leader, participant, or responsible on one.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // internal | google

	// PasswordHash is a bcrypt hash. Empty for Google-only accounts.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	// GoogleID links the account to Google's subject ID once the user
	// has signed in with Google at least once.
	GoogleID string `bson:"google_id,omitempty" json:"-"`

	Role   string `bson:"role" json:"role"` // admin | scheduler | user
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
