// internal/domain/models/finding.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Finding statuses. Closed is terminal; there is no reopening path.
const (
	FindingOpen   = "open"
	FindingClosed = "closed"
)

// Finding is an issue recorded during a walk and assigned to a
// responsible user for remediation.
//
// NOTE:
//   - DueDate is nil until the responsible party sets it; it is never
//     set at creation and is set at most once.
//   - Area, when present, must be one of the owning walk's areas.
type Finding struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WalkID primitive.ObjectID `bson:"walk_id" json:"walk_id"`

	Area        string `bson:"area,omitempty" json:"area,omitempty"`
	Category    string `bson:"category" json:"category"`
	Description string `bson:"description" json:"description"`

	ResponsibleID primitive.ObjectID `bson:"responsible_id" json:"responsible_id"`
	DueDate       *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`

	Status         string   `bson:"status" json:"status"` // open | closed
	AttachmentURLs []string `bson:"attachment_urls,omitempty" json:"attachment_urls,omitempty"`

	CloseComment     string     `bson:"close_comment,omitempty" json:"close_comment,omitempty"`
	CloseEvidenceURL string     `bson:"close_evidence_url,omitempty" json:"close_evidence_url,omitempty"`
	ClosedAt         *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsClosed reports whether the finding is in the terminal state.
func (f Finding) IsClosed() bool { return f.Status == FindingClosed }

// IsOverdue reports whether the finding has a due date in the past and
// is still open. now is injected by the caller for testability.
func (f Finding) IsOverdue(now time.Time) bool {
	return f.DueDate != nil && f.DueDate.Before(now) && !f.IsClosed()
}
