// Package notify translates walk and finding events into persisted
// notifications. It owns the message wording and the action-required
// semantics; storage is behind the Sink interface so the lifecycle and
// recurrence layers can run against a fake in tests.
package notify

import (
	"context"
	"fmt"

	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sink persists notifications and flips their completion flags.
type Sink interface {
	Emit(ctx context.Context, n models.Notification) error

	// MarkActionCompleted sets IsActionCompleted on every action-required
	// notification referencing the finding. A non-empty notifType restricts
	// the flip to that notification type.
	MarkActionCompleted(ctx context.Context, findingID primitive.ObjectID, notifType string) error
}

// Notifier emits the notification side effects of walk and finding events.
type Notifier struct {
	sink Sink
	log  *zap.Logger
}

func New(sink Sink, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{sink: sink, log: log}
}

// WalkAssigned notifies the leader and every participant that a walk has
// been scheduled for them. These are acknowledgements, not tasks, so they
// never show up in pending-action counts.
func (n *Notifier) WalkAssigned(ctx context.Context, w models.Walk) error {
	recipients := make([]primitive.ObjectID, 0, len(w.ParticipantIDs)+1)
	if w.LeaderID != nil {
		recipients = append(recipients, *w.LeaderID)
	}
	for _, p := range w.ParticipantIDs {
		if w.LeaderID != nil && p == *w.LeaderID {
			continue
		}
		recipients = append(recipients, p)
	}

	walkID := w.ID
	date := w.Date.Format("2006-01-02")
	for _, userID := range recipients {
		err := n.sink.Emit(ctx, models.Notification{
			UserID:           userID,
			Type:             models.NotifWalkAssigned,
			Title:            "Gemba walk scheduled",
			Message:          fmt.Sprintf("You are assigned to a gemba walk on %s.", date),
			RelatedWalkID:    &walkID,
			IsActionRequired: false,
		})
		if err != nil {
			return fmt.Errorf("emit walk assignment for user %s: %w", userID.Hex(), err)
		}
	}

	n.log.Debug("walk assignment notifications emitted",
		zap.String("walk_id", walkID.Hex()),
		zap.Int("recipients", len(recipients)))
	return nil
}

// FindingAssigned notifies the responsible person that a finding needs a
// corrective action. The notification stays pending until the finding gets
// a due date or is closed.
func (n *Notifier) FindingAssigned(ctx context.Context, f models.Finding, w models.Walk) error {
	findingID := f.ID
	walkID := w.ID
	err := n.sink.Emit(ctx, models.Notification{
		UserID:           f.ResponsibleID,
		Type:             models.NotifFindingAssigned,
		Title:            "Finding assigned to you",
		Message:          fmt.Sprintf("A %s finding in %s needs your attention: %s", f.Category, f.Area, f.Description),
		RelatedFindingID: &findingID,
		RelatedWalkID:    &walkID,
		IsActionRequired: true,
	})
	if err != nil {
		return fmt.Errorf("emit finding assignment: %w", err)
	}
	return nil
}

// FindingDueDateSet completes the assignment notification for the finding.
// The row stays in the recipient's feed; only its pending flag changes.
func (n *Notifier) FindingDueDateSet(ctx context.Context, findingID primitive.ObjectID) error {
	if err := n.sink.MarkActionCompleted(ctx, findingID, models.NotifFindingAssigned); err != nil {
		return fmt.Errorf("complete assignment notification: %w", err)
	}
	return nil
}

// FindingResolved completes every outstanding action-required notification
// for the finding.
func (n *Notifier) FindingResolved(ctx context.Context, findingID primitive.ObjectID) error {
	if err := n.sink.MarkActionCompleted(ctx, findingID, ""); err != nil {
		return fmt.Errorf("complete finding notifications: %w", err)
	}
	return nil
}
