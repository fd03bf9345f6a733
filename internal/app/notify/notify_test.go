package notify

import (
	"context"
	"testing"
	"time"

	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSink struct {
	emitted []models.Notification
}

func (s *fakeSink) Emit(_ context.Context, n models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	s.emitted = append(s.emitted, n)
	return nil
}

func (s *fakeSink) MarkActionCompleted(_ context.Context, findingID primitive.ObjectID, notifType string) error {
	for i, n := range s.emitted {
		if n.RelatedFindingID == nil || *n.RelatedFindingID != findingID {
			continue
		}
		if !n.IsActionRequired {
			continue
		}
		if notifType != "" && n.Type != notifType {
			continue
		}
		s.emitted[i].IsActionCompleted = true
	}
	return nil
}

func (s *fakeSink) pendingCount(userID primitive.ObjectID) int {
	count := 0
	for _, n := range s.emitted {
		if n.UserID == userID && n.IsActionRequired && !n.IsActionCompleted {
			count++
		}
	}
	return count
}

func TestWalkAssigned_NotifiesLeaderAndParticipants(t *testing.T) {
	sink := &fakeSink{}
	nt := New(sink, nil)

	leader := primitive.NewObjectID()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	walk := models.Walk{
		ID:             primitive.NewObjectID(),
		Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LeaderID:       &leader,
		ParticipantIDs: []primitive.ObjectID{p1, p2},
	}

	if err := nt.WalkAssigned(context.Background(), walk); err != nil {
		t.Fatalf("WalkAssigned: %v", err)
	}
	if len(sink.emitted) != 3 {
		t.Fatalf("emitted: got %d, want 3", len(sink.emitted))
	}
	for _, n := range sink.emitted {
		if n.Type != models.NotifWalkAssigned {
			t.Errorf("type: got %q", n.Type)
		}
		if n.IsActionRequired {
			t.Error("walk assignments are acknowledgements, not tasks")
		}
		if n.RelatedWalkID == nil || *n.RelatedWalkID != walk.ID {
			t.Error("walk reference missing")
		}
	}

	// Never a pending task from a walk assignment.
	if sink.pendingCount(leader) != 0 || sink.pendingCount(p1) != 0 {
		t.Error("walk assignments must not count as pending actions")
	}
}

func TestWalkAssigned_LeaderAlsoParticipantNotifiedOnce(t *testing.T) {
	sink := &fakeSink{}
	nt := New(sink, nil)

	leader := primitive.NewObjectID()
	walk := models.Walk{
		ID:             primitive.NewObjectID(),
		Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LeaderID:       &leader,
		ParticipantIDs: []primitive.ObjectID{leader, primitive.NewObjectID()},
	}

	if err := nt.WalkAssigned(context.Background(), walk); err != nil {
		t.Fatalf("WalkAssigned: %v", err)
	}
	if len(sink.emitted) != 2 {
		t.Fatalf("emitted: got %d, want 2 (leader deduplicated)", len(sink.emitted))
	}
}

func TestFindingAssigned_PendingUntilCompleted(t *testing.T) {
	sink := &fakeSink{}
	nt := New(sink, nil)

	responsible := primitive.NewObjectID()
	finding := models.Finding{
		ID:            primitive.NewObjectID(),
		Area:          "Ensamble",
		Category:      "Seguridad",
		Description:   "Guarda suelta",
		ResponsibleID: responsible,
	}
	walk := models.Walk{ID: primitive.NewObjectID()}

	if err := nt.FindingAssigned(context.Background(), finding, walk); err != nil {
		t.Fatalf("FindingAssigned: %v", err)
	}
	if got := sink.pendingCount(responsible); got != 1 {
		t.Fatalf("pending count after assignment: got %d, want 1", got)
	}

	n := sink.emitted[0]
	if n.Type != models.NotifFindingAssigned || !n.IsActionRequired {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.RelatedFindingID == nil || *n.RelatedFindingID != finding.ID {
		t.Error("finding reference missing")
	}

	if err := nt.FindingDueDateSet(context.Background(), finding.ID); err != nil {
		t.Fatalf("FindingDueDateSet: %v", err)
	}
	if got := sink.pendingCount(responsible); got != 0 {
		t.Errorf("pending count after due date: got %d, want 0", got)
	}

	// The row survives completion; nothing is ever deleted.
	if len(sink.emitted) != 1 {
		t.Errorf("emitted rows: got %d, want 1", len(sink.emitted))
	}
	if !sink.emitted[0].IsActionCompleted {
		t.Error("completion flag not set")
	}
}

func TestFindingResolved_CompletesAllForFinding(t *testing.T) {
	sink := &fakeSink{}
	nt := New(sink, nil)

	responsible := primitive.NewObjectID()
	finding := models.Finding{
		ID:            primitive.NewObjectID(),
		Category:      "Orden",
		Area:          "Pintura",
		ResponsibleID: responsible,
	}
	other := models.Finding{
		ID:            primitive.NewObjectID(),
		Category:      "Orden",
		Area:          "Pintura",
		ResponsibleID: responsible,
	}
	walk := models.Walk{ID: primitive.NewObjectID()}

	for _, f := range []models.Finding{finding, other} {
		if err := nt.FindingAssigned(context.Background(), f, walk); err != nil {
			t.Fatalf("FindingAssigned: %v", err)
		}
	}

	if err := nt.FindingResolved(context.Background(), finding.ID); err != nil {
		t.Fatalf("FindingResolved: %v", err)
	}

	// Only the resolved finding's notifications flip.
	if got := sink.pendingCount(responsible); got != 1 {
		t.Errorf("pending count: got %d, want 1 (other finding still open)", got)
	}
}
