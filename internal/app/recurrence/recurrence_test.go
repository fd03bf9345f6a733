package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedWalk(pattern string, endDate *time.Time) models.Walk {
	leader := primitive.NewObjectID()
	return models.Walk{
		ID:             primitive.NewObjectID(),
		Date:           utcDate(2024, time.January, 15),
		Areas:          []string{"Ensamble", "Pintura"},
		LeaderID:       &leader,
		CreatedBy:      primitive.NewObjectID(),
		ParticipantIDs: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
		Recurrence: models.Recurrence{
			IsRecurring: true,
			Pattern:     pattern,
			EndDate:     endDate,
		},
	}
}

func TestExpand_WeeklyOpenEnded(t *testing.T) {
	seed := seedWalk(models.RecurrenceWeekly, nil)

	instances, err := Expand(seed, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(instances) != DefaultMaxInstances {
		t.Fatalf("instance count: got %d, want %d", len(instances), DefaultMaxInstances)
	}
	for i, inst := range instances {
		want := seed.Date.AddDate(0, 0, 7*(i+1))
		if !inst.Date.Equal(want) {
			t.Errorf("instance %d date: got %v, want %v", i, inst.Date, want)
		}
	}
}

func TestExpand_EndDateTruncates(t *testing.T) {
	end := utcDate(2024, time.February, 20)
	seed := seedWalk(models.RecurrenceMonthly, &end)

	instances, err := Expand(seed, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// Seed Jan 15, monthly, end Feb 20: only Feb 15 fits.
	if len(instances) != 1 {
		t.Fatalf("instance count: got %d, want 1", len(instances))
	}
	if want := utcDate(2024, time.February, 15); !instances[0].Date.Equal(want) {
		t.Errorf("date: got %v, want %v", instances[0].Date, want)
	}
}

func TestExpand_EndDateBeforeFirstInstance(t *testing.T) {
	end := utcDate(2024, time.January, 18)
	seed := seedWalk(models.RecurrenceWeekly, &end)

	instances, err := Expand(seed, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(instances) != 0 {
		t.Fatalf("instance count: got %d, want 0", len(instances))
	}
}

func TestExpand_MonthlyClampsToMonthEnd(t *testing.T) {
	seed := seedWalk(models.RecurrenceMonthly, nil)
	seed.Date = utcDate(2024, time.January, 31)

	instances, err := Expand(seed, 4)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []time.Time{
		utcDate(2024, time.February, 29), // leap year
		utcDate(2024, time.March, 31),
		utcDate(2024, time.April, 30),
		utcDate(2024, time.May, 31),
	}
	if len(instances) != len(want) {
		t.Fatalf("instance count: got %d, want %d", len(instances), len(want))
	}
	for i := range want {
		if !instances[i].Date.Equal(want[i]) {
			t.Errorf("instance %d date: got %v, want %v", i, instances[i].Date, want[i])
		}
	}
}

func TestExpand_InstanceFields(t *testing.T) {
	seed := seedWalk(models.RecurrenceWeekly, nil)

	instances, err := Expand(seed, 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	inst := instances[0]

	if inst.Recurrence.IsRecurring {
		t.Error("instances must not themselves recur")
	}
	if inst.ParentWalkID == nil || *inst.ParentWalkID != seed.ID {
		t.Errorf("ParentWalkID: got %v, want %s", inst.ParentWalkID, seed.ID.Hex())
	}
	if inst.LeaderID == nil || *inst.LeaderID != *seed.LeaderID {
		t.Error("leader not carried over")
	}
	if inst.CreatedBy != seed.CreatedBy {
		t.Error("creator not carried over")
	}
	if len(inst.Areas) != len(seed.Areas) || inst.Areas[0] != seed.Areas[0] {
		t.Errorf("areas not carried over: %v", inst.Areas)
	}
	if len(inst.ParticipantIDs) != len(seed.ParticipantIDs) {
		t.Errorf("participants not carried over: %v", inst.ParticipantIDs)
	}

	// The copies must be independent of the seed's slices.
	inst.Areas[0] = "Almacén"
	if seed.Areas[0] == "Almacén" {
		t.Error("instance areas alias the seed's slice")
	}
}

func TestExpand_Rejections(t *testing.T) {
	plain := seedWalk(models.RecurrenceWeekly, nil)
	plain.Recurrence.IsRecurring = false
	if _, err := Expand(plain, 0); err == nil {
		t.Error("expanding a non-recurring walk should fail")
	}

	bad := seedWalk("daily", nil)
	if _, err := Expand(bad, 0); err == nil {
		t.Error("unknown pattern should fail")
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Materialize                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type fakeCreator struct {
	created []models.Walk
	failAt  int // 1-based index of the create call that fails, 0 = never
}

func (f *fakeCreator) Create(_ context.Context, w models.Walk) (models.Walk, error) {
	if f.failAt > 0 && len(f.created)+1 == f.failAt {
		return models.Walk{}, errors.New("write concern error")
	}
	w.ID = primitive.NewObjectID()
	f.created = append(f.created, w)
	return w, nil
}

type fakeWalkNotifier struct {
	notified int
}

func (f *fakeWalkNotifier) WalkAssigned(context.Context, models.Walk) error {
	f.notified++
	return nil
}

func TestMaterialize_PersistsAndNotifiesEach(t *testing.T) {
	seed := seedWalk(models.RecurrenceWeekly, nil)
	store := &fakeCreator{}
	notifier := &fakeWalkNotifier{}

	created, err := Materialize(context.Background(), seed, store, notifier)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(created) != DefaultMaxInstances {
		t.Errorf("created: got %d, want %d", len(created), DefaultMaxInstances)
	}
	if notifier.notified != DefaultMaxInstances {
		t.Errorf("notifications: got %d, want %d", notifier.notified, DefaultMaxInstances)
	}
	for _, w := range created {
		if w.ID.IsZero() {
			t.Error("created instance missing assigned ID")
		}
	}
}

func TestMaterialize_PartialFailureKeepsPrefix(t *testing.T) {
	seed := seedWalk(models.RecurrenceWeekly, nil)
	store := &fakeCreator{failAt: 4}
	notifier := &fakeWalkNotifier{}

	created, err := Materialize(context.Background(), seed, store, notifier)
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if len(created) != 3 {
		t.Errorf("prefix: got %d created, want 3", len(created))
	}
	if notifier.notified != 3 {
		t.Errorf("notifications: got %d, want 3", notifier.notified)
	}
}
