// Package recurrence expands a recurring walk definition into its series of
// concrete scheduled instances and persists them.
//
// Expansion happens once, eagerly, when the recurring walk is created. Each
// instance is an ordinary walk pointing back at its seed via ParentWalkID,
// so deleting or editing an instance never touches its siblings.
package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxInstances bounds an open-ended series (no end date).
const DefaultMaxInstances = 12

// Creator persists a single walk instance.
type Creator interface {
	Create(ctx context.Context, w models.Walk) (models.Walk, error)
}

// Notifier announces a scheduled walk to its leader and participants.
type Notifier interface {
	WalkAssigned(ctx context.Context, w models.Walk) error
}

// Expand computes the instance walks for a recurring seed. The seed itself is
// not included; instances start one interval after the seed's date.
//
// A nil EndDate yields exactly maxInstances instances. With an EndDate the
// series is truncated to instances dated on or before it, which can produce
// an empty slice. maxInstances <= 0 selects DefaultMaxInstances.
func Expand(seed models.Walk, maxInstances int) ([]models.Walk, error) {
	if !seed.Recurrence.IsRecurring {
		return nil, fmt.Errorf("walk %s is not recurring", seed.ID.Hex())
	}
	pattern := seed.Recurrence.Pattern
	if pattern != models.RecurrenceWeekly && pattern != models.RecurrenceMonthly {
		return nil, fmt.Errorf("unknown recurrence pattern %q", pattern)
	}
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}

	instances := make([]models.Walk, 0, maxInstances)
	for i := 1; i <= maxInstances; i++ {
		var date time.Time
		switch pattern {
		case models.RecurrenceWeekly:
			date = seed.Date.AddDate(0, 0, 7*i)
		case models.RecurrenceMonthly:
			date = addMonthsClamped(seed.Date, i)
		}
		if seed.Recurrence.EndDate != nil && date.After(*seed.Recurrence.EndDate) {
			break
		}
		instances = append(instances, instanceOf(seed, date))
	}
	return instances, nil
}

// Materialize expands the seed and persists every instance, notifying the
// leader and participants of each as it lands. On a storage error the
// already persisted prefix is returned alongside the error so callers can
// report partial progress; notification errors are not fatal to the series
// and are surfaced the same way only when emission itself fails.
func Materialize(ctx context.Context, seed models.Walk, store Creator, notifier Notifier) ([]models.Walk, error) {
	instances, err := Expand(seed, DefaultMaxInstances)
	if err != nil {
		return nil, err
	}

	created := make([]models.Walk, 0, len(instances))
	for _, inst := range instances {
		saved, err := store.Create(ctx, inst)
		if err != nil {
			return created, fmt.Errorf("persist walk instance for %s: %w",
				inst.Date.Format("2006-01-02"), err)
		}
		created = append(created, saved)
		if notifier != nil {
			if err := notifier.WalkAssigned(ctx, saved); err != nil {
				return created, fmt.Errorf("notify walk instance for %s: %w",
					inst.Date.Format("2006-01-02"), err)
			}
		}
	}
	return created, nil
}

// instanceOf clones the seed's scheduling fields into a one-off walk at date.
func instanceOf(seed models.Walk, date time.Time) models.Walk {
	parent := seed.ID
	w := models.Walk{
		Date:         date,
		Areas:        append([]string(nil), seed.Areas...),
		CreatedBy:    seed.CreatedBy,
		ParentWalkID: &parent,
	}
	if seed.LeaderID != nil {
		leader := *seed.LeaderID
		w.LeaderID = &leader
	}
	if len(seed.ParticipantIDs) > 0 {
		w.ParticipantIDs = append([]primitive.ObjectID(nil), seed.ParticipantIDs...)
	}
	return w
}

// addMonthsClamped advances t by n calendar months. When the seed day does
// not exist in the target month (e.g. Jan 31 + 1 month), the date clamps to
// that month's last day instead of spilling into the next one, which is what
// time.AddDate would do.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}
