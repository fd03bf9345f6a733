// internal/app/lifecycle/controller.go

// Package lifecycle applies state transitions to findings.
//
// Every operation takes the acting user's ID as an explicit argument —
// there is no ambient session state down here. The controller resolves
// the actor's roles through walkpolicy, enforces the transition guards,
// performs the mutation, and emits notifications as part of the same
// request. Concurrent mutations of the same finding are settled by the
// store's atomic conditional updates (matched on current state), not by
// an in-memory lock.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kaizenlab/gembatrack/internal/app/policy/walkpolicy"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WalkGetter is the slice of the walks store the controller needs.
// Absent walks are reported as mongo.ErrNoDocuments.
type WalkGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Walk, error)
}

// FindingStore is the slice of the findings store the controller needs.
// SetDueDateIfUnset and CloseIfOpen are conditional updates matched on the
// finding's current state; matched=false means the precondition no longer
// held when the write reached the database.
type FindingStore interface {
	Create(ctx context.Context, f models.Finding) (models.Finding, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Finding, error)
	SetDueDateIfUnset(ctx context.Context, id primitive.ObjectID, due time.Time) (matched bool, err error)
	CloseIfOpen(ctx context.Context, id primitive.ObjectID, comment, evidenceURL string, closedAt time.Time) (matched bool, err error)
}

// Notifier receives the notification side effects of transitions. The
// implementation writes to the notifications collection synchronously; the
// interface keeps the guard logic independent of the delivery mechanism.
type Notifier interface {
	FindingAssigned(ctx context.Context, f models.Finding, w models.Walk) error
	FindingDueDateSet(ctx context.Context, findingID primitive.ObjectID) error
	FindingResolved(ctx context.Context, findingID primitive.ObjectID) error
}

// Controller validates and applies finding transitions.
type Controller struct {
	walks    WalkGetter
	findings FindingStore
	notifier Notifier
	now      func() time.Time
}

// NewController wires a Controller. now may be nil, in which case
// time.Now is used; tests inject a fixed clock.
func NewController(walks WalkGetter, findings FindingStore, notifier Notifier, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{walks: walks, findings: findings, notifier: notifier, now: now}
}

// CreateFindingInput carries the fields for a new finding. DueDate is
// deliberately absent: it is never set at creation.
type CreateFindingInput struct {
	WalkID         primitive.ObjectID
	Area           string
	Category       string
	Description    string
	ResponsibleID  primitive.ObjectID
	AttachmentURLs []string
}

// CreateFinding records a new finding on a walk. Only the walk's leader
// may; everyone else gets ErrForbidden. The finding starts open with no
// due date, and a finding_assigned notification (action required) goes to
// the responsible party.
func (c *Controller) CreateFinding(ctx context.Context, actorID primitive.ObjectID, in CreateFindingInput) (models.Finding, error) {
	walk, err := c.walks.GetByID(ctx, in.WalkID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Finding{}, ErrNotFound
		}
		return models.Finding{}, err
	}

	set := walkpolicy.Resolve(actorID, walk, nil)
	if !walkpolicy.CanCreateFinding(set) {
		return models.Finding{}, ErrForbidden
	}

	if err := validateCreate(in, walk); err != nil {
		return models.Finding{}, err
	}

	f := models.Finding{
		WalkID:         walk.ID,
		Area:           strings.TrimSpace(in.Area),
		Category:       strings.TrimSpace(in.Category),
		Description:    strings.TrimSpace(in.Description),
		ResponsibleID:  in.ResponsibleID,
		Status:         models.FindingOpen,
		AttachmentURLs: in.AttachmentURLs,
	}

	created, err := c.findings.Create(ctx, f)
	if err != nil {
		return models.Finding{}, err
	}

	if err := c.notifier.FindingAssigned(ctx, created, walk); err != nil {
		return created, err
	}
	return created, nil
}

// SetDueDate sets the finding's due date. Exclusively the responsible
// party's prerogative, and only once: a finding whose due date is already
// set gets ErrInvalidState. On the first successful set, the originating
// finding_assigned notification is flipped to action-completed.
func (c *Controller) SetDueDate(ctx context.Context, actorID, findingID primitive.ObjectID, due time.Time) (models.Finding, error) {
	f, walk, err := c.load(ctx, findingID)
	if err != nil {
		return models.Finding{}, err
	}

	set := walkpolicy.Resolve(actorID, walk, &f)
	if !walkpolicy.CanSetDueDate(set) {
		return models.Finding{}, ErrForbidden
	}
	if f.DueDate != nil {
		return models.Finding{}, ErrInvalidState
	}

	matched, err := c.findings.SetDueDateIfUnset(ctx, findingID, due)
	if err != nil {
		return models.Finding{}, err
	}
	if !matched {
		// A concurrent writer set it between our read and the update.
		return models.Finding{}, ErrInvalidState
	}

	if err := c.notifier.FindingDueDateSet(ctx, findingID); err != nil {
		return models.Finding{}, err
	}

	f.DueDate = &due
	return f, nil
}

// CloseFinding moves the finding to its terminal state. Only the
// responsible party may close. Closing an already-closed finding is a
// no-op success: the state is unchanged and no notification side effects
// are repeated. On the first close, every pending notification that
// references the finding is flipped to action-completed.
func (c *Controller) CloseFinding(ctx context.Context, actorID, findingID primitive.ObjectID, comment, evidenceURL string) (models.Finding, error) {
	f, walk, err := c.load(ctx, findingID)
	if err != nil {
		return models.Finding{}, err
	}

	set := walkpolicy.Resolve(actorID, walk, &f)
	if !walkpolicy.CanClose(set) {
		return models.Finding{}, ErrForbidden
	}

	if f.IsClosed() {
		return f, nil
	}

	closedAt := c.now().UTC()
	matched, err := c.findings.CloseIfOpen(ctx, findingID, comment, evidenceURL, closedAt)
	if err != nil {
		return models.Finding{}, err
	}
	if !matched {
		// Lost the race to another closer; the terminal state is the
		// same either way, and the winner already resolved notifications.
		return c.findings.GetByID(ctx, findingID)
	}

	if err := c.notifier.FindingResolved(ctx, findingID); err != nil {
		return models.Finding{}, err
	}

	f.Status = models.FindingClosed
	f.CloseComment = comment
	f.CloseEvidenceURL = evidenceURL
	f.ClosedAt = &closedAt
	return f, nil
}

// UpdateStatus is the administrative status override, reachable by the
// owning walk's creator or the finding's responsible. The transition into
// closed remains responsible-only — the creator path never closes on
// someone else's behalf. With only two statuses and no reopening, the
// override reduces to: same status is a no-op, reopening is
// ErrInvalidState, closing delegates to CloseFinding.
func (c *Controller) UpdateStatus(ctx context.Context, actorID, findingID primitive.ObjectID, newStatus string) (models.Finding, error) {
	newStatus = strings.ToLower(strings.TrimSpace(newStatus))
	if newStatus != models.FindingOpen && newStatus != models.FindingClosed {
		return models.Finding{}, &ValidationError{Field: "status", Reason: "must be open or closed"}
	}

	f, walk, err := c.load(ctx, findingID)
	if err != nil {
		return models.Finding{}, err
	}

	set := walkpolicy.Resolve(actorID, walk, &f)
	if !walkpolicy.CanOverrideStatus(set) {
		return models.Finding{}, ErrForbidden
	}

	if newStatus == f.Status {
		return f, nil
	}

	if newStatus == models.FindingClosed {
		if !walkpolicy.CanClose(set) {
			return models.Finding{}, ErrForbidden
		}
		return c.CloseFinding(ctx, actorID, findingID, "", "")
	}

	// open after closed: closed is terminal in this design.
	return models.Finding{}, ErrInvalidState
}

// Overdue reports whether the finding is past due and still open,
// using the controller's injected clock.
func (c *Controller) Overdue(f models.Finding) bool {
	return f.IsOverdue(c.now().UTC())
}

func (c *Controller) load(ctx context.Context, findingID primitive.ObjectID) (models.Finding, models.Walk, error) {
	f, err := c.findings.GetByID(ctx, findingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Finding{}, models.Walk{}, ErrNotFound
		}
		return models.Finding{}, models.Walk{}, err
	}
	walk, err := c.walks.GetByID(ctx, f.WalkID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Finding{}, models.Walk{}, ErrNotFound
		}
		return models.Finding{}, models.Walk{}, err
	}
	return f, walk, nil
}

func validateCreate(in CreateFindingInput, walk models.Walk) error {
	if strings.TrimSpace(in.Category) == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	if in.ResponsibleID.IsZero() {
		return &ValidationError{Field: "responsible", Reason: "is required"}
	}
	if area := strings.TrimSpace(in.Area); area != "" && !walk.HasArea(area) {
		return &ValidationError{Field: "area", Reason: "is not one of the walk's areas"}
	}
	return nil
}
