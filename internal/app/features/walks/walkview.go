// internal/app/features/walks/walkview.go
package walks

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/kaizenlab/gembatrack/internal/app/policy/walkpolicy"
	findingstore "github.com/kaizenlab/gembatrack/internal/app/store/findings"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type findingRowVM struct {
	ID          string
	Area        string
	Category    string
	Description string
	Responsible string
	DueDate     string
	Status      string
	IsOverdue   bool
}

type walkViewData struct {
	viewdata.BaseVM
	WalkID           string
	Date             string
	Areas            []string
	LeaderName       string
	ParticipantNames []string
	IsRecurring      bool
	Pattern          string
	RecurrenceEnd    string
	IsInstance       bool
	ParentWalkID     string
	Findings         []findingRowVM
	CanCreateFinding bool
	CanDelete        bool
}

// ServeWalkView renders a walk with its findings. Any signed-in user may
// view a walk; mutation affordances depend on the viewer's walk roles.
func (h *Handler) ServeWalkView(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	walkID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "walk view")
	defer cancel()

	walk, err := walkstore.New(h.DB).GetByID(ctx, walkID)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "load walk failed", err, "/walks")
		return
	}

	findings, err := findingstore.New(h.DB).ListByWalk(ctx, walk.ID)
	if err != nil {
		h.ErrLog.Internal(w, r, "load findings for walk failed", err, "/walks")
		return
	}

	names, err := h.userNames(ctx, collectUserIDs(walk, findings))
	if err != nil {
		h.ErrLog.Internal(w, r, "load user names for walk failed", err, "/walks")
		return
	}

	now := time.Now().UTC()
	rows := make([]findingRowVM, 0, len(findings))
	for _, f := range findings {
		row := findingRowVM{
			ID:          f.ID.Hex(),
			Area:        f.Area,
			Category:    f.Category,
			Description: f.Description,
			Responsible: names[f.ResponsibleID],
			Status:      f.Status,
			IsOverdue:   f.IsOverdue(now),
		}
		if f.DueDate != nil {
			row.DueDate = f.DueDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}

	roles := walkpolicy.Resolve(userID, walk, nil)

	data := walkViewData{
		BaseVM:           viewdata.NewBaseVM(r, h.DB, "Walk "+walk.Date.Format("Jan 2, 2006"), "/walks"),
		WalkID:           walk.ID.Hex(),
		Date:             walk.Date.Format("2006-01-02"),
		Areas:            walk.Areas,
		IsRecurring:      walk.Recurrence.IsRecurring,
		Pattern:          walk.Recurrence.Pattern,
		Findings:         rows,
		CanCreateFinding: walkpolicy.CanCreateFinding(roles),
		CanDelete:        role == authz.RoleAdmin || roles.Has(walkpolicy.RoleCreator),
	}
	if walk.LeaderID != nil {
		data.LeaderName = names[*walk.LeaderID]
	}
	for _, pid := range walk.ParticipantIDs {
		data.ParticipantNames = append(data.ParticipantNames, names[pid])
	}
	if walk.Recurrence.EndDate != nil {
		data.RecurrenceEnd = walk.Recurrence.EndDate.Format("2006-01-02")
	}
	if walk.ParentWalkID != nil {
		data.IsInstance = true
		data.ParentWalkID = walk.ParentWalkID.Hex()
	}

	templates.Render(w, r, "walk_view", data)
}

// userNames resolves display names for the given user ids. Users that were
// deleted since the walk was scheduled show as "(removed)".
func (h *Handler) userNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	users := userstore.New(h.DB)
	names := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if _, done := names[id]; done {
			continue
		}
		u, err := users.GetByID(ctx, id)
		if err == mongo.ErrNoDocuments {
			names[id] = "(removed)"
			continue
		}
		if err != nil {
			return nil, err
		}
		names[id] = u.FullName
	}
	return names, nil
}

func collectUserIDs(walk models.Walk, findings []models.Finding) []primitive.ObjectID {
	ids := []primitive.ObjectID{walk.CreatedBy}
	if walk.LeaderID != nil {
		ids = append(ids, *walk.LeaderID)
	}
	ids = append(ids, walk.ParticipantIDs...)
	for _, f := range findings {
		ids = append(ids, f.ResponsibleID)
	}
	return ids
}
