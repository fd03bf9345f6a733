// internal/app/features/walks/walknew.go
package walks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/kaizenlab/gembatrack/internal/app/recurrence"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type personVM struct {
	ID   string
	Name string
}

type newWalkData struct {
	viewdata.BaseVM
	People   []personVM
	FormErr  string
	Date     string
	Areas    string
	LeaderID string
}

// ServeNewWalk renders the Schedule Walk page. Admins and schedulers only.
func (h *Handler) ServeNewWalk(w http.ResponseWriter, r *http.Request) {
	if _, _, _, ok := authz.UserCtx(r); !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if !authz.CanScheduleWalks(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to schedule walks.", httpnav.ResolveBackURL(r, "/walks"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "new walk page")
	defer cancel()

	people, err := h.loadPeople(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "load users for walk form failed", err, "/walks")
		return
	}

	data := newWalkData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Schedule Walk", "/walks"),
		People: people,
	}
	templates.Render(w, r, "walk_new", data)
}

// HandleCreateWalk processes the Schedule Walk form. A recurring walk is
// expanded into its instances immediately, each persisted and announced to
// its leader and participants.
func (h *Handler) HandleCreateWalk(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if !authz.CanScheduleWalks(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to schedule walks.", httpnav.ResolveBackURL(r, "/walks"))
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderNewWithError(w, r, "The form could not be read.")
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.FormValue("date")))
	if err != nil {
		h.renderNewWithError(w, r, "Walk date must be a valid date.")
		return
	}

	areas := splitAreas(r.FormValue("areas"))
	if len(areas) == 0 {
		h.renderNewWithError(w, r, "At least one area is required.")
		return
	}

	walk := models.Walk{
		Date:      date,
		Areas:     areas,
		CreatedBy: userID,
	}

	if leaderHex := r.FormValue("leader_id"); leaderHex != "" {
		leaderID, err := primitive.ObjectIDFromHex(leaderHex)
		if err != nil {
			h.renderNewWithError(w, r, "Bad leader id.")
			return
		}
		walk.LeaderID = &leaderID
	}

	for _, pHex := range r.Form["participant_ids"] {
		pid, err := primitive.ObjectIDFromHex(pHex)
		if err != nil {
			h.renderNewWithError(w, r, "Bad participant id.")
			return
		}
		if walk.LeaderID != nil && pid == *walk.LeaderID {
			continue
		}
		walk.ParticipantIDs = append(walk.ParticipantIDs, pid)
	}

	if r.FormValue("is_recurring") == "on" {
		walk.Recurrence.IsRecurring = true
		walk.Recurrence.Pattern = r.FormValue("pattern")
		if endHex := strings.TrimSpace(r.FormValue("end_date")); endHex != "" {
			end, err := time.Parse("2006-01-02", endHex)
			if err != nil {
				h.renderNewWithError(w, r, "Recurrence end date must be a valid date.")
				return
			}
			walk.Recurrence.EndDate = &end
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create walk")
	defer cancel()

	store := walkstore.New(h.DB)
	seed, err := store.Create(ctx, walk)
	if err == walkstore.ErrBadRecurrence {
		h.renderNewWithError(w, r, "Recurrence must repeat weekly or monthly.")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "create walk failed", err, "/walks")
		return
	}

	notifier := h.notifier()
	if err := notifier.WalkAssigned(ctx, seed); err != nil {
		// The walk exists; a failed announcement should not fail the request.
		h.Log.Warn("walk assignment notification failed",
			zap.String("walk_id", seed.ID.Hex()), zap.Error(err))
	}

	if seed.Recurrence.IsRecurring {
		created, err := recurrence.Materialize(ctx, seed, store, notifier)
		if err != nil {
			h.Log.Error("recurrence expansion incomplete",
				zap.String("walk_id", seed.ID.Hex()),
				zap.Int("created", len(created)),
				zap.Error(err))
			uierrors.RenderForbidden(w, r,
				"The walk was created but not all recurring instances could be scheduled.",
				"/walks")
			return
		}
		h.Log.Info("recurring walk expanded",
			zap.String("walk_id", seed.ID.Hex()),
			zap.Int("instances", len(created)))
	}

	http.Redirect(w, r, "/walks/"+seed.ID.Hex()+"/view", http.StatusSeeOther)
}

func (h *Handler) renderNewWithError(w http.ResponseWriter, r *http.Request, msg string) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "new walk page")
	defer cancel()

	people, err := h.loadPeople(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "load users for walk form failed", err, "/walks")
		return
	}

	data := newWalkData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Schedule Walk", "/walks"),
		People:   people,
		FormErr:  msg,
		Date:     r.FormValue("date"),
		Areas:    r.FormValue("areas"),
		LeaderID: r.FormValue("leader_id"),
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "walk_new", data)
}

func (h *Handler) loadPeople(ctx context.Context) ([]personVM, error) {
	users, err := userstore.New(h.DB).ListActive(ctx)
	if err != nil {
		return nil, err
	}
	people := make([]personVM, 0, len(users))
	for _, u := range users {
		people = append(people, personVM{ID: u.ID.Hex(), Name: u.FullName})
	}
	return people, nil
}

func splitAreas(raw string) []string {
	var areas []string
	for _, part := range strings.Split(raw, ",") {
		if a := strings.TrimSpace(part); a != "" {
			areas = append(areas, a)
		}
	}
	return areas
}
