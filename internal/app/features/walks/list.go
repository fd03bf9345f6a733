// internal/app/features/walks/list.go
package walks

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
)

type walkRowVM struct {
	ID          string
	Date        string
	Areas       []string
	IsRecurring bool
	IsInstance  bool
}

type listData struct {
	viewdata.BaseVM
	Walks       []walkRowVM
	CanSchedule bool
}

// ServeWalksList shows the walks the user can see. Admins and schedulers see
// every walk; everyone else sees walks they created, lead, or participate in.
func (h *Handler) ServeWalksList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "walks list")
	defer cancel()

	store := walkstore.New(h.DB)
	var (
		list []models.Walk
		err  error
	)
	if role == authz.RoleAdmin || role == authz.RoleScheduler {
		list, err = store.ListAll(ctx)
	} else {
		list, err = store.ListAccessibleTo(ctx, userID)
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "list walks failed", err, "/")
		return
	}

	rows := make([]walkRowVM, 0, len(list))
	for _, walk := range list {
		rows = append(rows, walkRowVM{
			ID:          walk.ID.Hex(),
			Date:        walk.Date.Format("2006-01-02"),
			Areas:       walk.Areas,
			IsRecurring: walk.Recurrence.IsRecurring,
			IsInstance:  walk.ParentWalkID != nil,
		})
	}

	data := listData{
		BaseVM:      viewdata.NewBaseVM(r, h.DB, "Gemba Walks", "/"),
		Walks:       rows,
		CanSchedule: authz.CanScheduleWalks(r),
	}
	templates.Render(w, r, "walk_list", data)
}
