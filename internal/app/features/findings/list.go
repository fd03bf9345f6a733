// internal/app/features/findings/list.go
package findings

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	findingstore "github.com/kaizenlab/gembatrack/internal/app/store/findings"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
)

type myFindingRowVM struct {
	ID          string
	WalkID      string
	Area        string
	Category    string
	Description string
	DueDate     string
	Status      string
	IsOverdue   bool
	NeedsDue    bool
}

type myFindingsData struct {
	viewdata.BaseVM
	Findings []myFindingRowVM
}

// ServeMyFindings lists the findings the signed-in user is responsible for,
// open first by virtue of the overdue and needs-due flags drawing the eye.
func (h *Handler) ServeMyFindings(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my findings")
	defer cancel()

	list, err := findingstore.New(h.DB).ListByResponsible(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "list findings failed", err, "/")
		return
	}

	now := time.Now().UTC()
	rows := make([]myFindingRowVM, 0, len(list))
	for _, f := range list {
		row := myFindingRowVM{
			ID:          f.ID.Hex(),
			WalkID:      f.WalkID.Hex(),
			Area:        f.Area,
			Category:    f.Category,
			Description: f.Description,
			Status:      f.Status,
			IsOverdue:   f.IsOverdue(now),
			NeedsDue:    f.DueDate == nil && !f.IsClosed(),
		}
		if f.DueDate != nil {
			row.DueDate = f.DueDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}

	data := myFindingsData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "My Findings", "/"),
		Findings: rows,
	}
	templates.Render(w, r, "finding_list", data)
}
