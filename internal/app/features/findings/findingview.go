// internal/app/features/findings/findingview.go
package findings

import (
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
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type findingViewData struct {
	viewdata.BaseVM
	FindingID        string
	WalkID           string
	WalkDate         string
	Area             string
	Category         string
	Description      string
	ResponsibleName  string
	DueDate          string
	Status           string
	IsOverdue        bool
	AttachmentURLs   []string
	CloseComment     string
	CloseEvidenceURL string
	ClosedAt         string

	CanSetDueDate bool
	CanClose      bool
	CanOverride   bool
}

// ServeFindingView renders a finding with the actions the viewer's walk
// roles permit. Due date entry shows only while unset; close actions only
// while open.
func (h *Handler) ServeFindingView(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	findingID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Finding not found.", "/findings")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "finding view")
	defer cancel()

	finding, err := findingstore.New(h.DB).GetByID(ctx, findingID)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Finding not found.", "/findings")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "load finding failed", err, "/findings")
		return
	}

	walk, err := walkstore.New(h.DB).GetByID(ctx, finding.WalkID)
	if err != nil {
		h.ErrLog.Internal(w, r, "load walk for finding failed", err, "/findings")
		return
	}

	responsibleName := "(removed)"
	if u, err := userstore.New(h.DB).GetByID(ctx, finding.ResponsibleID); err == nil {
		responsibleName = u.FullName
	} else if err != mongo.ErrNoDocuments {
		h.ErrLog.Internal(w, r, "load responsible user failed", err, "/findings")
		return
	}

	roles := walkpolicy.Resolve(userID, walk, &finding)
	open := !finding.IsClosed()

	data := findingViewData{
		BaseVM:           viewdata.NewBaseVM(r, h.DB, "Finding", "/walks/"+walk.ID.Hex()+"/view"),
		FindingID:        finding.ID.Hex(),
		WalkID:           walk.ID.Hex(),
		WalkDate:         walk.Date.Format("2006-01-02"),
		Area:             finding.Area,
		Category:         finding.Category,
		Description:      finding.Description,
		ResponsibleName:  responsibleName,
		Status:           finding.Status,
		IsOverdue:        finding.IsOverdue(time.Now().UTC()),
		AttachmentURLs:   finding.AttachmentURLs,
		CloseComment:     finding.CloseComment,
		CloseEvidenceURL: finding.CloseEvidenceURL,

		CanSetDueDate: open && finding.DueDate == nil && walkpolicy.CanSetDueDate(roles),
		CanClose:      open && walkpolicy.CanClose(roles),
		CanOverride:   open && walkpolicy.CanOverrideStatus(roles),
	}
	if finding.DueDate != nil {
		data.DueDate = finding.DueDate.Format("2006-01-02")
	}
	if finding.ClosedAt != nil {
		data.ClosedAt = finding.ClosedAt.Format("2006-01-02 15:04 MST")
	}

	templates.Render(w, r, "finding_view", data)
}
