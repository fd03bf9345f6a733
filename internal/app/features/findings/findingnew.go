// internal/app/features/findings/findingnew.go
package findings

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/kaizenlab/gembatrack/internal/app/lifecycle"
	"github.com/kaizenlab/gembatrack/internal/app/policy/walkpolicy"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/htmlsanitize"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type personVM struct {
	ID   string
	Name string
}

type newFindingData struct {
	viewdata.BaseVM
	WalkID      string
	WalkDate    string
	Areas       []string
	People      []personVM
	FormErr     string
	Area        string
	Category    string
	Description string
}

// ServeNewFinding renders the Record Finding form for a walk. Only the
// walk's leader may record findings, so everyone else is turned away here
// rather than at submit time.
func (h *Handler) ServeNewFinding(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	walkID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("walk"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "new finding page")
	defer cancel()

	walk, err := walkstore.New(h.DB).GetByID(ctx, walkID)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "load walk for finding form failed", err, "/walks")
		return
	}

	if !walkpolicy.CanCreateFinding(walkpolicy.Resolve(userID, walk, nil)) {
		uierrors.RenderForbidden(w, r, "Only the walk's leader can record findings.",
			httpnav.ResolveBackURL(r, "/walks/"+walk.ID.Hex()+"/view"))
		return
	}

	people, err := h.loadPeople(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "load users for finding form failed", err, "/walks")
		return
	}

	data := newFindingData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Record Finding", "/walks/"+walk.ID.Hex()+"/view"),
		WalkID:   walk.ID.Hex(),
		WalkDate: walk.Date.Format("2006-01-02"),
		Areas:    walk.Areas,
		People:   people,
	}
	templates.Render(w, r, "finding_new", data)
}

// HandleCreateFinding processes the Record Finding form. The lifecycle
// controller enforces the leader-only guard and field validation; this
// handler only parses the form, stores attachments, and maps errors back
// to the page.
func (h *Handler) HandleCreateFinding(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil && err != http.ErrNotMultipart {
		uierrors.RenderForbidden(w, r, "The form could not be read.", "/walks")
		return
	}

	walkID, err := primitive.ObjectIDFromHex(r.FormValue("walk_id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}
	backURL := "/walks/" + walkID.Hex() + "/view"

	responsibleID, err := primitive.ObjectIDFromHex(r.FormValue("responsible_id"))
	if err != nil {
		h.renderNewWithError(w, r, walkID, "A responsible person is required.")
		return
	}

	var attachmentURLs []string
	if r.MultipartForm != nil {
		attachmentURLs, err = h.saveAttachments(r.MultipartForm.File["attachments"])
		if err != nil {
			h.renderNewWithError(w, r, walkID, "Attachment upload failed: "+err.Error())
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create finding")
	defer cancel()

	created, err := h.controller().CreateFinding(ctx, userID, lifecycle.CreateFindingInput{
		WalkID:         walkID,
		Area:           r.FormValue("area"),
		Category:       r.FormValue("category"),
		Description:    htmlsanitize.Sanitize(r.FormValue("description")),
		ResponsibleID:  responsibleID,
		AttachmentURLs: attachmentURLs,
	})
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	case errors.Is(err, lifecycle.ErrForbidden):
		uierrors.RenderForbidden(w, r, "Only the walk's leader can record findings.", backURL)
		return
	case lifecycle.IsValidation(err):
		h.renderNewWithError(w, r, walkID, err.Error())
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "create finding failed", err, backURL)
		return
	}

	http.Redirect(w, r, "/findings/"+created.ID.Hex()+"/view", http.StatusSeeOther)
}

func (h *Handler) renderNewWithError(w http.ResponseWriter, r *http.Request, walkID primitive.ObjectID, msg string) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "new finding page")
	defer cancel()

	walk, err := walkstore.New(h.DB).GetByID(ctx, walkID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}
	people, err := h.loadPeople(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "load users for finding form failed", err, "/walks")
		return
	}

	data := newFindingData{
		BaseVM:      viewdata.NewBaseVM(r, h.DB, "Record Finding", "/walks/"+walk.ID.Hex()+"/view"),
		WalkID:      walk.ID.Hex(),
		WalkDate:    walk.Date.Format("2006-01-02"),
		Areas:       walk.Areas,
		People:      people,
		FormErr:     msg,
		Area:        r.FormValue("area"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "finding_new", data)
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
