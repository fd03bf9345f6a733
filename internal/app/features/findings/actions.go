// internal/app/features/findings/actions.go
package findings

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/httpnav"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/kaizenlab/gembatrack/internal/app/lifecycle"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/htmlsanitize"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleSetDueDate sets a finding's due date. The lifecycle controller
// enforces that only the responsible party may, and only while the due
// date is unset.
func (h *Handler) HandleSetDueDate(w http.ResponseWriter, r *http.Request) {
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
	backURL := "/findings/" + findingID.Hex() + "/view"

	due, err := time.Parse("2006-01-02", strings.TrimSpace(r.FormValue("due_date")))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Due date must be a valid date.", backURL)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "set due date")
	defer cancel()

	_, err = h.controller().SetDueDate(ctx, userID, findingID, due)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		uierrors.RenderNotFound(w, r, "Finding not found.", "/findings")
		return
	case errors.Is(err, lifecycle.ErrForbidden):
		uierrors.RenderForbidden(w, r, "Only the responsible person can set the due date.",
			httpnav.ResolveBackURL(r, backURL))
		return
	case errors.Is(err, lifecycle.ErrInvalidState):
		uierrors.RenderForbidden(w, r, "The due date is already set and cannot be changed.",
			httpnav.ResolveBackURL(r, backURL))
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "set due date failed", err, backURL)
		return
	}

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HandleCloseFinding closes a finding with a comment and optional evidence.
// Evidence can be an uploaded photo or a pasted URL; an upload wins when
// both are present.
func (h *Handler) HandleCloseFinding(w http.ResponseWriter, r *http.Request) {
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
	backURL := "/findings/" + findingID.Hex() + "/view"

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil && err != http.ErrNotMultipart {
		uierrors.RenderForbidden(w, r, "The form could not be read.", backURL)
		return
	}

	evidenceURL := strings.TrimSpace(r.FormValue("evidence_url"))
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["evidence"]; len(files) > 0 {
			urls, err := h.saveAttachments(files[:1])
			if err != nil {
				uierrors.RenderForbidden(w, r, "Evidence upload failed: "+err.Error(), backURL)
				return
			}
			evidenceURL = urls[0]
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "close finding")
	defer cancel()

	comment := htmlsanitize.Sanitize(r.FormValue("close_comment"))
	_, err = h.controller().CloseFinding(ctx, userID, findingID, comment, evidenceURL)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		uierrors.RenderNotFound(w, r, "Finding not found.", "/findings")
		return
	case errors.Is(err, lifecycle.ErrForbidden):
		uierrors.RenderForbidden(w, r, "Only the responsible person can close this finding.",
			httpnav.ResolveBackURL(r, backURL))
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "close finding failed", err, backURL)
		return
	}

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HandleUpdateStatus applies the administrative status override. The
// controller rejects reopening and keeps close authority with the
// responsible party.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	backURL := "/findings/" + findingID.Hex() + "/view"

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update finding status")
	defer cancel()

	_, err = h.controller().UpdateStatus(ctx, userID, findingID, r.FormValue("status"))
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		uierrors.RenderNotFound(w, r, "Finding not found.", "/findings")
		return
	case errors.Is(err, lifecycle.ErrForbidden):
		uierrors.RenderForbidden(w, r, "You do not have access to change this finding's status.",
			httpnav.ResolveBackURL(r, backURL))
		return
	case errors.Is(err, lifecycle.ErrInvalidState):
		uierrors.RenderForbidden(w, r, "A closed finding cannot be reopened.",
			httpnav.ResolveBackURL(r, backURL))
		return
	case lifecycle.IsValidation(err):
		uierrors.RenderForbidden(w, r, "Status must be open or closed.",
			httpnav.ResolveBackURL(r, backURL))
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "update finding status failed", err, backURL)
		return
	}

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}
