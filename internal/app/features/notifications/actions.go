// internal/app/features/notifications/actions.go
package notifications

import (
	"net/http"

	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	notificationstore "github.com/kaizenlab/gembatrack/internal/app/store/notifications"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleMarkRead marks one of the user's notifications read. Marking
// someone else's notification is silently a no-op because the store
// filters on the owner.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	notifID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Notification not found.", "/notifications")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	if err := notificationstore.New(h.DB).MarkRead(ctx, userID, notifID); err != nil {
		h.ErrLog.Internal(w, r, "mark notification read failed", err, "/notifications")
		return
	}
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

// HandleMarkAllRead marks every unread notification of the user read.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark all notifications read")
	defer cancel()

	if _, err := notificationstore.New(h.DB).MarkAllRead(ctx, userID); err != nil {
		h.ErrLog.Internal(w, r, "mark all notifications read failed", err, "/notifications")
		return
	}
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}
