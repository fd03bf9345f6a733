// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager

	// Sessions is the activity session store. Optional; nil skips
	// closing the server-side activity record.
	Sessions *sessions.Store
}

func NewHandler(sessionMgr *auth.SessionManager, sessStore *sessions.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Sessions:   sessStore,
	}
}

// ServeLogout handles GET /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && h.Sessions != nil {
		h.closeActivitySessions(r, u.ID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) closeActivitySessions(r *http.Request, userID string) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "close activity sessions")
	defer cancel()

	open, err := h.Sessions.GetActiveByUser(ctx, id)
	if err != nil {
		h.Log.Warn("logout: list activity sessions", zap.Error(err))
		return
	}
	for _, s := range open {
		if err := h.Sessions.Close(ctx, s.ID, "logout"); err != nil {
			h.Log.Warn("logout: close activity session", zap.Error(err))
		}
	}
}
