// internal/app/features/walks/walkdelete.go
package walks

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	findingstore "github.com/kaizenlab/gembatrack/internal/app/store/findings"
	walkstore "github.com/kaizenlab/gembatrack/internal/app/store/walks"
	"github.com/kaizenlab/gembatrack/internal/app/system/authz"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDeleteWalk deletes a walk and its findings. Admins or the walk's
// creator only. Notifications that reference the deleted findings are
// left in place as a historical record.
func (h *Handler) HandleDeleteWalk(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete walk")
	defer cancel()

	store := walkstore.New(h.DB)
	walk, err := store.GetByID(ctx, walkID)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Walk not found.", "/walks")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "load walk for delete failed", err, "/walks")
		return
	}

	if role != authz.RoleAdmin && walk.CreatedBy != userID {
		uierrors.RenderForbidden(w, r, "You do not have access to delete this walk.",
			httpnav.ResolveBackURL(r, "/walks"))
		return
	}

	removed, err := findingstore.New(h.DB).DeleteByWalk(ctx, walk.ID)
	if err != nil {
		h.ErrLog.Internal(w, r, "delete findings for walk failed", err, "/walks")
		return
	}
	if _, err := store.Delete(ctx, walk.ID); err != nil {
		h.ErrLog.Internal(w, r, "delete walk failed", err, "/walks")
		return
	}

	h.Log.Info("walk deleted",
		zap.String("walk_id", walk.ID.Hex()),
		zap.Int64("findings_removed", removed))

	http.Redirect(w, r, "/walks", http.StatusSeeOther)
}
