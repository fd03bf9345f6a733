// internal/app/features/people/persondelete.go
package people

import (
	"net/http"

	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	"github.com/kaizenlab/gembatrack/internal/app/system/gates"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeletePerson removes an account. Admin only, and never your own
// account. Walks and findings that reference the user keep their ObjectID;
// views show those as removed.
func (h *Handler) HandleDeletePerson(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireAdmin(w, r, "You do not have access to manage people.", "/")
	if !g.OK {
		return
	}

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Person not found.", "/people")
		return
	}
	if userID == g.UserID {
		uierrors.RenderForbidden(w, r, "You cannot delete your own account.", "/people")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete person")
	defer cancel()

	deleted, err := userstore.New(h.DB).Delete(ctx, userID)
	if err != nil {
		h.ErrLog.Internal(w, r, "delete user failed", err, "/people")
		return
	}
	if deleted == 0 {
		uierrors.RenderNotFound(w, r, "Person not found.", "/people")
		return
	}

	h.Log.Info("user deleted", zap.String("user_id", userID.Hex()))
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}
