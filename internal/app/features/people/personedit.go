// internal/app/features/people/personedit.go
package people

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	"github.com/kaizenlab/gembatrack/internal/app/system/gates"
	"github.com/kaizenlab/gembatrack/internal/app/system/normalize"
	"github.com/kaizenlab/gembatrack/internal/app/system/status"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type personEditData struct {
	viewdata.BaseVM
	PersonID string
	FormErr  string
	FullName string
	Email    string
	URole    string
	Status   string
}

// ServeEditPerson renders the Edit Person form. Admin only.
func (h *Handler) ServeEditPerson(w http.ResponseWriter, r *http.Request) {
	if g := gates.RequireAdmin(w, r, "You do not have access to manage people.", "/"); !g.OK {
		return
	}

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Person not found.", "/people")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "edit person page")
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, userID)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Person not found.", "/people")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "load user failed", err, "/people")
		return
	}

	data := personEditData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Edit Person", "/people"),
		PersonID: u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		URole:    u.Role,
		Status:   u.Status,
	}
	templates.Render(w, r, "person_edit", data)
}

// HandleEditPerson processes the Edit Person form. Disabling an account
// here locks the user out on their next request; their history on walks
// and findings is untouched.
func (h *Handler) HandleEditPerson(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireAdmin(w, r, "You do not have access to manage people.", "/")
	if !g.OK {
		return
	}

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Person not found.", "/people")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderEditWithError(w, r, userID, "The form could not be read.")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	role := normalize.Role(r.FormValue("role"))
	st := normalize.Status(r.FormValue("status"))

	if fullName == "" || email == "" {
		h.renderEditWithError(w, r, userID, "Full name and email are required.")
		return
	}
	if !status.IsValid(st) {
		h.renderEditWithError(w, r, userID, "Status must be active or disabled.")
		return
	}
	if g.UserID == userID && st == status.Disabled {
		h.renderEditWithError(w, r, userID, "You cannot disable your own account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit person")
	defer cancel()

	err = userstore.New(h.DB).UpdateInfo(ctx, userID, userstore.UserUpdate{
		FullName: fullName,
		Email:    email,
		Role:     role,
		Status:   st,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.renderEditWithError(w, r, userID, "A user with that email already exists.")
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "update user failed", err, "/people")
		return
	}

	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

func (h *Handler) renderEditWithError(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, msg string) {
	data := personEditData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Edit Person", "/people"),
		PersonID: userID.Hex(),
		FormErr:  msg,
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
		URole:    r.FormValue("role"),
		Status:   r.FormValue("status"),
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "person_edit", data)
}
