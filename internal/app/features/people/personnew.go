// internal/app/features/people/personnew.go
package people

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	"github.com/kaizenlab/gembatrack/internal/app/system/gates"
	"github.com/kaizenlab/gembatrack/internal/app/system/normalize"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost used across the app for password hashes.
const bcryptCost = 12

type personFormData struct {
	viewdata.BaseVM
	FormErr  string
	FullName string
	Email    string
	URole    string
}

// ServeNewPerson renders the Add Person form. Admin only.
func (h *Handler) ServeNewPerson(w http.ResponseWriter, r *http.Request) {
	if g := gates.RequireAdmin(w, r, "You do not have access to manage people.", "/"); !g.OK {
		return
	}

	data := personFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Add Person", "/people"),
		URole:  "user",
	}
	templates.Render(w, r, "person_new", data)
}

// HandleCreatePerson processes the Add Person form. The account is created
// active with an internal (email+password) login.
func (h *Handler) HandleCreatePerson(w http.ResponseWriter, r *http.Request) {
	if g := gates.RequireAdmin(w, r, "You do not have access to manage people.", "/"); !g.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderNewWithError(w, r, "The form could not be read.")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	role := normalize.Role(r.FormValue("role"))
	password := strings.TrimSpace(r.FormValue("password"))

	if fullName == "" {
		h.renderNewWithError(w, r, "Full name is required.")
		return
	}
	if email == "" {
		h.renderNewWithError(w, r, "Email is required.")
		return
	}
	if len(password) < 8 {
		h.renderNewWithError(w, r, "Password must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		h.ErrLog.Internal(w, r, "hash password failed", err, "/people")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create person")
	defer cancel()

	created, err := userstore.New(h.DB).Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		AuthMethod:   "internal",
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.renderNewWithError(w, r, "A user with that email already exists.")
		return
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "create user failed", err, "/people")
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role))

	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

func (h *Handler) renderNewWithError(w http.ResponseWriter, r *http.Request, msg string) {
	data := personFormData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Add Person", "/people"),
		FormErr:  msg,
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
		URole:    r.FormValue("role"),
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "person_new", data)
}
