// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	loginstore "github.com/kaizenlab/gembatrack/internal/app/store/logins"
	"github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/kaizenlab/gembatrack/internal/app/system/normalize"
	"github.com/kaizenlab/gembatrack/internal/app/system/status"
	"github.com/kaizenlab/gembatrack/internal/app/system/timeouts"
	"github.com/kaizenlab/gembatrack/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger

	// Sessions tracks server-side activity sessions, separate from the
	// session cookie. Optional; nil disables activity tracking.
	Sessions *sessions.Store

	GoogleEnabled bool
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	sessStore *sessions.Store,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        uierrors.NewErrorLogger(logger),
		Sessions:      sessStore,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Login", "/"),
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, "Invalid form data.", "")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	u, err := userstore.New(h.DB).GetByEmail(ctx, email)
	switch {
	case err == mongo.ErrNoDocuments:
		// Same message as a wrong password, so the form does not leak
		// which addresses have accounts.
		h.renderFormWithError(w, r, "Invalid email or password.", email)
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "login: look up user", err, "/login")
		return
	}

	if u.Status == status.Disabled {
		h.renderFormWithError(w, r, "This account has been disabled. Please contact an administrator.", email)
		return
	}

	if u.PasswordHash == "" {
		if h.GoogleEnabled && normalize.AuthMethod(u.AuthMethod) == "google" {
			h.renderFormWithError(w, r, "This account signs in with Google. Use the Google button below.", email)
		} else {
			h.renderFormWithError(w, r, "This account has no password set. Please contact an administrator.", email)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		h.Log.Info("login: bad password",
			zap.String("email", email),
			zap.String("ip", clientIP(r)))
		h.renderFormWithError(w, r, "Invalid email or password.", email)
		return
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.Internal(w, r, "login: save session", err, "/login")
		return
	}

	if h.Sessions != nil {
		if _, err := h.Sessions.Create(ctx, u.ID, clientIP(r), r.UserAgent()); err != nil {
			h.Log.Warn("login: create activity session",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		}
	}
	if err := loginstore.New(h.DB).CreateFrom(ctx, r, u.ID, u.Email, "internal"); err != nil {
		h.Log.Warn("login: record login", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	h.Log.Info("login: success",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Login", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     r.FormValue("return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
