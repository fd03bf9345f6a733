// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	authgooglefeature "github.com/kaizenlab/gembatrack/internal/app/features/authgoogle"
	dashboardfeature "github.com/kaizenlab/gembatrack/internal/app/features/dashboard"
	errorsfeature "github.com/kaizenlab/gembatrack/internal/app/features/errors"
	findingsfeature "github.com/kaizenlab/gembatrack/internal/app/features/findings"
	healthfeature "github.com/kaizenlab/gembatrack/internal/app/features/health"
	homefeature "github.com/kaizenlab/gembatrack/internal/app/features/home"
	loginfeature "github.com/kaizenlab/gembatrack/internal/app/features/login"
	logoutfeature "github.com/kaizenlab/gembatrack/internal/app/features/logout"
	notificationsfeature "github.com/kaizenlab/gembatrack/internal/app/features/notifications"
	peoplefeature "github.com/kaizenlab/gembatrack/internal/app/features/people"
	reportsfeature "github.com/kaizenlab/gembatrack/internal/app/features/reports"
	walksfeature "github.com/kaizenlab/gembatrack/internal/app/features/walks"
	sessionstore "github.com/kaizenlab/gembatrack/internal/app/store/sessions"
	userstore "github.com/kaizenlab/gembatrack/internal/app/store/users"
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// GembaTrack initializes the template engine, applies session and CSRF
// middleware, and mounts feature routers for all application areas: home,
// login, dashboard, walks, findings, notifications, people, and reports.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. This ensures role changes and disabled accounts take
	// effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	db := deps.MongoDatabase
	sessStore := sessionstore.New(db)
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts. Tokens surface in templates via
	// viewdata.BaseVM.
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Finding attachments (photos, close evidence)
	r.Handle(appCfg.UploadURL+"/*", fileserver.Handler(appCfg.UploadURL, appCfg.UploadDir))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, sessStore, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, sessStore, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(db, sessionMgr, sessStore,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Personal dashboard (same shape for every role)
	dashboardHandler := dashboardfeature.NewHandler(db, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Gemba walks: scheduling, recurrence, detail views
	walksHandler := walksfeature.NewHandler(db, logger)
	r.Mount("/walks", walksfeature.Routes(walksHandler, sessionMgr))

	// Findings: lifecycle from creation through closure
	findingsHandler := findingsfeature.NewHandler(db, logger, appCfg.UploadDir, appCfg.UploadURL)
	r.Mount("/findings", findingsfeature.Routes(findingsHandler, sessionMgr))

	// In-app notifications
	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// People management (admin)
	peopleHandler := peoplefeature.NewHandler(db, logger)
	r.Mount("/people", peoplefeature.Routes(peopleHandler, sessionMgr))

	// Reports and exports
	reportsHandler := reportsfeature.NewHandler(db, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	return r, nil
}
