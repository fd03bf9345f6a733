// internal/app/features/reports/routes.go
package reports

import (
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeReports)
		pr.Get("/findings.tsv", h.ServeFindingsTSV)
	})

	return r
}
