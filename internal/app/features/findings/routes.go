// internal/app/features/findings/routes.go
package findings

import (
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /findings requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST (findings I am responsible for)
		pr.Get("/", h.ServeMyFindings)

		// CREATE
		pr.Get("/new", h.ServeNewFinding)
		pr.Post("/", h.HandleCreateFinding)

		// VIEW
		pr.Get("/{id}/view", h.ServeFindingView)

		// TRANSITIONS
		pr.Post("/{id}/due-date", h.HandleSetDueDate)
		pr.Post("/{id}/close", h.HandleCloseFinding)
		pr.Post("/{id}/status", h.HandleUpdateStatus)
	})

	return r
}
