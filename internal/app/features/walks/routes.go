// internal/app/features/walks/routes.go
package walks

import (
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /walks requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST
		pr.Get("/", h.ServeWalksList)

		// CREATE
		pr.Get("/new", h.ServeNewWalk)
		pr.Post("/", h.HandleCreateWalk)

		// VIEW
		pr.Get("/{id}/view", h.ServeWalkView)

		// DELETE
		pr.Post("/{id}/delete", h.HandleDeleteWalk)
	})

	return r
}
