// internal/app/features/people/routes.go
package people

import (
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Admin-only checks run inside each handler via gates.RequireAdmin;
	// the route group only requires a signed-in session.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServePeopleList)
		pr.Get("/new", h.ServeNewPerson)
		pr.Post("/", h.HandleCreatePerson)
		pr.Get("/{id}/edit", h.ServeEditPerson)
		pr.Post("/{id}/edit", h.HandleEditPerson)
		pr.Post("/{id}/delete", h.HandleDeletePerson)
	})

	return r
}
