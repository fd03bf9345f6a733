// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/kaizenlab/gembatrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeNotifications)
		pr.Post("/{id}/read", h.HandleMarkRead)
		pr.Post("/read-all", h.HandleMarkAllRead)
	})

	return r
}
