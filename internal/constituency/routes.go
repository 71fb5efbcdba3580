package constituency

import (
	"net/http"

	"github.com/EmpoweredVote/constituency-core/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(svc *Service, sessions middleware.SessionFetcher, roles middleware.RoleFetcher) http.Handler {
	r := chi.NewRouter()
	h := &handlers{svc: svc}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))

		// Consulted by the report intake and approval flows
		r.Post("/reports/{id}/created", h.Created)
		r.Get("/reports/{id}/approvable", h.Approvable)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware(roles))

			r.Post("/reports/{id}/resolve", h.Resolve)
			r.Put("/admin/reports/{id}", h.Override)
			r.Get("/admin/stats", h.Stats)
			r.Post("/admin/reprocess", h.Reprocess)
			r.Get("/admin/locate", h.Locate)
			r.Get("/admin/boundaries", h.BoundaryStatus)
		})
	})

	return r
}
