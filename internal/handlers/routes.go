package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
)

// Routes mounts the versioned API. Health, readiness and metrics live on the
// root router in cmd/server.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/users", h.RegisterUser)
	r.Route("/users/{wallet}", func(r chi.Router) {
		r.Get("/", h.GetUser)
		r.Put("/profile", h.UpdateProfile)
		r.Put("/listing", h.SetListing)
	})

	r.Get("/leaderboard", h.GetLeaderboard)
	r.Get("/leaderboard/listed", h.GetListedUsers)

	r.With(h.AdminAuthMiddleware).Post("/system/install", h.InstallDatabase)

	return r
}

// SwaggerDoc serves the registered OpenAPI document.
func (h *Handler) SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, "API documentation not available")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
