package overlays

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreateOverlayHandler)
	r.Get("/", ListOverlaysHandler)
	r.Get("/{id}", GetOverlayHandler)
	r.Delete("/{id}", DeleteOverlayHandler)

	return r
}
