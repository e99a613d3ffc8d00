package sites

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreateSiteHandler)
	r.Get("/", ListSitesHandler)
	r.Get("/{id}", GetSiteHandler)
	r.Put("/{id}", UpdateSiteHandler)
	r.Delete("/{id}", DeleteSiteHandler)
	r.Get("/{id}/descendants", ListDescendantsHandler)

	return r
}
