package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupPanoRoutes serves panos, mounted at /panos.
func SetupPanoRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreatePanoHandler)
	r.Get("/", ListPanosHandler)
	r.Get("/{id}", GetPanoHandler)
	r.Delete("/{id}", DeletePanoHandler)

	return r
}

// SetupPhotoRoutes serves photos, mounted at /photos.
func SetupPhotoRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreatePhotoHandler)
	r.Get("/", ListPhotosHandler)
	r.Get("/{id}", GetPhotoHandler)
	r.Delete("/{id}", DeletePhotoHandler)

	return r
}

// SetupHotspotRoutes serves hotspots, mounted at /hotspots.
func SetupHotspotRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreateHotspotHandler)
	r.Get("/", ListHotspotsHandler)
	r.Get("/{id}", GetHotspotHandler)
	r.Delete("/{id}", DeleteHotspotHandler)

	return r
}
