package assets

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupTypeRoutes serves the asset type catalog, mounted at /asset-types.
func SetupTypeRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreateTypeHandler)
	r.Get("/", ListTypesHandler)
	r.Get("/{id}", GetTypeHandler)
	r.Put("/{id}", UpdateTypeHandler)
	r.Delete("/{id}", DeleteTypeHandler)
	r.Post("/{id}/property-names", AddTypePropertyNameHandler)
	r.Get("/{id}/property-names", ListTypePropertyNamesHandler)
	r.Delete("/{id}/property-names/{nameID}", DeleteTypePropertyNameHandler)

	return r
}

// SetupRoutes serves assets and their properties, mounted at /assets.
func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreateAssetHandler)
	r.Get("/", ListAssetsHandler)
	r.Get("/{id}", GetAssetHandler)
	r.Put("/{id}", UpdateAssetHandler)
	r.Delete("/{id}", DeleteAssetHandler)
	r.Put("/{id}/properties", SetPropertyHandler)
	r.Get("/{id}/properties", ListPropertiesHandler)
	r.Delete("/{id}/properties/{key}", DeletePropertyHandler)

	return r
}
