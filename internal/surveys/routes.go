package surveys

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", CreateSurveyHandler)
	r.Get("/", ListSurveysHandler)
	r.Get("/{id}", GetSurveyHandler)
	r.Put("/{id}", UpdateSurveyHandler)
	r.Delete("/{id}", DeleteSurveyHandler)
	r.Post("/{id}/latest", MarkLatestHandler)

	return r
}
