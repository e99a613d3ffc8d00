package overlays

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid overlay id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func CreateOverlayHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string     `json:"name"`
		SurveyID *uuid.UUID `json:"survey_id"`
		// Two opposite corners of the covered rectangle, any order.
		Longitude1 *float64 `json:"longitude1"`
		Latitude1  *float64 `json:"latitude1"`
		Longitude2 *float64 `json:"longitude2"`
		Latitude2  *float64 `json:"latitude2"`
		ContentRef string   `json:"content_ref"`
		Level      int      `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.SurveyID == nil {
		http.Error(w, "survey_id is required", http.StatusUnprocessableEntity)
		return
	}
	if input.Longitude1 == nil || input.Latitude1 == nil || input.Longitude2 == nil || input.Latitude2 == nil {
		http.Error(w, "both extent corners are required", http.StatusUnprocessableEntity)
		return
	}

	o, err := Default.Create(r.Context(), *input.SurveyID, input.Name,
		*input.Longitude1, *input.Latitude1, *input.Longitude2, *input.Latitude2,
		input.ContentRef, input.Level)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func ListOverlaysHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var surveyID *uuid.UUID
	if s := q.Get("survey_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid survey_id", http.StatusBadRequest)
			return
		}
		surveyID = &id
	}
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	params := db.ListParams{
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
		Skip:     skip,
		Limit:    limit,
	}

	overlays, err := Default.List(r.Context(), surveyID, params)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, overlays)
}

func GetOverlayHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	o, err := Default.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func DeleteOverlayHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := Default.Delete(r.Context(), id)
	if err != nil && !errors.Is(err, errs.ErrStorageCleanup) {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	if err != nil {
		log.Printf("[overlays] %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
