package surveys

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

// Date accepts both plain dates ("2024-03-01") and RFC 3339 timestamps on
// the wire, and marshals back as a plain date.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

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
		http.Error(w, "Invalid survey id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func CreateSurveyHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SiteID    uuid.UUID `json:"site_id"`
		Name      string    `json:"name"`
		StartDate Date      `json:"start_date"`
		EndDate   Date      `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.SiteID == uuid.Nil {
		http.Error(w, "site_id is required", http.StatusUnprocessableEntity)
		return
	}

	survey, err := Default.Create(r.Context(), input.SiteID, input.Name, input.StartDate.Time, input.EndDate.Time)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// ListSurveysHandler queries surveys; ?site_id= narrows to one site and
// ?latest=true returns just that site's latest survey.
func ListSurveysHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var siteID *uuid.UUID
	if raw := q.Get("site_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid site_id", http.StatusBadRequest)
			return
		}
		siteID = &parsed
	}

	if q.Get("latest") == "true" {
		if siteID == nil {
			http.Error(w, "latest=true requires site_id", http.StatusBadRequest)
			return
		}
		survey, err := Default.GetLatest(r.Context(), *siteID)
		if err != nil {
			http.Error(w, err.Error(), errs.HTTPStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, survey)
		return
	}

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	out, err := Default.List(r.Context(), siteID, db.ListParams{
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func GetSurveyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	survey, err := Default.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func UpdateSurveyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var input struct {
		Name      *string `json:"name"`
		StartDate *Date   `json:"start_date"`
		EndDate   *Date   `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var start, end *time.Time
	if input.StartDate != nil {
		start = &input.StartDate.Time
	}
	if input.EndDate != nil {
		end = &input.EndDate.Time
	}

	survey, err := Default.Update(r.Context(), id, input.Name, start, end)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func MarkLatestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	survey, err := Default.MarkLatest(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func DeleteSurveyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	policy, err := cascade.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	if err := Default.Delete(r.Context(), id, policy); err != nil {
		if !errors.Is(err, errs.ErrStorageCleanup) {
			http.Error(w, err.Error(), errs.HTTPStatus(err))
			return
		}
		log.Printf("[surveys] %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
