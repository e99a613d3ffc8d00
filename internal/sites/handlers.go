package sites

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
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
		http.Error(w, "Invalid site id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func listParams(r *http.Request) db.ListParams {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return db.ListParams{
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
		Skip:     skip,
		Limit:    limit,
	}
}

func CreateSiteHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name         string          `json:"name"`
		Coordinates  *geometry.Point `json:"coordinates"`
		ParentSiteID *uuid.UUID      `json:"parent_site_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Coordinates == nil {
		http.Error(w, "coordinates are required", http.StatusUnprocessableEntity)
		return
	}

	site, err := Default.Create(r.Context(), input.Name, *input.Coordinates, input.ParentSiteID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

func ListSitesHandler(w http.ResponseWriter, r *http.Request) {
	out, err := Default.List(r.Context(), listParams(r))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func GetSiteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	site, err := Default.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// UpdateSiteHandler handles rename, move, and reparent. The parent field is
// only touched when present in the payload; "parent_site_id": null moves the
// site to the root.
func UpdateSiteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var input struct {
		Name         *string          `json:"name"`
		Coordinates  *geometry.Point  `json:"coordinates"`
		ParentSiteID json.RawMessage  `json:"parent_site_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	site, err := Default.Update(r.Context(), id, input.Name, input.Coordinates)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	if len(input.ParentSiteID) > 0 {
		var newParent *uuid.UUID
		if string(input.ParentSiteID) != "null" {
			var parsed uuid.UUID
			if err := json.Unmarshal(input.ParentSiteID, &parsed); err != nil {
				http.Error(w, "Invalid parent_site_id", http.StatusBadRequest)
				return
			}
			newParent = &parsed
		}
		site, err = Default.Reparent(r.Context(), id, newParent)
		if err != nil {
			http.Error(w, err.Error(), errs.HTTPStatus(err))
			return
		}
	}
	writeJSON(w, http.StatusOK, site)
}

func DeleteSiteHandler(w http.ResponseWriter, r *http.Request) {
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
		// Cleanup failures are non-fatal: the rows are gone and orphaned
		// content is retried asynchronously.
		if !errors.Is(err, errs.ErrStorageCleanup) {
			http.Error(w, err.Error(), errs.HTTPStatus(err))
			return
		}
		log.Printf("[sites] %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func ListDescendantsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out, err := Default.ListDescendants(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
