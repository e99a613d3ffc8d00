package assets

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

func parseURLID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "Invalid "+param, http.StatusBadRequest)
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

func CreateTypeHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
		IconRef     string `json:"icon_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	t := &AssetType{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		IconRef:     input.IconRef,
	}
	if err := Default.CreateType(r.Context(), t); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := Default.ListTypes(r.Context(), listParams(r))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func GetTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	t, err := Default.GetType(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func UpdateTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		IconRef     *string `json:"icon_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	t, err := Default.UpdateType(r.Context(), id, &AssetTypeUpdate{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		IconRef:     input.IconRef,
	})
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func DeleteTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	if err := Default.DeleteType(r.Context(), id); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func AddTypePropertyNameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	pn, err := Default.AddTypePropertyName(r.Context(), id, input.Name)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, pn)
}

func ListTypePropertyNamesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	names, err := Default.ListTypePropertyNames(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func DeleteTypePropertyNameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	nameID, ok := parseURLID(w, r, "nameID")
	if !ok {
		return
	}
	if err := Default.DeleteTypePropertyName(r.Context(), id, nameID); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		SurveyID    *uuid.UUID      `json:"survey_id"`
		AssetTypeID *uuid.UUID      `json:"asset_type_id"`
		Coordinates *geometry.Point `json:"coordinates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.SurveyID == nil {
		http.Error(w, "survey_id is required", http.StatusUnprocessableEntity)
		return
	}
	if input.Coordinates == nil {
		http.Error(w, "coordinates are required", http.StatusUnprocessableEntity)
		return
	}
	a := &Asset{
		Name:        input.Name,
		Description: input.Description,
		SurveyID:    *input.SurveyID,
		AssetTypeID: input.AssetTypeID,
		Coordinates: *input.Coordinates,
	}
	if err := Default.CreateAsset(r.Context(), a); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var surveyID, typeID *uuid.UUID
	if s := q.Get("survey_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid survey_id", http.StatusBadRequest)
			return
		}
		surveyID = &id
	}
	if s := q.Get("asset_type_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid asset_type_id", http.StatusBadRequest)
			return
		}
		typeID = &id
	}
	assets, err := Default.ListAssets(r.Context(), surveyID, typeID, listParams(r))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func GetAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	a, err := Default.GetAsset(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func UpdateAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	var input struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		AssetTypeID json.RawMessage `json:"asset_type_id"`
		Coordinates *geometry.Point `json:"coordinates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	upd := &AssetUpdate{
		Name:        input.Name,
		Description: input.Description,
		Coordinates: input.Coordinates,
	}
	// asset_type_id distinguishes absent (keep) from null (clear type).
	if len(input.AssetTypeID) > 0 {
		if string(input.AssetTypeID) == "null" {
			upd.ClearType = true
		} else {
			var typeID uuid.UUID
			if err := json.Unmarshal(input.AssetTypeID, &typeID); err != nil {
				http.Error(w, "Invalid asset_type_id", http.StatusBadRequest)
				return
			}
			upd.AssetTypeID = &typeID
		}
	}
	a, err := Default.UpdateAsset(r.Context(), id, upd)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	if err := Default.DeleteAsset(r.Context(), id); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func SetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	var input struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := Default.SetProperty(r.Context(), id, input.Key, input.Value)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	props, err := Default.ListProperties(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseURLID(w, r, "id")
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "Invalid property key", http.StatusBadRequest)
		return
	}
	if err := Default.DeleteProperty(r.Context(), id, key); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
