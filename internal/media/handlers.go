package media

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
		http.Error(w, "Invalid id", http.StatusBadRequest)
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

func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}

type mediaInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	SurveyID     *uuid.UUID      `json:"survey_id"`
	Coordinates  *geometry.Point `json:"coordinates"`
	ContentRef   string          `json:"content_ref"`
	Heading      *float64        `json:"heading"`
	IsCubic      bool            `json:"is_cubic"`
	CustomMarker string          `json:"custom_marker"`
	Level        int             `json:"level"`
}

func decodeMediaInput(w http.ResponseWriter, r *http.Request) (*mediaInput, bool) {
	var input mediaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if input.SurveyID == nil {
		http.Error(w, "survey_id is required", http.StatusUnprocessableEntity)
		return nil, false
	}
	if input.Coordinates == nil {
		http.Error(w, "coordinates are required", http.StatusUnprocessableEntity)
		return nil, false
	}
	return &input, true
}

func CreatePanoHandler(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeMediaInput(w, r)
	if !ok {
		return
	}
	p := &Pano{
		Name:         input.Name,
		Description:  input.Description,
		SurveyID:     *input.SurveyID,
		Coordinates:  *input.Coordinates,
		ContentRef:   input.ContentRef,
		Heading:      input.Heading,
		IsCubic:      input.IsCubic,
		CustomMarker: input.CustomMarker,
		Level:        input.Level,
	}
	if err := Default.CreatePano(r.Context(), p); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func ListPanosHandler(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := queryUUID(w, r, "survey_id")
	if !ok {
		return
	}
	panos, err := Default.ListPanos(r.Context(), surveyID, listParams(r))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, panos)
}

func GetPanoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := Default.GetPano(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func DeletePanoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := Default.DeletePano(r.Context(), id)
	if err != nil && !errors.Is(err, errs.ErrStorageCleanup) {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	if err != nil {
		log.Printf("[media] %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func CreatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeMediaInput(w, r)
	if !ok {
		return
	}
	p := &Photo{
		Name:         input.Name,
		Description:  input.Description,
		SurveyID:     *input.SurveyID,
		Coordinates:  *input.Coordinates,
		ContentRef:   input.ContentRef,
		Heading:      input.Heading,
		CustomMarker: input.CustomMarker,
		Level:        input.Level,
	}
	if err := Default.CreatePhoto(r.Context(), p); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func ListPhotosHandler(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := queryUUID(w, r, "survey_id")
	if !ok {
		return
	}
	photos, err := Default.ListPhotos(r.Context(), surveyID, listParams(r))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func GetPhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := Default.GetPhoto(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := Default.DeletePhoto(r.Context(), id)
	if err != nil && !errors.Is(err, errs.ErrStorageCleanup) {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	if err != nil {
		log.Printf("[media] %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func CreateHotspotHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PanoID            *uuid.UUID `json:"pano_id"`
		AssetID           *uuid.UUID `json:"asset_id"`
		DestinationPanoID *uuid.UUID `json:"destination_pano_id"`
		Yaw               float64    `json:"yaw"`
		Pitch             float64    `json:"pitch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.PanoID == nil {
		http.Error(w, "pano_id is required", http.StatusUnprocessableEntity)
		return
	}
	h := &Hotspot{
		PanoID:            *input.PanoID,
		AssetID:           input.AssetID,
		DestinationPanoID: input.DestinationPanoID,
		Yaw:               input.Yaw,
		Pitch:             input.Pitch,
	}
	if err := Default.CreateHotspot(r.Context(), h); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func ListHotspotsHandler(w http.ResponseWriter, r *http.Request) {
	panoID, ok := queryUUID(w, r, "pano_id")
	if !ok {
		return
	}
	hotspots, err := Default.ListHotspots(r.Context(), panoID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, hotspots)
}

func GetHotspotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	h, err := Default.GetHotspot(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func DeleteHotspotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := Default.DeleteHotspot(r.Context(), id); err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
