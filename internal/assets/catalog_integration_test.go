package assets_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/FieldAtlas/FA-Backend/internal/assets"
	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
	"github.com/FieldAtlas/FA-Backend/internal/media"
	"github.com/FieldAtlas/FA-Backend/internal/overlays"
	"github.com/FieldAtlas/FA-Backend/internal/sites"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	if os.Getenv("DATABASE_URL") == "" {
		// No database available, skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	uploadDir, err := os.MkdirTemp("", "atlas-test-uploads")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(uploadDir)

	db.Connect()
	dbAvailable = true

	store, err := storage.NewLocal(storage.Config{Dir: uploadDir})
	if err != nil {
		panic(err)
	}

	media.Init(store)
	overlays.Init(store)
	assets.Init(media.Default)
	surveys.Init(cascade.NewController(assets.Default, media.Default, overlays.Default), store)
	sites.Init(surveys.Default, store)

	os.Exit(m.Run())
}

// newSurvey creates a site with one survey and registers cleanup for both.
func newSurvey(t *testing.T) surveys.Survey {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	ctx := context.Background()
	site, err := sites.Default.Create(ctx, "asset_site_"+uuid.New().String()[:8],
		geometry.Point{Longitude: 10, Latitude: 20}, nil)
	if err != nil {
		t.Fatalf("create site: %v", err)
	}
	start := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	survey, err := surveys.Default.Create(ctx, site.ID, "Asset Pass", start, start.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("survey_id = ?", survey.ID).Delete(&assets.Asset{})
		db.DB.Where("id = ?", survey.ID).Delete(&surveys.Survey{})
		db.DB.Where("id = ?", site.ID).Delete(&sites.Site{})
	})
	return survey
}

func newType(t *testing.T, name string) *assets.AssetType {
	t.Helper()
	at := &assets.AssetType{Name: name}
	if err := assets.Default.CreateType(context.Background(), at); err != nil {
		t.Fatalf("create type %s: %v", name, err)
	}
	t.Cleanup(func() {
		db.DB.Where("asset_type_id = ?", at.ID).Delete(&assets.AssetPropertyName{})
		db.DB.Where("id = ?", at.ID).Delete(&assets.AssetType{})
	})
	return at
}

func TestTypeNamesCollideCaseInsensitively(t *testing.T) {
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	name := "Pump_" + uuid.New().String()[:8]
	newType(t, name)

	dup := &assets.AssetType{Name: strings.ToUpper(name)}
	err := assets.Default.CreateType(context.Background(), dup)
	if !errors.Is(err, errs.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName for case-insensitive duplicate, got %v", err)
	}
}

func TestDeleteTypeRejectedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	survey := newSurvey(t)
	at := newType(t, "Panel_"+uuid.New().String()[:8])

	asset := &assets.Asset{
		Name:        "Panel 3",
		SurveyID:    survey.ID,
		AssetTypeID: &at.ID,
		Coordinates: geometry.Point{Longitude: 10, Latitude: 20},
	}
	if err := assets.Default.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	if err := assets.Default.DeleteType(ctx, at.ID); !errors.Is(err, errs.ErrNotEmpty) {
		t.Fatalf("expected ErrNotEmpty deleting a referenced type, got %v", err)
	}

	if err := assets.Default.DeleteAsset(ctx, asset.ID); err != nil {
		t.Fatalf("delete asset: %v", err)
	}
	if err := assets.Default.DeleteType(ctx, at.ID); err != nil {
		t.Fatalf("delete unreferenced type: %v", err)
	}
}

func TestSetPropertyUpserts(t *testing.T) {
	ctx := context.Background()
	survey := newSurvey(t)

	asset := &assets.Asset{
		Name:        "Door Sensor",
		SurveyID:    survey.ID,
		Coordinates: geometry.Point{Longitude: 10, Latitude: 20},
	}
	if err := assets.Default.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	if _, err := assets.Default.SetProperty(ctx, asset.ID, "color", "red"); err != nil {
		t.Fatalf("set color=red: %v", err)
	}
	if _, err := assets.Default.SetProperty(ctx, asset.ID, "color", "blue"); err != nil {
		t.Fatalf("set color=blue: %v", err)
	}

	props, err := assets.Default.ListProperties(ctx, asset.ID)
	if err != nil {
		t.Fatalf("list properties: %v", err)
	}
	if len(props) != 1 {
		t.Fatalf("expected a single color property, got %d rows", len(props))
	}
	if props[0].Key != "color" || props[0].Value != "blue" {
		t.Fatalf("expected color=blue, got %s=%s", props[0].Key, props[0].Value)
	}

	if err := assets.Default.DeleteProperty(ctx, asset.ID, "color"); err != nil {
		t.Fatalf("delete property: %v", err)
	}
	if err := assets.Default.DeleteProperty(ctx, asset.ID, "color"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting a missing property, got %v", err)
	}
}

func TestDeleteAssetRemovesPropertiesAndHotspots(t *testing.T) {
	ctx := context.Background()
	survey := newSurvey(t)

	asset := &assets.Asset{
		Name:        "Boiler",
		SurveyID:    survey.ID,
		Coordinates: geometry.Point{Longitude: 10, Latitude: 20},
	}
	if err := assets.Default.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if _, err := assets.Default.SetProperty(ctx, asset.ID, "status", "active"); err != nil {
		t.Fatalf("set property: %v", err)
	}

	pano := &media.Pano{
		Name:         "Boiler Room",
		Description:  "east wing boiler room, lower level",
		SurveyID:     survey.ID,
		Coordinates:  geometry.Point{Longitude: 10, Latitude: 20},
		ContentRef:   "test-ref-" + uuid.New().String()[:8],
		CustomMarker: "boiler-01",
	}
	if err := media.Default.CreatePano(ctx, pano); err != nil {
		t.Fatalf("create pano: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("id = ?", pano.ID).Delete(&media.Pano{})
	})
	got, err := media.Default.GetPano(ctx, pano.ID)
	if err != nil {
		t.Fatalf("get pano: %v", err)
	}
	if got.Description != pano.Description || got.CustomMarker != pano.CustomMarker {
		t.Fatalf("pano fields lost on round-trip: description=%q marker=%q", got.Description, got.CustomMarker)
	}
	hotspot := &media.Hotspot{PanoID: pano.ID, AssetID: &asset.ID, Yaw: 10, Pitch: 5}
	if err := media.Default.CreateHotspot(ctx, hotspot); err != nil {
		t.Fatalf("create hotspot: %v", err)
	}

	if err := assets.Default.DeleteAsset(ctx, asset.ID); err != nil {
		t.Fatalf("delete asset: %v", err)
	}

	var props, hotspots int64
	if err := db.DB.Model(&assets.AssetProperty{}).Where("asset_id = ?", asset.ID).Count(&props).Error; err != nil {
		t.Fatalf("count properties: %v", err)
	}
	if err := db.DB.Model(&media.Hotspot{}).Where("asset_id = ?", asset.ID).Count(&hotspots).Error; err != nil {
		t.Fatalf("count hotspots: %v", err)
	}
	if props != 0 || hotspots != 0 {
		t.Fatalf("expected asset delete to clear properties and hotspots, got %d/%d", props, hotspots)
	}
}
