package seeds

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FieldAtlas/FA-Backend/internal/assets"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
	"github.com/FieldAtlas/FA-Backend/internal/media"
	"github.com/FieldAtlas/FA-Backend/internal/overlays"
	"github.com/FieldAtlas/FA-Backend/internal/sites"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

// SeedAll loads a small demo campus so a fresh database has something to
// browse: a two-level site tree, a latest survey, a typed asset with
// properties, a pano with a hotspot, and a floor plan overlay. Skips
// everything when the demo site already exists.
func SeedAll(ctx context.Context, store storage.ContentStore) error {
	site, created, err := seedSite(ctx, "Riverside Plant", geometry.Point{Longitude: -122.41, Latitude: 37.77}, nil)
	if err != nil {
		return err
	}
	if !created {
		log.Printf("⚠️ Demo site exists, skipping seed")
		return nil
	}
	if _, _, err := seedSite(ctx, "Riverside Annex", geometry.Point{Longitude: -122.4095, Latitude: 37.7702}, &site.ID); err != nil {
		return err
	}

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	survey, err := surveys.Default.Create(ctx, site.ID, "Spring Walkthrough", start, start.AddDate(0, 0, 4))
	if err != nil {
		return fmt.Errorf("failed to create demo survey: %w", err)
	}
	if _, err := surveys.Default.MarkLatest(ctx, survey.ID); err != nil {
		return fmt.Errorf("failed to mark demo survey latest: %w", err)
	}

	pumpType := &assets.AssetType{Name: "Pump", Category: "Mechanical"}
	if err := assets.Default.CreateType(ctx, pumpType); err != nil {
		return fmt.Errorf("failed to create demo asset type: %w", err)
	}
	for _, name := range []string{"Manufacturer", "Flow Rate"} {
		if _, err := assets.Default.AddTypePropertyName(ctx, pumpType.ID, name); err != nil {
			return fmt.Errorf("failed to add property name %s: %w", name, err)
		}
	}

	pump := &assets.Asset{
		Name:        "Intake Pump 1",
		SurveyID:    survey.ID,
		AssetTypeID: &pumpType.ID,
		Coordinates: geometry.Point{Longitude: -122.4099, Latitude: 37.7701},
	}
	if err := assets.Default.CreateAsset(ctx, pump); err != nil {
		return fmt.Errorf("failed to create demo asset: %w", err)
	}
	if _, err := assets.Default.SetProperty(ctx, pump.ID, "Manufacturer", "Grundfos"); err != nil {
		return fmt.Errorf("failed to set demo property: %w", err)
	}
	if _, err := assets.Default.SetProperty(ctx, pump.ID, "Status", "active"); err != nil {
		return fmt.Errorf("failed to set demo property: %w", err)
	}

	panoRef, err := store.Store(ctx, strings.NewReader("placeholder pano"), "pano.jpg")
	if err != nil {
		return fmt.Errorf("failed to store demo pano content: %w", err)
	}
	pano := &media.Pano{
		Name:        "Pump House Interior",
		Description: "interior sweep of the pump house",
		SurveyID:    survey.ID,
		Coordinates: geometry.Point{Longitude: -122.4098, Latitude: 37.77},
		ContentRef:  panoRef,
	}
	if err := media.Default.CreatePano(ctx, pano); err != nil {
		return fmt.Errorf("failed to create demo pano: %w", err)
	}
	hotspot := &media.Hotspot{PanoID: pano.ID, AssetID: &pump.ID, Yaw: 42, Pitch: -8}
	if err := media.Default.CreateHotspot(ctx, hotspot); err != nil {
		return fmt.Errorf("failed to create demo hotspot: %w", err)
	}

	planRef, err := store.Store(ctx, strings.NewReader("placeholder floor plan"), "plan.png")
	if err != nil {
		return fmt.Errorf("failed to store demo overlay content: %w", err)
	}
	_, err = overlays.Default.Create(ctx, survey.ID, "Pump House Floor Plan",
		-122.4101, 37.7699, -122.4096, 37.7703, planRef, 1)
	if err != nil {
		return fmt.Errorf("failed to create demo overlay: %w", err)
	}

	log.Printf("✅ Seeded demo site %s with survey %s", site.Name, survey.Name)
	return nil
}

func seedSite(ctx context.Context, name string, coords geometry.Point, parentID *uuid.UUID) (sites.Site, bool, error) {
	var existing sites.Site
	err := db.DB.First(&existing, "name = ?", name).Error
	if err == nil {
		return existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return sites.Site{}, false, fmt.Errorf("DB error on site %s: %w", name, err)
	}
	site, err := sites.Default.Create(ctx, name, coords, parentID)
	if err != nil {
		return sites.Site{}, false, fmt.Errorf("failed to create site %s: %w", name, err)
	}
	return site, true, nil
}
