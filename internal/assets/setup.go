package assets

import (
	"log"

	"github.com/FieldAtlas/FA-Backend/internal/db"
)

// Default is the catalog used by the HTTP handlers; wired in Init.
var Default *Catalog

func Init(hotspots HotspotPurger) {
	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}

	if err := db.DB.AutoMigrate(&AssetType{}, &AssetPropertyName{}, &Asset{}, &AssetProperty{}); err != nil {
		log.Fatal("Failed to auto-migrate asset tables: ", err)
	}

	// Type names collide case-insensitively.
	if err := db.DB.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS asset_types_name_ci_unique
        ON atlas.asset_types (LOWER(name));
    `).Error; err != nil {
		log.Fatal("Failed to create asset_types_name_ci_unique: ", err)
	}

	Default = NewCatalog(db.DB, hotspots)
}
