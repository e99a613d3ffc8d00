package media

import (
	"log"

	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

// Default is the catalog used by the HTTP handlers; wired in Init.
var Default *Catalog

func Init(content storage.ContentStore) {
	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}

	if err := db.DB.AutoMigrate(&Pano{}, &Photo{}, &Hotspot{}); err != nil {
		log.Fatal("Failed to auto-migrate media tables: ", err)
	}

	Default = NewCatalog(db.DB, content)
}
