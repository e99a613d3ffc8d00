package overlays

import (
	"log"

	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

// Default is the manager used by the HTTP handlers; wired in Init.
var Default *Manager

func Init(content storage.ContentStore) {
	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}

	if err := db.DB.AutoMigrate(&Overlay{}); err != nil {
		log.Fatal("Failed to auto-migrate overlay tables: ", err)
	}

	Default = NewManager(db.DB, content)
}
