package surveys

import (
	"log"

	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

// Default is the ledger used by the HTTP handlers; wired in Init.
var Default *Ledger

func Init(children *cascade.Controller, content storage.ContentStore) {
	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}

	if err := db.DB.AutoMigrate(&Survey{}); err != nil {
		log.Fatal("Failed to auto-migrate survey tables: ", err)
	}

	// One latest survey per site, enforced at the storage layer as well.
	if err := db.DB.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS surveys_one_latest_per_site
        ON atlas.surveys (site_id) WHERE is_latest;
    `).Error; err != nil {
		log.Fatal("Failed to create surveys_one_latest_per_site: ", err)
	}

	Default = NewLedger(db.DB, children, content)
}
