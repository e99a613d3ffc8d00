package sites

import (
	"log"

	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

// Default is the hierarchy used by the HTTP handlers; wired in Init.
var Default *Hierarchy

func Init(surveys SurveyPurger, content storage.ContentStore) {
	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}
	if err := db.EnsureUUIDExtension(db.DB); err != nil {
		log.Fatal("Failed to enable uuid-ossp extension: ", err)
	}

	if err := db.DB.AutoMigrate(&Site{}); err != nil {
		log.Fatal("Failed to auto-migrate site tables: ", err)
	}

	Default = NewHierarchy(db.DB, surveys, content)
}
