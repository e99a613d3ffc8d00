package sites

import (
	"time"

	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/geometry"
)

// MaxNameLength bounds every user-supplied name in the catalog.
const MaxNameLength = 100

// Site is a surveyed physical location or facility. Sites nest: a site can
// contain sub-sites, and each site can contain one or more surveys. The
// coordinates are a single point used to locate the site easily; the site
// itself may span a large area.
type Site struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Coordinates  geometry.Point `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	ParentSiteID *uuid.UUID     `gorm:"type:uuid;index" json:"parent_site_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Site) TableName() string {
	return "atlas.sites"
}
