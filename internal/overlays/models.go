package overlays

import (
	"time"

	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/geometry"
)

// Overlay is a rectangular map image (a floor plan, a schematic) draped
// over part of a survey's area. The extent is stored normalized so
// (min,min)-(max,max) always holds.
type Overlay struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	SurveyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"survey_id"`
	Extent     geometry.Extent `gorm:"embedded;embeddedPrefix:extent_" json:"extent"`
	ContentRef string          `gorm:"size:255;not null" json:"content_ref"`
	Level      int             `gorm:"not null;default:1" json:"level"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Overlay) TableName() string {
	return "atlas.overlays"
}
