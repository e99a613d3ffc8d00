package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/geometry"
)

// Pano is a 360-degree panoramic image captured at a point during a survey.
// ContentRef names the image in the upload store; the catalog only holds
// the reference.
type Pano struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description,omitempty"`
	SurveyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"survey_id"`
	Coordinates geometry.Point `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	ContentRef  string         `gorm:"size:255;not null" json:"content_ref"`
	// Heading is the compass bearing of the pano's initial view, degrees
	// clockwise from north. Nil when the capture rig did not record one.
	Heading *float64 `json:"heading,omitempty"`
	IsCubic bool     `gorm:"not null;default:false" json:"is_cubic"`
	// CustomMarker carries the marker label used to match bulk-uploaded
	// imagery to pre-placed records. Empty means none.
	CustomMarker string    `gorm:"size:100" json:"custom_marker,omitempty"`
	Level        int       `gorm:"not null;default:1" json:"level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Pano) TableName() string {
	return "atlas.panos"
}

// Photo is a flat image captured at a point during a survey.
type Photo struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"size:255" json:"description,omitempty"`
	SurveyID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"survey_id"`
	Coordinates  geometry.Point `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	ContentRef   string         `gorm:"size:255;not null" json:"content_ref"`
	Heading      *float64       `json:"heading,omitempty"`
	CustomMarker string         `gorm:"size:100" json:"custom_marker,omitempty"`
	Level        int            `gorm:"not null;default:1" json:"level"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Photo) TableName() string {
	return "atlas.photos"
}

// Hotspot is a clickable marker inside a pano view, pointing at either an
// asset or another pano. Exactly one target is set. Yaw and pitch place
// the marker inside the sphere.
type Hotspot struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PanoID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"pano_id"`
	AssetID           *uuid.UUID `gorm:"type:uuid;index" json:"asset_id,omitempty"`
	DestinationPanoID *uuid.UUID `gorm:"type:uuid;index" json:"destination_pano_id,omitempty"`
	Yaw               float64    `gorm:"not null" json:"yaw"`
	Pitch             float64    `gorm:"not null" json:"pitch"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Hotspot) TableName() string {
	return "atlas.hotspots"
}
