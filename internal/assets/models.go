package assets

import (
	"time"

	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/geometry"
)

// AssetType is a category label distinguishing assets from each other
// ("Pump", "Electrical Panel", "Access Point"). Names are unique
// case-insensitively across the catalog.
type AssetType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	Category    string    `gorm:"size:100" json:"category,omitempty"`
	// IconRef points at the type's map icon in the upload store.
	IconRef   string    `gorm:"size:255" json:"icon_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PropertyNames []AssetPropertyName `gorm:"foreignKey:AssetTypeID;constraint:OnDelete:CASCADE" json:"property_names,omitempty"`
}

func (AssetType) TableName() string {
	return "atlas.asset_types"
}

// AssetPropertyName is a suggested property key for assets of a type, e.g.
// a "Computer" type suggesting "MAC Address" and "Manufacturer". Suggestions
// only: asset properties remain free-form.
type AssetPropertyName struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AssetTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"asset_type_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AssetPropertyName) TableName() string {
	return "atlas.asset_property_names"
}

// Asset is an item of interest occupying a physical point in space,
// recorded during one survey. The survey reference is immutable after
// creation.
type Asset struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description,omitempty"`
	SurveyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"survey_id"`
	AssetTypeID *uuid.UUID     `gorm:"type:uuid;index" json:"asset_type_id,omitempty"`
	Coordinates geometry.Point `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Properties []AssetProperty `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"properties,omitempty"`
}

func (Asset) TableName() string {
	return "atlas.assets"
}

// AssetProperty is one custom key/value fact about an asset. Keys are
// case-sensitive and unique within an asset's property set.
type AssetProperty struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AssetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_asset_properties_asset_key" json:"asset_id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:idx_asset_properties_asset_key" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AssetProperty) TableName() string {
	return "atlas.asset_properties"
}
