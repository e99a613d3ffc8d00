package surveys

import (
	"time"

	"github.com/google/uuid"
)

// Survey is one data-collection visit to a site. At most one survey per site
// carries IsLatest; the ledger owns that transition and a partial unique
// index backs it (see Init).
type Survey struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	SiteID    uuid.UUID `gorm:"type:uuid;not null;index" json:"site_id"`
	IsLatest  bool      `gorm:"not null;default:false" json:"is_latest"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Survey) TableName() string {
	return "atlas.surveys"
}
