package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FieldAtlas/FA-Backend/internal/assets"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 255
	maxMarkerLength      = 100
)

// Catalog manages panos, photos and the hotspots linking them. Stored
// content lives in the upload store; rows hold only the refs.
type Catalog struct {
	db      *gorm.DB
	content storage.ContentStore
}

func NewCatalog(d *gorm.DB, content storage.ContentStore) *Catalog {
	return &Catalog{db: d, content: content}
}

var mediaSortColumns = map[string]bool{
	"name":       true,
	"level":      true,
	"created_at": true,
}

func validateMedia(name, description, contentRef, marker string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", errs.ErrValidation, MaxNameLength)
	}
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", errs.ErrValidation, MaxDescriptionLength)
	}
	if strings.TrimSpace(contentRef) == "" {
		return fmt.Errorf("%w: content_ref is required", errs.ErrValidation)
	}
	if len(marker) > maxMarkerLength {
		return fmt.Errorf("%w: custom_marker exceeds %d characters", errs.ErrValidation, maxMarkerLength)
	}
	return nil
}

// validateHotspotTarget enforces that a hotspot points at exactly one of
// an asset or a destination pano, within viewer angle ranges.
func validateHotspotTarget(assetID, destPanoID *uuid.UUID, yaw, pitch float64) error {
	if (assetID == nil) == (destPanoID == nil) {
		return fmt.Errorf("%w: exactly one of asset_id and destination_pano_id must be set", errs.ErrValidation)
	}
	if yaw < -180 || yaw > 180 {
		return fmt.Errorf("%w: yaw %g outside [-180, 180]", errs.ErrValidation, yaw)
	}
	if pitch < -90 || pitch > 90 {
		return fmt.Errorf("%w: pitch %g outside [-90, 90]", errs.ErrValidation, pitch)
	}
	return nil
}

func surveyExists(q *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := q.Model(&surveys.Survey{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return errs.Translate(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: survey %s", errs.ErrNotFound, id)
	}
	return nil
}

func (c *Catalog) CreatePano(ctx context.Context, p *Pano) error {
	if err := validateMedia(p.Name, p.Description, p.ContentRef, p.CustomMarker); err != nil {
		return err
	}
	if err := p.Coordinates.Validate(); err != nil {
		return err
	}
	if p.Level == 0 {
		p.Level = 1
	}
	p.Name = strings.TrimSpace(p.Name)
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := surveyExists(tx, p.SurveyID); err != nil {
			return err
		}
		return errs.Translate(tx.Create(p).Error)
	})
}

func (c *Catalog) GetPano(ctx context.Context, id uuid.UUID) (*Pano, error) {
	var p Pano
	if err := c.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return &p, nil
}

func (c *Catalog) ListPanos(ctx context.Context, surveyID *uuid.UUID, params db.ListParams) ([]Pano, error) {
	q := c.db.WithContext(ctx).Model(&Pano{})
	if surveyID != nil {
		q = q.Where("survey_id = ?", *surveyID)
	}
	q, err := params.Apply(q, mediaSortColumns, "name")
	if err != nil {
		return nil, err
	}
	var panos []Pano
	if err := q.Find(&panos).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return panos, nil
}

// DeletePano removes a pano and every hotspot inside it or jumping to it.
// The stored image is removed after commit; a failed removal is reported
// as ErrStorageCleanup but the row delete stands.
func (c *Catalog) DeletePano(ctx context.Context, id uuid.UUID) error {
	var ref string
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Pano
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		ref = p.ContentRef
		if err := tx.Where("pano_id = ? OR destination_pano_id = ?", id, id).
			Delete(&Hotspot{}).Error; err != nil {
			return errs.Translate(err)
		}
		return errs.Translate(tx.Delete(&p).Error)
	})
	if err != nil {
		return err
	}
	return storage.Cleanup(ctx, c.content, []string{ref})
}

func (c *Catalog) CreatePhoto(ctx context.Context, p *Photo) error {
	if err := validateMedia(p.Name, p.Description, p.ContentRef, p.CustomMarker); err != nil {
		return err
	}
	if err := p.Coordinates.Validate(); err != nil {
		return err
	}
	if p.Level == 0 {
		p.Level = 1
	}
	p.Name = strings.TrimSpace(p.Name)
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := surveyExists(tx, p.SurveyID); err != nil {
			return err
		}
		return errs.Translate(tx.Create(p).Error)
	})
}

func (c *Catalog) GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error) {
	var p Photo
	if err := c.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return &p, nil
}

func (c *Catalog) ListPhotos(ctx context.Context, surveyID *uuid.UUID, params db.ListParams) ([]Photo, error) {
	q := c.db.WithContext(ctx).Model(&Photo{})
	if surveyID != nil {
		q = q.Where("survey_id = ?", *surveyID)
	}
	q, err := params.Apply(q, mediaSortColumns, "name")
	if err != nil {
		return nil, err
	}
	var photos []Photo
	if err := q.Find(&photos).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return photos, nil
}

func (c *Catalog) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	var ref string
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Photo
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		ref = p.ContentRef
		return errs.Translate(tx.Delete(&p).Error)
	})
	if err != nil {
		return err
	}
	return storage.Cleanup(ctx, c.content, []string{ref})
}

// CreateHotspot places a marker in a pano pointing at an asset or at
// another pano. Both ends must exist.
func (c *Catalog) CreateHotspot(ctx context.Context, h *Hotspot) error {
	if err := validateHotspotTarget(h.AssetID, h.DestinationPanoID, h.Yaw, h.Pitch); err != nil {
		return err
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Pano{}).Where("id = ?", h.PanoID).Count(&n).Error; err != nil {
			return errs.Translate(err)
		}
		if n == 0 {
			return fmt.Errorf("%w: pano %s", errs.ErrNotFound, h.PanoID)
		}
		if h.AssetID != nil {
			if err := tx.Model(&assets.Asset{}).Where("id = ?", *h.AssetID).Count(&n).Error; err != nil {
				return errs.Translate(err)
			}
			if n == 0 {
				return fmt.Errorf("%w: asset %s", errs.ErrNotFound, *h.AssetID)
			}
		}
		if h.DestinationPanoID != nil {
			if err := tx.Model(&Pano{}).Where("id = ?", *h.DestinationPanoID).Count(&n).Error; err != nil {
				return errs.Translate(err)
			}
			if n == 0 {
				return fmt.Errorf("%w: destination pano %s", errs.ErrNotFound, *h.DestinationPanoID)
			}
		}
		return errs.Translate(tx.Create(h).Error)
	})
}

func (c *Catalog) GetHotspot(ctx context.Context, id uuid.UUID) (*Hotspot, error) {
	var h Hotspot
	if err := c.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return &h, nil
}

func (c *Catalog) ListHotspots(ctx context.Context, panoID *uuid.UUID) ([]Hotspot, error) {
	q := c.db.WithContext(ctx).Model(&Hotspot{})
	if panoID != nil {
		q = q.Where("pano_id = ?", *panoID)
	}
	var hotspots []Hotspot
	if err := q.Order("created_at ASC").Find(&hotspots).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return hotspots, nil
}

func (c *Catalog) DeleteHotspot(ctx context.Context, id uuid.UUID) error {
	res := c.db.WithContext(ctx).Delete(&Hotspot{}, "id = ?", id)
	if res.Error != nil {
		return errs.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: hotspot %s", errs.ErrNotFound, id)
	}
	return nil
}

// PurgeAssets drops every hotspot pointing at the given assets. Runs in
// the caller's transaction; the asset catalog calls it before deleting
// asset rows.
func (c *Catalog) PurgeAssets(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) error {
	if len(assetIDs) == 0 {
		return nil
	}
	err := tx.WithContext(ctx).
		Where("asset_id = ANY(?)", pq.Array(assetIDs)).
		Delete(&Hotspot{}).Error
	return errs.Translate(err)
}

// Name implements cascade.SurveyPurger.
func (c *Catalog) Name() string { return "media" }

// CountBySurvey implements cascade.SurveyPurger.
func (c *Catalog) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error) {
	var panos, photos int64
	if err := tx.WithContext(ctx).Model(&Pano{}).Where("survey_id = ?", surveyID).Count(&panos).Error; err != nil {
		return 0, errs.Translate(err)
	}
	if err := tx.WithContext(ctx).Model(&Photo{}).Where("survey_id = ?", surveyID).Count(&photos).Error; err != nil {
		return 0, errs.Translate(err)
	}
	return panos + photos, nil
}

// PurgeSurvey implements cascade.SurveyPurger. It removes the survey's
// panos and photos along with the hotspots inside or into those panos,
// returning the orphaned content refs for post-commit cleanup.
func (c *Catalog) PurgeSurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]string, error) {
	var panoIDs []uuid.UUID
	err := tx.WithContext(ctx).Model(&Pano{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("survey_id = ?", surveyID).
		Pluck("id", &panoIDs).Error
	if err != nil {
		return nil, errs.Translate(err)
	}

	var refs []string
	if err := tx.Model(&Pano{}).Where("survey_id = ?", surveyID).Pluck("content_ref", &refs).Error; err != nil {
		return nil, errs.Translate(err)
	}
	var photoRefs []string
	if err := tx.Model(&Photo{}).Where("survey_id = ?", surveyID).Pluck("content_ref", &photoRefs).Error; err != nil {
		return nil, errs.Translate(err)
	}
	refs = append(refs, photoRefs...)

	if len(panoIDs) > 0 {
		err := tx.Where("pano_id = ANY(?) OR destination_pano_id = ANY(?)",
			pq.Array(panoIDs), pq.Array(panoIDs)).
			Delete(&Hotspot{}).Error
		if err != nil {
			return nil, errs.Translate(err)
		}
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&Pano{}).Error; err != nil {
		return nil, errs.Translate(err)
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&Photo{}).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return refs, nil
}
