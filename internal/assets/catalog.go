package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 255
)

// HotspotPurger removes scene hotspots that point at assets. Implemented
// by the media catalog so asset deletion does not leave dangling markers
// inside pano viewers.
type HotspotPurger interface {
	PurgeAssets(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) error
}

// Catalog manages asset types, assets and their custom properties.
type Catalog struct {
	db       *gorm.DB
	hotspots HotspotPurger
}

func NewCatalog(d *gorm.DB, hotspots HotspotPurger) *Catalog {
	return &Catalog{db: d, hotspots: hotspots}
}

var typeSortColumns = map[string]bool{
	"name":       true,
	"category":   true,
	"created_at": true,
}

var assetSortColumns = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", errs.ErrValidation, MaxNameLength)
	}
	return nil
}

func validateDescription(desc string) error {
	if len(desc) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", errs.ErrValidation, MaxDescriptionLength)
	}
	return nil
}

// CreateType registers a new asset type. Names collide case-insensitively;
// a duplicate surfaces as ErrDuplicateName via the functional index on
// LOWER(name).
func (c *Catalog) CreateType(ctx context.Context, t *AssetType) error {
	if err := validateName(t.Name); err != nil {
		return err
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	t.Name = strings.TrimSpace(t.Name)
	if err := c.db.WithContext(ctx).Create(t).Error; err != nil {
		if errs.IsUniqueViolation(err) {
			return fmt.Errorf("%w: asset type %q", errs.ErrDuplicateName, t.Name)
		}
		return errs.Translate(err)
	}
	return nil
}

func (c *Catalog) GetType(ctx context.Context, id uuid.UUID) (*AssetType, error) {
	var t AssetType
	err := c.db.WithContext(ctx).
		Preload("PropertyNames").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, errs.Translate(err)
	}
	return &t, nil
}

func (c *Catalog) ListTypes(ctx context.Context, params db.ListParams) ([]AssetType, error) {
	q, err := params.Apply(c.db.WithContext(ctx).Model(&AssetType{}), typeSortColumns, "name")
	if err != nil {
		return nil, err
	}
	var types []AssetType
	if err := q.Find(&types).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return types, nil
}

func (c *Catalog) UpdateType(ctx context.Context, id uuid.UUID, upd *AssetTypeUpdate) (*AssetType, error) {
	var t AssetType
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		if upd.Name != nil {
			if err := validateName(*upd.Name); err != nil {
				return err
			}
			t.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			if err := validateDescription(*upd.Description); err != nil {
				return err
			}
			t.Description = *upd.Description
		}
		if upd.Category != nil {
			t.Category = *upd.Category
		}
		if upd.IconRef != nil {
			t.IconRef = *upd.IconRef
		}
		if err := tx.Model(&t).Updates(map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"category":    t.Category,
			"icon_ref":    t.IconRef,
		}).Error; err != nil {
			if errs.IsUniqueViolation(err) {
				return fmt.Errorf("%w: asset type %q", errs.ErrDuplicateName, t.Name)
			}
			return errs.Translate(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AssetTypeUpdate carries optional field changes for an asset type.
// Nil fields keep their current value.
type AssetTypeUpdate struct {
	Name        *string
	Description *string
	Category    *string
	IconRef     *string
}

// DeleteType removes a type and its suggested property names. Types still
// referenced by assets cannot be deleted; callers must retype or remove
// those assets first.
func (c *Catalog) DeleteType(ctx context.Context, id uuid.UUID) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t AssetType
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		var refs int64
		if err := tx.Model(&Asset{}).Where("asset_type_id = ?", id).Count(&refs).Error; err != nil {
			return errs.Translate(err)
		}
		if refs > 0 {
			return fmt.Errorf("%w: asset type is referenced by %d assets", errs.ErrNotEmpty, refs)
		}
		if err := tx.Where("asset_type_id = ?", id).Delete(&AssetPropertyName{}).Error; err != nil {
			return errs.Translate(err)
		}
		return errs.Translate(tx.Delete(&t).Error)
	})
}

// AddTypePropertyName attaches a suggested property key to a type.
func (c *Catalog) AddTypePropertyName(ctx context.Context, typeID uuid.UUID, name string) (*AssetPropertyName, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	pn := &AssetPropertyName{AssetTypeID: typeID, Name: strings.TrimSpace(name)}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := typeExists(tx, typeID); err != nil {
			return err
		}
		return errs.Translate(tx.Create(pn).Error)
	})
	if err != nil {
		return nil, err
	}
	return pn, nil
}

func (c *Catalog) ListTypePropertyNames(ctx context.Context, typeID uuid.UUID) ([]AssetPropertyName, error) {
	if err := typeExists(c.db.WithContext(ctx), typeID); err != nil {
		return nil, err
	}
	var names []AssetPropertyName
	err := c.db.WithContext(ctx).
		Where("asset_type_id = ?", typeID).
		Order("name ASC").
		Find(&names).Error
	if err != nil {
		return nil, errs.Translate(err)
	}
	return names, nil
}

func (c *Catalog) DeleteTypePropertyName(ctx context.Context, typeID, nameID uuid.UUID) error {
	res := c.db.WithContext(ctx).
		Where("id = ? AND asset_type_id = ?", nameID, typeID).
		Delete(&AssetPropertyName{})
	if res.Error != nil {
		return errs.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: property name %s", errs.ErrNotFound, nameID)
	}
	return nil
}

// CreateAsset records a new asset inside a survey. The survey must exist
// and the type, when given, must exist too.
func (c *Catalog) CreateAsset(ctx context.Context, a *Asset) error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	if err := validateDescription(a.Description); err != nil {
		return err
	}
	if err := a.Coordinates.Validate(); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(a.Name)
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&surveys.Survey{}).Where("id = ?", a.SurveyID).Count(&n).Error; err != nil {
			return errs.Translate(err)
		}
		if n == 0 {
			return fmt.Errorf("%w: survey %s", errs.ErrNotFound, a.SurveyID)
		}
		if a.AssetTypeID != nil {
			if err := typeExists(tx, *a.AssetTypeID); err != nil {
				return err
			}
		}
		return errs.Translate(tx.Create(a).Error)
	})
}

func (c *Catalog) GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error) {
	var a Asset
	err := c.db.WithContext(ctx).
		Preload("Properties").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, errs.Translate(err)
	}
	return &a, nil
}

// ListAssets returns assets, optionally filtered by survey and/or type.
func (c *Catalog) ListAssets(ctx context.Context, surveyID, typeID *uuid.UUID, params db.ListParams) ([]Asset, error) {
	q := c.db.WithContext(ctx).Model(&Asset{})
	if surveyID != nil {
		q = q.Where("survey_id = ?", *surveyID)
	}
	if typeID != nil {
		q = q.Where("asset_type_id = ?", *typeID)
	}
	q, err := params.Apply(q, assetSortColumns, "name")
	if err != nil {
		return nil, err
	}
	var assets []Asset
	if err := q.Find(&assets).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return assets, nil
}

// AssetUpdate carries optional field changes for an asset. The survey
// reference is not updatable; assets belong to the survey that recorded
// them.
type AssetUpdate struct {
	Name        *string
	Description *string
	AssetTypeID *uuid.UUID
	ClearType   bool
	Coordinates *geometry.Point
}

func (c *Catalog) UpdateAsset(ctx context.Context, id uuid.UUID, upd *AssetUpdate) (*Asset, error) {
	var a Asset
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		updates := map[string]any{}
		if upd.Name != nil {
			if err := validateName(*upd.Name); err != nil {
				return err
			}
			a.Name = strings.TrimSpace(*upd.Name)
			updates["name"] = a.Name
		}
		if upd.Description != nil {
			if err := validateDescription(*upd.Description); err != nil {
				return err
			}
			a.Description = *upd.Description
			updates["description"] = a.Description
		}
		switch {
		case upd.ClearType:
			a.AssetTypeID = nil
			updates["asset_type_id"] = nil
		case upd.AssetTypeID != nil:
			if err := typeExists(tx, *upd.AssetTypeID); err != nil {
				return err
			}
			a.AssetTypeID = upd.AssetTypeID
			updates["asset_type_id"] = *upd.AssetTypeID
		}
		if upd.Coordinates != nil {
			if err := upd.Coordinates.Validate(); err != nil {
				return err
			}
			a.Coordinates = *upd.Coordinates
			updates["coord_longitude"] = a.Coordinates.Longitude
			updates["coord_latitude"] = a.Coordinates.Latitude
			updates["coord_elevation"] = a.Coordinates.Elevation
		}
		if len(updates) == 0 {
			return nil
		}
		return errs.Translate(tx.Model(&a).Updates(updates).Error)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAsset removes an asset together with its properties and any
// hotspots that pointed at it.
func (c *Catalog) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		if c.hotspots != nil {
			if err := c.hotspots.PurgeAssets(ctx, tx, []uuid.UUID{id}); err != nil {
				return err
			}
		}
		if err := tx.Where("asset_id = ?", id).Delete(&AssetProperty{}).Error; err != nil {
			return errs.Translate(err)
		}
		return errs.Translate(tx.Delete(&a).Error)
	})
}

// SetProperty writes one key/value onto an asset, inserting or replacing
// in a single upsert.
func (c *Catalog) SetProperty(ctx context.Context, assetID uuid.UUID, key, value string) (*AssetProperty, error) {
	if err := validateName(key); err != nil {
		return nil, err
	}
	p := &AssetProperty{AssetID: assetID, Key: strings.TrimSpace(key), Value: value}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := assetExists(tx, assetID); err != nil {
			return err
		}
		return errs.Translate(tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(p).Error)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Catalog) ListProperties(ctx context.Context, assetID uuid.UUID) ([]AssetProperty, error) {
	if err := assetExists(c.db.WithContext(ctx), assetID); err != nil {
		return nil, err
	}
	var props []AssetProperty
	err := c.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("key ASC").
		Find(&props).Error
	if err != nil {
		return nil, errs.Translate(err)
	}
	return props, nil
}

func (c *Catalog) DeleteProperty(ctx context.Context, assetID uuid.UUID, key string) error {
	res := c.db.WithContext(ctx).
		Where("asset_id = ? AND key = ?", assetID, key).
		Delete(&AssetProperty{})
	if res.Error != nil {
		return errs.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: property %q on asset %s", errs.ErrNotFound, key, assetID)
	}
	return nil
}

// Name implements cascade.SurveyPurger.
func (c *Catalog) Name() string { return "assets" }

// CountBySurvey implements cascade.SurveyPurger.
func (c *Catalog) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&Asset{}).Where("survey_id = ?", surveyID).Count(&n).Error
	return n, errs.Translate(err)
}

// PurgeSurvey implements cascade.SurveyPurger. It removes every asset of
// the survey along with their properties and the hotspots pointing at
// them. Assets have no stored content, so no orphaned refs come back.
func (c *Catalog) PurgeSurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]string, error) {
	var ids []uuid.UUID
	err := tx.WithContext(ctx).Model(&Asset{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("survey_id = ?", surveyID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errs.Translate(err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if c.hotspots != nil {
		if err := c.hotspots.PurgeAssets(ctx, tx, ids); err != nil {
			return nil, err
		}
	}
	if err := tx.Where("asset_id = ANY(?)", pq.Array(ids)).Delete(&AssetProperty{}).Error; err != nil {
		return nil, errs.Translate(err)
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&Asset{}).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return nil, nil
}

func typeExists(q *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := q.Model(&AssetType{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return errs.Translate(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: asset type %s", errs.ErrNotFound, id)
	}
	return nil
}

func assetExists(q *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := q.Model(&Asset{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return errs.Translate(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: asset %s", errs.ErrNotFound, id)
	}
	return nil
}
