package overlays

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

const MaxNameLength = 100

// Manager handles map overlays and their stored images.
type Manager struct {
	db      *gorm.DB
	content storage.ContentStore
}

func NewManager(d *gorm.DB, content storage.ContentStore) *Manager {
	return &Manager{db: d, content: content}
}

var overlaySortColumns = map[string]bool{
	"name":       true,
	"level":      true,
	"created_at": true,
}

// Create registers an overlay over the rectangle spanned by the two
// corners. Corners must differ on both axes; the stored extent is
// normalized regardless of which corners the caller picked.
func (m *Manager) Create(ctx context.Context, surveyID uuid.UUID, name string, lon1, lat1, lon2, lat2 float64, contentRef string, level int) (*Overlay, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", errs.ErrValidation, MaxNameLength)
	}
	if strings.TrimSpace(contentRef) == "" {
		return nil, fmt.Errorf("%w: content_ref is required", errs.ErrValidation)
	}
	extent, err := geometry.NewExtent(lon1, lat1, lon2, lat2)
	if err != nil {
		return nil, err
	}
	if level == 0 {
		level = 1
	}

	o := &Overlay{
		Name:       name,
		SurveyID:   surveyID,
		Extent:     extent,
		ContentRef: contentRef,
		Level:      level,
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&surveys.Survey{}).Where("id = ?", surveyID).Count(&n).Error; err != nil {
			return errs.Translate(err)
		}
		if n == 0 {
			return fmt.Errorf("%w: survey %s", errs.ErrNotFound, surveyID)
		}
		return errs.Translate(tx.Create(o).Error)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Overlay, error) {
	var o Overlay
	if err := m.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return &o, nil
}

func (m *Manager) List(ctx context.Context, surveyID *uuid.UUID, params db.ListParams) ([]Overlay, error) {
	q := m.db.WithContext(ctx).Model(&Overlay{})
	if surveyID != nil {
		q = q.Where("survey_id = ?", *surveyID)
	}
	q, err := params.Apply(q, overlaySortColumns, "name")
	if err != nil {
		return nil, err
	}
	var overlays []Overlay
	if err := q.Find(&overlays).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return overlays, nil
}

// Delete removes an overlay row, then its stored image best-effort. A
// failed image removal is reported as ErrStorageCleanup; the row delete
// stands.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	var ref string
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Overlay
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		ref = o.ContentRef
		return errs.Translate(tx.Delete(&o).Error)
	})
	if err != nil {
		return err
	}
	return storage.Cleanup(ctx, m.content, []string{ref})
}

// Name implements cascade.SurveyPurger.
func (m *Manager) Name() string { return "overlays" }

// CountBySurvey implements cascade.SurveyPurger.
func (m *Manager) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&Overlay{}).Where("survey_id = ?", surveyID).Count(&n).Error
	return n, errs.Translate(err)
}

// PurgeSurvey implements cascade.SurveyPurger, returning the orphaned
// image refs for post-commit cleanup.
func (m *Manager) PurgeSurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]string, error) {
	var refs []string
	err := tx.WithContext(ctx).Model(&Overlay{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("survey_id = ?", surveyID).
		Pluck("content_ref", &refs).Error
	if err != nil {
		return nil, errs.Translate(err)
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&Overlay{}).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return refs, nil
}
