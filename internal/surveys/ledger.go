package surveys

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/sites"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

// Ledger owns survey records and the is-latest transition. Every mutation is
// one transaction; the "one latest per site" invariant is enforced by row
// locking inside MarkLatest and backed by a partial unique index.
type Ledger struct {
	db       *gorm.DB
	children *cascade.Controller
	content  storage.ContentStore
}

func NewLedger(gdb *gorm.DB, children *cascade.Controller, content storage.ContentStore) *Ledger {
	return &Ledger{db: gdb, children: children, content: content}
}

func validateSurvey(name string, start, end time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	if len(name) > sites.MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", errs.ErrValidation, sites.MaxNameLength)
	}
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", errs.ErrValidation)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end_date is before start_date", errs.ErrValidation)
	}
	return nil
}

// Create records a new survey for a site. New surveys are never latest;
// promotion is an explicit MarkLatest call.
func (l *Ledger) Create(ctx context.Context, siteID uuid.UUID, name string, start, end time.Time) (Survey, error) {
	if err := validateSurvey(name, start, end); err != nil {
		return Survey{}, err
	}

	survey := Survey{
		Name:      strings.TrimSpace(name),
		StartDate: start,
		EndDate:   end,
		SiteID:    siteID,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&sites.Site{}).Where("id = ?", siteID).Count(&n).Error; err != nil {
			return errs.Translate(err)
		}
		if n == 0 {
			return fmt.Errorf("%w: site %s", errs.ErrNotFound, siteID)
		}
		return errs.Translate(tx.Create(&survey).Error)
	})
	if err != nil {
		return Survey{}, err
	}
	return survey, nil
}

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (Survey, error) {
	var survey Survey
	if err := l.db.WithContext(ctx).First(&survey, "id = ?", id).Error; err != nil {
		return Survey{}, errs.Translate(err)
	}
	return survey, nil
}

var surveySortColumns = map[string]bool{
	"id": true, "name": true, "start_date": true, "end_date": true,
	"created_at": true, "updated_at": true,
}

// List queries surveys, optionally narrowed to one site.
func (l *Ledger) List(ctx context.Context, siteID *uuid.UUID, params db.ListParams) ([]Survey, error) {
	q := l.db.WithContext(ctx).Model(&Survey{})
	if siteID != nil {
		q = q.Where("site_id = ?", *siteID)
	}
	q, err := params.Apply(q, surveySortColumns, "name")
	if err != nil {
		return nil, err
	}
	var out []Survey
	if err := q.Find(&out).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return out, nil
}

// Update changes a survey's label or date range. The site reference and the
// latest flag are not updatable here.
func (l *Ledger) Update(ctx context.Context, id uuid.UUID, name *string, start, end *time.Time) (Survey, error) {
	var survey Survey
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&survey, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}

		next := survey
		if name != nil {
			next.Name = strings.TrimSpace(*name)
		}
		if start != nil {
			next.StartDate = *start
		}
		if end != nil {
			next.EndDate = *end
		}
		if err := validateSurvey(next.Name, next.StartDate, next.EndDate); err != nil {
			return err
		}

		if err := tx.Model(&survey).Updates(map[string]any{
			"name":       next.Name,
			"start_date": next.StartDate,
			"end_date":   next.EndDate,
		}).Error; err != nil {
			return errs.Translate(err)
		}
		survey = next
		return nil
	})
	if err != nil {
		return Survey{}, err
	}
	return survey, nil
}

// MarkLatest promotes a survey to be its site's latest. One transaction:
// lock the target, clear the flag on its siblings, set it on the target.
// Competing callers on the same site serialize on the row locks; if they
// deadlock the loser surfaces as a retryable conflict, and the partial
// unique index guarantees no commit ever holds two latest surveys.
func (l *Ledger) MarkLatest(ctx context.Context, id uuid.UUID) (Survey, error) {
	var survey Survey
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&survey, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}

		err := tx.Model(&Survey{}).
			Where("site_id = ? AND is_latest AND id <> ?", survey.SiteID, survey.ID).
			Update("is_latest", false).Error
		if err != nil {
			return errs.Translate(err)
		}

		if err := tx.Model(&survey).Update("is_latest", true).Error; err != nil {
			return errs.Translate(err)
		}
		survey.IsLatest = true
		return nil
	})
	if err != nil {
		return Survey{}, err
	}
	return survey, nil
}

// GetLatest returns the site's latest survey. A site whose latest survey was
// deleted has none until a client promotes another — there is no automatic
// promotion.
func (l *Ledger) GetLatest(ctx context.Context, siteID uuid.UUID) (Survey, error) {
	var survey Survey
	err := l.db.WithContext(ctx).First(&survey, "site_id = ? AND is_latest", siteID).Error
	if err != nil {
		return Survey{}, errs.Translate(err)
	}
	return survey, nil
}

// Delete removes a survey under the given policy. A cascade removes the
// survey's assets, panos, photos and overlays in the same transaction via
// the cascade controller; orphaned content is reclaimed best-effort after
// commit.
func (l *Ledger) Delete(ctx context.Context, id uuid.UUID, policy cascade.Policy) error {
	var orphaned []string
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var survey Survey
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&survey, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}

		switch policy {
		case cascade.PolicyRejectIfNonEmpty:
			n, err := l.children.CountDependents(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: survey has %d dependent records", errs.ErrNotEmpty, n)
			}

		case cascade.PolicyCascade:
			refs, err := l.children.PurgeSurvey(ctx, tx, id)
			if err != nil {
				return err
			}
			orphaned = refs

		default:
			return fmt.Errorf("%w: unknown cascade policy %q", errs.ErrValidation, policy)
		}

		return errs.Translate(tx.Delete(&Survey{}, "id = ?", id).Error)
	})
	if err != nil {
		return err
	}
	return storage.Cleanup(ctx, l.content, orphaned)
}

// CountBySite reports how many surveys a site has. Part of the site
// hierarchy's purger contract.
func (l *Ledger) CountBySite(ctx context.Context, tx *gorm.DB, siteID uuid.UUID) (int64, error) {
	var n int64
	if err := tx.Model(&Survey{}).Where("site_id = ?", siteID).Count(&n).Error; err != nil {
		return 0, errs.Translate(err)
	}
	return n, nil
}

// PurgeSite removes every survey of a site, cascading each survey's children
// first, inside the caller's transaction. Used by site-subtree deletion.
func (l *Ledger) PurgeSite(ctx context.Context, tx *gorm.DB, siteID uuid.UUID) ([]string, error) {
	var ids []uuid.UUID
	err := tx.Model(&Survey{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_id = ?", siteID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errs.Translate(err)
	}

	var refs []string
	for _, surveyID := range ids {
		purged, err := l.children.PurgeSurvey(ctx, tx, surveyID)
		if err != nil {
			return nil, err
		}
		refs = append(refs, purged...)
	}

	if err := tx.Delete(&Survey{}, "site_id = ?", siteID).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return refs, nil
}
