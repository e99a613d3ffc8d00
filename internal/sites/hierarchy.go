package sites

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

// maxTreeDepth bounds every ancestor-chain walk. A chain longer than this is
// treated as a cycle: no real facility nests this deep.
const maxTreeDepth = 64

// SurveyPurger removes all surveys (and their children) under one site, and
// is consulted when deciding whether a site is empty. Implemented by the
// survey ledger.
type SurveyPurger interface {
	CountBySite(ctx context.Context, tx *gorm.DB, siteID uuid.UUID) (int64, error)
	PurgeSite(ctx context.Context, tx *gorm.DB, siteID uuid.UUID) ([]string, error)
}

// Hierarchy owns site records and the parent/child self-reference. All
// mutations run in one transaction and re-validate the ancestor chain there;
// nothing is cached between requests.
type Hierarchy struct {
	db      *gorm.DB
	surveys SurveyPurger
	content storage.ContentStore
}

func NewHierarchy(gdb *gorm.DB, surveys SurveyPurger, content storage.ContentStore) *Hierarchy {
	return &Hierarchy{db: gdb, surveys: surveys, content: content}
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

// Create inserts a new site, optionally under a parent. A fresh site has no
// descendants, so the only parent check needed is existence.
func (h *Hierarchy) Create(ctx context.Context, name string, coords geometry.Point, parentID *uuid.UUID) (Site, error) {
	if err := validateName(name); err != nil {
		return Site{}, err
	}
	if err := coords.Validate(); err != nil {
		return Site{}, err
	}

	site := Site{Name: strings.TrimSpace(name), Coordinates: coords, ParentSiteID: parentID}
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			if err := siteExists(tx, *parentID); err != nil {
				return err
			}
		}
		return errs.Translate(tx.Create(&site).Error)
	})
	if err != nil {
		return Site{}, err
	}
	return site, nil
}

func (h *Hierarchy) Get(ctx context.Context, id uuid.UUID) (Site, error) {
	var site Site
	if err := h.db.WithContext(ctx).First(&site, "id = ?", id).Error; err != nil {
		return Site{}, errs.Translate(err)
	}
	return site, nil
}

var siteSortColumns = map[string]bool{
	"id": true, "name": true, "created_at": true, "updated_at": true,
}

func (h *Hierarchy) List(ctx context.Context, params db.ListParams) ([]Site, error) {
	q, err := params.Apply(h.db.WithContext(ctx).Model(&Site{}), siteSortColumns, "name")
	if err != nil {
		return nil, err
	}
	var out []Site
	if err := q.Find(&out).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return out, nil
}

// Update renames and/or moves a site. Parentage changes go through Reparent.
func (h *Hierarchy) Update(ctx context.Context, id uuid.UUID, name *string, coords *geometry.Point) (Site, error) {
	updates := map[string]any{}
	if name != nil {
		if err := validateName(*name); err != nil {
			return Site{}, err
		}
		updates["name"] = strings.TrimSpace(*name)
	}
	if coords != nil {
		if err := coords.Validate(); err != nil {
			return Site{}, err
		}
		updates["coord_longitude"] = coords.Longitude
		updates["coord_latitude"] = coords.Latitude
		updates["coord_elevation"] = coords.Elevation
	}

	var site Site
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&site, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&site).Updates(updates).Error; err != nil {
			return errs.Translate(err)
		}
		return nil
	})
	if err != nil {
		return Site{}, err
	}
	return site, nil
}

// Reparent moves a site under a new parent (or to the root when newParentID
// is nil). The target's ancestor chain is walked under row locks so two
// competing reparents cannot slip a cycle past the check; if they collide,
// one fails with a retryable conflict.
func (h *Hierarchy) Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (Site, error) {
	var site Site
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&site, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}

		if newParentID != nil {
			if *newParentID == id {
				return fmt.Errorf("%w: site cannot be its own parent", errs.ErrCycle)
			}
			if err := h.checkAncestry(tx, id, *newParentID); err != nil {
				return err
			}
		}

		if err := tx.Model(&site).Update("parent_site_id", newParentID).Error; err != nil {
			return errs.Translate(err)
		}
		site.ParentSiteID = newParentID
		return nil
	})
	if err != nil {
		return Site{}, err
	}
	return site, nil
}

// checkAncestry walks up from candidateParent and fails when siteID appears
// in the chain (the candidate is a descendant of the site) or the chain is
// implausibly deep.
func (h *Hierarchy) checkAncestry(tx *gorm.DB, siteID, candidateParent uuid.UUID) error {
	current := candidateParent
	for depth := 0; depth < maxTreeDepth; depth++ {
		var node Site
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "parent_site_id").
			First(&node, "id = ?", current).Error
		if err != nil {
			if current == candidateParent {
				return fmt.Errorf("%w: parent site %s", errs.ErrNotFound, candidateParent)
			}
			return errs.Translate(err)
		}
		if node.ID == siteID {
			return fmt.Errorf("%w: site %s is an ancestor-to-be of itself", errs.ErrCycle, siteID)
		}
		if node.ParentSiteID == nil {
			return nil
		}
		current = *node.ParentSiteID
	}
	return fmt.Errorf("%w: ancestor chain exceeds %d levels", errs.ErrCycle, maxTreeDepth)
}

// Delete removes a site under the given policy. With PolicyCascade the whole
// subtree — descendant sites and every survey beneath them — goes in one
// transaction; content cleanup for purged imagery happens best-effort after
// commit and never rolls the delete back.
func (h *Hierarchy) Delete(ctx context.Context, id uuid.UUID, policy cascade.Policy) error {
	var orphaned []string
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site Site
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&site, "id = ?", id).Error; err != nil {
			return errs.Translate(err)
		}

		switch policy {
		case cascade.PolicyRejectIfNonEmpty:
			var children int64
			if err := tx.Model(&Site{}).Where("parent_site_id = ?", id).Count(&children).Error; err != nil {
				return errs.Translate(err)
			}
			if children > 0 {
				return fmt.Errorf("%w: site has %d sub-sites", errs.ErrNotEmpty, children)
			}
			surveys, err := h.surveys.CountBySite(ctx, tx, id)
			if err != nil {
				return err
			}
			if surveys > 0 {
				return fmt.Errorf("%w: site has %d surveys", errs.ErrNotEmpty, surveys)
			}
			return errs.Translate(tx.Delete(&Site{}, "id = ?", id).Error)

		case cascade.PolicyCascade:
			refs, err := h.deleteSubtree(ctx, tx, id, 0)
			if err != nil {
				return err
			}
			orphaned = refs
			return nil

		default:
			return fmt.Errorf("%w: unknown cascade policy %q", errs.ErrValidation, policy)
		}
	})
	if err != nil {
		return err
	}
	return storage.Cleanup(ctx, h.content, orphaned)
}

// deleteSubtree removes a site and everything below it, deepest first.
func (h *Hierarchy) deleteSubtree(ctx context.Context, tx *gorm.DB, id uuid.UUID, depth int) ([]string, error) {
	if depth >= maxTreeDepth {
		return nil, fmt.Errorf("%w: subtree exceeds %d levels", errs.ErrCycle, maxTreeDepth)
	}

	var children []Site
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Find(&children, "parent_site_id = ?", id).Error; err != nil {
		return nil, errs.Translate(err)
	}

	var refs []string
	for _, child := range children {
		childRefs, err := h.deleteSubtree(ctx, tx, child.ID, depth+1)
		if err != nil {
			return nil, err
		}
		refs = append(refs, childRefs...)
	}

	surveyRefs, err := h.surveys.PurgeSite(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	refs = append(refs, surveyRefs...)

	if err := tx.Delete(&Site{}, "id = ?", id).Error; err != nil {
		return nil, errs.Translate(err)
	}
	return refs, nil
}

// Descendants walks the subtree below a site breadth-first, loading one
// level per query. The sequence is lazy and restartable: ranging over it
// again re-reads the tree.
func (h *Hierarchy) Descendants(ctx context.Context, id uuid.UUID) iter.Seq2[Site, error] {
	return func(yield func(Site, error) bool) {
		frontier := []uuid.UUID{id}
		for depth := 0; len(frontier) > 0; depth++ {
			if depth >= maxTreeDepth {
				yield(Site{}, fmt.Errorf("%w: subtree exceeds %d levels", errs.ErrCycle, maxTreeDepth))
				return
			}

			var level []Site
			err := h.db.WithContext(ctx).
				Where("parent_site_id = ANY(?)", pq.Array(frontier)).
				Order("name").
				Find(&level).Error
			if err != nil {
				yield(Site{}, errs.Translate(err))
				return
			}

			frontier = frontier[:0]
			for _, s := range level {
				if !yield(s, nil) {
					return
				}
				frontier = append(frontier, s.ID)
			}
		}
	}
}

// ListDescendants collects the full subtree below a site, verifying first
// that the site exists.
func (h *Hierarchy) ListDescendants(ctx context.Context, id uuid.UUID) ([]Site, error) {
	if err := siteExists(h.db.WithContext(ctx), id); err != nil {
		return nil, err
	}
	out := []Site{}
	for site, err := range h.Descendants(ctx, id) {
		if err != nil {
			return nil, err
		}
		out = append(out, site)
	}
	return out, nil
}

func siteExists(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&Site{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return errs.Translate(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: site %s", errs.ErrNotFound, id)
	}
	return nil
}
