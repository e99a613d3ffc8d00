package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

// ListParams are the sorting/pagination parameters shared by list queries.
type ListParams struct {
	SortBy   string
	SortDesc bool
	Skip     int
	Limit    int
}

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Apply adds ORDER BY / OFFSET / LIMIT to q. sortable is the whitelist of
// column names callers may sort by; defaultSort is used when SortBy is empty.
func (p ListParams) Apply(q *gorm.DB, sortable map[string]bool, defaultSort string) (*gorm.DB, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = defaultSort
	}
	if !sortable[sortBy] {
		return nil, fmt.Errorf("%w: cannot sort by %q", errs.ErrValidation, sortBy)
	}

	order := sortBy
	if p.SortDesc {
		order += " DESC"
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	skip := p.Skip
	if skip < 0 {
		skip = 0
	}

	return q.Order(order).Offset(skip).Limit(limit), nil
}
