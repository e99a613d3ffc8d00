// Package cascade holds the deletion policy shared by site and survey
// deletes, and the controller that sequences a survey's child purges in
// dependency order inside the caller's transaction.
package cascade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

// Policy decides what happens to dependents when a site or survey is deleted.
// There is no default: callers must state their intent.
type Policy string

const (
	// PolicyRejectIfNonEmpty fails the delete when dependents exist.
	PolicyRejectIfNonEmpty Policy = "reject"

	// PolicyCascade deletes all dependents in the same transaction.
	PolicyCascade Policy = "cascade"
)

// ParsePolicy parses the wire form of a policy. An empty string defaults to
// the safe reject policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", string(PolicyRejectIfNonEmpty):
		return PolicyRejectIfNonEmpty, nil
	case string(PolicyCascade):
		return PolicyCascade, nil
	default:
		return "", fmt.Errorf("%w: unknown cascade policy %q", errs.ErrValidation, s)
	}
}

// SurveyPurger removes every record one module owns under a survey. Purged
// content references are reported back so their binary payloads can be
// reclaimed after the transaction commits.
type SurveyPurger interface {
	// Name identifies the purger in error messages.
	Name() string

	// CountBySurvey counts the purger's records under the survey.
	CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error)

	// PurgeSurvey deletes the purger's records under the survey and returns
	// the content references those records held.
	PurgeSurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]string, error)
}

// Controller sequences child purges for survey deletion. It keeps no state of
// its own; all effects happen inside the transaction it is handed.
type Controller struct {
	purgers []SurveyPurger
}

// NewController builds a controller that purges in registration order.
// Register purgers deepest-first: a purger whose rows reference another
// purger's rows must come before it.
func NewController(purgers ...SurveyPurger) *Controller {
	return &Controller{purgers: purgers}
}

// CountDependents totals the records that a cascade of the survey would
// remove.
func (c *Controller) CountDependents(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error) {
	var total int64
	for _, p := range c.purgers {
		n, err := p.CountBySurvey(ctx, tx, surveyID)
		if err != nil {
			return 0, fmt.Errorf("counting %s dependents: %w", p.Name(), err)
		}
		total += n
	}
	return total, nil
}

// PurgeSurvey runs every registered purge inside tx and fails fast on the
// first error, leaving the transaction to roll back as a whole. It returns
// the content references orphaned by the purge.
func (c *Controller) PurgeSurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]string, error) {
	var refs []string
	for _, p := range c.purgers {
		purged, err := p.PurgeSurvey(ctx, tx, surveyID)
		if err != nil {
			return nil, fmt.Errorf("purging %s: %w", p.Name(), err)
		}
		refs = append(refs, purged...)
	}
	return refs, nil
}
