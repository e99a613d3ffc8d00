package cascade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"gorm.io/gorm"
)

// fakePurger records the order it was invoked in, without any database.
type fakePurger struct {
	name  string
	count int64
	refs  []string
	err   error
	log   *[]string
}

func (f *fakePurger) Name() string { return f.name }

func (f *fakePurger) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error) {
	return f.count, f.err
}

func (f *fakePurger) PurgeSurvey(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]string, error) {
	*f.log = append(*f.log, f.name)
	return f.refs, f.err
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in   string
		want cascade.Policy
		ok   bool
	}{
		{"", cascade.PolicyRejectIfNonEmpty, true},
		{"reject", cascade.PolicyRejectIfNonEmpty, true},
		{"cascade", cascade.PolicyCascade, true},
		{"CASCADE", "", false},
		{"delete-all", "", false},
	}
	for _, c := range cases {
		got, err := cascade.ParsePolicy(c.in)
		if c.ok {
			if err != nil || got != c.want {
				t.Errorf("ParsePolicy(%q) = %q, %v; want %q", c.in, got, err, c.want)
			}
			continue
		}
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("ParsePolicy(%q): expected ErrValidation, got %v", c.in, err)
		}
	}
}

// TestController_PurgeOrder verifies purgers run in registration order and
// that orphaned content references are collected from all of them.
func TestController_PurgeOrder(t *testing.T) {
	var order []string
	a := &fakePurger{name: "assets", log: &order}
	m := &fakePurger{name: "media", refs: []string{"pano.jpg", "photo.jpg"}, log: &order}
	o := &fakePurger{name: "overlays", refs: []string{"plan.png"}, log: &order}

	ctrl := cascade.NewController(a, m, o)
	refs, err := ctrl.PurgeSurvey(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	if len(order) != 3 || order[0] != "assets" || order[1] != "media" || order[2] != "overlays" {
		t.Errorf("unexpected purge order: %v", order)
	}
	if len(refs) != 3 {
		t.Errorf("expected 3 orphaned refs, got %v", refs)
	}
}

// TestController_FailFast verifies the first purge error stops the sequence.
func TestController_FailFast(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	a := &fakePurger{name: "assets", log: &order}
	m := &fakePurger{name: "media", err: boom, log: &order}
	o := &fakePurger{name: "overlays", log: &order}

	ctrl := cascade.NewController(a, m, o)
	_, err := ctrl.PurgeSurvey(context.Background(), nil, uuid.New())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped purge error, got %v", err)
	}
	if len(order) != 2 {
		t.Errorf("expected purge to stop after the failing purger, ran: %v", order)
	}
}

func TestController_CountDependents(t *testing.T) {
	var order []string
	ctrl := cascade.NewController(
		&fakePurger{name: "assets", count: 2, log: &order},
		&fakePurger{name: "media", count: 3, log: &order},
	)
	n, err := ctrl.CountDependents(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("CountDependents = %d, want 5", n)
	}
}
