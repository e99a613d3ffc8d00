package geometry_test

import (
	"errors"
	"testing"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/geometry"
)

// TestNewPoint_Valid verifies construction across the legal coordinate range.
func TestNewPoint_Valid(t *testing.T) {
	cases := [][2]float64{
		{0, 0},
		{-180, -90},
		{180, 90},
		{10.5, 20.25},
	}
	for _, c := range cases {
		p, err := geometry.NewPoint(c[0], c[1])
		if err != nil {
			t.Fatalf("NewPoint(%v, %v) returned error: %v", c[0], c[1], err)
		}
		if p.Longitude != c[0] || p.Latitude != c[1] {
			t.Errorf("NewPoint(%v, %v) = %+v", c[0], c[1], p)
		}
	}
}

// TestNewPoint_OutOfRange verifies that out-of-range coordinates are rejected
// with a validation error.
func TestNewPoint_OutOfRange(t *testing.T) {
	cases := [][2]float64{
		{-180.01, 0},
		{180.01, 0},
		{0, -90.5},
		{0, 91},
	}
	for _, c := range cases {
		_, err := geometry.NewPoint(c[0], c[1])
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("NewPoint(%v, %v): expected ErrValidation, got %v", c[0], c[1], err)
		}
	}
}

func TestPoint_WKT(t *testing.T) {
	p, err := geometry.NewPoint(10, 20)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.WKT(); got != "POINT (10 20)" {
		t.Errorf("WKT = %q", got)
	}

	pz, err := geometry.NewPointZ(-73.5, 45.25, 12)
	if err != nil {
		t.Fatal(err)
	}
	if got := pz.WKT(); got != "POINT Z (-73.5 45.25 12)" {
		t.Errorf("WKT = %q", got)
	}
}

// TestNewExtent_Normalizes verifies that corners given in any order are
// stored in canonical (min, min)-(max, max) order.
func TestNewExtent_Normalizes(t *testing.T) {
	e, err := geometry.NewExtent(5, 8, -3, -2)
	if err != nil {
		t.Fatal(err)
	}
	if e.MinLongitude != -3 || e.MinLatitude != -2 || e.MaxLongitude != 5 || e.MaxLatitude != 8 {
		t.Errorf("extent not normalized: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("normalized extent failed validation: %v", err)
	}
}

// TestNewExtent_Degenerate verifies that a rectangle whose corners
// coincide on either axis is rejected.
func TestNewExtent_Degenerate(t *testing.T) {
	cases := [][4]float64{
		{0, 0, 0, 0},   // identical corners
		{1, 2, 1, 5},   // zero width
		{1, 2, 4, 2},   // zero height
	}
	for _, c := range cases {
		_, err := geometry.NewExtent(c[0], c[1], c[2], c[3])
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("NewExtent(%v): expected ErrValidation, got %v", c, err)
		}
	}
}

func TestNewExtent_OutOfRange(t *testing.T) {
	_, err := geometry.NewExtent(-181, 0, 10, 20)
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	_, err = geometry.NewExtent(0, -95, 10, 20)
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestExtent_WKT(t *testing.T) {
	e, err := geometry.NewExtent(0, 0, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "POLYGON ((2 0, 2 1, 0 1, 0 0, 2 0))"
	if got := e.WKT(); got != want {
		t.Errorf("WKT = %q, want %q", got, want)
	}
}

func TestExtent_Contains(t *testing.T) {
	e, err := geometry.NewExtent(-10, -10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	inside, _ := geometry.NewPoint(0, 0)
	edge, _ := geometry.NewPoint(10, -10)
	outside, _ := geometry.NewPoint(10.1, 0)

	if !e.Contains(inside) {
		t.Error("expected interior point to be contained")
	}
	if !e.Contains(edge) {
		t.Error("expected boundary point to be contained")
	}
	if e.Contains(outside) {
		t.Error("expected exterior point to not be contained")
	}
}
