// Package geometry holds the value types every surveyed record is anchored
// by: a geographic point for sites, assets, panos and photos, and a
// rectangular extent for overlays. Values are validated on construction and
// stored as plain coordinate columns (SRID 4326 semantics, WGS 84 degrees).
package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

// Point is a geographic location in degrees, with an optional elevation in
// meters above the reference ellipsoid.
type Point struct {
	Longitude float64  `gorm:"not null" json:"longitude"`
	Latitude  float64  `gorm:"not null" json:"latitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// NewPoint builds a validated 2D point.
func NewPoint(longitude, latitude float64) (Point, error) {
	p := Point{Longitude: longitude, Latitude: latitude}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// NewPointZ builds a validated point with an elevation.
func NewPointZ(longitude, latitude, elevation float64) (Point, error) {
	p := Point{Longitude: longitude, Latitude: latitude, Elevation: &elevation}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

func (p Point) Validate() error {
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %s out of range [-180, 180]", errs.ErrValidation, formatFloat(p.Longitude))
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %s out of range [-90, 90]", errs.ErrValidation, formatFloat(p.Latitude))
	}
	return nil
}

// WKT renders the point as well-known text, e.g. "POINT (30 10)".
func (p Point) WKT() string {
	if p.Elevation != nil {
		return fmt.Sprintf("POINT Z (%s %s %s)",
			formatFloat(p.Longitude), formatFloat(p.Latitude), formatFloat(*p.Elevation))
	}
	return fmt.Sprintf("POINT (%s %s)", formatFloat(p.Longitude), formatFloat(p.Latitude))
}

// Extent is an axis-aligned bounding rectangle. A stored extent is always in
// canonical order: MinLongitude < MaxLongitude and MinLatitude < MaxLatitude.
type Extent struct {
	MinLongitude float64 `gorm:"not null" json:"longitude_min"`
	MinLatitude  float64 `gorm:"not null" json:"latitude_min"`
	MaxLongitude float64 `gorm:"not null" json:"longitude_max"`
	MaxLatitude  float64 `gorm:"not null" json:"latitude_max"`
}

// NewExtent builds a validated extent from two opposite corners, given in any
// order. The corners must differ on both axes; a degenerate rectangle (zero
// width or zero height) is rejected.
func NewExtent(lon1, lat1, lon2, lat2 float64) (Extent, error) {
	for _, lon := range []float64{lon1, lon2} {
		if lon < -180 || lon > 180 {
			return Extent{}, fmt.Errorf("%w: longitude %s out of range [-180, 180]", errs.ErrValidation, formatFloat(lon))
		}
	}
	for _, lat := range []float64{lat1, lat2} {
		if lat < -90 || lat > 90 {
			return Extent{}, fmt.Errorf("%w: latitude %s out of range [-90, 90]", errs.ErrValidation, formatFloat(lat))
		}
	}
	if lon1 == lon2 || lat1 == lat2 {
		return Extent{}, fmt.Errorf("%w: extent corners must differ on both axes", errs.ErrValidation)
	}

	e := Extent{
		MinLongitude: min(lon1, lon2),
		MinLatitude:  min(lat1, lat2),
		MaxLongitude: max(lon1, lon2),
		MaxLatitude:  max(lat1, lat2),
	}
	return e, nil
}

func (e Extent) Validate() error {
	_, err := NewExtent(e.MinLongitude, e.MinLatitude, e.MaxLongitude, e.MaxLatitude)
	if err != nil {
		return err
	}
	if e.MinLongitude > e.MaxLongitude || e.MinLatitude > e.MaxLatitude {
		return fmt.Errorf("%w: extent corners are not in (min, min)-(max, max) order", errs.ErrValidation)
	}
	return nil
}

// WKT renders the extent as a closed polygon ring, counterclockwise starting
// from the (max, min) corner.
func (e Extent) WKT() string {
	corners := [][2]float64{
		{e.MaxLongitude, e.MinLatitude},
		{e.MaxLongitude, e.MaxLatitude},
		{e.MinLongitude, e.MaxLatitude},
		{e.MinLongitude, e.MinLatitude},
		{e.MaxLongitude, e.MinLatitude},
	}
	parts := make([]string, 0, len(corners))
	for _, c := range corners {
		parts = append(parts, formatFloat(c[0])+" "+formatFloat(c[1]))
	}
	return "POLYGON ((" + strings.Join(parts, ", ") + "))"
}

// Width is the longitudinal span in degrees.
func (e Extent) Width() float64 { return e.MaxLongitude - e.MinLongitude }

// Height is the latitudinal span in degrees.
func (e Extent) Height() float64 { return e.MaxLatitude - e.MinLatitude }

// Contains reports whether the point lies inside or on the boundary.
func (e Extent) Contains(p Point) bool {
	return p.Longitude >= e.MinLongitude && p.Longitude <= e.MaxLongitude &&
		p.Latitude >= e.MinLatitude && p.Latitude <= e.MaxLatitude
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
