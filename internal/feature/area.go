package feature

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/pkg/geocode"
)

// Area is a geocoded place with its optional bounding extent.
type Area struct {
	candidate geocode.Candidate
}

// NewArea wraps a geocoding candidate.
func NewArea(c geocode.Candidate) *Area {
	return &Area{candidate: c}
}

func (a *Area) Name() string               { return a.candidate.Label }
func (a *Area) Coordinate() geo.Coordinate { return a.candidate.Coordinate }
func (a *Area) Extent() *geo.BBox          { return a.candidate.Extent }
func (a *Area) Candidate() geocode.Candidate {
	return a.candidate
}

// Contains reports whether coord lies within the extent. Areas without an
// extent contain nothing.
func (a *Area) Contains(coord geo.Coordinate) bool {
	if a.candidate.Extent == nil {
		return false
	}
	return a.candidate.Extent.Contains(coord)
}

// Geometry returns the extent as a closed polygon, or nil without one.
func (a *Area) Geometry() *geom.Polygon {
	if a.candidate.Extent == nil {
		return nil
	}
	return a.candidate.Extent.Polygon()
}
