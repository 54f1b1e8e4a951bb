package feature

import (
	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/internal/nuts"
)

// NUTS is a NUTS region, optionally with its boundary.
type NUTS struct {
	feature nuts.Feature
}

// NewNUTS wraps a region with its boundary.
func NewNUTS(f nuts.Feature) *NUTS {
	return &NUTS{feature: f}
}

// NUTSFromRegion wraps a region without geometry, as returned by the remote
// and PostGIS resolvers.
func NUTSFromRegion(r nuts.Region) *NUTS {
	return &NUTS{feature: nuts.Feature{Region: r}}
}

func (n *NUTS) ID() string          { return n.feature.Region.ID }
func (n *NUTS) Name() string        { return n.feature.Region.Name }
func (n *NUTS) Level() int          { return n.feature.Region.Level }
func (n *NUTS) Country() string     { return n.feature.Region.Country }
func (n *NUTS) Year() int           { return n.feature.Region.Year }
func (n *NUTS) Parent() string      { return n.feature.Region.Parent() }
func (n *NUTS) Region() nuts.Region { return n.feature.Region }

// HasGeometry reports whether the boundary is known.
func (n *NUTS) HasGeometry() bool { return n.feature.Geometry != nil }

// Contains tests coord against the boundary. It fails with
// ErrInvalidArgument when the region carries no geometry.
func (n *NUTS) Contains(coord geo.Coordinate) (bool, error) {
	if !n.HasGeometry() {
		return false, geoerr.InvalidArgument("feature: region %s has no geometry", n.ID())
	}
	if err := coord.Validate(); err != nil {
		return false, err
	}
	return n.feature.Contains(coord), nil
}

// Extent is the bounding box of the boundary, or nil without one.
func (n *NUTS) Extent() *geo.BBox {
	if !n.HasGeometry() {
		return nil
	}
	b := geo.BBoxOf(n.feature.Geometry)
	return &b
}
