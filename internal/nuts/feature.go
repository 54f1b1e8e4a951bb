package nuts

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/gisco-cli/internal/geo"
)

// Feature is a region with its boundary. Features are read-only once loaded.
type Feature struct {
	Region   Region
	Geometry *geom.MultiPolygon
}

// Contains reports whether coord lies inside the feature: inside an outer
// ring and outside every hole of the same polygon. Points on an outer ring
// count as inside.
func (f Feature) Contains(coord geo.Coordinate) bool {
	if f.Geometry == nil {
		return false
	}
	return multiPolygonContains(f.Geometry, coord.Coord())
}

func multiPolygonContains(mp *geom.MultiPolygon, p geom.Coord) bool {
	layout := mp.Layout()
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(layout, p, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for j := 1; j < poly.NumLinearRings(); j++ {
			if xy.IsPointInRing(layout, p, poly.LinearRing(j).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
