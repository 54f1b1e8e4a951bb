package geo

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// BBox is a lon/lat bounding box (GeoJSON order).
type BBox struct {
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
}

// BoundingBox returns the box enclosing every point within km kilometers of
// center. Near a pole the box spans all longitudes; across the antimeridian
// MinLon is greater than MaxLon.
func BoundingBox(center Coordinate, km float64) (BBox, error) {
	if err := center.Validate(); err != nil {
		return BBox{}, err
	}
	if km < 0 {
		return BBox{}, geoerr.InvalidArgument("geo: negative distance %v", km)
	}

	dist := km / defaultEarthRadius
	lat, lon := DegToRad(center.Lat), DegToRad(center.Lon)
	minLat, maxLat := lat-dist, lat+dist
	minLatBound, maxLatBound := DegToRad(-90), DegToRad(90)
	minLonBound, maxLonBound := DegToRad(-180), DegToRad(180)

	var minLon, maxLon float64
	if minLat > minLatBound && maxLat < maxLatBound {
		dlon := math.Asin(math.Sin(dist) / math.Cos(lat))
		minLon = lon - dlon
		if minLon < minLonBound {
			minLon += 2 * math.Pi
		}
		maxLon = lon + dlon
		if maxLon > maxLonBound {
			maxLon -= 2 * math.Pi
		}
	} else {
		minLat = math.Max(minLat, minLatBound)
		maxLat = math.Min(maxLat, maxLatBound)
		minLon, maxLon = minLonBound, maxLonBound
	}

	return BBox{
		MinLon: RadToDeg(minLon),
		MinLat: RadToDeg(minLat),
		MaxLon: RadToDeg(maxLon),
		MaxLat: RadToDeg(maxLat),
	}, nil
}

// Centroid returns the center of the rectangle spanned by coords.
func Centroid(coords ...Coordinate) (Coordinate, error) {
	if len(coords) == 0 {
		return Coordinate{}, geoerr.InvalidArgument("geo: centroid of no coordinates")
	}
	lats := make([]float64, len(coords))
	lons := make([]float64, len(coords))
	for i, c := range coords {
		lats[i], lons[i] = c.Lat, c.Lon
	}
	sort.Float64s(lats)
	sort.Float64s(lons)
	return Coordinate{
		Lat: lats[0] + (lats[len(lats)-1]-lats[0])/2,
		Lon: lons[0] + (lons[len(lons)-1]-lons[0])/2,
	}, nil
}

// Center returns the centroid of the box corners.
func (b BBox) Center() Coordinate {
	c, _ := Centroid(Coordinate{Lat: b.MinLat, Lon: b.MinLon}, Coordinate{Lat: b.MaxLat, Lon: b.MaxLon})
	return c
}

// Contains reports whether c lies inside or on the edge of b.
func (b BBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Intersects reports whether b and o overlap.
func (b BBox) Intersects(o BBox) bool {
	i := b.intersection(o)
	return i.MinLon <= i.MaxLon && i.MinLat <= i.MaxLat
}

// Within reports whether b lies entirely inside o.
func (b BBox) Within(o BBox) bool {
	return b.MinLon >= o.MinLon && b.MinLat >= o.MinLat && b.MaxLon <= o.MaxLon && b.MaxLat <= o.MaxLat
}

// Intersection returns the overlap of b and o, and false when they are disjoint.
func (b BBox) Intersection(o BBox) (BBox, bool) {
	if !b.Intersects(o) {
		return BBox{}, false
	}
	return b.intersection(o), true
}

func (b BBox) intersection(o BBox) BBox {
	return BBox{
		MinLon: math.Max(b.MinLon, o.MinLon),
		MinLat: math.Max(b.MinLat, o.MinLat),
		MaxLon: math.Min(b.MaxLon, o.MaxLon),
		MaxLat: math.Min(b.MaxLat, o.MaxLat),
	}
}

// Union returns the smallest box enclosing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinLon: math.Min(b.MinLon, o.MinLon),
		MinLat: math.Min(b.MinLat, o.MinLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
	}
}

// Polygon returns the box as a closed counter-clockwise go-geom polygon.
func (b BBox) Polygon() *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		b.MinLon, b.MinLat,
		b.MaxLon, b.MinLat,
		b.MaxLon, b.MaxLat,
		b.MinLon, b.MaxLat,
		b.MinLon, b.MinLat,
	}, []int{10}).SetSRID(SRID)
}

// BBoxOf returns the bounds of any go-geom geometry.
func BBoxOf(g geom.T) BBox {
	bounds := g.Bounds()
	return BBox{
		MinLon: bounds.Min(0),
		MinLat: bounds.Min(1),
		MaxLon: bounds.Max(0),
		MaxLat: bounds.Max(1),
	}
}
