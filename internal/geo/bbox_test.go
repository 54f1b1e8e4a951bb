package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

func TestBoundingBox(t *testing.T) {
	center := Coordinate{Lat: 48.85693, Lon: 2.3412}
	box, err := BoundingBox(center, 1)
	require.NoError(t, err)

	assert.Less(t, box.MinLat, center.Lat)
	assert.Greater(t, box.MaxLat, center.Lat)
	assert.True(t, box.Contains(center))

	c := box.Center()
	assert.InDelta(t, center.Lat, c.Lat, 1e-9)
	assert.InDelta(t, center.Lon, c.Lon, 1e-9)

	// Half height is 1 km of latitude on the sphere.
	assert.InDelta(t, 1/EarthRadiusEquator, DegToRad(box.MaxLat-center.Lat), 1e-12)
}

func TestBoundingBox_Pole(t *testing.T) {
	box, err := BoundingBox(Coordinate{Lat: 89.99, Lon: 10}, 50)
	require.NoError(t, err)
	assert.InDelta(t, -180, box.MinLon, 1e-9)
	assert.InDelta(t, 180, box.MaxLon, 1e-9)
	assert.InDelta(t, 90, box.MaxLat, 1e-9)
}

func TestBoundingBox_Invalid(t *testing.T) {
	_, err := BoundingBox(Coordinate{}, -1)
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestCentroid(t *testing.T) {
	c, err := Centroid(
		Coordinate{Lat: 0, Lon: 0},
		Coordinate{Lat: 10, Lon: 4},
		Coordinate{Lat: 2, Lon: 20},
	)
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 5, Lon: 10}, c)

	_, err = Centroid()
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestBBoxOps(t *testing.T) {
	a := BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	b := BBox{MinLon: 5, MinLat: 5, MaxLon: 15, MaxLat: 15}
	far := BBox{MinLon: 20, MinLat: 20, MaxLon: 30, MaxLat: 30}
	inner := BBox{MinLon: 2, MinLat: 2, MaxLon: 3, MaxLat: 3}

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(far))
	assert.True(t, inner.Within(a))
	assert.False(t, a.Within(inner))

	i, ok := a.Intersection(b)
	require.True(t, ok)
	assert.Equal(t, BBox{MinLon: 5, MinLat: 5, MaxLon: 10, MaxLat: 10}, i)

	_, ok = a.Intersection(far)
	assert.False(t, ok)

	assert.Equal(t, BBox{MinLon: 0, MinLat: 0, MaxLon: 30, MaxLat: 30}, a.Union(far))
}

func TestBBoxPolygonRoundTrip(t *testing.T) {
	box := BBox{MinLon: 2.2241, MinLat: 48.81554, MaxLon: 2.4699, MaxLat: 48.90214}
	poly := box.Polygon()
	assert.Equal(t, 1, poly.NumLinearRings())
	assert.Equal(t, 5, poly.NumCoords())
	assert.Equal(t, box, BBoxOf(poly))
}
