package feature

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/internal/nuts"
	"github.com/sells-group/gisco-cli/pkg/geocode"
)

var bremen = geo.Coordinate{Lat: 53.0793, Lon: 8.8017}

type fakeGeocoder struct {
	forwards atomic.Int32
	reverses atomic.Int32
	cands    []geocode.Candidate
	err      error
}

func (f *fakeGeocoder) Forward(_ context.Context, _ string, _ geocode.Resolution) ([]geocode.Candidate, error) {
	f.forwards.Add(1)
	return f.cands, f.err
}

func (f *fakeGeocoder) Reverse(_ context.Context, _ geo.Coordinate, _ geocode.Resolution) ([]geocode.Candidate, error) {
	f.reverses.Add(1)
	return f.cands, f.err
}

type countingResolver struct {
	calls   atomic.Int32
	regions map[int]nuts.Region
}

func (c *countingResolver) Resolve(_ context.Context, _ geo.Coordinate, level int) (nuts.Region, error) {
	c.calls.Add(1)
	r, ok := c.regions[level]
	if !ok {
		return nuts.Region{}, geoerr.NotFound("no region at level %d", level)
	}
	return r, nil
}

func bremenResolver() *countingResolver {
	return &countingResolver{regions: map[int]nuts.Region{
		0: {ID: "DE", Name: "Deutschland", Level: 0, Country: "DE"},
		1: {ID: "DE5", Name: "Bremen", Level: 1, Country: "DE"},
		2: {ID: "DE50", Name: "Bremen", Level: 2, Country: "DE"},
	}}
}

func bremenGeocoder() *fakeGeocoder {
	extent := geo.BBox{MinLon: 8.48, MinLat: 53.01, MaxLon: 8.99, MaxLat: 53.23}
	return &fakeGeocoder{cands: []geocode.Candidate{{
		Label:      "Bremen, Germany",
		Coordinate: bremen,
		Country:    "Germany",
		Extent:     &extent,
		Provider:   "gisco",
	}}}
}

func TestLocation_FindNUTSMemoized(t *testing.T) {
	g := bremenGeocoder()
	r := bremenResolver()
	loc, err := NewLocationFromPlace("Bremen", g, r)
	require.NoError(t, err)

	first, err := loc.FindNUTS(context.Background(), 2)
	require.NoError(t, err)
	second, err := loc.FindNUTS(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "DE50", first.ID)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, int32(1), g.forwards.Load())

	_, err = loc.FindNUTS(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), r.calls.Load())
	assert.Equal(t, int32(1), g.forwards.Load(), "coordinate is derived once")
	assert.Len(t, loc.Cached(), 2)
}

func TestLocation_FindNUTSConcurrent(t *testing.T) {
	r := bremenResolver()
	loc, err := NewLocationFromCoordinate(bremen, nil, r)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = loc.FindNUTS(context.Background(), 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestLocation_FindNUTSInvalidLevel(t *testing.T) {
	r := bremenResolver()
	loc, err := NewLocationFromCoordinate(bremen, nil, r)
	require.NoError(t, err)

	_, err = loc.FindNUTS(context.Background(), 5)
	assert.True(t, errors.Is(err, geoerr.ErrInvalidArgument))
	assert.Zero(t, r.calls.Load())
}

func TestLocation_NotFoundIsNotCached(t *testing.T) {
	r := bremenResolver()
	loc, err := NewLocationFromCoordinate(bremen, nil, r)
	require.NoError(t, err)

	_, err = loc.FindNUTS(context.Background(), 3)
	assert.True(t, errors.Is(err, geoerr.ErrNotFound))
	_, err = loc.FindNUTS(context.Background(), 3)
	assert.True(t, errors.Is(err, geoerr.ErrNotFound))
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestLocation_PlaceFromCoordinate(t *testing.T) {
	g := bremenGeocoder()
	loc, err := NewLocationFromCoordinate(bremen, g, nil)
	require.NoError(t, err)

	p, err := loc.Place(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bremen, Germany", p)

	c, err := loc.Coordinate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bremen, c)

	_, err = loc.Place(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), g.reverses.Load())
	assert.Zero(t, g.forwards.Load())
}

func TestLocation_CanonicalPlaceIsKept(t *testing.T) {
	g := bremenGeocoder()
	loc, err := NewLocationFromPlace("  Bremen  ", g, nil)
	require.NoError(t, err)

	p, err := loc.Place(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bremen", p)
	assert.Zero(t, g.forwards.Load())
}

func TestLocation_GeocoderErrors(t *testing.T) {
	g := &fakeGeocoder{err: geoerr.Unavailable("upstream down")}
	loc, err := NewLocationFromPlace("Atlantis", g, bremenResolver())
	require.NoError(t, err)

	_, err = loc.FindNUTS(context.Background(), 2)
	assert.True(t, errors.Is(err, geoerr.ErrServiceUnavailable))

	empty := &fakeGeocoder{}
	loc, err = NewLocationFromPlace("Atlantis", empty, nil)
	require.NoError(t, err)
	_, err = loc.Coordinate(context.Background())
	assert.True(t, errors.Is(err, geoerr.ErrNotFound))
}

func TestLocation_InvalidConstruction(t *testing.T) {
	_, err := NewLocationFromPlace("   ", nil, nil)
	assert.True(t, errors.Is(err, geoerr.ErrInvalidArgument))

	_, err = NewLocationFromCoordinate(geo.Coordinate{Lat: 91}, nil, nil)
	assert.True(t, errors.Is(err, geoerr.ErrInvalidArgument))
}

func TestLocation_IsNUTS(t *testing.T) {
	loc, err := NewLocationFromCoordinate(bremen, nil, bremenResolver())
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := loc.IsNUTS(ctx, "DE50")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = loc.IsNUTS(ctx, "de5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = loc.IsNUTS(ctx, "DE92")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = loc.IsNUTS(ctx, "DE501")
	require.NoError(t, err)
	assert.False(t, ok, "no level-3 region is not an error")

	_, err = loc.IsNUTS(ctx, "X")
	assert.True(t, errors.Is(err, geoerr.ErrInvalidArgument))
}

func TestLocation_NUTSRegions(t *testing.T) {
	loc, err := NewLocationFromCoordinate(bremen, nil, bremenResolver())
	require.NoError(t, err)

	regions, err := loc.NUTSRegions(context.Background(), []int{0, 1, 2})
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Equal(t, "DE5", regions[1].ID)

	regions, err = loc.NUTSRegions(context.Background(), []int{2, 3})
	assert.Error(t, err)
	assert.Len(t, regions, 1)
}

func TestLocation_Distance(t *testing.T) {
	a, err := NewLocationFromCoordinate(geo.Coordinate{Lat: 48.8566, Lon: 2.3522}, nil, nil)
	require.NoError(t, err)
	b, err := NewLocationFromCoordinate(geo.Coordinate{Lat: 52.5200, Lon: 13.4050}, nil, nil)
	require.NoError(t, err)

	km, err := a.Distance(context.Background(), b, geo.Kilometers)
	require.NoError(t, err)
	assert.InDelta(t, 878, km, 5)
}

func TestLocation_Area(t *testing.T) {
	loc, err := NewLocationFromPlace("Bremen", bremenGeocoder(), nil)
	require.NoError(t, err)

	area, err := loc.Area(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bremen, Germany", area.Name())
	assert.True(t, area.Contains(bremen))
	assert.False(t, area.Contains(geo.Coordinate{Lat: 52.52, Lon: 13.405}))
	require.NotNil(t, area.Geometry())
	assert.Equal(t, 5, area.Geometry().LinearRing(0).NumCoords())
}
