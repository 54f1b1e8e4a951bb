package gisco

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

const bremenGeocodeJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [8.8071646, 53.0758196]},
      "properties": {
        "osm_id": 62718, "osm_type": "R", "osm_key": "place", "osm_value": "city",
        "name": "Bremen", "state": "Bremen", "country": "Germany", "countrycode": "DE",
        "extent": [8.4815929, 53.2284532, 8.9907318, 53.0110367]
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [8.80, 53.08]},
      "properties": {"osm_key": "amenity", "osm_value": "restaurant", "name": "Bremen Grill"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-84.49, 33.71]},
      "properties": {"osm_key": "place", "osm_value": "town", "name": "Bremen", "state": "Georgia", "country": "United States"}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithRateLimit(1000))
}

func TestGeocode_FiltersPlaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api", r.URL.Path)
		assert.Equal(t, "Bremen, Germany", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "gisco-cli", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bremenGeocodeJSON))
	})

	places, err := c.Geocode(context.Background(), "  Bremen,   Germany ", GeocodeOptions{Limit: 5})
	require.NoError(t, err)
	require.Len(t, places, 2)

	p := places[0]
	assert.Equal(t, "Bremen", p.Name)
	assert.Equal(t, "DE", p.CountryCode)
	assert.Equal(t, int64(62718), p.OSMID)
	assert.InDelta(t, 53.0758196, p.Coordinate.Lat, 1e-9)
	assert.InDelta(t, 8.8071646, p.Coordinate.Lon, 1e-9)
	require.NotNil(t, p.Extent)
	assert.InDelta(t, 53.0110367, p.Extent.MinLat, 1e-9)
	assert.True(t, p.Extent.Contains(p.Coordinate))
	assert.Equal(t, "Bremen, Germany", p.Label())

	assert.Equal(t, "Georgia", places[1].State)
}

func TestGeocode_AllKinds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bremenGeocodeJSON))
	})

	places, err := c.Geocode(context.Background(), "Bremen", GeocodeOptions{AllKinds: true})
	require.NoError(t, err)
	assert.Len(t, places, 3)
}

func TestGeocode_EmptyPlace(t *testing.T) {
	c := New()
	_, err := c.Geocode(context.Background(), " ", GeocodeOptions{})
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestGeocode_UpstreamErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.Geocode(context.Background(), "Bremen", GeocodeOptions{})
	assert.ErrorIs(t, err, geoerr.ErrServiceUnavailable)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	})
	_, err = c.Geocode(context.Background(), "Bremen", GeocodeOptions{})
	assert.ErrorIs(t, err, geoerr.ErrServiceUnavailable)
}

func TestGeocode_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(WithBaseURL(url))
	_, err := c.Geocode(context.Background(), "Bremen", GeocodeOptions{})
	assert.ErrorIs(t, err, geoerr.ErrServiceUnavailable)
}

func TestReverse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "53.0758", r.URL.Query().Get("lat"))
		assert.Equal(t, "8.8072", r.URL.Query().Get("lon"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(bremenGeocodeJSON))
	})

	places, err := c.Reverse(context.Background(), geo.Coordinate{Lat: 53.0758, Lon: 8.8072}, ReverseOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, "Bremen Grill", places[1].Name)

	_, err = c.Reverse(context.Background(), geo.Coordinate{Lat: 100}, ReverseOptions{})
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestFirst(t *testing.T) {
	_, err := First(nil, "Atlantis")
	assert.ErrorIs(t, err, geoerr.ErrNotFound)

	p, err := First([]Place{{Name: "a"}, {Name: "b"}}, "x")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)
}
