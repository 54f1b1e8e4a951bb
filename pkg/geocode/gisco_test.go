package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

const giscoFlorenceJSON = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "geometry": {"type": "Point", "coordinates": [11.2558136, 43.7695604]},
   "properties": {"osm_key": "place", "osm_value": "city", "name": "Florence", "state": "Tuscany", "country": "Italy", "countrycode": "IT"}}
]}`

func newGISCOTestService(t *testing.T) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api":
			if r.URL.Query().Get("q") == "Atlantis" {
				_, _ = io.WriteString(w, `{"type": "FeatureCollection", "features": []}`)
				return
			}
			_, _ = io.WriteString(w, giscoFlorenceJSON)
		case "/reverse":
			_, _ = io.WriteString(w, giscoFlorenceJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	p, err := DefaultRegistry().New("gisco", Settings{
		GISCO: gisco.New(gisco.WithBaseURL(srv.URL), gisco.WithHTTPClient(srv.Client()), gisco.WithRateLimit(1000)),
	})
	require.NoError(t, err)
	return NewService(p)
}

func TestGISCO_ForwardThenReverse(t *testing.T) {
	s := newGISCOTestService(t)
	ctx := context.Background()

	coord, err := s.Coordinate(ctx, "Florence, Italy")
	require.NoError(t, err)
	assert.InDelta(t, 43.7695604, coord.Lat, 1e-9)

	cands, err := s.Reverse(ctx, coord, FirstMatch)
	require.NoError(t, err)
	assert.Less(t, geo.GreatCircle(coord, cands[0].Coordinate), 0.5)
	assert.Equal(t, "Florence, Tuscany, Italy", cands[0].Label)
	assert.Equal(t, "place:city", cands[0].Kind)
	assert.Equal(t, "gisco", cands[0].Provider)
}

func TestGISCO_NotFound(t *testing.T) {
	s := newGISCOTestService(t)
	_, err := s.Forward(context.Background(), "Atlantis", FirstMatch)
	assert.ErrorIs(t, err, geoerr.ErrNotFound)
}
