package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

func TestNewCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"bremen", 53.0793, 8.8017, false},
		{"corner", -90, 180, false},
		{"lat too high", 90.0001, 0, true},
		{"lon too low", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoordinate(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, c.Lat)
			assert.Equal(t, tt.lon, c.Lon)
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate(" 43.7696, 11.2558 ")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 43.7696, Lon: 11.2558}, c)

	c, err = ParseCoordinate("50.8503 4.3517")
	require.NoError(t, err)
	assert.InDelta(t, 4.3517, c.Lon, 1e-9)

	_, err = ParseCoordinate("50.85")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)

	_, err = ParseCoordinate("north,east")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)

	_, err = ParseCoordinate("95,10")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestCoordinate_GeomRoundTrip(t *testing.T) {
	c := Coordinate{Lat: 53.0793, Lon: 8.8017}
	p := c.Point()
	assert.Equal(t, SRID, p.SRID())
	assert.InDelta(t, 8.8017, p.X(), 1e-12)
	assert.InDelta(t, 53.0793, p.Y(), 1e-12)
	assert.Equal(t, c, FromCoord(c.Coord()))
}

func TestCoordinate_StringAndRound(t *testing.T) {
	c := Coordinate{Lat: 48.8566101, Lon: 2.3514992}
	assert.Equal(t, "48.856610,2.351499", c.String())
	assert.Equal(t, Coordinate{Lat: 48.86, Lon: 2.35}, c.Round(2))
}

func TestNormalizePlace(t *testing.T) {
	s, err := NormalizePlace("  Bremen,\tGermany  ")
	require.NoError(t, err)
	assert.Equal(t, "Bremen, Germany", s)

	// Decomposed "e" + combining acute becomes a single rune.
	s, err = NormalizePlace("Lie\u0301ge")
	require.NoError(t, err)
	assert.Equal(t, "Li\u00e9ge", s)

	_, err = NormalizePlace("   ")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}
