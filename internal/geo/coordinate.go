// Package geo provides coordinate handling and unit conversions for
// angles and distances on the WGS84 ellipsoid.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// SRID of every coordinate handled by this package.
const SRID = 4326

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// NewCoordinate returns a validated coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks that lat is within [-90,90] and lon within [-180,180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return geoerr.InvalidArgument("geo: latitude %v out of range [-90,90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return geoerr.InvalidArgument("geo: longitude %v out of range [-180,180]", c.Lon)
	}
	return nil
}

// ParseCoordinate parses "lat,lon" (or "lat lon") into a validated coordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(parts) != 2 {
		return Coordinate{}, geoerr.InvalidArgument("geo: coordinate %q must be \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinate{}, geoerr.InvalidArgument("geo: latitude %q is not a number", parts[0])
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinate{}, geoerr.InvalidArgument("geo: longitude %q is not a number", parts[1])
	}
	return NewCoordinate(lat, lon)
}

// String formats the coordinate as "lat,lon" with 6 decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Round returns the coordinate rounded to the given number of decimals.
func (c Coordinate) Round(decimals int) Coordinate {
	p := math.Pow(10, float64(decimals))
	return Coordinate{Lat: math.Round(c.Lat*p) / p, Lon: math.Round(c.Lon*p) / p}
}

// Coord returns the position in go-geom XY order (lon, lat).
func (c Coordinate) Coord() geom.Coord {
	return geom.Coord{c.Lon, c.Lat}
}

// Point returns the position as a go-geom point with SRID 4326.
func (c Coordinate) Point() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}).SetSRID(SRID)
}

// FromCoord converts a go-geom XY coordinate back to a Coordinate.
func FromCoord(c geom.Coord) Coordinate {
	return Coordinate{Lat: c.Y(), Lon: c.X()}
}

// NormalizePlace trims and NFC-normalizes a toponym and collapses inner
// whitespace. An empty result is an invalid argument.
func NormalizePlace(place string) (string, error) {
	s := strings.Join(strings.Fields(norm.NFC.String(place)), " ")
	if s == "" {
		return "", geoerr.InvalidArgument("geo: empty place name")
	}
	return s, nil
}
