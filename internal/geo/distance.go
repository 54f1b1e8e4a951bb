package geo

import (
	"math"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// DistanceUnit names a length unit.
type DistanceUnit string

// Distance units.
const (
	Meters     DistanceUnit = "m"
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"
	Feet       DistanceUnit = "ft"
)

// Earth radii in kilometers.
const (
	EarthRadiusEquator  = 6378.1370
	EarthRadiusPolar    = 6356.7523
	EarthRadiusMean     = (2*EarthRadiusEquator + EarthRadiusPolar) / 3
	EarthRadiusAverage  = 6372.7950
	wgs84SemiAxisMajor  = EarthRadiusEquator
	wgs84SemiAxisMinor  = EarthRadiusPolar
	defaultEarthRadius  = EarthRadiusEquator
	minDistanceResolved = 0.001
)

// unitsTo[from][to] is the length of one "from" expressed in "to".
var unitsTo = map[DistanceUnit]map[DistanceUnit]float64{
	Meters:     {Meters: 1, Kilometers: 0.001, Miles: 0.000621371, Feet: 3.28084},
	Kilometers: {Meters: 1000, Kilometers: 1, Miles: 0.621371, Feet: 3280.84},
	Miles:      {Meters: 1609.34, Kilometers: 1.60934, Miles: 1, Feet: 5280},
	Feet:       {Meters: 0.3048, Kilometers: 0.0003048, Miles: 0.000189394, Feet: 1},
}

// ParseDistanceUnit parses a unit name ("m", "km", "mi", "ft" or the long
// forms "meters", "kilometers", "miles", "feet").
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters":
		return Meters, nil
	case "", "km", "kilometer", "kilometers":
		return Kilometers, nil
	case "mi", "mile", "miles":
		return Miles, nil
	case "ft", "foot", "feet":
		return Feet, nil
	}
	return "", geoerr.InvalidArgument("geo: unknown distance unit %q", s)
}

// ConvertDistance converts v from one unit to another.
func ConvertDistance(v float64, from, to DistanceUnit) (float64, error) {
	row, ok := unitsTo[from]
	if !ok {
		return 0, geoerr.InvalidArgument("geo: unknown distance unit %q", from)
	}
	f, ok := row[to]
	if !ok {
		return 0, geoerr.InvalidArgument("geo: unknown distance unit %q", to)
	}
	return v * f, nil
}

// SumDistances adds distances expressed in mixed units and returns the total in unit to.
func SumDistances(to DistanceUnit, parts map[DistanceUnit]float64) (float64, error) {
	var total float64
	for u, v := range parts {
		d, err := ConvertDistance(v, u, to)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// EstimateRadiusWGS84 returns the geocentric radius (km) of the WGS84
// ellipsoid at latitude lat (degrees).
func EstimateRadiusWGS84(lat float64) float64 {
	phi := DegToRad(lat)
	a, b := wgs84SemiAxisMajor, wgs84SemiAxisMinor
	an, bn := a*a*math.Cos(phi), b*b*math.Sin(phi)
	ad, bd := a*math.Cos(phi), b*math.Sin(phi)
	return math.Sqrt((an*an + bn*bn) / (ad*ad + bd*bd))
}

// centralAngle is the great-circle angle in radians between a and b, using
// the spherical law of cosines clamped to [-1,1].
func centralAngle(a, b Coordinate) float64 {
	lat1, lat2 := DegToRad(a.Lat), DegToRad(b.Lat)
	dlon := DegToRad(b.Lon - a.Lon)
	x := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dlon)
	return math.Acos(math.Max(-1, math.Min(1, x)))
}

// GreatCircle returns the great-circle distance in kilometers between a and
// b on a sphere of equatorial radius.
func GreatCircle(a, b Coordinate) float64 {
	return centralAngle(a, b) * defaultEarthRadius
}

// Haversine returns the great-circle distance in kilometers using the
// haversine formula and the mean radius.
func Haversine(a, b Coordinate) float64 {
	lat1, lat2 := DegToRad(a.Lat), DegToRad(b.Lat)
	dlat := lat2 - lat1
	dlon := DegToRad(b.Lon - a.Lon)
	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * EarthRadiusMean * math.Asin(math.Sqrt(h))
}

// Distance returns the great-circle distance between a and b in unit.
func Distance(a, b Coordinate, unit DistanceUnit) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return ConvertDistance(GreatCircle(a, b), Kilometers, unit)
}

// DistanceMatrix returns the pairwise distances between coords in unit.
func DistanceMatrix(coords []Coordinate, unit DistanceUnit) ([][]float64, error) {
	out := make([][]float64, len(coords))
	for i := range coords {
		out[i] = make([]float64, len(coords))
	}
	for i := range coords {
		for j := i + 1; j < len(coords); j++ {
			d, err := Distance(coords[i], coords[j], unit)
			if err != nil {
				return nil, err
			}
			out[i][j], out[j][i] = d, d
		}
	}
	return out, nil
}

// SamePlace reports whether a and b are closer than one meter.
func SamePlace(a, b Coordinate) bool {
	return GreatCircle(a, b) < minDistanceResolved
}
