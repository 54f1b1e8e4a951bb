package geo

import (
	"math"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// AngleUnit names an angle representation.
type AngleUnit string

// Angle units.
const (
	Degrees AngleUnit = "deg"
	Radians AngleUnit = "rad"
)

// dpsPrecision is the number of decimals kept on DPS seconds.
const dpsPrecision = 5

// DPS is an angle in degrees, primes (arc minutes) and seconds.
type DPS struct {
	Degrees int     `json:"degrees"`
	Primes  int     `json:"primes"`
	Seconds float64 `json:"seconds"`
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// DPSToDeg converts a DPS angle to decimal degrees.
func DPSToDeg(d DPS) float64 {
	return float64(d.Degrees) + float64(d.Primes)/60 + d.Seconds/3600
}

// DegToDPS converts decimal degrees to DPS. Degrees and primes are floored,
// seconds are rounded to 5 decimals.
func DegToDPS(deg float64) DPS {
	d := math.Floor(deg)
	primes := (deg - d) * 60
	p := math.Floor(primes)
	seconds := (primes - p) * 60
	scale := math.Pow(10, dpsPrecision)
	return DPS{
		Degrees: int(d),
		Primes:  int(p),
		Seconds: math.Round(seconds*scale) / scale,
	}
}

// DPSToRad converts a DPS angle to radians.
func DPSToRad(d DPS) float64 { return DegToRad(DPSToDeg(d)) }

// RadToDPS converts radians to DPS.
func RadToDPS(rad float64) DPS { return DegToDPS(RadToDeg(rad)) }

// ConvertAngle converts v between degrees and radians.
func ConvertAngle(v float64, from, to AngleUnit) (float64, error) {
	if from == to && (from == Degrees || from == Radians) {
		return v, nil
	}
	switch {
	case from == Degrees && to == Radians:
		return DegToRad(v), nil
	case from == Radians && to == Degrees:
		return RadToDeg(v), nil
	}
	return 0, geoerr.InvalidArgument("geo: angle conversion %s to %s not supported", from, to)
}

// LatDegToMeters returns the length in meters of dlat degrees of latitude
// at latitude lat (degrees).
func LatDegToMeters(dlat, lat float64) float64 {
	phi := DegToRad(lat)
	return dlat * (111132.09 - 566.05*math.Cos(2*phi) + 1.2*math.Cos(4*phi))
}

// LonDegToMeters returns the length in meters of dlon degrees of longitude
// at latitude lat (degrees).
func LonDegToMeters(dlon, lat float64) float64 {
	phi := DegToRad(lat)
	return dlon * (111415.13*math.Cos(phi) - 94.55*math.Cos(3*phi))
}

// LatMetersToDeg is the inverse of LatDegToMeters.
func LatMetersToDeg(dy, lat float64) float64 {
	return dy / LatDegToMeters(1, lat)
}

// LonMetersToDeg is the inverse of LonDegToMeters. It is undefined at the poles.
func LonMetersToDeg(dx, lat float64) float64 {
	return dx / LonDegToMeters(1, lat)
}
