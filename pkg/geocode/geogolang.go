package geocode

import (
	"context"
	"strings"

	geogolang "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/bing"
	"github.com/codingsince1985/geo-golang/opencage"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// GeoGolangProvider adapts a geo-golang geocoder. Those geocoders return a
// single best match, so AllMatches yields at most one candidate.
type GeoGolangProvider struct {
	name     string
	geocoder geogolang.Geocoder
}

// NewGeoGolangProvider wraps any geo-golang geocoder under name.
func NewGeoGolangProvider(name string, g geogolang.Geocoder) *GeoGolangProvider {
	return &GeoGolangProvider{name: name, geocoder: g}
}

// NewBingProvider creates a Bing Maps provider.
func NewBingProvider(key string, baseURL ...string) *GeoGolangProvider {
	return NewGeoGolangProvider("bing", bing.Geocoder(key, baseURL...))
}

// NewOpenCageProvider creates an OpenCage provider.
func NewOpenCageProvider(key string, baseURL ...string) *GeoGolangProvider {
	return NewGeoGolangProvider("opencage", opencage.Geocoder(key, baseURL...))
}

// Name implements Provider.
func (p *GeoGolangProvider) Name() string { return p.name }

// Forward implements Forwarder.
func (p *GeoGolangProvider) Forward(ctx context.Context, place string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc, err := p.geocoder.Geocode(place)
	if err != nil {
		return nil, geoerr.Transport(err, "geocode: "+p.name+" geocode")
	}
	if loc == nil {
		return nil, nil
	}
	return []Candidate{{
		Label:      place,
		Coordinate: geo.Coordinate{Lat: loc.Lat, Lon: loc.Lng},
		Provider:   p.name,
		Raw:        loc,
	}}, nil
}

// Reverse implements Reverser.
func (p *GeoGolangProvider) Reverse(ctx context.Context, coord geo.Coordinate) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, err := p.geocoder.ReverseGeocode(coord.Lat, coord.Lon)
	if err != nil {
		return nil, geoerr.Transport(err, "geocode: "+p.name+" reverse")
	}
	if addr == nil {
		return nil, nil
	}
	label := addr.FormattedAddress
	if label == "" {
		label = strings.Trim(addr.City+", "+addr.Country, ", ")
	}
	return []Candidate{{
		Label:       label,
		Coordinate:  coord,
		Street:      addr.Street,
		Postcode:    addr.Postcode,
		City:        addr.City,
		State:       addr.State,
		Country:     addr.Country,
		CountryCode: strings.ToUpper(addr.CountryCode),
		Provider:    p.name,
		Raw:         addr,
	}}, nil
}
