package gisco

import (
	"context"
	"net/url"
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// osmPlaceKey is the OSM key of settlements and administrative places.
const osmPlaceKey = "place"

// Place is one feature returned by the GISCO geocoder.
type Place struct {
	Name        string         `json:"name"`
	Street      string         `json:"street,omitempty"`
	HouseNumber string         `json:"housenumber,omitempty"`
	Postcode    string         `json:"postcode,omitempty"`
	City        string         `json:"city,omitempty"`
	County      string         `json:"county,omitempty"`
	State       string         `json:"state,omitempty"`
	Country     string         `json:"country,omitempty"`
	CountryCode string         `json:"countrycode,omitempty"`
	OSMID       int64          `json:"osm_id,omitempty"`
	OSMType     string         `json:"osm_type,omitempty"`
	OSMKey      string         `json:"osm_key,omitempty"`
	OSMValue    string         `json:"osm_value,omitempty"`
	Coordinate  geo.Coordinate `json:"coordinate"`
	Extent      *geo.BBox      `json:"extent,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// Label returns a display name such as "Bremen, Bremen, Germany".
func (p Place) Label() string {
	label := p.Name
	for _, part := range []string{p.City, p.State, p.Country} {
		if part == "" || part == p.Name {
			continue
		}
		if label != "" {
			label += ", "
		}
		label += part
	}
	return label
}

// GeocodeOptions tune a forward query.
type GeocodeOptions struct {
	// Limit caps the number of features returned upstream; 0 leaves the
	// server default.
	Limit int
	// Lang selects the language of labels ("en", "de", "fr", ...).
	Lang string
	// AllKinds keeps every point feature. By default only features with
	// osm_key "place" are kept.
	AllKinds bool
}

// ReverseOptions tune a reverse query.
type ReverseOptions struct {
	Limit    int
	RadiusKm float64
	Lang     string
}

// Geocode resolves a free-text toponym to the matching places, in upstream order.
// An empty match list is not an error at this level.
func (c *Client) Geocode(ctx context.Context, query string, opts GeocodeOptions) ([]Place, error) {
	q, err := geo.NormalizePlace(query)
	if err != nil {
		return nil, err
	}
	params := url.Values{"q": {q}}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Lang != "" {
		params.Set("lang", opts.Lang)
	}

	var fc geojson.FeatureCollection
	if err := c.getJSON(ctx, "geocode", geocodePath, params, &fc); err != nil {
		return nil, err
	}
	return decodePlaces(fc.Features, !opts.AllKinds), nil
}

// Reverse returns the places closest to coord, in upstream order.
func (c *Client) Reverse(ctx context.Context, coord geo.Coordinate, opts ReverseOptions) ([]Place, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	params := url.Values{
		"lat": {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.RadiusKm > 0 {
		params.Set("radius", strconv.FormatFloat(opts.RadiusKm, 'f', -1, 64))
	}
	if opts.Lang != "" {
		params.Set("lang", opts.Lang)
	}

	var fc geojson.FeatureCollection
	if err := c.getJSON(ctx, "reverse", reversePath, params, &fc); err != nil {
		return nil, err
	}
	return decodePlaces(fc.Features, false), nil
}

// decodePlaces keeps point features, optionally restricted to OSM places.
func decodePlaces(features []*geojson.Feature, placesOnly bool) []Place {
	places := make([]Place, 0, len(features))
	for _, f := range features {
		if f == nil {
			continue
		}
		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt.Empty() {
			continue
		}
		p := placeFromProperties(f.Properties)
		if placesOnly && p.OSMKey != osmPlaceKey {
			continue
		}
		p.Coordinate = geo.Coordinate{Lat: pt.Y(), Lon: pt.X()}
		places = append(places, p)
	}
	return places
}

func placeFromProperties(props map[string]any) Place {
	p := Place{
		Name:        stringProp(props, "name"),
		Street:      stringProp(props, "street"),
		HouseNumber: stringProp(props, "housenumber"),
		Postcode:    stringProp(props, "postcode"),
		City:        stringProp(props, "city"),
		County:      stringProp(props, "county"),
		State:       stringProp(props, "state"),
		Country:     stringProp(props, "country"),
		CountryCode: stringProp(props, "countrycode"),
		OSMType:     stringProp(props, "osm_type"),
		OSMKey:      stringProp(props, "osm_key"),
		OSMValue:    stringProp(props, "osm_value"),
		Properties:  props,
	}
	if id, ok := props["osm_id"].(float64); ok {
		p.OSMID = int64(id)
	}
	// Photon extents are [minLon, maxLat, maxLon, minLat].
	if ext, ok := props["extent"].([]any); ok && len(ext) == 4 {
		var v [4]float64
		valid := true
		for i, e := range ext {
			f, ok := e.(float64)
			if !ok {
				valid = false
				break
			}
			v[i] = f
		}
		if valid {
			p.Extent = &geo.BBox{MinLon: v[0], MaxLat: v[1], MaxLon: v[2], MinLat: v[3]}
		}
	}
	return p
}

func stringProp(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// First returns the first place or ErrNotFound.
func First(places []Place, query string) (Place, error) {
	if len(places) == 0 {
		return Place{}, geoerr.NotFound("gisco: no place matches %q", query)
	}
	return places[0], nil
}
