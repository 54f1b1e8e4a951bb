package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleProvider geocodes through the Google Geocoding API.
type GoogleProvider struct {
	http httpBackend
	key  string
}

// NewGoogleProvider creates a Google provider. The API key is required.
func NewGoogleProvider(hc *http.Client, key string, rps float64) *GoogleProvider {
	if rps <= 0 {
		rps = 50
	}
	return &GoogleProvider{http: newHTTPBackend(hc, rps, ""), key: key}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

type googleResult struct {
	AddressComponents []struct {
		LongName  string   `json:"long_name"`
		ShortName string   `json:"short_name"`
		Types     []string `json:"types"`
	} `json:"address_components"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
		Viewport     struct {
			Northeast struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"northeast"`
			Southwest struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"southwest"`
		} `json:"viewport"`
	} `json:"geometry"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
}

// Forward implements Forwarder.
func (p *GoogleProvider) Forward(ctx context.Context, place string) ([]Candidate, error) {
	return p.query(ctx, "google geocode", url.Values{"address": {place}})
}

// Reverse implements Reverser.
func (p *GoogleProvider) Reverse(ctx context.Context, coord geo.Coordinate) ([]Candidate, error) {
	latlng := strconv.FormatFloat(coord.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(coord.Lon, 'f', -1, 64)
	return p.query(ctx, "google reverse", url.Values{"latlng": {latlng}})
}

func (p *GoogleProvider) query(ctx context.Context, op string, params url.Values) ([]Candidate, error) {
	if p.key == "" {
		return nil, geoerr.Unavailable("geocode: google api key not configured")
	}
	params.Set("key", p.key)

	var resp googleGeocodeResponse
	if err := p.http.getJSON(ctx, op, googleGeocodeURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "INVALID_REQUEST":
		return nil, geoerr.InvalidArgument("geocode: google rejected request: %s", resp.ErrorMessage)
	default:
		return nil, geoerr.Unavailable("geocode: google returned status %s: %s", resp.Status, resp.ErrorMessage)
	}

	out := make([]Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := Candidate{
			Label:      r.FormattedAddress,
			Coordinate: geo.Coordinate{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
			Kind:       googleLocationTypeToQuality(r.Geometry.LocationType),
			Provider:   "google",
			Raw:        r,
			Extent: &geo.BBox{
				MinLon: r.Geometry.Viewport.Southwest.Lng,
				MinLat: r.Geometry.Viewport.Southwest.Lat,
				MaxLon: r.Geometry.Viewport.Northeast.Lng,
				MaxLat: r.Geometry.Viewport.Northeast.Lat,
			},
		}
		for _, ac := range r.AddressComponents {
			switch {
			case hasType(ac.Types, "route"):
				c.Street = ac.LongName
			case hasType(ac.Types, "postal_code"):
				c.Postcode = ac.LongName
			case hasType(ac.Types, "locality"):
				c.City = ac.LongName
			case hasType(ac.Types, "administrative_area_level_1"):
				c.State = ac.LongName
			case hasType(ac.Types, "country"):
				c.Country = ac.LongName
				c.CountryCode = ac.ShortName
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// googleLocationTypeToQuality maps Google's location_type to a coarse precision label.
func googleLocationTypeToQuality(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range"
	case "GEOMETRIC_CENTER":
		return "centroid"
	default:
		return "approximate"
	}
}
