package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geo"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	// Nominatim usage policy: at most one request per second.
	nominatimRPS = 1
)

// NominatimProvider geocodes through an OpenStreetMap Nominatim server.
type NominatimProvider struct {
	http    httpBackend
	baseURL string
	email   string
	limit   int
}

// NominatimOption configures the NominatimProvider.
type NominatimOption func(*NominatimProvider)

// WithNominatimBaseURL points the provider at a self-hosted server.
func WithNominatimBaseURL(u string) NominatimOption {
	return func(p *NominatimProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithNominatimEmail sets the contact address sent with each request.
func WithNominatimEmail(email string) NominatimOption {
	return func(p *NominatimProvider) {
		p.email = email
	}
}

// NewNominatimProvider creates a Nominatim provider. userAgent is mandatory
// under the public server's usage policy.
func NewNominatimProvider(hc *http.Client, userAgent string, opts ...NominatimOption) *NominatimProvider {
	p := &NominatimProvider{
		http:    newHTTPBackend(hc, nominatimRPS, userAgent),
		baseURL: nominatimBaseURL,
		limit:   10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *NominatimProvider) Name() string { return "osm" }

type nominatimPlace struct {
	PlaceID     int64    `json:"place_id"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
	BoundingBox []string `json:"boundingbox"`
	Address     struct {
		Road        string `json:"road"`
		Postcode    string `json:"postcode"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
	Error string `json:"error"`
}

// Forward implements Forwarder.
func (p *NominatimProvider) Forward(ctx context.Context, place string) ([]Candidate, error) {
	params := url.Values{
		"q":              {place},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {strconv.Itoa(p.limit)},
	}
	if p.email != "" {
		params.Set("email", p.email)
	}

	var results []nominatimPlace
	if err := p.http.getJSON(ctx, "nominatim search", p.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		if c, ok := r.candidate(); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Reverse implements Reverser.
func (p *NominatimProvider) Reverse(ctx context.Context, coord geo.Coordinate) ([]Candidate, error) {
	params := url.Values{
		"lat":            {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
	}
	if p.email != "" {
		params.Set("email", p.email)
	}

	var result nominatimPlace
	if err := p.http.getJSON(ctx, "nominatim reverse", p.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	// "Unable to geocode" is reported in the body with status 200.
	if result.Error != "" {
		return nil, nil
	}
	c, ok := result.candidate()
	if !ok {
		return nil, nil
	}
	return []Candidate{c}, nil
}

func (r nominatimPlace) candidate() (Candidate, bool) {
	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lon, errLon := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLon != nil {
		return Candidate{}, false
	}
	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}
	class := r.Category
	if class == "" {
		class = r.Class
	}
	c := Candidate{
		Label:       r.DisplayName,
		Coordinate:  geo.Coordinate{Lat: lat, Lon: lon},
		Street:      r.Address.Road,
		Postcode:    r.Address.Postcode,
		City:        city,
		State:       r.Address.State,
		Country:     r.Address.Country,
		CountryCode: strings.ToUpper(r.Address.CountryCode),
		Kind:        class + ":" + r.Type,
		Provider:    "osm",
		Raw:         r,
	}
	// Nominatim bounding boxes are [minLat, maxLat, minLon, maxLon] strings.
	if len(r.BoundingBox) == 4 {
		var v [4]float64
		valid := true
		for i, s := range r.BoundingBox {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				valid = false
				break
			}
			v[i] = f
		}
		if valid {
			c.Extent = &geo.BBox{MinLat: v[0], MaxLat: v[1], MinLon: v[2], MaxLon: v[3]}
		}
	}
	return c, true
}
