package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

const geonamesBaseURL = "http://api.geonames.org"

// GeoNamesProvider geocodes through the GeoNames web services.
type GeoNamesProvider struct {
	http     httpBackend
	baseURL  string
	username string
	maxRows  int
}

// NewGeoNamesProvider creates a GeoNames provider. The account username is required.
func NewGeoNamesProvider(hc *http.Client, username, baseURL string) *GeoNamesProvider {
	if baseURL == "" {
		baseURL = geonamesBaseURL
	}
	return &GeoNamesProvider{
		http:     newHTTPBackend(hc, 1, ""),
		baseURL:  baseURL,
		username: username,
		maxRows:  10,
	}
}

// Name implements Provider.
func (p *GeoNamesProvider) Name() string { return "geonames" }

type geonamesResponse struct {
	GeoNames []struct {
		GeonameID   int64  `json:"geonameId"`
		Name        string `json:"name"`
		ToponymName string `json:"toponymName"`
		Lat         string `json:"lat"`
		Lng         string `json:"lng"`
		CountryName string `json:"countryName"`
		CountryCode string `json:"countryCode"`
		AdminName1  string `json:"adminName1"`
		FCode       string `json:"fcode"`
		FCL         string `json:"fcl"`
		Distance    string `json:"distance"`
	} `json:"geonames"`
	Status *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status"`
}

// Forward implements Forwarder.
func (p *GeoNamesProvider) Forward(ctx context.Context, place string) ([]Candidate, error) {
	params := url.Values{
		"q":        {place},
		"maxRows":  {strconv.Itoa(p.maxRows)},
		"username": {p.username},
	}
	return p.query(ctx, "geonames search", p.baseURL+"/searchJSON?"+params.Encode())
}

// Reverse implements Reverser.
func (p *GeoNamesProvider) Reverse(ctx context.Context, coord geo.Coordinate) ([]Candidate, error) {
	params := url.Values{
		"lat":      {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lng":      {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"username": {p.username},
	}
	return p.query(ctx, "geonames nearby", p.baseURL+"/findNearbyPlaceNameJSON?"+params.Encode())
}

func (p *GeoNamesProvider) query(ctx context.Context, op, reqURL string) ([]Candidate, error) {
	if p.username == "" {
		return nil, geoerr.Unavailable("geocode: geonames username not configured")
	}

	var resp geonamesResponse
	if err := p.http.getJSON(ctx, op, reqURL, &resp); err != nil {
		return nil, err
	}
	// GeoNames reports auth and quota failures in the body with status 200.
	if resp.Status != nil {
		return nil, geoerr.Unavailable("geocode: geonames error %d: %s", resp.Status.Value, resp.Status.Message)
	}

	out := make([]Candidate, 0, len(resp.GeoNames))
	for _, g := range resp.GeoNames {
		lat, errLat := strconv.ParseFloat(g.Lat, 64)
		lon, errLon := strconv.ParseFloat(g.Lng, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		label := g.Name
		if g.CountryName != "" {
			label += ", " + g.CountryName
		}
		out = append(out, Candidate{
			Label:       label,
			Coordinate:  geo.Coordinate{Lat: lat, Lon: lon},
			City:        g.Name,
			State:       g.AdminName1,
			Country:     g.CountryName,
			CountryCode: g.CountryCode,
			Kind:        g.FCL + ":" + g.FCode,
			Provider:    "geonames",
			Raw:         g,
		})
	}
	return out, nil
}
