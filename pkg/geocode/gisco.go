package geocode

import (
	"context"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

// GISCOProvider geocodes through the GISCO photon endpoints.
type GISCOProvider struct {
	client  *gisco.Client
	forward gisco.GeocodeOptions
	reverse gisco.ReverseOptions
}

// NewGISCOProvider creates a provider on top of an existing GISCO client.
func NewGISCOProvider(client *gisco.Client, forward gisco.GeocodeOptions, reverse gisco.ReverseOptions) *GISCOProvider {
	return &GISCOProvider{client: client, forward: forward, reverse: reverse}
}

// Name implements Provider.
func (p *GISCOProvider) Name() string { return "gisco" }

// Client returns the underlying GISCO client.
func (p *GISCOProvider) Client() *gisco.Client { return p.client }

// Forward implements Forwarder.
func (p *GISCOProvider) Forward(ctx context.Context, place string) ([]Candidate, error) {
	places, err := p.client.Geocode(ctx, place, p.forward)
	if err != nil {
		return nil, err
	}
	return giscoCandidates(places), nil
}

// Reverse implements Reverser.
func (p *GISCOProvider) Reverse(ctx context.Context, coord geo.Coordinate) ([]Candidate, error) {
	places, err := p.client.Reverse(ctx, coord, p.reverse)
	if err != nil {
		return nil, err
	}
	return giscoCandidates(places), nil
}

func giscoCandidates(places []gisco.Place) []Candidate {
	out := make([]Candidate, 0, len(places))
	for _, pl := range places {
		kind := pl.OSMKey
		if pl.OSMValue != "" {
			kind += ":" + pl.OSMValue
		}
		out = append(out, Candidate{
			Label:       pl.Label(),
			Coordinate:  pl.Coordinate,
			Street:      pl.Street,
			Postcode:    pl.Postcode,
			City:        pl.City,
			State:       pl.State,
			Country:     pl.Country,
			CountryCode: pl.CountryCode,
			Kind:        kind,
			Extent:      pl.Extent,
			Provider:    "gisco",
			Raw:         pl.Properties,
		})
	}
	return out
}
