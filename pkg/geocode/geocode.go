// Package geocode resolves place names to coordinates and back through a
// pluggable set of geocoding providers (GISCO, Nominatim, Google, GeoNames,
// Bing, OpenCage).
package geocode

import (
	"context"

	"github.com/sells-group/gisco-cli/internal/geo"
)

// Provider is a named geocoding backend. Capabilities are expressed by the
// additional interfaces it implements (Forwarder, Reverser).
type Provider interface {
	Name() string
}

// Forwarder resolves a toponym to candidate locations, in upstream order.
// An empty slice means no match.
type Forwarder interface {
	Provider
	Forward(ctx context.Context, place string) ([]Candidate, error)
}

// Reverser resolves a coordinate to candidate places, in upstream order.
type Reverser interface {
	Provider
	Reverse(ctx context.Context, coord geo.Coordinate) ([]Candidate, error)
}

// Candidate is a single upstream match.
type Candidate struct {
	Label       string         `json:"label" yaml:"label"`
	Coordinate  geo.Coordinate `json:"coordinate" yaml:"coordinate"`
	Street      string         `json:"street,omitempty" yaml:"street,omitempty"`
	Postcode    string         `json:"postcode,omitempty" yaml:"postcode,omitempty"`
	City        string         `json:"city,omitempty" yaml:"city,omitempty"`
	State       string         `json:"state,omitempty" yaml:"state,omitempty"`
	Country     string         `json:"country,omitempty" yaml:"country,omitempty"`
	CountryCode string         `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	Kind        string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Extent      *geo.BBox      `json:"extent,omitempty" yaml:"extent,omitempty"`
	Provider    string         `json:"provider" yaml:"provider"`
	Raw         any            `json:"raw,omitempty" yaml:"-"`
}

// Resolution controls how multiple candidates are handled.
type Resolution int

const (
	// FirstMatch keeps the first candidate.
	FirstMatch Resolution = iota
	// AllMatches keeps every candidate in upstream order.
	AllMatches
	// UniqueMatch fails with ErrAmbiguousResult when more than one candidate matches.
	UniqueMatch
)

// String implements fmt.Stringer.
func (r Resolution) String() string {
	switch r {
	case AllMatches:
		return "all"
	case UniqueMatch:
		return "unique"
	default:
		return "first"
	}
}

// Capabilities lists the operations p supports.
func Capabilities(p Provider) []string {
	var caps []string
	if _, ok := p.(Forwarder); ok {
		caps = append(caps, "forward")
	}
	if _, ok := p.(Reverser); ok {
		caps = append(caps, "reverse")
	}
	return caps
}
