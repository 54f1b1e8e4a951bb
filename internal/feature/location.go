// Package feature wraps geocoding and NUTS results in small memoising value
// holders: a Location derives its missing half (place or coordinate) on
// first use and remembers every NUTS region it has been resolved to.
package feature

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/internal/nuts"
	"github.com/sells-group/gisco-cli/pkg/geocode"
)

// Geocoder is the part of *geocode.Service a Location needs.
type Geocoder interface {
	Forward(ctx context.Context, place string, res geocode.Resolution) ([]geocode.Candidate, error)
	Reverse(ctx context.Context, coord geo.Coordinate, res geocode.Resolution) ([]geocode.Candidate, error)
}

// Location is a place name or a coordinate, whichever it was created from,
// plus everything derived from it so far. Derived values are never
// invalidated. A Location is safe for concurrent use; concurrent callers
// wait for an in-flight derivation instead of repeating it.
type Location struct {
	geocoder Geocoder
	resolver nuts.Resolver

	mu        sync.Mutex
	place     string
	coord     geo.Coordinate
	hasPlace  bool
	hasCoord  bool
	candidate *geocode.Candidate
	regions   map[int]nuts.Region
}

// NewLocationFromPlace creates a Location whose canonical value is place.
func NewLocationFromPlace(place string, g Geocoder, r nuts.Resolver) (*Location, error) {
	p, err := geo.NormalizePlace(place)
	if err != nil {
		return nil, err
	}
	return &Location{
		geocoder: g,
		resolver: r,
		place:    p,
		hasPlace: true,
		regions:  make(map[int]nuts.Region),
	}, nil
}

// NewLocationFromCoordinate creates a Location whose canonical value is coord.
func NewLocationFromCoordinate(coord geo.Coordinate, g Geocoder, r nuts.Resolver) (*Location, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	return &Location{
		geocoder: g,
		resolver: r,
		coord:    coord,
		hasCoord: true,
		regions:  make(map[int]nuts.Region),
	}, nil
}

// Place returns the place name, reverse geocoding the coordinate on first use.
func (l *Location) Place(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hasPlace {
		return l.place, nil
	}
	c, err := l.lookupLocked(ctx)
	if err != nil {
		return "", err
	}
	l.place, l.hasPlace = c.Label, true
	return l.place, nil
}

// Coordinate returns the coordinate, forward geocoding the place on first use.
func (l *Location) Coordinate(ctx context.Context) (geo.Coordinate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coordinateLocked(ctx)
}

func (l *Location) coordinateLocked(ctx context.Context) (geo.Coordinate, error) {
	if l.hasCoord {
		return l.coord, nil
	}
	c, err := l.lookupLocked(ctx)
	if err != nil {
		return geo.Coordinate{}, err
	}
	l.coord, l.hasCoord = c.Coordinate, true
	return l.coord, nil
}

// lookupLocked fetches the first geocoding candidate for the canonical
// value: a forward lookup for places, a reverse lookup for coordinates.
func (l *Location) lookupLocked(ctx context.Context) (geocode.Candidate, error) {
	if l.candidate != nil {
		return *l.candidate, nil
	}
	if l.geocoder == nil {
		return geocode.Candidate{}, geoerr.Unavailable("feature: no geocoder configured")
	}

	var (
		cands []geocode.Candidate
		err   error
	)
	if l.hasPlace {
		cands, err = l.geocoder.Forward(ctx, l.place, geocode.FirstMatch)
	} else {
		cands, err = l.geocoder.Reverse(ctx, l.coord, geocode.FirstMatch)
	}
	if err != nil {
		return geocode.Candidate{}, err
	}
	if len(cands) == 0 {
		return geocode.Candidate{}, geoerr.NotFound("feature: no match for %s", l.describe())
	}
	l.candidate = &cands[0]
	return cands[0], nil
}

// FindNUTS returns the region of the given level containing the location.
// Each level is resolved at most once per Location.
func (l *Location) FindNUTS(ctx context.Context, level int) (nuts.Region, error) {
	if err := nuts.ValidateLevel(level); err != nil {
		return nuts.Region{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if r, ok := l.regions[level]; ok {
		return r, nil
	}
	if l.resolver == nil {
		return nuts.Region{}, geoerr.Unavailable("feature: no NUTS resolver configured")
	}
	coord, err := l.coordinateLocked(ctx)
	if err != nil {
		return nuts.Region{}, err
	}
	r, err := l.resolver.Resolve(ctx, coord, level)
	if err != nil {
		return nuts.Region{}, err
	}
	zap.L().Debug("feature: NUTS resolved",
		zap.String("location", l.describe()),
		zap.Int("level", level),
		zap.String("nuts_id", r.ID),
	)
	l.regions[level] = r
	return r, nil
}

// NUTSRegions resolves every level in levels, stopping at the first error.
func (l *Location) NUTSRegions(ctx context.Context, levels []int) ([]nuts.Region, error) {
	out := make([]nuts.Region, 0, len(levels))
	for _, lvl := range levels {
		r, err := l.FindNUTS(ctx, lvl)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// IsNUTS reports whether the location lies in the region with the given
// identifier. A location outside every region of that level is not an error.
func (l *Location) IsNUTS(ctx context.Context, id string) (bool, error) {
	level, err := nuts.LevelOf(id)
	if err != nil {
		return false, err
	}
	r, err := l.FindNUTS(ctx, level)
	if errors.Is(err, geoerr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(r.ID, strings.TrimSpace(id)), nil
}

// Distance is the great-circle distance to other in unit.
func (l *Location) Distance(ctx context.Context, other *Location, unit geo.DistanceUnit) (float64, error) {
	a, err := l.Coordinate(ctx)
	if err != nil {
		return 0, err
	}
	b, err := other.Coordinate(ctx)
	if err != nil {
		return 0, err
	}
	return geo.Distance(a, b, unit)
}

// Area returns the first geocoding match of the location as an Area.
func (l *Location) Area(ctx context.Context) (*Area, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, err := l.lookupLocked(ctx)
	if err != nil {
		return nil, err
	}
	return NewArea(c), nil
}

// Cached returns the NUTS regions resolved so far, keyed by level.
func (l *Location) Cached() map[int]nuts.Region {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[int]nuts.Region, len(l.regions))
	for k, v := range l.regions {
		out[k] = v
	}
	return out
}

func (l *Location) describe() string {
	if l.hasPlace {
		return l.place
	}
	return l.coord.String()
}
