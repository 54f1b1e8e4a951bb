package nuts

import (
	"context"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

// Finder is the GISCO find-nuts endpoint. *gisco.Client implements it.
type Finder interface {
	FindNUTS(ctx context.Context, coord geo.Coordinate, year int) ([]gisco.NUTSResult, error)
}

// RemoteResolver asks GISCO for the regions containing a point.
type RemoteResolver struct {
	finder Finder
	year   int
}

// NewRemoteResolver creates a resolver for the given NUTS year (0 for the default).
func NewRemoteResolver(f Finder, year int) *RemoteResolver {
	return &RemoteResolver{finder: f, year: year}
}

// Resolve implements Resolver.
func (r *RemoteResolver) Resolve(ctx context.Context, coord geo.Coordinate, level int) (Region, error) {
	if err := validate(coord, level); err != nil {
		return Region{}, err
	}
	results, err := r.finder.FindNUTS(ctx, coord, r.year)
	if err != nil {
		return Region{}, err
	}
	for _, res := range results {
		if res.Level != level {
			continue
		}
		return Region{
			ID:      res.ID,
			Name:    res.Name,
			Level:   res.Level,
			Country: res.Country,
			Year:    res.Year,
		}, nil
	}
	return Region{}, geoerr.NotFound("nuts: no level %d region at %s", level, coord)
}
