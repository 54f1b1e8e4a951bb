package nuts

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Source supplies the features of one NUTS level, in file order.
type Source interface {
	Features(ctx context.Context, level int) ([]Feature, error)
}

// LocalResolver scans every feature of the requested level and returns the
// first whose polygon contains the point. There is no spatial index: each
// call is linear in the number of features.
type LocalResolver struct {
	source Source
}

// NewLocalResolver creates a brute-force resolver over source.
func NewLocalResolver(source Source) *LocalResolver {
	return &LocalResolver{source: source}
}

// Resolve implements Resolver.
func (r *LocalResolver) Resolve(ctx context.Context, coord geo.Coordinate, level int) (Region, error) {
	if err := validate(coord, level); err != nil {
		return Region{}, err
	}
	features, err := r.source.Features(ctx, level)
	if err != nil {
		return Region{}, err
	}

	for i, f := range features {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Region{}, err
			}
		}
		if f.Contains(coord) {
			zap.L().Debug("nuts: local match",
				zap.String("nuts_id", f.Region.ID),
				zap.Int("scanned", i+1),
			)
			return f.Region, nil
		}
	}
	return Region{}, geoerr.NotFound("nuts: no level %d region contains %s", level, coord)
}

// MemorySource serves features held in memory, keyed by level.
type MemorySource map[int][]Feature

// Features implements Source.
func (m MemorySource) Features(_ context.Context, level int) ([]Feature, error) {
	if err := ValidateLevel(level); err != nil {
		return nil, err
	}
	return m[level], nil
}
