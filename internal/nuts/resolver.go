// Package nuts resolves coordinates to NUTS statistical regions, either
// remotely through GISCO, by a brute-force scan of a local shapefile, or
// against a PostGIS table.
package nuts

import (
	"context"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Levels are the NUTS hierarchy levels, from country (0) to small region (3).
var Levels = []int{0, 1, 2, 3}

// Strategy names a resolver implementation.
type Strategy string

// Resolver strategies.
const (
	StrategyRemote  Strategy = "remote"
	StrategyLocal   Strategy = "local"
	StrategyPostGIS Strategy = "postgis"
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyRemote, "":
		return StrategyRemote, nil
	case StrategyLocal:
		return StrategyLocal, nil
	case StrategyPostGIS:
		return StrategyPostGIS, nil
	}
	return "", geoerr.InvalidArgument("nuts: unknown strategy %q", s)
}

// Region is a NUTS region. It is never mutated after being produced.
type Region struct {
	ID      string `json:"nuts_id" yaml:"nuts_id"`
	Name    string `json:"name" yaml:"name"`
	Level   int    `json:"level" yaml:"level"`
	Country string `json:"country" yaml:"country"`
	Year    int    `json:"year,omitempty" yaml:"year,omitempty"`
}

// Parent returns the identifier of the enclosing region, or "" at level 0.
func (r Region) Parent() string {
	if len(r.ID) <= 2 {
		return ""
	}
	return r.ID[:len(r.ID)-1]
}

// Resolver finds the region of a given level that contains a coordinate.
// It returns ErrNotFound when no region contains the point and
// ErrInvalidArgument for a bad level or coordinate.
type Resolver interface {
	Resolve(ctx context.Context, coord geo.Coordinate, level int) (Region, error)
}

// ValidateLevel checks level is one of Levels.
func ValidateLevel(level int) error {
	if level < 0 || level > 3 {
		return geoerr.InvalidArgument("nuts: level %d not in [0,3]", level)
	}
	return nil
}

// LevelOf derives the level from a NUTS identifier ("DE" is 0, "DE50" is 2).
func LevelOf(id string) (int, error) {
	id = strings.TrimSpace(id)
	if len(id) < 2 {
		return 0, geoerr.InvalidArgument("nuts: malformed identifier %q", id)
	}
	level := len(id) - 2
	if err := ValidateLevel(level); err != nil {
		return 0, geoerr.InvalidArgument("nuts: malformed identifier %q", id)
	}
	return level, nil
}

func validate(coord geo.Coordinate, level int) error {
	if err := ValidateLevel(level); err != nil {
		return err
	}
	return coord.Validate()
}
