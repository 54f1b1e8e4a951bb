package main

import (
	"strconv"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/internal/nuts"
)

func invalidFlag(name, value, want string) error {
	return geoerr.InvalidArgument("--%s %q: want %s", name, value, want)
}

// parseLevels parses a comma-separated list of NUTS levels.
func parseLevels(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var levels []int
	for _, part := range strings.Split(s, ",") {
		lvl, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, invalidFlag("levels", s, "comma-separated integers")
		}
		if err := nuts.ValidateLevel(lvl); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, nil
}
