package gisco

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Overview levels for route geometries.
const (
	OverviewFalse      = "false"
	OverviewSimplified = "simplified"
	OverviewFull       = "full"
)

// RouteOptions tune a routing query.
type RouteOptions struct {
	// Overview is one of OverviewFalse, OverviewSimplified (default) or OverviewFull.
	Overview string
	Steps    bool
}

// Route is the best driving route between waypoints.
type Route struct {
	Distance  float64    `json:"distance"` // meters
	Duration  float64    `json:"duration"` // seconds
	Geometry  string     `json:"geometry,omitempty"`
	Legs      []RouteLeg `json:"legs"`
	Waypoints []Waypoint `json:"waypoints"`
}

// RouteLeg is the part of a route between two consecutive waypoints.
type RouteLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Summary  string  `json:"summary,omitempty"`
}

// Waypoint is an input coordinate snapped to the road network.
type Waypoint struct {
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Distance   float64        `json:"distance"` // meters from the input coordinate
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64    `json:"distance"`
		Duration float64    `json:"duration"`
		Geometry string     `json:"geometry"`
		Legs     []RouteLeg `json:"legs"`
	} `json:"routes"`
	Waypoints []struct {
		Name     string     `json:"name"`
		Location [2]float64 `json:"location"`
		Distance float64    `json:"distance"`
	} `json:"waypoints"`
}

// Route computes the driving route through coords, in order. At least two
// coordinates are required.
func (c *Client) Route(ctx context.Context, coords []geo.Coordinate, opts RouteOptions) (*Route, error) {
	if len(coords) < 2 {
		return nil, geoerr.InvalidArgument("gisco: route needs at least 2 coordinates, got %d", len(coords))
	}
	parts := make([]string, len(coords))
	for i, co := range coords {
		if err := co.Validate(); err != nil {
			return nil, err
		}
		parts[i] = strconv.FormatFloat(co.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(co.Lat, 'f', -1, 64)
	}

	overview := opts.Overview
	switch overview {
	case "":
		overview = OverviewSimplified
	case OverviewFalse, OverviewSimplified, OverviewFull:
	default:
		return nil, geoerr.InvalidArgument("gisco: unknown route overview %q", overview)
	}
	params := url.Values{
		"overview": {overview},
		"steps":    {strconv.FormatBool(opts.Steps)},
	}

	var resp osrmResponse
	if err := c.getJSON(ctx, "route", routePath+strings.Join(parts, ";"), params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "Ok" || len(resp.Routes) == 0 {
		return nil, geoerr.NotFound("gisco: no route (%s %s)", resp.Code, resp.Message)
	}

	best := resp.Routes[0]
	r := &Route{
		Distance: best.Distance,
		Duration: best.Duration,
		Geometry: best.Geometry,
		Legs:     best.Legs,
	}
	for _, w := range resp.Waypoints {
		r.Waypoints = append(r.Waypoints, Waypoint{
			Name:       w.Name,
			Coordinate: geo.Coordinate{Lat: w.Location[1], Lon: w.Location[0]},
			Distance:   w.Distance,
		})
	}
	return r, nil
}
