package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/feature"
	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/internal/nuts"
	"github.com/sells-group/gisco-cli/pkg/geocode"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type nutsResponse struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Place      string         `json:"place,omitempty"`
	Regions    []nuts.Region  `json:"regions"`
}

type distanceResponse struct {
	From     geo.Coordinate `json:"from"`
	To       geo.Coordinate `json:"to"`
	Distance float64        `json:"distance"`
	Unit     string         `json:"unit"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := geoerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(geoerr.KindOf(err))})
}

func unavailable(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error: what + " is not configured",
		Kind:  string(geoerr.KindServiceUnavailable),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": s.deps.Provider})
}

func parseResolution(v string) (geocode.Resolution, error) {
	switch strings.ToLower(v) {
	case "", "first":
		return geocode.FirstMatch, nil
	case "all":
		return geocode.AllMatches, nil
	case "unique":
		return geocode.UniqueMatch, nil
	}
	return 0, geoerr.InvalidArgument("server: match must be first, all or unique, got %q", v)
}

func parseLatLon(r *http.Request) (geo.Coordinate, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return geo.Coordinate{}, geoerr.InvalidArgument("server: bad lat %q", q.Get("lat"))
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return geo.Coordinate{}, geoerr.InvalidArgument("server: bad lon %q", q.Get("lon"))
	}
	return geo.NewCoordinate(lat, lon)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	res, err := parseResolution(r.URL.Query().Get("match"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	cands, err := s.deps.Geocoder.Forward(r.Context(), r.URL.Query().Get("q"), res)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cands)
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	coord, err := parseLatLon(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := parseResolution(r.URL.Query().Get("match"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	cands, err := s.deps.Geocoder.Reverse(r.Context(), coord, res)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cands)
}

// handleNUTS resolves either ?q=place or ?lat=&lon= to NUTS regions. With
// ?level= only that level is resolved; otherwise every configured level is
// tried and the levels found are returned.
func (s *Server) handleNUTS(w http.ResponseWriter, r *http.Request) {
	if s.deps.Resolver == nil {
		unavailable(w, "NUTS resolver")
		return
	}
	q := r.URL.Query()

	var (
		loc *feature.Location
		err error
	)
	if place := q.Get("q"); place != "" {
		loc, err = feature.NewLocationFromPlace(place, s.deps.Geocoder, s.deps.Resolver)
	} else {
		var coord geo.Coordinate
		if coord, err = parseLatLon(r); err == nil {
			loc, err = feature.NewLocationFromCoordinate(coord, s.deps.Geocoder, s.deps.Resolver)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	levels := s.deps.Levels
	explicit := q.Get("level") != ""
	if explicit {
		lvl, convErr := strconv.Atoi(q.Get("level"))
		if convErr != nil {
			writeError(w, r, geoerr.InvalidArgument("server: bad level %q", q.Get("level")))
			return
		}
		levels = []int{lvl}
	}

	regions, err := loc.NUTSRegions(r.Context(), levels)
	if err != nil && (explicit || len(regions) == 0 || !errors.Is(err, geoerr.ErrNotFound)) {
		writeError(w, r, err)
		return
	}

	coord, err := loc.Coordinate(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := nutsResponse{Coordinate: coord, Regions: regions}
	if q.Get("q") != "" {
		resp.Place, _ = loc.Place(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if s.deps.Router == nil {
		unavailable(w, "router")
		return
	}
	coords, err := parseRoutePoints(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	route, err := s.deps.Router.Route(r.Context(), coords, gisco.RouteOptions{
		Overview: r.URL.Query().Get("overview"),
		Steps:    r.URL.Query().Get("steps") == "true",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := geo.ParseCoordinate(q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := geo.ParseCoordinate(q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	unit, err := geo.ParseDistanceUnit(q.Get("unit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := geo.Distance(from, to, unit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, distanceResponse{From: from, To: to, Distance: d, Unit: string(unit)})
}

// parseRoutePoints reads waypoints from "points=lat,lon|lat,lon" and from
// repeated "point=lat,lon" parameters, in that order. Semicolons cannot be
// used as separators because url.ParseQuery rejects them.
func parseRoutePoints(q url.Values) ([]geo.Coordinate, error) {
	var raw []string
	for _, v := range q["points"] {
		raw = append(raw, strings.Split(v, "|")...)
	}
	raw = append(raw, q["point"]...)

	var coords []geo.Coordinate
	for _, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}
		c, err := geo.ParseCoordinate(p)
		if err != nil {
			return nil, err
		}
		coords = append(coords, c)
	}
	return coords, nil
}
