package gisco

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// NUTS reference years published by GISCO.
var NUTSYears = []int{2006, 2010, 2013, 2016, 2021, 2024}

// DefaultNUTSYear is used when no year is requested.
const DefaultNUTSYear = 2013

// ValidNUTSYear reports whether year is a published NUTS version.
func ValidNUTSYear(year int) bool {
	for _, y := range NUTSYears {
		if y == year {
			return true
		}
	}
	return false
}

// NUTSResult is one region returned by find-nuts.
type NUTSResult struct {
	ID           string `json:"nuts_id"`
	Level        int    `json:"level"`
	Country      string `json:"country"`
	Name         string `json:"name"`
	NameLatin    string `json:"name_latn,omitempty"`
	ShortEnglish string `json:"short_engl,omitempty"`
	Layer        string `json:"layer,omitempty"`
	Year         int    `json:"year"`
}

type findNUTSResponse struct {
	Results []struct {
		Attributes struct {
			NUTSID    string  `json:"NUTS_ID"`
			Level     flexInt `json:"LEVL_CODE"`
			StatLevel flexInt `json:"STAT_LEVL_"`
			Country   string  `json:"CNTR_CODE"`
			Name      string  `json:"NUTS_NAME"`
			NameLatin string  `json:"NAME_LATN"`
			ShortEngl string  `json:"SHRT_ENGL"`
		} `json:"attributes"`
		LayerName string `json:"layerName"`
		Value     string `json:"value"`
	} `json:"results"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	f.Value, f.Set = v, true
	return nil
}

// FindNUTS returns every NUTS region (levels 0 to 3) containing coord for the
// given reference year. Year 0 selects DefaultNUTSYear.
func (c *Client) FindNUTS(ctx context.Context, coord geo.Coordinate, year int) ([]NUTSResult, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	if year == 0 {
		year = DefaultNUTSYear
	}
	if !ValidNUTSYear(year) {
		return nil, geoerr.InvalidArgument("gisco: NUTS year %d not supported", year)
	}

	params := url.Values{
		"x":        {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"y":        {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"f":        {"JSON"},
		"year":     {strconv.Itoa(year)},
		"proj":     {strconv.Itoa(geo.SRID)},
		"geometry": {"N"},
	}

	var resp findNUTSResponse
	if err := c.getJSON(ctx, "find-nuts", findNUTSPath, params, &resp); err != nil {
		return nil, err
	}

	out := make([]NUTSResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		a := r.Attributes
		id := strings.TrimSpace(a.NUTSID)
		if id == "" {
			id = strings.TrimSpace(r.Value)
		}
		if id == "" {
			continue
		}
		level := len(id) - 2
		switch {
		case a.Level.Set:
			level = a.Level.Value
		case a.StatLevel.Set:
			level = a.StatLevel.Value
		}
		country := a.Country
		if country == "" && len(id) >= 2 {
			country = id[:2]
		}
		out = append(out, NUTSResult{
			ID:           id,
			Level:        level,
			Country:      country,
			Name:         a.Name,
			NameLatin:    a.NameLatin,
			ShortEnglish: a.ShortEngl,
			Layer:        r.LayerName,
			Year:         year,
		})
	}
	return out, nil
}
