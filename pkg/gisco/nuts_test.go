package gisco

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

const findNUTSJSON = `{"results": [
  {"attributes": {"CNTR_CODE": "DE", "LEVL_CODE": "0", "NUTS_ID": "DE", "NUTS_NAME": "DEUTSCHLAND", "OBJECTID": "1"}, "layerName": "NUTS_2013", "value": "DE"},
  {"attributes": {"CNTR_CODE": "DE", "LEVL_CODE": 1, "NUTS_ID": "DE5", "NUTS_NAME": "BREMEN"}, "layerName": "NUTS_2013", "value": "DE5"},
  {"attributes": {"CNTR_CODE": "DE", "LEVL_CODE": "2", "NUTS_ID": "DE50", "NUTS_NAME": "Bremen", "NAME_LATN": "Bremen"}, "layerName": "NUTS_2013", "value": "DE50"},
  {"attributes": {"NUTS_ID": "DE501", "NUTS_NAME": "Bremen, Kreisfreie Stadt"}, "layerName": "NUTS_2013", "value": "DE501"}
]}`

func TestFindNUTS(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/nuts/find-nuts.py", r.URL.Path)
		assert.Equal(t, "8.8017", q.Get("x"))
		assert.Equal(t, "53.0793", q.Get("y"))
		assert.Equal(t, "JSON", q.Get("f"))
		assert.Equal(t, "2013", q.Get("year"))
		assert.Equal(t, "4326", q.Get("proj"))
		assert.Equal(t, "N", q.Get("geometry"))
		_, _ = w.Write([]byte(findNUTSJSON))
	})

	res, err := c.FindNUTS(context.Background(), geo.Coordinate{Lat: 53.0793, Lon: 8.8017}, 0)
	require.NoError(t, err)
	require.Len(t, res, 4)

	assert.Equal(t, "DE", res[0].ID)
	assert.Equal(t, 0, res[0].Level)
	assert.Equal(t, 1, res[1].Level)
	assert.Equal(t, NUTSResult{
		ID: "DE50", Level: 2, Country: "DE", Name: "Bremen", NameLatin: "Bremen", Layer: "NUTS_2013", Year: 2013,
	}, res[2])

	// Level and country fall back to the identifier.
	assert.Equal(t, 3, res[3].Level)
	assert.Equal(t, "DE", res[3].Country)
}

func TestFindNUTS_InvalidYear(t *testing.T) {
	_, err := New().FindNUTS(context.Background(), geo.Coordinate{Lat: 50, Lon: 4}, 1999)
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	assert.True(t, ValidNUTSYear(2021))
}
