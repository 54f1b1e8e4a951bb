package nuts

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDownload_ExtractsNestedArchives(t *testing.T) {
	inner := buildZip(t, map[string][]byte{
		"NUTS_RG_20M_2021_4326_LEVL_2.shp": []byte("shp"),
		"NUTS_RG_20M_2021_4326_LEVL_2.dbf": []byte("dbf"),
		"NUTS_RG_20M_2021_4326_LEVL_2.shx": []byte("shx"),
	})
	other := buildZip(t, map[string][]byte{
		"NUTS_RG_20M_2021_3035_LEVL_2.shp": []byte("shp"),
	})
	outer := buildZip(t, map[string][]byte{
		"NUTS_RG_20M_2021_4326_LEVL_2.shp.zip": inner,
		"NUTS_RG_20M_2021_3035_LEVL_2.shp.zip": other,
		"release-notes.txt":                    []byte("notes"),
	})

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(outer)
	}))
	defer srv.Close()

	dir := t.TempDir()
	n, err := Download(context.Background(), srv.Client(), DownloadOptions{
		BaseURL:   srv.URL + "/nuts/download",
		Dir:       dir,
		Shapefile: ShapefileOptions{Scale: "20M", Year: 2021},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "/nuts/download/ref-nuts-2021-20m.shp.zip", gotPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"NUTS_RG_20M_2021_4326_LEVL_2.dbf",
		"NUTS_RG_20M_2021_4326_LEVL_2.shp",
		"NUTS_RG_20M_2021_4326_LEVL_2.shx",
	}, names)

	data, err := os.ReadFile(filepath.Join(dir, "NUTS_RG_20M_2021_4326_LEVL_2.dbf"))
	require.NoError(t, err)
	assert.Equal(t, "dbf", string(data))
}

func TestDownload_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.Client(), DownloadOptions{BaseURL: srv.URL, Dir: t.TempDir()})
	assert.True(t, errors.Is(err, geoerr.ErrServiceUnavailable))
}

func TestDownload_RequiresDir(t *testing.T) {
	_, err := Download(context.Background(), nil, DownloadOptions{})
	assert.True(t, errors.Is(err, geoerr.ErrInvalidArgument))
}

func TestDownloadOptions_ArchiveName(t *testing.T) {
	assert.Equal(t, "ref-nuts-2013-01m.shp.zip", DownloadOptions{}.ArchiveName())
}
