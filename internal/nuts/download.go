package nuts

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// DefaultDistributionURL is the root of the GISCO NUTS bulk download service.
const DefaultDistributionURL = "https://gisco-services.ec.europa.eu/distribution/v2/nuts/download"

// shapefileExts are the shapefile components kept when extracting.
var shapefileExts = map[string]bool{".shp": true, ".shx": true, ".dbf": true, ".prj": true, ".cpg": true}

// DownloadOptions configure Download.
type DownloadOptions struct {
	BaseURL   string // defaults to DefaultDistributionURL
	Dir       string // destination directory, created if missing
	Shapefile ShapefileOptions
}

// ArchiveName is the bulk archive holding every level for the given options,
// e.g. "ref-nuts-2013-01m.shp.zip".
func (o DownloadOptions) ArchiveName() string {
	s := o.Shapefile.withDefaults()
	return fmt.Sprintf("ref-nuts-%d-%s.shp.zip", s.Year, strings.ToLower(s.Scale))
}

// Download fetches the GISCO NUTS archive and extracts the shapefiles of the
// selected scale, year and projection into opts.Dir. Nested archives are
// unpacked. It returns the number of files written.
func Download(ctx context.Context, httpClient *http.Client, opts DownloadOptions) (int, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.Dir == "" {
		return 0, geoerr.InvalidArgument("nuts: download directory not set")
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultDistributionURL
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return 0, eris.Wrapf(err, "nuts: create dir %s", opts.Dir)
	}

	log := zap.L().With(zap.String("component", "nuts.download"))

	url := strings.TrimRight(base, "/") + "/" + opts.ArchiveName()
	zipPath := filepath.Join(opts.Dir, opts.ArchiveName())
	log.Info("downloading NUTS archive", zap.String("url", url))
	if err := downloadFile(ctx, httpClient, url, zipPath); err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(zipPath) }()

	s := opts.Shapefile.withDefaults()
	prefix := fmt.Sprintf("NUTS_RG_%s_%d_%d", s.Scale, s.Year, s.Proj)
	n, err := extractZIP(zipPath, opts.Dir, prefix)
	if err != nil {
		return n, eris.Wrap(err, "nuts: extract archive")
	}
	log.Info("NUTS archive extracted", zap.Int("files", n), zap.String("dir", opts.Dir))
	return n, nil
}

// downloadFile downloads a URL to a local file.
func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "nuts: build download request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return geoerr.Transport(err, "nuts: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := geoerr.Status(resp.StatusCode, "nuts: download "+url); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "nuts: create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrap(err, "nuts: write file")
	}
	return nil
}

// extractZIP extracts shapefile components whose name starts with prefix
// into destDir, flattening paths. Nested .zip entries with that prefix are
// extracted recursively.
func extractZIP(zipPath, destDir, prefix string) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	var written int
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".zip" && !shapefileExts[ext] {
			continue
		}

		destPath := filepath.Join(destDir, name)
		if err := extractEntry(f, destPath); err != nil {
			return written, err
		}

		if ext == ".zip" {
			n, err := extractZIP(destPath, destDir, prefix)
			_ = os.Remove(destPath)
			if err != nil {
				return written, err
			}
			written += n
			continue
		}
		written++
	}
	return written, nil
}

func extractEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "open zip entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrapf(err, "create %s", destPath)
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "extract %s", f.Name)
	}
	return nil
}
