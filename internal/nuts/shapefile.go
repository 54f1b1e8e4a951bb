package nuts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Defaults of the GISCO bulk NUTS distribution.
const (
	DefaultScale = "01M"
	DefaultYear  = 2013
)

// ShapefileOptions select one GISCO NUTS shapefile set.
type ShapefileOptions struct {
	Scale string // "01M", "03M", "10M", "20M" or "60M"
	Year  int
	Proj  int
}

func (o ShapefileOptions) withDefaults() ShapefileOptions {
	if o.Scale == "" {
		o.Scale = DefaultScale
	}
	if o.Year == 0 {
		o.Year = DefaultYear
	}
	if o.Proj == 0 {
		o.Proj = geo.SRID
	}
	return o
}

// Validate rejects projections other than WGS84. Lookups test lon/lat
// points against the raw ring coordinates, so projected vintages (3035,
// 3857) would never contain anything.
func (o ShapefileOptions) Validate() error {
	o = o.withDefaults()
	if o.Proj != geo.SRID {
		return geoerr.InvalidArgument("nuts: projection %d not supported, only %d", o.Proj, geo.SRID)
	}
	return nil
}

// LevelFile is the file name of the per-level shapefile.
func (o ShapefileOptions) LevelFile(level int) string {
	o = o.withDefaults()
	return fmt.Sprintf("NUTS_RG_%s_%d_%d_LEVL_%d.shp", o.Scale, o.Year, o.Proj, level)
}

// CombinedFile is the file name of the all-levels shapefile.
func (o ShapefileOptions) CombinedFile() string {
	o = o.withDefaults()
	return fmt.Sprintf("NUTS_RG_%s_%d_%d.shp", o.Scale, o.Year, o.Proj)
}

// ShapefileSource loads features from GISCO NUTS shapefiles in a directory.
// Each level is read once, on first use, and then served from memory.
type ShapefileSource struct {
	dir  string
	opts ShapefileOptions

	mu     sync.Mutex
	levels map[int][]Feature
}

// NewShapefileSource creates a source over dir.
func NewShapefileSource(dir string, opts ShapefileOptions) *ShapefileSource {
	return &ShapefileSource{
		dir:    dir,
		opts:   opts.withDefaults(),
		levels: make(map[int][]Feature),
	}
}

// SRID reports the projection of the configured shapefiles.
func (s *ShapefileSource) SRID() int { return s.opts.Proj }

// Features implements Source.
func (s *ShapefileSource) Features(_ context.Context, level int) ([]Feature, error) {
	if err := ValidateLevel(level); err != nil {
		return nil, err
	}
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.levels[level]; ok {
		return f, nil
	}

	path, filter, err := s.locate(level)
	if err != nil {
		return nil, err
	}
	features, err := ReadShapefile(path, filter)
	if err != nil {
		return nil, err
	}

	for i := range features {
		features[i].Region.Year = s.opts.Year
	}
	zap.L().Info("nuts: loaded shapefile",
		zap.String("path", path),
		zap.Int("level", level),
		zap.Int("features", len(features)),
	)
	s.levels[level] = features
	return features, nil
}

// locate returns the shapefile holding level and the level filter to apply
// while reading it (-1 when the file only holds that level).
func (s *ShapefileSource) locate(level int) (string, int, error) {
	perLevel := filepath.Join(s.dir, s.opts.LevelFile(level))
	if _, err := os.Stat(perLevel); err == nil {
		return perLevel, -1, nil
	}
	combined := filepath.Join(s.dir, s.opts.CombinedFile())
	if _, err := os.Stat(combined); err == nil {
		return combined, level, nil
	}
	return "", 0, geoerr.Unavailable("nuts: no shapefile for level %d in %s (expected %s)",
		level, s.dir, s.opts.LevelFile(level))
}

// ReadShapefile reads every polygon record of a NUTS shapefile, in file
// order. When level is non-negative, records of other levels are skipped.
func ReadShapefile(path string, level int) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "nuts: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	idIdx := fieldIndex(reader, "NUTS_ID")
	if idIdx < 0 {
		return nil, eris.Errorf("nuts: shapefile %s has no NUTS_ID field", path)
	}
	levelIdx := firstField(reader, "LEVL_CODE", "STAT_LEVL_")
	countryIdx := fieldIndex(reader, "CNTR_CODE")
	nameIdx := firstField(reader, "NUTS_NAME", "NAME_LATN")

	var features []Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		id := attribute(reader, idIdx)
		if id == "" {
			skipped++
			continue
		}

		lvl := len(id) - 2
		if v, err := strconv.Atoi(attribute(reader, levelIdx)); err == nil {
			lvl = v
		}
		if level >= 0 && lvl != level {
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		country := attribute(reader, countryIdx)
		if country == "" {
			country = id[:2]
		}
		features = append(features, Feature{
			Region: Region{
				ID:      id,
				Name:    attribute(reader, nameIdx),
				Level:   lvl,
				Country: country,
			},
			Geometry: mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("nuts: skipped shapefile records", zap.String("path", path), zap.Int("skipped", skipped))
	}
	return features, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

func firstField(reader *shp.Reader, names ...string) int {
	for _, n := range names {
		if idx := fieldIndex(reader, n); idx >= 0 {
			return idx
		}
	}
	return -1
}

func attribute(reader *shp.Reader, idx int) string {
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// polygonToMultiPolygon converts a shapefile polygon to a go-geom
// MultiPolygon. Clockwise rings start a new polygon; counter-clockwise rings
// are holes of the polygon before them.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(geo.SRID)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("nuts: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		hole := xy.IsRingCounterClockwise(geom.XY, flat)
		if !hole || current == nil {
			flush()
			current = geom.NewPolygon(geom.XY).SetSRID(geo.SRID)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("nuts: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
