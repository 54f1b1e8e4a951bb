package nuts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/db"
	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// DefaultTable holds imported NUTS regions.
const DefaultTable = "nuts.regions"

const importBatchSize = 500

// importColumns are the columns written by Import, in COPY order.
var importColumns = []string{"nuts_id", "name", "cntr_code", "levl_code", "year", "geom"}

// PostGISResolver answers containment queries with ST_Contains against a
// table populated by Import.
type PostGISResolver struct {
	pool  db.Pool
	table string
}

// NewPostGISResolver creates a resolver over table ("" for DefaultTable).
func NewPostGISResolver(pool db.Pool, table string) *PostGISResolver {
	if table == "" {
		table = DefaultTable
	}
	return &PostGISResolver{pool: pool, table: table}
}

// Resolve implements Resolver.
func (r *PostGISResolver) Resolve(ctx context.Context, coord geo.Coordinate, level int) (Region, error) {
	if err := validate(coord, level); err != nil {
		return Region{}, err
	}

	query := fmt.Sprintf(
		`SELECT nuts_id, name, cntr_code, levl_code, year FROM %s
		WHERE levl_code = $1 AND ST_Contains(geom, ST_SetSRID(ST_MakePoint($2, $3), %d))
		ORDER BY nuts_id LIMIT 1`,
		db.Table(r.table).Sanitize(), geo.SRID,
	)

	var reg Region
	err := r.pool.QueryRow(ctx, query, level, coord.Lon, coord.Lat).
		Scan(&reg.ID, &reg.Name, &reg.Country, &reg.Level, &reg.Year)
	if errors.Is(err, pgx.ErrNoRows) {
		return Region{}, geoerr.NotFound("nuts: no level %d region contains %s", level, coord)
	}
	if err != nil {
		return Region{}, eris.Wrapf(err, "nuts: query %s", r.table)
	}
	return reg, nil
}

// EnsureSchema creates the regions table and its spatial index.
func EnsureSchema(ctx context.Context, pool db.Pool, table string) error {
	if table == "" {
		table = DefaultTable
	}
	ident := db.Table(table)
	quoted := ident.Sanitize()

	var stmts []string
	if len(ident) > 1 {
		stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{ident[0]}.Sanitize()))
	}
	last := ident[len(ident)-1]
	stmts = append(stmts,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			nuts_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			cntr_code TEXT NOT NULL,
			levl_code INTEGER NOT NULL,
			year INTEGER NOT NULL,
			geom geometry(MultiPolygon, %d) NOT NULL,
			PRIMARY KEY (nuts_id, year)
		)`, quoted, geo.SRID),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING GIST (geom)",
			pgx.Identifier{"idx_" + last + "_geom"}.Sanitize(), quoted),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (levl_code)",
			pgx.Identifier{"idx_" + last + "_levl"}.Sanitize(), quoted),
	)

	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return eris.Wrapf(err, "nuts: create schema for %s", table)
		}
	}
	return nil
}

// ImportOptions controls Import.
type ImportOptions struct {
	Table  string // "" for DefaultTable
	Year   int    // 0 for DefaultYear
	Levels []int  // nil for every level
	// Merge upserts on (nuts_id, year) instead of replacing each level, so
	// regions missing from the source are kept.
	Merge bool
}

func (o ImportOptions) withDefaults() ImportOptions {
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if o.Year == 0 {
		o.Year = DefaultYear
	}
	if len(o.Levels) == 0 {
		o.Levels = Levels
	}
	return o
}

// Import writes the features read from source into the PostGIS table. By
// default each level is cleared for the year and reloaded with COPY; with
// Merge the rows are upserted. It returns the number of rows written.
func Import(ctx context.Context, pool db.Pool, source Source, opts ImportOptions) (int64, error) {
	opts = opts.withDefaults()
	table := opts.Table
	if p, ok := source.(interface{ SRID() int }); ok && p.SRID() != geo.SRID {
		return 0, geoerr.InvalidArgument("nuts: import of projection %d into %s, only %d is supported", p.SRID(), table, geo.SRID)
	}
	log := zap.L().With(zap.String("component", "nuts.import"), zap.String("table", table))

	if err := EnsureSchema(ctx, pool, table); err != nil {
		return 0, err
	}

	var total int64
	for _, level := range opts.Levels {
		features, err := source.Features(ctx, level)
		if err != nil {
			return total, err
		}
		rows, err := featureRows(features, opts.Year)
		if err != nil {
			return total, err
		}

		if !opts.Merge {
			del := fmt.Sprintf("DELETE FROM %s WHERE year = $1 AND levl_code = $2", db.Table(table).Sanitize())
			if _, err := pool.Exec(ctx, del, opts.Year, level); err != nil {
				return total, eris.Wrapf(err, "nuts: clear level %d", level)
			}
		}

		for i := 0; i < len(rows); i += importBatchSize {
			end := min(i+importBatchSize, len(rows))
			var n int64
			if opts.Merge {
				n, err = db.BulkUpsert(ctx, pool, db.UpsertConfig{
					Table:        table,
					Columns:      importColumns,
					ConflictKeys: []string{"nuts_id", "year"},
				}, rows[i:end])
			} else {
				n, err = db.CopyFrom(ctx, pool, table, importColumns, rows[i:end])
			}
			if err != nil {
				return total, eris.Wrapf(err, "nuts: import level %d (rows %d-%d)", level, i, end)
			}
			total += n
		}
		log.Info("level imported", zap.Int("level", level), zap.Int("regions", len(rows)), zap.Bool("merge", opts.Merge))
	}
	return total, nil
}

func featureRows(features []Feature, year int) ([][]any, error) {
	rows := make([][]any, 0, len(features))
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		data, err := ewkb.Marshal(f.Geometry, ewkb.NDR)
		if err != nil {
			return nil, eris.Wrapf(err, "nuts: encode %s", f.Region.ID)
		}
		rows = append(rows, []any{
			f.Region.ID,
			f.Region.Name,
			strings.ToUpper(f.Region.Country),
			f.Region.Level,
			year,
			data,
		})
	}
	return rows, nil
}
