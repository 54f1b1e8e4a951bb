package batch

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	_ "modernc.org/sqlite"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Format is an export file format.
type Format string

// Export formats.
const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// FormatFromPath infers the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", geoerr.InvalidArgument("batch: cannot infer export format from %q", path)
}

// Export writes run to path in the format implied by its extension.
func Export(ctx context.Context, run *Run, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatXLSX:
		return ExportXLSX(run, path)
	case FormatSQLite:
		return ExportSQLite(ctx, run, path)
	default:
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "batch export: create file")
		}
		defer f.Close() //nolint:errcheck
		return WriteCSV(f, run)
	}
}

// header is the flat column layout shared by the CSV and XLSX writers.
func header(run *Run) []string {
	cols := []string{"run_id", "index", "place", "label", "lat", "lon"}
	for _, lvl := range run.Levels {
		cols = append(cols, fmt.Sprintf("nuts%d_id", lvl), fmt.Sprintf("nuts%d_name", lvl))
	}
	return append(cols, "error")
}

func record(run *Run, row Row) []string {
	rec := []string{run.ID, strconv.Itoa(row.Index), row.Place, row.Label, "", ""}
	if row.Coordinate != nil {
		rec[4] = strconv.FormatFloat(row.Coordinate.Lat, 'f', -1, 64)
		rec[5] = strconv.FormatFloat(row.Coordinate.Lon, 'f', -1, 64)
	}
	for _, lvl := range run.Levels {
		reg := row.Regions[lvl]
		rec = append(rec, reg.ID, reg.Name)
	}
	return append(rec, row.Err)
}

// WriteCSV writes run as CSV with a header row.
func WriteCSV(w io.Writer, run *Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(run)); err != nil {
		return eris.Wrap(err, "batch export: write header")
	}
	for _, row := range run.Rows {
		if err := cw.Write(record(run, row)); err != nil {
			return eris.Wrap(err, "batch export: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "batch export: flush csv")
}

// ExportXLSX writes run to a single-sheet workbook.
func ExportXLSX(run *Run, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("results")
	if err != nil {
		return eris.Wrap(err, "batch export: add sheet")
	}

	hrow := sheet.AddRow()
	for _, h := range header(run) {
		hrow.AddCell().SetString(h)
	}

	for _, row := range run.Rows {
		r := sheet.AddRow()
		for i, v := range record(run, row) {
			cell := r.AddCell()
			if (i == 4 || i == 5) && row.Coordinate != nil {
				n, _ := strconv.ParseFloat(v, 64)
				cell.SetFloat(n)
				continue
			}
			if i == 1 {
				cell.SetInt(row.Index)
				continue
			}
			cell.SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "batch export: save xlsx")
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id       TEXT PRIMARY KEY,
	started  DATETIME NOT NULL,
	finished DATETIME NOT NULL,
	levels   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL REFERENCES runs(id),
	idx    INTEGER NOT NULL,
	place  TEXT NOT NULL,
	label  TEXT,
	lat    REAL,
	lon    REAL,
	error  TEXT,
	PRIMARY KEY (run_id, idx)
);

CREATE TABLE IF NOT EXISTS result_regions (
	run_id    TEXT NOT NULL,
	idx       INTEGER NOT NULL,
	level     INTEGER NOT NULL,
	nuts_id   TEXT NOT NULL,
	name      TEXT,
	cntr_code TEXT,
	PRIMARY KEY (run_id, idx, level)
);

CREATE INDEX IF NOT EXISTS idx_result_regions_nuts_id ON result_regions(nuts_id);
`

// ExportSQLite appends run to the SQLite database at dsn, creating the
// tables on first use.
func ExportSQLite(ctx context.Context, run *Run, dsn string) error {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	levels := make([]string, len(run.Levels))
	for i, l := range run.Levels {
		levels[i] = strconv.Itoa(l)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, finished, levels) VALUES (?, ?, ?, ?)`,
		run.ID, run.Started, run.Finished, strings.Join(levels, ","),
	); err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	for _, row := range run.Rows {
		var lat, lon sql.NullFloat64
		if row.Coordinate != nil {
			lat = sql.NullFloat64{Float64: row.Coordinate.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: row.Coordinate.Lon, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, idx, place, label, lat, lon, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, row.Index, row.Place, row.Label, lat, lon, row.Err,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert result %d", row.Index)
		}
		for lvl, reg := range row.Regions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO result_regions (run_id, idx, level, nuts_id, name, cntr_code) VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, row.Index, lvl, reg.ID, reg.Name, reg.Country,
			); err != nil {
				return eris.Wrapf(err, "sqlite: insert region %s", reg.ID)
			}
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
