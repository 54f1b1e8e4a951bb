package batch

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// ReadPlaces reads place names from a .csv, .xlsx or plain text file (one
// place per line). For tabular files, column names the header cell holding
// places; when empty the first column is used and the first row is treated
// as data unless it matches a known header ("place", "name", "query").
func ReadPlaces(path, column string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "batch: open input")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSVPlaces(f, column)
	case ".xlsx":
		return readXLSXPlaces(path, column)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "batch: open input")
		}
		defer f.Close() //nolint:errcheck
		return readLines(f)
	}
}

// ReadCSVPlaces reads places from CSV data.
func ReadCSVPlaces(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read csv")
	}
	return pickColumn(records, column)
}

func readXLSXPlaces(path, column string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, geoerr.InvalidArgument("batch: %s has no sheets", path)
	}

	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		records = append(records, cells)
	}
	return pickColumn(records, column)
}

func readLines(r io.Reader) ([]string, error) {
	var places []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		places = append(places, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: read lines")
	}
	return places, nil
}

var knownHeaders = map[string]bool{"place": true, "name": true, "query": true, "toponym": true}

func pickColumn(records [][]string, column string) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	idx := 0
	start := 0
	if column != "" {
		idx = -1
		for i, h := range records[0] {
			if strings.EqualFold(strings.TrimSpace(h), column) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, geoerr.InvalidArgument("batch: column %q not found in header", column)
		}
		start = 1
	} else if len(records[0]) > 0 && knownHeaders[strings.ToLower(strings.TrimSpace(records[0][0]))] {
		start = 1
	}

	var places []string
	for _, rec := range records[start:] {
		if idx >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[idx]); v != "" {
			places = append(places, v)
		}
	}
	return places, nil
}
