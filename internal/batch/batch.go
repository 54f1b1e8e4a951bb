// Package batch resolves lists of place names to coordinates and NUTS
// regions and exports the results as CSV, XLSX or SQLite.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/gisco-cli/internal/feature"
	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/nuts"
)

// Row is the outcome for one input place. Err is empty on success; a row
// can carry a coordinate and a partial set of regions alongside an error.
type Row struct {
	Index      int                 `json:"index" yaml:"index"`
	Place      string              `json:"place" yaml:"place"`
	Label      string              `json:"label,omitempty" yaml:"label,omitempty"`
	Coordinate *geo.Coordinate     `json:"coordinate,omitempty" yaml:"coordinate,omitempty"`
	Regions    map[int]nuts.Region `json:"regions,omitempty" yaml:"regions,omitempty"`
	Err        string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run is one batch execution.
type Run struct {
	ID       string    `json:"id" yaml:"id"`
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`
	Levels   []int     `json:"levels" yaml:"levels"`
	Rows     []Row     `json:"rows" yaml:"rows"`
}

// Failed counts rows with an error.
func (r *Run) Failed() int {
	var n int
	for _, row := range r.Rows {
		if row.Err != "" {
			n++
		}
	}
	return n
}

// Options configure a Runner.
type Options struct {
	Concurrency int   // places resolved in parallel, minimum 1
	Levels      []int // NUTS levels to resolve, default all
}

// Runner geocodes places and resolves their NUTS regions.
type Runner struct {
	geocoder feature.Geocoder
	resolver nuts.Resolver
	opts     Options
}

// NewRunner creates a Runner. resolver may be nil to skip NUTS resolution.
func NewRunner(g feature.Geocoder, r nuts.Resolver, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Levels == nil {
		opts.Levels = nuts.Levels
	}
	return &Runner{geocoder: g, resolver: r, opts: opts}
}

// Process resolves every place. Per-place failures are recorded on the row;
// the returned error is only set for invalid options or a cancelled context.
func (r *Runner) Process(ctx context.Context, places []string) (*Run, error) {
	for _, lvl := range r.opts.Levels {
		if err := nuts.ValidateLevel(lvl); err != nil {
			return nil, err
		}
	}

	run := &Run{
		ID:      uuid.New().String(),
		Started: time.Now().UTC(),
		Levels:  r.opts.Levels,
		Rows:    make([]Row, len(places)),
	}
	for i, place := range places {
		run.Rows[i] = Row{Index: i, Place: place}
	}
	log := zap.L().With(zap.String("component", "batch"), zap.String("run_id", run.ID))
	log.Info("batch started", zap.Int("places", len(places)), zap.Int("concurrency", r.opts.Concurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, place := range places {
		i, place := i, place
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				run.Rows[i].Err = eris.Wrap(err, "batch: not processed").Error()
				return err
			}
			run.Rows[i] = r.processOne(gctx, i, place)
			return nil
		})
	}
	err := g.Wait()
	run.Finished = time.Now().UTC()
	if err != nil {
		return run, err
	}

	log.Info("batch finished",
		zap.Int("rows", len(run.Rows)),
		zap.Int("failed", run.Failed()),
		zap.Duration("elapsed", run.Finished.Sub(run.Started)),
	)
	return run, nil
}

func (r *Runner) processOne(ctx context.Context, i int, place string) Row {
	row := Row{Index: i, Place: place}

	loc, err := feature.NewLocationFromPlace(place, r.geocoder, r.resolver)
	if err != nil {
		row.Err = err.Error()
		return row
	}
	area, err := loc.Area(ctx)
	if err != nil {
		row.Err = err.Error()
		return row
	}
	coord := area.Coordinate()
	row.Label = area.Name()
	row.Coordinate = &coord

	if r.resolver == nil {
		return row
	}
	regions, err := loc.NUTSRegions(ctx, r.opts.Levels)
	if len(regions) > 0 {
		row.Regions = make(map[int]nuts.Region, len(regions))
		for _, reg := range regions {
			row.Regions[reg.Level] = reg
		}
	}
	if err != nil {
		row.Err = err.Error()
		zap.L().Debug("batch: NUTS resolution failed", zap.String("place", place), zap.Error(err))
	}
	return row
}
