package geocode

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Observer is notified after every upstream call.
type Observer func(provider, op string, elapsed time.Duration, err error)

// Service is the geocoding adapter: it forwards each request to a single
// provider, exactly once, and applies the requested Resolution. It never
// retries and never caches.
type Service struct {
	provider Provider
	observer Observer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithObserver registers a callback invoked after each upstream call.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) {
		s.observer = o
	}
}

// NewService wraps provider.
func NewService(provider Provider, opts ...ServiceOption) *Service {
	s := &Service{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the wrapped provider.
func (s *Service) Provider() Provider { return s.provider }

// Forward geocodes place and applies res to the candidates.
func (s *Service) Forward(ctx context.Context, place string, res Resolution) ([]Candidate, error) {
	f, ok := s.provider.(Forwarder)
	if !ok {
		return nil, geoerr.InvalidArgument("geocode: provider %s does not support forward geocoding", s.provider.Name())
	}
	q, err := geo.NormalizePlace(place)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cands, err := f.Forward(ctx, q)
	s.observe("forward", start, err)
	if err != nil {
		return nil, err
	}
	return resolve(cands, res, s.provider.Name(), q)
}

// Reverse geocodes coord and applies res to the candidates.
func (s *Service) Reverse(ctx context.Context, coord geo.Coordinate, res Resolution) ([]Candidate, error) {
	r, ok := s.provider.(Reverser)
	if !ok {
		return nil, geoerr.InvalidArgument("geocode: provider %s does not support reverse geocoding", s.provider.Name())
	}
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	cands, err := r.Reverse(ctx, coord)
	s.observe("reverse", start, err)
	if err != nil {
		return nil, err
	}
	return resolve(cands, res, s.provider.Name(), coord.String())
}

// Coordinate returns the coordinate of the first match for place.
func (s *Service) Coordinate(ctx context.Context, place string) (geo.Coordinate, error) {
	cands, err := s.Forward(ctx, place, FirstMatch)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return cands[0].Coordinate, nil
}

// Place returns the label of the first place found at coord.
func (s *Service) Place(ctx context.Context, coord geo.Coordinate) (string, error) {
	cands, err := s.Reverse(ctx, coord, FirstMatch)
	if err != nil {
		return "", err
	}
	return cands[0].Label, nil
}

// BatchResult is the outcome of one place in BatchForward.
type BatchResult struct {
	Place     string
	Candidate Candidate
	Err       error
}

// BatchForward geocodes places with at most concurrency calls in flight
// (values below 1 mean sequential). Per-place failures are reported in the
// result, not returned; the error is only set when ctx is done.
func (s *Service) BatchForward(ctx context.Context, places []string, concurrency int) ([]BatchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]BatchResult, len(places))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, place := range places {
		i, place := i, place
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].Place = place
			cands, err := s.Forward(gctx, place, FirstMatch)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Candidate = cands[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Service) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	zap.L().Debug("geocode call",
		zap.String("provider", s.provider.Name()),
		zap.String("op", op),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)
	if s.observer != nil {
		s.observer(s.provider.Name(), op, elapsed, err)
	}
}

func resolve(cands []Candidate, res Resolution, provider, query string) ([]Candidate, error) {
	if len(cands) == 0 {
		return nil, geoerr.NotFound("geocode: %s found no match for %q", provider, query)
	}
	switch res {
	case AllMatches:
		return cands, nil
	case UniqueMatch:
		if len(cands) > 1 {
			return nil, geoerr.Ambiguous("geocode: %s found %d matches for %q", provider, len(cands), query)
		}
		return cands, nil
	default:
		return cands[:1], nil
	}
}
