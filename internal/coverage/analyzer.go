package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
	"github.com/couchcryptid/hospital-coverage/internal/observability"
)

// ResultSink receives every applied analysis, e.g. a Kafka publisher.
type ResultSink interface {
	Publish(ctx context.Context, ev domain.AnalysisEvent) error
}

// Analyzer queries nearby hospitals for a point and derives its coverage.
type Analyzer struct {
	finder   domain.FacilityFinder
	geocoder domain.Geocoder
	sink     ResultSink
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option configures optional Analyzer collaborators.
type Option func(*Analyzer)

// WithGeocoder enables AnalyzeAddress.
func WithGeocoder(g domain.Geocoder) Option {
	return func(a *Analyzer) { a.geocoder = g }
}

// WithSink publishes each successful analysis. Publish failures are logged
// and never fail the analysis.
func WithSink(s ResultSink) Option {
	return func(a *Analyzer) { a.sink = s }
}

// NewAnalyzer creates an Analyzer backed by the given facility finder.
func NewAnalyzer(finder domain.FacilityFinder, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Analyzer {
	a := &Analyzer{
		finder:  finder,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze queries hospitals within the search radius of p and summarizes
// them. On success the result is applied to session (if non-nil); on
// failure the session keeps its previous state and the returned error
// wraps domain.ErrQueryFailure.
func (a *Analyzer) Analyze(ctx context.Context, session *Session, p domain.Point) (domain.CoverageResult, error) {
	return a.analyze(ctx, session, begin(session), p, "")
}

// AnalyzeAddress geocodes address, moves the session viewport to the first
// candidate and analyzes it. It returns domain.ErrNoResults when the address
// has no candidates; the session is then left unchanged. The search is
// ordered against other analyses by when it was called, not by when
// geocoding returned.
func (a *Analyzer) AnalyzeAddress(ctx context.Context, session *Session, address string) (domain.CoverageResult, error) {
	if a.geocoder == nil {
		return domain.CoverageResult{}, errors.New("address search is not configured")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.CoverageResult{}, domain.ErrEmptyAddress
	}
	ticket := begin(session)

	candidates, err := a.geocoder.Geocode(ctx, address)
	if err != nil {
		a.metrics.Analyses.WithLabelValues("query_failure").Inc()
		a.logger.Warn("geocoding failed", "address", address, "error", err)
		return domain.CoverageResult{}, fmt.Errorf("%w: geocode %q: %w", domain.ErrQueryFailure, address, err)
	}
	if len(candidates) == 0 {
		a.metrics.Analyses.WithLabelValues("no_results").Inc()
		a.logger.Info("address not found", "address", address)
		return domain.CoverageResult{}, domain.ErrNoResults
	}

	target := candidates[0].Point
	if session != nil {
		session.FlyTo(ticket, target, DefaultZoom)
	}
	return a.analyze(ctx, session, ticket, target, address)
}

func begin(session *Session) Ticket {
	if session == nil {
		return 0
	}
	return session.Begin()
}

func (a *Analyzer) analyze(ctx context.Context, session *Session, ticket Ticket, p domain.Point, address string) (domain.CoverageResult, error) {
	if err := p.Validate(); err != nil {
		a.metrics.Analyses.WithLabelValues("invalid_point").Inc()
		return domain.CoverageResult{}, err
	}

	start := time.Now()
	facilities, err := a.finder.FindFacilities(ctx, domain.HospitalQuery(p))
	if err != nil {
		a.metrics.Analyses.WithLabelValues("query_failure").Inc()
		a.logger.Warn("facility query failed", "point", p.String(), "error", err)
		return domain.CoverageResult{}, fmt.Errorf("%w: %w", domain.ErrQueryFailure, err)
	}

	result := domain.Summarize(p, facilities)
	ev := domain.NewAnalysisEvent(result)
	ev.Address = address

	a.metrics.Analyses.WithLabelValues("success").Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	a.metrics.FacilitiesFound.Observe(float64(result.Total))
	a.metrics.CoverageLevels.WithLabelValues(string(result.Level)).Inc()

	a.logger.Info("coverage analyzed",
		"analysis_id", ev.ID,
		"point", p.String(),
		"coverage", string(result.Level),
		"score", result.Score,
		"near", result.Counts.Near,
		"medium", result.Counts.Medium,
		"far", result.Counts.Far,
	)

	if session != nil && !session.Apply(ticket, ev) {
		a.metrics.StaleResults.Inc()
		a.logger.Debug("discarding stale analysis", "analysis_id", ev.ID, "ticket", uint64(ticket))
		return result, nil
	}

	if a.sink != nil {
		if err := a.sink.Publish(ctx, ev); err != nil {
			a.logger.Warn("publish analysis failed", "analysis_id", ev.ID, "error", err)
		}
	}
	return result, nil
}
