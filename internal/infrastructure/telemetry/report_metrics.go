package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/taskilo/backend/internal/domain/reporting"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are constructed without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// ReportMetrics tracks the aggregation pipeline: how often reports are
// computed, how long the computation takes, how many malformed records are
// skipped, and how the memoization cache behaves.
type ReportMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	aggregationsTotal   *Counter
	aggregationDuration *Histogram
	recordsDroppedTotal *Counter
	feedRecordsTotal    *Counter
	cacheHitsTotal      *Counter
	cacheMissesTotal    *Counter
}

// ReportMetricsConfig holds configuration for report metrics.
type ReportMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewReportMetrics creates a new ReportMetrics instance.
func NewReportMetrics(cfg ReportMetricsConfig) (*ReportMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rm := &ReportMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	rm.aggregationsTotal, err = NewCounter(
		cfg.Meter,
		"report_aggregations_total",
		"Total number of report aggregation runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	rm.aggregationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "report_aggregation_duration_seconds",
		Description: "Duration of report aggregation runs",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	rm.recordsDroppedTotal, err = NewCounter(
		cfg.Meter,
		"report_records_dropped_total",
		"Total number of records skipped during aggregation",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	rm.feedRecordsTotal, err = NewCounter(
		cfg.Meter,
		"report_feed_records_total",
		"Total number of records accepted into feed snapshots",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	rm.cacheHitsTotal, err = NewCounter(
		cfg.Meter,
		"report_cache_hits_total",
		"Total number of report cache hits",
		"{hits}",
	)
	if err != nil {
		return nil, err
	}

	rm.cacheMissesTotal, err = NewCounter(
		cfg.Meter,
		"report_cache_misses_total",
		"Total number of report cache misses",
		"{misses}",
	)
	if err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordAggregation records one aggregation run, including its drop counters
// broken out by reason.
func (rm *ReportMetrics) RecordAggregation(ctx context.Context, window reporting.Window, d time.Duration, dropped reporting.Dropped) {
	if rm == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrWindow.String(string(window))}
	rm.aggregationsTotal.Inc(ctx, attrs...)
	rm.aggregationDuration.RecordDuration(ctx, d, attrs...)

	if dropped.BadDate > 0 {
		rm.recordsDroppedTotal.Add(ctx, int64(dropped.BadDate), AttrDropReason.String("bad_date"))
	}
	if dropped.MissingAmount > 0 {
		rm.recordsDroppedTotal.Add(ctx, int64(dropped.MissingAmount), AttrDropReason.String("missing_amount"))
	}
	if dropped.ZeroAmount > 0 {
		rm.recordsDroppedTotal.Add(ctx, int64(dropped.ZeroAmount), AttrDropReason.String("zero_amount"))
	}
}

// RecordFeedReplace records a snapshot replacement for one feed.
func (rm *ReportMetrics) RecordFeedReplace(ctx context.Context, feed string, count int) {
	if rm == nil {
		return
	}
	rm.feedRecordsTotal.Add(ctx, int64(count), AttrFeed.String(feed))
}

// RecordCacheHit records a report cache hit.
func (rm *ReportMetrics) RecordCacheHit(ctx context.Context) {
	if rm == nil {
		return
	}
	rm.cacheHitsTotal.Inc(ctx)
}

// RecordCacheMiss records a report cache miss.
func (rm *ReportMetrics) RecordCacheMiss(ctx context.Context) {
	if rm == nil {
		return
	}
	rm.cacheMissesTotal.Inc(ctx)
}
