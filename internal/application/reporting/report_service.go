// Package reporting provides the application-level service that owns the raw
// feed snapshots and serves memoized revenue/expense reports computed by the
// domain engine.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/taskilo/backend/internal/domain/reporting"
	"github.com/taskilo/backend/internal/domain/shared"
	"github.com/taskilo/backend/internal/infrastructure/logger"
	"github.com/taskilo/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReportCache memoizes computed reports. A nil result with a nil error is a
// cache miss. Implementations live in infrastructure/cache.
type ReportCache interface {
	Get(ctx context.Context, key string) (*reporting.Result, error)
	Set(ctx context.Context, key string, result *reporting.Result, ttl time.Duration) error
	Close() error
}

// defaultCacheTTL bounds how long a memoized report stays valid. Revision
// bumps already invalidate by key, so the TTL only caps growth of stale keys.
const defaultCacheTTL = 5 * time.Minute

// ReportService owns the four feed snapshots and answers report queries.
// Snapshots are replaced wholesale and never mutated in place, so readers may
// share the underlying slices with writers that have already published them.
type ReportService struct {
	mu       sync.RWMutex
	orders   []reporting.OrderRecord
	expenses []reporting.ExpenseRecord
	quotes   []reporting.QuoteRecord
	invoices []reporting.InvoiceRecord
	revision uint64

	engine   *reporting.Engine
	cache    ReportCache
	cacheTTL time.Duration
	logger   *zap.Logger
	metrics  *telemetry.ReportMetrics
}

// ReportServiceOption is a functional option for configuring the service.
type ReportServiceOption func(*ReportService)

// WithEngine injects a preconfigured aggregation engine.
func WithEngine(engine *reporting.Engine) ReportServiceOption {
	return func(s *ReportService) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithCache enables report memoization.
func WithCache(cache ReportCache) ReportServiceOption {
	return func(s *ReportService) {
		s.cache = cache
	}
}

// WithCacheTTL overrides the memoization TTL.
func WithCacheTTL(ttl time.Duration) ReportServiceOption {
	return func(s *ReportService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *zap.Logger) ReportServiceOption {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for the service.
func WithMetrics(metrics *telemetry.ReportMetrics) ReportServiceOption {
	return func(s *ReportService) {
		s.metrics = metrics
	}
}

// NewReportService creates a new ReportService with empty snapshots.
func NewReportService(opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		engine:   reporting.NewEngine(),
		cacheTTL: defaultCacheTTL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceFeed replaces one feed snapshot with the decoded payload and bumps
// the revision, invalidating every memoized report. It returns the number of
// records accepted.
func (s *ReportService) ReplaceFeed(ctx context.Context, feed Feed, payload []byte) (int, error) {
	count, err := s.decodeAndStore(feed, payload)
	if err != nil {
		return 0, err
	}

	s.log(ctx).Info("Replaced feed snapshot",
		zap.String("feed", string(feed)),
		zap.Int("records", count),
		zap.Uint64("revision", s.Revision()))
	s.metrics.RecordFeedReplace(ctx, string(feed), count)
	return count, nil
}

func (s *ReportService) decodeAndStore(feed Feed, payload []byte) (int, error) {
	if len(payload) == 0 {
		payload = []byte("[]")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	switch feed {
	case FeedOrders:
		var records []reporting.OrderRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			return 0, decodeError(feed, err)
		}
		s.orders = records
		count = len(records)
	case FeedExpenses:
		var records []reporting.ExpenseRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			return 0, decodeError(feed, err)
		}
		s.expenses = records
		count = len(records)
	case FeedQuotes:
		var records []reporting.QuoteRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			return 0, decodeError(feed, err)
		}
		s.quotes = records
		count = len(records)
	case FeedInvoices:
		var records []reporting.InvoiceRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			return 0, decodeError(feed, err)
		}
		s.invoices = records
		count = len(records)
	default:
		return 0, shared.ErrUnknownFeed
	}

	s.revision++
	return count, nil
}

// log prefers the request-scoped logger propagated through the context; the
// service's own logger backs calls made outside an HTTP request.
func (s *ReportService) log(ctx context.Context) *zap.Logger {
	if logger.GetRequestID(ctx) != "" {
		return logger.FromContext(ctx)
	}
	return s.logger
}

func decodeError(feed Feed, err error) error {
	return shared.NewDomainError("INVALID_PAYLOAD",
		fmt.Sprintf("cannot decode %s feed: %v", feed, err))
}

// RevenueExpenses computes the revenue/expenses report for the given
// settings, serving a memoized result when the snapshots have not changed
// since it was computed.
func (s *ReportService) RevenueExpenses(ctx context.Context, settings reporting.Settings) (*reporting.Result, error) {
	settings = settings.Normalized()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	revision := s.revision
	input := reporting.Input{
		Orders:   s.orders,
		Expenses: s.expenses,
		Quotes:   s.quotes,
		Invoices: s.invoices,
	}
	s.mu.RUnlock()

	key := cacheKey(revision, settings)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log(ctx).Warn("Report cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		if cached != nil {
			s.metrics.RecordCacheHit(ctx)
			return cached, nil
		}
		s.metrics.RecordCacheMiss(ctx)
	}

	start := time.Now()
	result, err := s.engine.Aggregate(input, settings)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAggregation(ctx, settings.Window, time.Since(start), result.Dropped)

	if dropped := result.Dropped.Total(); dropped > 0 {
		s.log(ctx).Warn("Aggregation skipped malformed records",
			zap.Int("bad_date", result.Dropped.BadDate),
			zap.Int("missing_amount", result.Dropped.MissingAmount),
			zap.Int("zero_amount", result.Dropped.ZeroAmount))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.log(ctx).Warn("Report cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

// Revision returns the current snapshot revision. It starts at zero and is
// bumped once per accepted feed replacement.
func (s *ReportService) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// FeedSizes returns the current record count per feed.
func (s *ReportService) FeedSizes() map[Feed]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[Feed]int{
		FeedOrders:   len(s.orders),
		FeedExpenses: len(s.expenses),
		FeedQuotes:   len(s.quotes),
		FeedInvoices: len(s.invoices),
	}
}

// cacheKey derives the memoization key from the snapshot revision and the
// normalized settings. Identical settings against identical snapshots always
// map to the same key.
func cacheKey(revision uint64, settings reporting.Settings) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s|%s|", revision, settings.Window, settings.InvoiceStatus)
	for _, c := range reporting.AllCategories() {
		if settings.Toggles.Enabled(c) {
			h.Write([]byte{'1'})
		} else {
			h.Write([]byte{'0'})
		}
	}
	return fmt.Sprintf("report:revenue_expenses:%016x", h.Sum64())
}
