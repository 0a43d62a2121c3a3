package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taskilo/backend/internal/domain/shared"
)

// Settings are the per-invocation parameters of an aggregation run. Zero
// values select the documented defaults: the 90-day window, all categories
// enabled, and no invoice status sub-filter.
type Settings struct {
	Window        Window
	Toggles       CategoryToggles
	InvoiceStatus InvoiceStatusFilter
}

// Normalized fills in defaults for zero-valued settings.
func (s Settings) Normalized() Settings {
	if s.Window == "" {
		s.Window = DefaultWindow
	}
	if s.Toggles == nil {
		s.Toggles = AllCategoriesEnabled()
	}
	if s.InvoiceStatus == "" {
		s.InvoiceStatus = InvoiceStatusAll
	}
	return s
}

// Validate rejects tokens outside the closed sets.
func (s Settings) Validate() error {
	if !s.Window.IsValid() {
		return shared.ErrInvalidWindow
	}
	if !s.InvoiceStatus.IsValid() {
		return shared.ErrInvalidStatusFilter
	}
	return nil
}

// Engine is the aggregation engine. It is stateless: Aggregate is a pure
// function of its inputs, and re-invocation with identical snapshots and
// settings yields identical output. Each invocation owns its own
// intermediate maps; nothing is shared or cached here — memoization is the
// caller's concern.
type Engine struct {
	now        func() time.Time
	classifier Classifier
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock injects the reference clock; the default is time.Now. Tests use
// this to pin "today" and the window cutoff.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithUnitThreshold overrides the minor-unit detection threshold.
func WithUnitThreshold(threshold int64) EngineOption {
	return func(e *Engine) {
		e.classifier.resolver = NewUnitResolver(threshold)
	}
}

// WithUnitHints declares explicit per-feed units, bypassing the heuristic
// for feeds whose unit is known.
func WithUnitHints(hints UnitHints) EngineOption {
	return func(e *Engine) {
		if hints.Orders.IsValid() {
			e.classifier.hints.Orders = hints.Orders
		}
		if hints.Quotes.IsValid() {
			e.classifier.hints.Quotes = hints.Quotes
		}
		if hints.Invoices.IsValid() {
			e.classifier.hints.Invoices = hints.Invoices
		}
	}
}

// WithDefaultVATRate overrides the fallback tax rate percentage.
func WithDefaultVATRate(rate decimal.Decimal) EngineOption {
	return func(e *Engine) {
		if rate.IsPositive() {
			e.classifier.defaultVAT = rate
		}
	}
}

// WithQuoteFallbackAmount overrides the placeholder amount for accepted
// quotes without an upstream value.
func WithQuoteFallbackAmount(amount decimal.Decimal) EngineOption {
	return func(e *Engine) {
		if !amount.IsNegative() {
			e.classifier.quoteFallback = amount
		}
	}
}

// NewEngine creates an aggregation engine with the documented defaults.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now: time.Now,
		classifier: Classifier{
			resolver:      NewUnitResolver(DefaultMinorUnitThreshold),
			defaultVAT:    DefaultVATRatePercent,
			quoteFallback: DefaultQuoteFallbackAmount,
			hints:         defaultUnitHints(),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate folds the four raw snapshots into the per-day, per-category
// series plus totals. Totals track the raw gross figures for everything
// inside the window; category toggles mask the series only.
func (e *Engine) Aggregate(input Input, settings Settings) (*Result, error) {
	settings = settings.Normalized()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	now := e.now()
	today := truncateToDay(now)
	cutoff := settings.Window.Cutoff(now)

	buckets := make(map[string]map[Category]decimal.Decimal)
	var totals Totals
	var dropped Dropped

	apply := func(contribs []contribution, delta totalsDelta, reason dropReason) {
		switch reason {
		case dropBadDate:
			dropped.BadDate++
			return
		case dropMissingAmount:
			dropped.MissingAmount++
			return
		case dropZeroAmount:
			dropped.ZeroAmount++
			return
		}
		for _, contrib := range contribs {
			addToBucket(buckets, contrib)
		}
		totals.GrossRevenue = totals.GrossRevenue.Add(delta.grossRevenue)
		totals.Expenses = totals.Expenses.Add(delta.expenses)
		totals.NetRevenue = totals.NetRevenue.Add(delta.netRevenue)
		totals.VATAmount = totals.VATAmount.Add(delta.vat)
	}

	for _, o := range input.Orders {
		apply(e.classifier.classifyOrder(o, cutoff))
	}
	for _, ex := range input.Expenses {
		apply(e.classifier.classifyExpense(ex, cutoff, today))
	}
	for _, q := range input.Quotes {
		apply(e.classifier.classifyQuote(q, cutoff))
	}
	for _, inv := range input.Invoices {
		apply(e.classifier.classifyInvoice(inv, cutoff, today, settings.InvoiceStatus))
	}

	totals.GrossProfit = totals.GrossRevenue.Sub(totals.Expenses)

	rows := flattenBuckets(buckets)
	rows = maskSeries(rows, settings.Toggles)

	return &Result{
		Series:  rows,
		Totals:  totals,
		Dropped: dropped,
	}, nil
}

// addToBucket accumulates one contribution, flooring any would-be-negative
// value at zero: after classification a negative bucket value is a modeling
// error, not data.
func addToBucket(buckets map[string]map[Category]decimal.Decimal, contrib contribution) {
	amount := contrib.amount
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	day, exists := buckets[contrib.day]
	if !exists {
		day = make(map[Category]decimal.Decimal)
		buckets[contrib.day] = day
	}
	day[contrib.category] = day[contrib.category].Add(amount)
}

// flattenBuckets produces the ascending-by-date row slice. The canonical
// YYYY-MM-DD keys sort chronologically as plain strings.
func flattenBuckets(buckets map[string]map[Category]decimal.Decimal) []Row {
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	rows := make([]Row, len(days))
	for i, day := range days {
		amounts := make(map[Category]decimal.Decimal, len(buckets[day]))
		for c, v := range buckets[day] {
			amounts[c] = v
		}
		rows[i] = Row{Date: day, Amounts: amounts}
	}
	return rows
}
