package reporting

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuoteFallbackAmount is the placeholder value booked for an accepted
// quote whose upstream amount is absent. The quote feed occasionally omits
// the amount on acceptance; the fallback is configured, not invented here.
var DefaultQuoteFallbackAmount = decimal.NewFromInt(100)

// acceptedQuoteStatuses marks a quote as finalized. The feeds mix German and
// English status strings.
var acceptedQuoteStatuses = map[string]bool{
	"angenommen": true,
	"accepted":   true,
}

// UnitHints carries the per-feed unit declarations for the Unit Resolver.
// Expenses are excluded: their feed reports major units by construction.
type UnitHints struct {
	Orders   UnitHint
	Quotes   UnitHint
	Invoices UnitHint
}

// defaultUnitHints leaves every ambiguous feed on the heuristic.
func defaultUnitHints() UnitHints {
	return UnitHints{Orders: UnitHintAuto, Quotes: UnitHintAuto, Invoices: UnitHintAuto}
}

// dropReason explains why a record was excluded from aggregation.
type dropReason int

const (
	dropNone dropReason = iota
	dropBadDate
	dropMissingAmount
	dropZeroAmount
)

// contribution is a single classified bucket write: a non-negative amount
// for one category on one day. The record's sign has already been consumed.
type contribution struct {
	day      string
	category Category
	amount   decimal.Decimal
}

// totalsDelta carries the running-total increments produced alongside a
// classification.
type totalsDelta struct {
	grossRevenue decimal.Decimal
	expenses     decimal.Decimal
	netRevenue   decimal.Decimal
	vat          decimal.Decimal
}

// Classifier maps raw records to bucket contributions and totals deltas.
// It holds only per-engine configuration; per-invocation settings (window
// cutoff, status filter) are passed in by the aggregator.
type Classifier struct {
	resolver      UnitResolver
	defaultVAT    decimal.Decimal
	quoteFallback decimal.Decimal
	hints         UnitHints
}

// classifyOrder handles order records: nil amounts drop, zero amounts are a
// no-op, negative resolved values become refunds, positive ones revenue.
func (c Classifier) classifyOrder(o OrderRecord, cutoff time.Time) ([]contribution, totalsDelta, dropReason) {
	var delta totalsDelta
	if o.Amount == nil {
		return nil, delta, dropMissingAmount
	}
	day, ok := NormalizeDate(o.Date)
	if !ok {
		return nil, delta, dropBadDate
	}
	if day.Before(cutoff) {
		return nil, delta, dropNone
	}
	v := c.resolver.Resolve(*o.Amount, c.hints.Orders)
	if v.IsZero() {
		return nil, delta, dropZeroAmount
	}
	if v.IsNegative() {
		return []contribution{{day: DayKey(day), category: CategoryRefunds, amount: v.Abs()}}, delta, dropNone
	}
	delta.grossRevenue = v
	return []contribution{{day: DayKey(day), category: CategoryRevenue, amount: v}}, delta, dropNone
}

// classifyExpense handles expense records. The expense feed reports
// current-day totals, so a missing or unparsable date defaults to today.
// This special case is expense-only and must not be generalized.
func (c Classifier) classifyExpense(e ExpenseRecord, cutoff, today time.Time) ([]contribution, totalsDelta, dropReason) {
	var delta totalsDelta
	day, ok := NormalizeDate(e.Date)
	if !ok {
		day = today
	}
	if day.Before(cutoff) {
		return nil, delta, dropNone
	}
	amount := e.Amount
	if amount.IsNegative() {
		// Unsigned by construction upstream; a negative here is a modeling
		// error and is floored rather than propagated.
		amount = decimal.Zero
	}
	delta.expenses = amount
	return []contribution{{day: DayKey(day), category: CategoryExpenses, amount: amount}}, delta, dropNone
}

// classifyQuote handles quote records: only accepted quotes count, and an
// absent amount takes the configured placeholder value.
func (c Classifier) classifyQuote(q QuoteRecord, cutoff time.Time) ([]contribution, totalsDelta, dropReason) {
	var delta totalsDelta
	if !acceptedQuoteStatuses[strings.ToLower(strings.TrimSpace(q.Status))] {
		return nil, delta, dropNone
	}
	day, ok := NormalizeDate(q.Date)
	if !ok {
		return nil, delta, dropBadDate
	}
	if day.Before(cutoff) {
		return nil, delta, dropNone
	}
	var v decimal.Decimal
	if q.Amount == nil {
		v = c.quoteFallback
	} else {
		v = c.resolver.Resolve(*q.Amount, c.hints.Quotes)
	}
	if v.IsNegative() {
		v = decimal.Zero
	}
	delta.grossRevenue = v
	return []contribution{{day: DayKey(day), category: CategoryQuotes, amount: v}}, delta, dropNone
}

// classifyInvoice handles invoice records: storno entries and negative
// resolved amounts go to cancellations by absolute value; everything else
// passes the status sub-filter and the tax split before reaching the
// invoices bucket.
func (c Classifier) classifyInvoice(inv InvoiceRecord, cutoff, today time.Time, filter InvoiceStatusFilter) ([]contribution, totalsDelta, dropReason) {
	var delta totalsDelta
	day, ok := NormalizeDate(inv.Date)
	if !ok {
		return nil, delta, dropBadDate
	}
	if day.Before(cutoff) {
		return nil, delta, dropNone
	}
	v := c.resolver.Resolve(inv.Amount, c.hints.Invoices)
	if inv.IsCancellation || v.IsNegative() {
		return []contribution{{day: DayKey(day), category: CategoryCancellations, amount: v.Abs()}}, delta, dropNone
	}
	if v.IsZero() {
		return nil, delta, dropZeroAmount
	}
	if !filter.Matches(inv, today) {
		return nil, delta, dropNone
	}
	split := SplitNet(v, inv.VATRatePercent, c.defaultVAT)
	delta.grossRevenue = split.Gross
	delta.netRevenue = split.Net
	delta.vat = split.VAT
	return []contribution{{day: DayKey(day), category: CategoryInvoices, amount: split.Gross}}, delta, dropNone
}
