package reporting

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of reporting categories. Every retained record
// maps to exactly one category; bucket magnitudes are always non-negative
// because the record's sign is consumed during classification.
type Category string

const (
	CategoryRevenue       Category = "revenue"       // positive orders
	CategoryInvoices      Category = "invoices"      // admitted invoices
	CategoryQuotes        Category = "quotes"        // accepted quotes
	CategoryExpenses      Category = "expenses"      // expense records
	CategoryCancellations Category = "cancellations" // storno / negative invoices
	CategoryRefunds       Category = "refunds"       // negative orders
)

// AllCategories returns the categories in their canonical display order.
func AllCategories() []Category {
	return []Category{
		CategoryRevenue,
		CategoryInvoices,
		CategoryQuotes,
		CategoryExpenses,
		CategoryCancellations,
		CategoryRefunds,
	}
}

// IsValid returns true if the category is a member of the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRevenue, CategoryInvoices, CategoryQuotes,
		CategoryExpenses, CategoryCancellations, CategoryRefunds:
		return true
	}
	return false
}

// RawDate holds a backend date value in whichever encoding the source feed
// used: an ISO-8601 string, a seconds/nanoseconds pair (plain or
// underscore-prefixed), a numeric epoch, or a value already decoded to a
// native time. The Normalizer decides which shape is present; records whose
// date cannot be normalized are dropped from aggregation.
type RawDate struct {
	value any
}

// NewRawDate wraps a native time value.
func NewRawDate(t time.Time) RawDate {
	return RawDate{value: t}
}

// NewRawDateValue wraps an arbitrary decoded value (string, number, or
// seconds-pair map). Used by feeds that hand over pre-decoded JSON.
func NewRawDateValue(v any) RawDate {
	return RawDate{value: v}
}

// IsZero reports whether no date value is present at all.
func (d RawDate) IsZero() bool {
	return d.value == nil
}

// Value returns the wrapped raw value.
func (d RawDate) Value() any {
	return d.value
}

// UnmarshalJSON accepts any JSON shape; validation happens in the Normalizer,
// not here, so that a malformed date drops a single record instead of failing
// the whole snapshot decode.
func (d *RawDate) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	d.value = v
	return nil
}

// MarshalJSON round-trips the wrapped value.
func (d RawDate) MarshalJSON() ([]byte, error) {
	if d.value == nil {
		return []byte("null"), nil
	}
	if t, ok := d.value.(time.Time); ok {
		return json.Marshal(t.Format(time.RFC3339))
	}
	return json.Marshal(d.value)
}

// DateExtractor is implemented by feed values that expose their date through
// a zero-argument extraction method rather than a serialized field.
type DateExtractor interface {
	ToDate() time.Time
}

// OrderRecord is a settled marketplace order. Amount is signed and of
// ambiguous unit; negative resolved amounts are reclassified as refunds.
type OrderRecord struct {
	ID     string           `json:"id"`
	Amount *decimal.Decimal `json:"amount"`
	Date   RawDate          `json:"date"`
}

// ExpenseRecord is an operating expense. The upstream feed reports
// major-unit, unsigned amounts and always reports current-day totals, so a
// missing date defaults to today instead of dropping the record.
type ExpenseRecord struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   RawDate         `json:"date"`
}

// QuoteRecord is a customer quote. Only quotes whose status carries the
// accepted marker are counted; an absent amount falls back to a configured
// placeholder value.
type QuoteRecord struct {
	ID     string           `json:"id"`
	Amount *decimal.Decimal `json:"amount"`
	Status string           `json:"status"`
	Date   RawDate          `json:"date"`
}

// InvoiceRecord is an issued invoice. Amount is signed and of ambiguous
// unit; the stored amount is treated as net of VAT for the whole engine.
// IsCancellation marks a storno entry that reverses a prior invoice.
type InvoiceRecord struct {
	ID             string           `json:"id"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         string           `json:"status"`
	IsCancellation bool             `json:"is_cancellation"`
	VATRatePercent *decimal.Decimal `json:"vat_rate_percent,omitempty"`
	Date           RawDate          `json:"date"`
	DueDate        RawDate          `json:"due_date,omitzero"`
}

// Input is one snapshot of the four raw feeds. The engine treats it as
// immutable for the duration of a single aggregation.
type Input struct {
	Orders   []OrderRecord
	Expenses []ExpenseRecord
	Quotes   []QuoteRecord
	Invoices []InvoiceRecord
}

// Totals are the scalar summaries derived alongside the series. They are
// recomputed from scratch on every invocation and track the raw gross
// figures regardless of category toggles.
type Totals struct {
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	VATAmount    decimal.Decimal `json:"vat_amount"`
}

// Dropped counts records excluded from aggregation, by reason. Dropping is
// silent toward the end user; these counters exist for observability only.
type Dropped struct {
	BadDate       int `json:"bad_date"`
	MissingAmount int `json:"missing_amount"`
	ZeroAmount    int `json:"zero_amount"`
}

// Total returns the number of dropped records across all reasons.
func (d Dropped) Total() int {
	return d.BadDate + d.MissingAmount + d.ZeroAmount
}

// Row is one day of the output series. Amounts contains only the categories
// enabled by the active toggles; a missing category is equivalent to zero.
type Row struct {
	Date    string                       `json:"date"`
	Amounts map[Category]decimal.Decimal `json:"amounts"`
}

// Result is the full output of one aggregation run: the chronologically
// ascending series plus the derived totals and drop counters.
type Result struct {
	Series  []Row   `json:"series"`
	Totals  Totals  `json:"totals"`
	Dropped Dropped `json:"dropped"`
}
