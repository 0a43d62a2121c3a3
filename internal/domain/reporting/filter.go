package reporting

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taskilo/backend/internal/domain/shared"
)

// CategoryToggles is the per-category visibility filter of the series. A
// disabled category is removed from the rendered rows but never from the
// underlying totals.
type CategoryToggles map[Category]bool

// AllCategoriesEnabled returns toggles with every category switched on.
func AllCategoriesEnabled() CategoryToggles {
	t := make(CategoryToggles, len(AllCategories()))
	for _, c := range AllCategories() {
		t[c] = true
	}
	return t
}

// SetAll flips every toggle to the given state (the master toggle).
func (t CategoryToggles) SetAll(enabled bool) {
	for _, c := range AllCategories() {
		t[c] = enabled
	}
}

// Enabled reports whether a category is visible. Categories missing from the
// map are treated as disabled.
func (t CategoryToggles) Enabled(c Category) bool {
	return t[c]
}

// NoneEnabled reports whether every toggle is off; the engine then still
// computes totals and returns rows without any categories, which callers
// render as "no data".
func (t CategoryToggles) NoneEnabled() bool {
	for _, c := range AllCategories() {
		if t[c] {
			return false
		}
	}
	return true
}

// ParseCategoryToggles builds toggles from a comma-separated category list.
// An empty list enables everything.
func ParseCategoryToggles(list string) (CategoryToggles, error) {
	if strings.TrimSpace(list) == "" {
		return AllCategoriesEnabled(), nil
	}
	t := make(CategoryToggles, len(AllCategories()))
	for _, part := range strings.Split(list, ",") {
		c := Category(strings.TrimSpace(part))
		if !c.IsValid() {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown category: "+string(c))
		}
		t[c] = true
	}
	return t, nil
}

// InvoiceStatusFilter is the sub-filter deciding which invoices are admitted
// to the invoices bucket. It is independent of the category toggle for
// invoices.
type InvoiceStatusFilter string

const (
	InvoiceStatusAll     InvoiceStatusFilter = "all"
	InvoiceStatusDraft   InvoiceStatusFilter = "draft"
	InvoiceStatusSent    InvoiceStatusFilter = "sent"
	InvoiceStatusPaid    InvoiceStatusFilter = "paid"
	InvoiceStatusOverdue InvoiceStatusFilter = "overdue"
)

// ParseInvoiceStatusFilter validates a status token. Empty selects "all".
func ParseInvoiceStatusFilter(token string) (InvoiceStatusFilter, error) {
	if token == "" {
		return InvoiceStatusAll, nil
	}
	f := InvoiceStatusFilter(strings.ToLower(token))
	if !f.IsValid() {
		return "", shared.ErrInvalidStatusFilter
	}
	return f, nil
}

// IsValid returns true for a member of the closed token set.
func (f InvoiceStatusFilter) IsValid() bool {
	switch f {
	case InvoiceStatusAll, InvoiceStatusDraft, InvoiceStatusSent,
		InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// paidStatuses covers the mixed German/English vocabulary the feeds emit.
var paidStatuses = map[string]bool{
	"paid":    true,
	"bezahlt": true,
}

// Matches decides whether an invoice passes the sub-filter on the given
// reference day. Overdue is derived, never stored: a non-paid invoice whose
// due date (or, if absent, its validity date) lies strictly before today is
// overdue regardless of its stored status string.
func (f InvoiceStatusFilter) Matches(inv InvoiceRecord, today time.Time) bool {
	status := strings.ToLower(strings.TrimSpace(inv.Status))
	switch f {
	case InvoiceStatusAll:
		return true
	case InvoiceStatusPaid:
		return paidStatuses[status]
	case InvoiceStatusOverdue:
		return invoiceOverdue(inv, today)
	case InvoiceStatusDraft, InvoiceStatusSent:
		return status == string(f)
	default:
		return false
	}
}

// invoiceOverdue derives overdueness from the due date, falling back to the
// invoice's own validity date when no due date is present.
func invoiceOverdue(inv InvoiceRecord, today time.Time) bool {
	if paidStatuses[strings.ToLower(strings.TrimSpace(inv.Status))] {
		return false
	}
	due, ok := NormalizeDate(inv.DueDate)
	if !ok {
		due, ok = NormalizeDate(inv.Date)
		if !ok {
			return false
		}
	}
	return due.Before(truncateToDay(today))
}

// maskSeries removes disabled categories from every row. Rows are kept even
// when all of their categories are masked so the day axis stays stable.
func maskSeries(rows []Row, toggles CategoryToggles) []Row {
	masked := make([]Row, len(rows))
	for i, row := range rows {
		amounts := make(map[Category]decimal.Decimal, len(row.Amounts))
		for c, v := range row.Amounts {
			if toggles.Enabled(c) {
				amounts[c] = v
			}
		}
		masked[i] = Row{Date: row.Date, Amounts: amounts}
	}
	return masked
}
