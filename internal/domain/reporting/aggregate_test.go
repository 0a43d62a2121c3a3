package reporting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskilo/backend/internal/domain/reporting"
)

var refNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

func testEngine(opts ...reporting.EngineOption) *reporting.Engine {
	opts = append([]reporting.EngineOption{
		reporting.WithClock(func() time.Time { return refNow }),
	}, opts...)
	return reporting.NewEngine(opts...)
}

func onDay(day int) reporting.RawDate {
	return reporting.NewRawDate(time.Date(2024, 3, day, 11, 30, 0, 0, time.Local))
}

func amt(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func rowAmount(res *reporting.Result, day string, c reporting.Category) decimal.Decimal {
	for _, row := range res.Series {
		if row.Date == day {
			return row.Amounts[c]
		}
	}
	return decimal.Zero
}

func TestAggregateIdempotence(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			{ID: "o1", Amount: amt(150), Date: onDay(5)},
			{ID: "o2", Amount: amt(-80), Date: onDay(6)},
		},
		Expenses: []reporting.ExpenseRecord{
			{ID: "e1", Amount: decimal.NewFromInt(40), Date: onDay(5)},
		},
		Invoices: []reporting.InvoiceRecord{
			{ID: "i1", Amount: decimal.NewFromInt(100), Status: "paid", Date: onDay(7)},
		},
	}

	first, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)
	second, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregateCategoryExclusivityAndNonNegativity(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			{ID: "o1", Amount: amt(150), Date: onDay(5)},
			{ID: "o2", Amount: amt(-80), Date: onDay(5)},
		},
		Expenses: []reporting.ExpenseRecord{
			{ID: "e1", Amount: decimal.NewFromInt(40), Date: onDay(5)},
		},
		Quotes: []reporting.QuoteRecord{
			{ID: "q1", Amount: amt(60), Status: "angenommen", Date: onDay(5)},
		},
		Invoices: []reporting.InvoiceRecord{
			{ID: "i1", Amount: decimal.NewFromInt(100), Status: "paid", Date: onDay(5)},
			{ID: "i2", Amount: decimal.NewFromInt(-30), Status: "paid", Date: onDay(5)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)
	require.Len(t, res.Series, 1)

	day := "2024-03-05"
	// Each record lands in exactly one category with its classified magnitude.
	assert.True(t, decimal.NewFromInt(150).Equal(rowAmount(res, day, reporting.CategoryRevenue)))
	assert.True(t, decimal.NewFromInt(80).Equal(rowAmount(res, day, reporting.CategoryRefunds)))
	assert.True(t, decimal.NewFromInt(40).Equal(rowAmount(res, day, reporting.CategoryExpenses)))
	assert.True(t, decimal.NewFromInt(60).Equal(rowAmount(res, day, reporting.CategoryQuotes)))
	assert.True(t, decimal.NewFromInt(119).Equal(rowAmount(res, day, reporting.CategoryInvoices)))
	assert.True(t, decimal.NewFromInt(30).Equal(rowAmount(res, day, reporting.CategoryCancellations)))

	for _, row := range res.Series {
		for c, v := range row.Amounts {
			assert.False(t, v.IsNegative(), "category %s on %s is negative", c, row.Date)
		}
	}
}

func TestAggregateWindowBoundary(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			{
				ID:     "on-cutoff",
				Amount: amt(100),
				Date:   reporting.NewRawDate(time.Date(2024, 3, 3, 12, 0, 0, 0, time.Local)),
			},
			{
				ID:     "before-cutoff",
				Amount: amt(200),
				Date:   reporting.NewRawDate(time.Date(2024, 3, 2, 23, 59, 0, 0, time.Local)),
			},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{Window: reporting.Window7Days})
	require.NoError(t, err)

	require.Len(t, res.Series, 1)
	assert.Equal(t, "2024-03-03", res.Series[0].Date)
	assert.True(t, decimal.NewFromInt(100).Equal(res.Totals.GrossRevenue))
	// Excluded by the window, not dropped as malformed.
	assert.Equal(t, 0, res.Dropped.Total())
}

func TestAggregateSignReclassification(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			// -120000 trips the minor-unit heuristic, so the refund is 1200.
			{ID: "o1", Amount: amt(-120000), Date: onDay(5)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	day := "2024-03-05"
	assert.True(t, decimal.NewFromInt(1200).Equal(rowAmount(res, day, reporting.CategoryRefunds)))
	assert.True(t, rowAmount(res, day, reporting.CategoryRevenue).IsZero())
	assert.True(t, res.Totals.GrossRevenue.IsZero())
}

func TestAggregateTaxSplitFeedsTotals(t *testing.T) {
	engine := testEngine()
	rate := decimal.NewFromInt(19)
	input := reporting.Input{
		Invoices: []reporting.InvoiceRecord{
			{
				ID:             "i1",
				Amount:         decimal.NewFromInt(100),
				Status:         "paid",
				VATRatePercent: &rate,
				Date:           onDay(7),
			},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(119).Equal(res.Totals.GrossRevenue))
	assert.True(t, decimal.NewFromInt(100).Equal(res.Totals.NetRevenue))
	assert.True(t, decimal.NewFromInt(19).Equal(res.Totals.VATAmount))
	assert.True(t, decimal.NewFromInt(119).Equal(res.Totals.GrossProfit))
}

func TestAggregateFilterIndependence(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Invoices: []reporting.InvoiceRecord{
			{ID: "i1", Amount: decimal.NewFromInt(100), Status: "paid", Date: onDay(7)},
		},
	}

	unfiltered, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	toggles := reporting.AllCategoriesEnabled()
	toggles[reporting.CategoryInvoices] = false
	filtered, err := engine.Aggregate(input, reporting.Settings{Toggles: toggles})
	require.NoError(t, err)

	// The category disappears from the series rows...
	_, present := filtered.Series[0].Amounts[reporting.CategoryInvoices]
	assert.False(t, present)
	// ...but the totals still track the raw gross figures.
	assert.True(t, unfiltered.Totals.NetRevenue.Equal(filtered.Totals.NetRevenue))
	assert.True(t, unfiltered.Totals.VATAmount.Equal(filtered.Totals.VATAmount))
	assert.True(t, unfiltered.Totals.GrossRevenue.Equal(filtered.Totals.GrossRevenue))
}

func TestAggregateInvoiceStatusSubFilter(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Invoices: []reporting.InvoiceRecord{
			{ID: "paid", Amount: decimal.NewFromInt(100), Status: "paid", Date: onDay(7)},
			// Due in the future, so the draft is not derived overdue.
			{ID: "draft", Amount: decimal.NewFromInt(50), Status: "draft", Date: onDay(7), DueDate: onDay(25)},
			{
				ID:      "overdue",
				Amount:  decimal.NewFromInt(70),
				Status:  "sent",
				Date:    onDay(4),
				DueDate: onDay(9),
			},
		},
	}

	paidOnly, err := engine.Aggregate(input, reporting.Settings{InvoiceStatus: reporting.InvoiceStatusPaid})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(119).Equal(paidOnly.Totals.GrossRevenue))

	overdueOnly, err := engine.Aggregate(input, reporting.Settings{InvoiceStatus: reporting.InvoiceStatusOverdue})
	require.NoError(t, err)
	// 70 net at the default rate: gross 83.30.
	assert.True(t, decimal.NewFromFloat(83.3).Equal(overdueOnly.Totals.GrossRevenue))
	assert.True(t, decimal.NewFromFloat(83.3).Equal(rowAmount(overdueOnly, "2024-03-04", reporting.CategoryInvoices)))
}

func TestAggregateOverdueFallsBackToInvoiceDate(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Invoices: []reporting.InvoiceRecord{
			// No due date: overdueness falls back to the invoice's own date,
			// which lies before today.
			{ID: "undated-due", Amount: decimal.NewFromInt(50), Status: "draft", Date: onDay(7)},
			// Paid invoices are never overdue, past due date or not.
			{ID: "paid-late", Amount: decimal.NewFromInt(100), Status: "paid", Date: onDay(4), DueDate: onDay(5)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{InvoiceStatus: reporting.InvoiceStatusOverdue})
	require.NoError(t, err)

	// Only the fallback-dated draft passes: 50 net, gross 59.50.
	assert.True(t, decimal.NewFromFloat(59.5).Equal(res.Totals.GrossRevenue))
	assert.True(t, decimal.NewFromFloat(59.5).Equal(rowAmount(res, "2024-03-07", reporting.CategoryInvoices)))
	assert.True(t, rowAmount(res, "2024-03-04", reporting.CategoryInvoices).IsZero())
}

func TestAggregateCancellations(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Invoices: []reporting.InvoiceRecord{
			{ID: "storno", Amount: decimal.NewFromInt(100), Status: "paid", IsCancellation: true, Date: onDay(7)},
			{ID: "negative", Amount: decimal.NewFromInt(-40), Status: "paid", Date: onDay(7)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	day := "2024-03-07"
	assert.True(t, decimal.NewFromInt(140).Equal(rowAmount(res, day, reporting.CategoryCancellations)))
	assert.True(t, rowAmount(res, day, reporting.CategoryInvoices).IsZero())
	// Cancellations never feed revenue totals.
	assert.True(t, res.Totals.GrossRevenue.IsZero())
	assert.True(t, res.Totals.NetRevenue.IsZero())
}

func TestAggregateExpenseDateDefaultsToToday(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Expenses: []reporting.ExpenseRecord{
			{ID: "e1", Amount: decimal.NewFromInt(25)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	require.Len(t, res.Series, 1)
	assert.Equal(t, "2024-03-10", res.Series[0].Date)
	assert.True(t, decimal.NewFromInt(25).Equal(res.Totals.Expenses))
	assert.Equal(t, 0, res.Dropped.Total())
}

func TestAggregateQuoteHandling(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Quotes: []reporting.QuoteRecord{
			{ID: "accepted-de", Amount: amt(200), Status: "angenommen", Date: onDay(5)},
			{ID: "accepted-en-no-amount", Status: "accepted", Date: onDay(5)},
			{ID: "open", Amount: amt(999), Status: "offen", Date: onDay(5)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	// 200 plus the documented fallback for the missing amount.
	want := decimal.NewFromInt(200).Add(reporting.DefaultQuoteFallbackAmount)
	assert.True(t, want.Equal(rowAmount(res, "2024-03-05", reporting.CategoryQuotes)))
	assert.True(t, want.Equal(res.Totals.GrossRevenue))
}

func TestAggregateDroppedRecords(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			{ID: "no-amount", Date: onDay(5)},
			{ID: "no-date", Amount: amt(100)},
			{ID: "zero", Amount: amt(0), Date: onDay(5)},
			{ID: "bad-date", Amount: amt(50), Date: reporting.NewRawDateValue("gestern")},
		},
		Invoices: []reporting.InvoiceRecord{
			{ID: "undated", Amount: decimal.NewFromInt(100), Status: "paid"},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Dropped.BadDate)
	assert.Equal(t, 1, res.Dropped.MissingAmount)
	assert.Equal(t, 1, res.Dropped.ZeroAmount)
	assert.Empty(t, res.Series)
	assert.True(t, res.Totals.GrossRevenue.IsZero())
}

func TestAggregateAllTogglesOff(t *testing.T) {
	engine := testEngine()
	toggles := reporting.AllCategoriesEnabled()
	toggles.SetAll(false)
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			{ID: "o1", Amount: amt(150), Date: onDay(5)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{Toggles: toggles})
	require.NoError(t, err)

	// Not an error: rows carry no categories, totals are still computed.
	require.Len(t, res.Series, 1)
	assert.Empty(t, res.Series[0].Amounts)
	assert.True(t, decimal.NewFromInt(150).Equal(res.Totals.GrossRevenue))
}

func TestAggregateInvalidSettings(t *testing.T) {
	engine := testEngine()

	_, err := engine.Aggregate(reporting.Input{}, reporting.Settings{Window: "14d"})
	assert.Error(t, err)

	_, err = engine.Aggregate(reporting.Input{}, reporting.Settings{InvoiceStatus: "archived"})
	assert.Error(t, err)
}

func TestAggregateSeriesSorted(t *testing.T) {
	engine := testEngine()
	input := reporting.Input{
		Orders: []reporting.OrderRecord{
			{ID: "o3", Amount: amt(30), Date: onDay(9)},
			{ID: "o1", Amount: amt(10), Date: onDay(2)},
			{ID: "o2", Amount: amt(20), Date: onDay(6)},
		},
	}

	res, err := engine.Aggregate(input, reporting.Settings{})
	require.NoError(t, err)

	require.Len(t, res.Series, 3)
	assert.Equal(t, "2024-03-02", res.Series[0].Date)
	assert.Equal(t, "2024-03-06", res.Series[1].Date)
	assert.Equal(t, "2024-03-09", res.Series[2].Date)
}
