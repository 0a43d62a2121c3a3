package dto

import (
	"github.com/taskilo/backend/internal/domain/reporting"
)

// RevenueExpensesQuery represents the report query parameters
type RevenueExpensesQuery struct {
	Window        string `form:"window" binding:"omitempty,oneof=7d 30d 90d 365d"`
	Categories    string `form:"categories"`
	InvoiceStatus string `form:"invoice_status" binding:"omitempty,oneof=all draft sent paid overdue"`
}

// ReportRowResponse is one day of the report series
type ReportRowResponse struct {
	Date    string             `json:"date"`
	Amounts map[string]float64 `json:"amounts"`
}

// TotalsResponse carries the window-wide aggregates
type TotalsResponse struct {
	GrossRevenue float64 `json:"gross_revenue"`
	Expenses     float64 `json:"expenses"`
	NetRevenue   float64 `json:"net_revenue"`
	GrossProfit  float64 `json:"gross_profit"`
	VATAmount    float64 `json:"vat_amount"`
}

// DroppedResponse reports how many records were skipped and why
type DroppedResponse struct {
	BadDate       int `json:"bad_date"`
	MissingAmount int `json:"missing_amount"`
	ZeroAmount    int `json:"zero_amount"`
}

// RevenueExpensesResponse is the full report payload
type RevenueExpensesResponse struct {
	Window  string              `json:"window"`
	Series  []ReportRowResponse `json:"series"`
	Totals  TotalsResponse      `json:"totals"`
	Dropped DroppedResponse     `json:"dropped"`
}

// NewRevenueExpensesResponse converts a computed report into its API shape
func NewRevenueExpensesResponse(window reporting.Window, result *reporting.Result) RevenueExpensesResponse {
	series := make([]ReportRowResponse, len(result.Series))
	for i, row := range result.Series {
		amounts := make(map[string]float64, len(row.Amounts))
		for category, amount := range row.Amounts {
			amounts[string(category)] = amount.InexactFloat64()
		}
		series[i] = ReportRowResponse{Date: row.Date, Amounts: amounts}
	}

	return RevenueExpensesResponse{
		Window: string(window),
		Series: series,
		Totals: TotalsResponse{
			GrossRevenue: result.Totals.GrossRevenue.InexactFloat64(),
			Expenses:     result.Totals.Expenses.InexactFloat64(),
			NetRevenue:   result.Totals.NetRevenue.InexactFloat64(),
			GrossProfit:  result.Totals.GrossProfit.InexactFloat64(),
			VATAmount:    result.Totals.VATAmount.InexactFloat64(),
		},
		Dropped: DroppedResponse{
			BadDate:       result.Dropped.BadDate,
			MissingAmount: result.Dropped.MissingAmount,
			ZeroAmount:    result.Dropped.ZeroAmount,
		},
	}
}

// FeedReplaceResponse acknowledges a snapshot replacement
type FeedReplaceResponse struct {
	Feed     string `json:"feed"`
	Records  int    `json:"records"`
	Revision uint64 `json:"revision"`
}

// HealthResponse reports service liveness and snapshot state
type HealthResponse struct {
	Status   string         `json:"status"`
	Revision uint64         `json:"revision"`
	Feeds    map[string]int `json:"feeds"`
}
