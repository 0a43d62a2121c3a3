package reporting

import (
	"github.com/shopspring/decimal"
)

// DefaultVATRatePercent is the tax rate applied when an invoice carries no
// rate of its own (German standard rate).
var DefaultVATRatePercent = decimal.NewFromInt(19)

// TaxSplit decomposes a positive net invoice amount into its net, VAT and
// gross parts. The engine-wide assumption is that stored invoice amounts are
// net of tax; this is fixed once, not re-derived per record.
type TaxSplit struct {
	Net   decimal.Decimal `json:"net"`
	VAT   decimal.Decimal `json:"vat"`
	Gross decimal.Decimal `json:"gross"`
}

// SplitNet computes the tax breakdown of a net amount. A nil rate uses the
// fallback; a nil fallback would be a programming error, so callers pass the
// configured default.
func SplitNet(net decimal.Decimal, ratePercent *decimal.Decimal, defaultRate decimal.Decimal) TaxSplit {
	rate := defaultRate
	if ratePercent != nil {
		rate = *ratePercent
	}
	vat := net.Mul(rate).Div(oneHundred)
	return TaxSplit{
		Net:   net,
		VAT:   vat,
		Gross: net.Add(vat),
	}
}
