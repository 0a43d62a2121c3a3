package reporting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/taskilo/backend/internal/domain/reporting"
)

func TestSplitNet(t *testing.T) {
	rate7 := decimal.NewFromInt(7)

	tests := []struct {
		name      string
		net       decimal.Decimal
		rate      *decimal.Decimal
		wantVAT   decimal.Decimal
		wantGross decimal.Decimal
	}{
		{
			name:      "default rate",
			net:       decimal.NewFromInt(100),
			rate:      nil,
			wantVAT:   decimal.NewFromInt(19),
			wantGross: decimal.NewFromInt(119),
		},
		{
			name:      "reduced rate",
			net:       decimal.NewFromInt(200),
			rate:      &rate7,
			wantVAT:   decimal.NewFromInt(14),
			wantGross: decimal.NewFromInt(214),
		},
		{
			name:      "fractional net",
			net:       decimal.NewFromFloat(99.99),
			rate:      nil,
			wantVAT:   decimal.NewFromFloat(18.9981),
			wantGross: decimal.NewFromFloat(118.9881),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := reporting.SplitNet(tt.net, tt.rate, reporting.DefaultVATRatePercent)
			assert.True(t, tt.net.Equal(split.Net), "net: want %s, got %s", tt.net, split.Net)
			assert.True(t, tt.wantVAT.Equal(split.VAT), "vat: want %s, got %s", tt.wantVAT, split.VAT)
			assert.True(t, tt.wantGross.Equal(split.Gross), "gross: want %s, got %s", tt.wantGross, split.Gross)
		})
	}
}
