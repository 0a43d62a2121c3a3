package reporting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/taskilo/backend/internal/domain/reporting"
)

func TestUnitResolverHeuristic(t *testing.T) {
	resolver := reporting.NewUnitResolver(reporting.DefaultMinorUnitThreshold)

	tests := []struct {
		name  string
		value decimal.Decimal
		want  decimal.Decimal
	}{
		{
			name:  "integer below threshold stays major",
			value: decimal.NewFromInt(49999),
			want:  decimal.NewFromInt(49999),
		},
		{
			name:  "integer at threshold becomes cents",
			value: decimal.NewFromInt(50000),
			want:  decimal.NewFromInt(500),
		},
		{
			name:  "large integer becomes cents",
			value: decimal.NewFromInt(1250000),
			want:  decimal.NewFromInt(12500),
		},
		{
			name:  "fractional value above threshold stays major",
			value: decimal.NewFromFloat(50000.5),
			want:  decimal.NewFromFloat(50000.5),
		},
		{
			name:  "sign preserved through division",
			value: decimal.NewFromInt(-120000),
			want:  decimal.NewFromInt(-1200),
		},
		{
			name:  "negative below threshold stays major",
			value: decimal.NewFromInt(-12000),
			want:  decimal.NewFromInt(-12000),
		},
		{
			name:  "zero passes through",
			value: decimal.Zero,
			want:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.value, reporting.UnitHintAuto)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestUnitResolverHints(t *testing.T) {
	resolver := reporting.NewUnitResolver(reporting.DefaultMinorUnitThreshold)

	// An explicit hint overrides the heuristic in both directions.
	minor := resolver.Resolve(decimal.NewFromInt(12000), reporting.UnitHintMinor)
	assert.True(t, decimal.NewFromInt(120).Equal(minor))

	major := resolver.Resolve(decimal.NewFromInt(120000), reporting.UnitHintMajor)
	assert.True(t, decimal.NewFromInt(120000).Equal(major))
}

func TestUnitResolverCustomThreshold(t *testing.T) {
	resolver := reporting.NewUnitResolver(10000)

	got := resolver.Resolve(decimal.NewFromInt(10000), reporting.UnitHintAuto)
	assert.True(t, decimal.NewFromInt(100).Equal(got))

	// Non-positive thresholds fall back to the documented default.
	fallback := reporting.NewUnitResolver(0)
	kept := fallback.Resolve(decimal.NewFromInt(49999), reporting.UnitHintAuto)
	assert.True(t, decimal.NewFromInt(49999).Equal(kept))
}
