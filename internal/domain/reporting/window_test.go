package reporting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskilo/backend/internal/domain/reporting"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		token   string
		want    reporting.Window
		wantErr bool
	}{
		{token: "", want: reporting.Window90Days},
		{token: "7d", want: reporting.Window7Days},
		{token: "30d", want: reporting.Window30Days},
		{token: "90d", want: reporting.Window90Days},
		{token: "365d", want: reporting.Window365Days},
		{token: "14d", wantErr: true},
		{token: "week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("token "+tt.token, func(t *testing.T) {
			got, err := reporting.ParseWindow(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowDays(t *testing.T) {
	assert.Equal(t, 7, reporting.Window7Days.Days())
	assert.Equal(t, 30, reporting.Window30Days.Days())
	assert.Equal(t, 90, reporting.Window90Days.Days())
	assert.Equal(t, 365, reporting.Window365Days.Days())
}

func TestWindowCutoff(t *testing.T) {
	ref := time.Date(2024, 3, 10, 15, 42, 0, 0, time.Local)

	cutoff := reporting.Window7Days.Cutoff(ref)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.Local), cutoff)

	// The cutoff day itself is inside the window; the day before is not.
	onCutoff := time.Date(2024, 3, 3, 12, 0, 0, 0, time.Local)
	assert.False(t, onCutoff.Before(cutoff))
	dayBefore := time.Date(2024, 3, 2, 23, 59, 0, 0, time.Local)
	assert.True(t, dayBefore.Before(cutoff))
}
