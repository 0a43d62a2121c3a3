package reporting

import (
	"time"

	"github.com/taskilo/backend/internal/domain/shared"
)

// Window is the trailing time range over which records are included.
type Window string

const (
	Window7Days   Window = "7d"
	Window30Days  Window = "30d"
	Window90Days  Window = "90d"
	Window365Days Window = "365d"
)

// DefaultWindow is used when the caller does not select a range.
const DefaultWindow = Window90Days

// ParseWindow validates a range token. The empty token selects the default.
func ParseWindow(token string) (Window, error) {
	if token == "" {
		return DefaultWindow, nil
	}
	w := Window(token)
	if !w.IsValid() {
		return "", shared.ErrInvalidWindow
	}
	return w, nil
}

// IsValid returns true for a member of the closed token set.
func (w Window) IsValid() bool {
	switch w {
	case Window7Days, Window30Days, Window90Days, Window365Days:
		return true
	}
	return false
}

// Days returns the window length in days.
func (w Window) Days() int {
	switch w {
	case Window7Days:
		return 7
	case Window30Days:
		return 30
	case Window365Days:
		return 365
	default:
		return 90
	}
}

// Cutoff computes the inclusion boundary for the window: the reference day
// minus the window length, at start of day. A record dated exactly on the
// cutoff day is included; one day earlier is excluded.
func (w Window) Cutoff(ref time.Time) time.Time {
	return truncateToDay(ref).AddDate(0, 0, -w.Days())
}
