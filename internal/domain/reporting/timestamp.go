package reporting

import (
	"encoding/json"
	"time"
)

// DayFormat is the canonical day-granularity form used for bucketing. Two
// timestamps on the same calendar day are identical for reporting purposes.
const DayFormat = "2006-01-02"

// epochMillisThreshold separates second-based from millisecond-based numeric
// epochs: anything at or above it cannot be a plausible epoch in seconds.
const epochMillisThreshold = 1e12

// stringLayouts are tried in order when a date arrives as a string.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DayFormat,
}

// NormalizeDate converts any of the supported raw date encodings into a
// calendar date at local midnight. The precedence follows the shapes the
// backend actually emits: native time, ISO string, extraction method,
// seconds pair, underscore-prefixed seconds pair, numeric epoch. A false
// return means the caller must drop the record; no date is ever synthesized
// here.
func NormalizeDate(d RawDate) (time.Time, bool) {
	v := d.value
	if v == nil {
		return time.Time{}, false
	}

	switch val := v.(type) {
	case time.Time:
		return truncateToDay(val), true
	case string:
		for _, layout := range stringLayouts {
			if t, err := time.ParseInLocation(layout, val, time.Local); err == nil {
				return truncateToDay(t), true
			}
		}
		return time.Time{}, false
	case DateExtractor:
		return truncateToDay(val.ToDate()), true
	case map[string]any:
		if secs, ok := numberField(val, "seconds"); ok {
			return truncateToDay(time.UnixMilli(int64(secs * 1000))), true
		}
		if secs, ok := numberField(val, "_seconds"); ok {
			return truncateToDay(time.UnixMilli(int64(secs * 1000))), true
		}
		return time.Time{}, false
	case float64:
		return truncateToDay(epochToTime(val)), true
	case int64:
		return truncateToDay(epochToTime(float64(val))), true
	case int:
		return truncateToDay(epochToTime(float64(val))), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return truncateToDay(epochToTime(f)), true
	default:
		return time.Time{}, false
	}
}

// DayKey renders a normalized date as its canonical bucketing key.
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}

// truncateToDay drops the time-of-day component, keeping local midnight.
func truncateToDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// epochToTime interprets a numeric epoch as milliseconds when it is too
// large to be seconds, matching how the mixed JS/Firestore feeds encode it.
func epochToTime(v float64) time.Time {
	if v >= epochMillisThreshold {
		return time.UnixMilli(int64(v))
	}
	return time.UnixMilli(int64(v * 1000))
}

// numberField extracts a numeric member from a decoded JSON object.
func numberField(m map[string]any, key string) (float64, bool) {
	raw, exists := m[key]
	if !exists {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
