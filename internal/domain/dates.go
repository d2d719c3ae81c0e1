package domain

import (
	"math"
	"strings"
	"time"
)

const (
	weekStep  = 7 * 24 * time.Hour
	monthStep = 30 * 24 * time.Hour

	dayLayout = "Mon Jan 02 2006"
)

// DayString renders the calendar day used for streaks and daily counters.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}

var labelLayouts = []string{
	"2006/1/2",
	"1/2/2006",
	"2006/01/02 15:04:05",
	"Jan 2, 2006",
	"Jan 2 2006",
	dayLayout,
	time.RFC3339,
}

// parseLabel tries to read a date out of a free-form series label.
func parseLabel(label string, loc *time.Location) (time.Time, bool) {
	v := strings.TrimSpace(strings.ReplaceAll(label, "-", "/"))
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range labelLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nextTimestamp computes the ts of a point appended after the last one: its ts plus step,
// else its parsed label plus step, else now.
func nextTimestamp(hasLast bool, lastTS *int64, lastLabel string, step time.Duration, now time.Time) int64 {
	if !hasLast {
		return now.UnixMilli()
	}
	if lastTS != nil {
		return *lastTS + step.Milliseconds()
	}
	if t, ok := parseLabel(lastLabel, now.Location()); ok {
		return t.Add(step).UnixMilli()
	}
	return now.UnixMilli()
}

func weekLabel(ts int64, loc *time.Location) string {
	return time.UnixMilli(ts).In(loc).Format("1/2")
}

func monthLabel(ts int64, loc *time.Location) string {
	return time.UnixMilli(ts).In(loc).Format("Jan")
}

func pickLabel(explicit string, fallback func() string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	return fallback()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func ptr[T any](v T) *T { return &v }
