package timecalc

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MinutesPerPixel is the wall-clock quantum covered by one pixel of the time axis.
const MinutesPerPixel = 20

const minutesPerDay = 24 * 60

// PeriodLayout is the time layout of a period key ("YYYY-MM").
const PeriodLayout = "2006-01"

// ErrNoReferenceDate is returned when a period helper receives the zero time.
var ErrNoReferenceDate = errors.New("invalid date: no reference date")

// PixelsToMinutes converts a pixel offset into whole minutes, rounding half up.
func PixelsToMinutes(px float64) int64 {
	return int64(math.Floor(px*MinutesPerPixel + 0.5))
}

// PixelsToTime formats a pixel offset as a wall-clock "HH:MM", wrapping modulo
// 24 hours. Negative offsets wrap backwards from midnight.
func PixelsToTime(px float64) string {
	m := PixelsToMinutes(px) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// RangeLabel returns "HH:MM - HH:MM" for the interval [left, left+width).
func RangeLabel(left, width float64) string {
	return PixelsToTime(left) + " - " + PixelsToTime(left+width)
}

// PixelsToOffset converts a pixel offset into a duration from the start of a period.
func PixelsToOffset(px float64) time.Duration {
	return time.Duration(PixelsToMinutes(px)) * time.Minute
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// PeriodKey returns the "YYYY-MM" key of the month containing t.
func PeriodKey(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ParsePeriodKey parses a "YYYY-MM" key into the first day of that month.
func ParsePeriodKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(PeriodLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period key %q: %w", key, err)
	}
	return t, nil
}

// StartOfMonth returns 00:00:00 on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PrevPeriod returns the first day of the month before ref.
func PrevPeriod(ref time.Time) time.Time {
	return StartOfMonth(ref).AddDate(0, -1, 0)
}

// NextPeriod returns the first day of the month after ref.
func NextPeriod(ref time.Time) time.Time {
	return StartOfMonth(ref).AddDate(0, 1, 0)
}

// Day describes one column of the month grid.
type Day struct {
	Number  int
	Weekday string
	Date    time.Time
}

// MonthDays enumerates every day of ref's month in order.
func MonthDays(ref time.Time) ([]Day, error) {
	if ref.IsZero() {
		return nil, ErrNoReferenceDate
	}
	first := StartOfMonth(ref)
	last := first.AddDate(0, 1, -1).Day()
	days := make([]Day, 0, last)
	for i := 1; i <= last; i++ {
		d := first.AddDate(0, 0, i-1)
		days = append(days, Day{Number: i, Weekday: d.Format("Mon"), Date: d})
	}
	return days, nil
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
