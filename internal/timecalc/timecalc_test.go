package timecalc_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/Tiliavir/resource-board/internal/timecalc"
)

func TestPixelsToTime(t *testing.T) {
	tests := []struct {
		px   float64
		want string
	}{
		{0, "00:00"},
		{3, "01:00"},
		{100, "09:20"},
		{160, "05:20"},
		{72, "00:00"},
		{71, "23:40"},
		{-1, "23:40"},
		{-72, "00:00"},
		{-100, "14:40"},
		{0.5, "00:10"},
		{0.025, "00:01"},
	}
	for _, tt := range tests {
		got := timecalc.PixelsToTime(tt.px)
		if got != tt.want {
			t.Errorf("PixelsToTime(%v) = %q, want %q", tt.px, got, tt.want)
		}
	}
}

func TestPixelsToTimeAlwaysValid(t *testing.T) {
	re := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	for px := -5000.0; px <= 5000; px += 13.37 {
		if got := timecalc.PixelsToTime(px); !re.MatchString(got) {
			t.Fatalf("PixelsToTime(%v) = %q, not a valid HH:MM", px, got)
		}
	}
}

func TestRangeLabel(t *testing.T) {
	got := timecalc.RangeLabel(100, 60)
	if got != "09:20 - 05:20" {
		t.Errorf("RangeLabel(100, 60) = %q, want %q", got, "09:20 - 05:20")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{1200, "20m"},
		{3600, "1h 0m"},
		{72000, "20h 0m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPeriodNavigation(t *testing.T) {
	jan31 := time.Date(2025, 1, 31, 15, 0, 0, 0, time.UTC)

	if got := timecalc.PeriodKey(timecalc.NextPeriod(jan31)); got != "2025-02" {
		t.Errorf("NextPeriod(2025-01-31) = %q, want 2025-02", got)
	}
	if got := timecalc.PeriodKey(timecalc.PrevPeriod(jan31)); got != "2024-12" {
		t.Errorf("PrevPeriod(2025-01-31) = %q, want 2024-12", got)
	}
}

func TestParsePeriodKey(t *testing.T) {
	got, err := timecalc.ParsePeriodKey("2025-03", time.UTC)
	if err != nil {
		t.Fatalf("ParsePeriodKey: %v", err)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParsePeriodKey = %v, want %v", got, want)
	}

	if _, err := timecalc.ParsePeriodKey("March", time.UTC); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestMonthDays(t *testing.T) {
	days, err := timecalc.MonthDays(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthDays: %v", err)
	}
	if len(days) != 29 {
		t.Fatalf("MonthDays(2024-02) = %d days, want 29", len(days))
	}
	if days[0].Number != 1 || days[0].Weekday != "Thu" {
		t.Errorf("first day = %+v, want 1 Thu", days[0])
	}
	if days[28].Number != 29 {
		t.Errorf("last day = %d, want 29", days[28].Number)
	}

	if _, err := timecalc.MonthDays(time.Time{}); err == nil {
		t.Error("expected error for zero reference date")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}
