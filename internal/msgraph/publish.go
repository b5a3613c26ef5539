package msgraph

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// PublishResult holds counters for a publish run.
type PublishResult struct {
	Created int
	Skipped int
	Errors  int
}

// PublishOptions configures a publish run.
type PublishOptions struct {
	PeriodKey  string
	CalendarID string
	// Timezone is an IANA name; "" = UTC.
	Timezone string
	DryRun   bool
	// Out receives one progress line per event. Nil discards them.
	Out io.Writer
}

// Category tags every event published from the board.
const Category = "resource-board"

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

// MapEvent converts a board event into a Graph event. The event starts
// left*20 minutes after midnight on the first day of the period and lasts
// width*20 minutes.
func MapEvent(periodKey string, ev model.Event, timezone string) (CalendarEvent, error) {
	loc, err := loadLocation(timezone)
	if err != nil {
		return CalendarEvent{}, err
	}
	base, err := timecalc.ParsePeriodKey(periodKey, loc)
	if err != nil {
		return CalendarEvent{}, err
	}
	start := base.Add(timecalc.PixelsToOffset(ev.LeftOffset))
	end := base.Add(timecalc.PixelsToOffset(ev.Right()))
	resource := fmt.Sprintf("Resource %d", ev.ResourceIndex+1)

	return CalendarEvent{
		Subject: resource,
		Body: &ItemBody{
			ContentType: "text",
			Content:     fmt.Sprintf("%s, %s (board event %d, color %s)", resource, timecalc.RangeLabel(ev.LeftOffset, ev.Width), ev.ID, ev.Color),
		},
		Start:         NewDateTimeZone(start),
		End:           NewDateTimeZone(end),
		Location:      &Location{DisplayName: resource},
		Categories:    []string{Category},
		ShowAs:        "busy",
		TransactionID: model.EventUID(periodKey, ev.ID).String(),
	}, nil
}

// Publish creates a Graph event for every event in rec that is not already
// in the calendar. Events are matched by transactionId, so re-running is safe.
func Publish(ctx context.Context, c *Client, rec model.PeriodRecord, opts PublishOptions) (PublishResult, error) {
	var result PublishResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	mapped := make([]CalendarEvent, 0, len(rec.Events))
	var from, to time.Time
	for _, ev := range rec.Events {
		ge, err := MapEvent(opts.PeriodKey, ev, opts.Timezone)
		if err != nil {
			return result, fmt.Errorf("mapping event %d: %w", ev.ID, err)
		}
		start, _ := time.Parse(graphTimeLayout, ge.Start.DateTime)
		end, _ := time.Parse(graphTimeLayout, ge.End.DateTime)
		if from.IsZero() || start.Before(from) {
			from = start
		}
		if end.After(to) {
			to = end
		}
		mapped = append(mapped, ge)
	}
	if len(mapped) == 0 {
		return result, nil
	}

	// Widen by a day on both sides so zone offsets never push an event out of the view.
	existing, err := c.GetCalendarView(ctx, opts.CalendarID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
	if err != nil {
		return result, fmt.Errorf("listing calendar: %w", err)
	}
	published := make(map[string]bool, len(existing))
	for _, ev := range existing {
		if ev.TransactionID != "" {
			published[ev.TransactionID] = true
		}
	}

	for i, ge := range mapped {
		src := rec.Events[i]
		dur := timecalc.FormatDuration(int64(timecalc.PixelsToOffset(src.Width).Seconds()))
		desc := fmt.Sprintf("%s %s (%s)", ge.Subject, timecalc.RangeLabel(src.LeftOffset, src.Width), dur)

		if published[ge.TransactionID] {
			fmt.Fprintf(out, "  – Skipped:   %s (already published)\n", desc)
			result.Skipped++
			continue
		}
		if !opts.DryRun {
			if _, err := c.CreateEvent(ctx, opts.CalendarID, ge); err != nil {
				fmt.Fprintf(out, "  ! Error publishing %s: %v\n", desc, err)
				result.Errors++
				continue
			}
		}
		fmt.Fprintf(out, "  ✓ Published: %s\n", desc)
		result.Created++
	}
	return result, nil
}
