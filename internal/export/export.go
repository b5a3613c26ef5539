// Package export renders a stored period as JSON, iCalendar or PDF.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatICS  = "ics"
	FormatPDF  = "pdf"
)

// Formats lists every format Write accepts.
var Formats = []string{FormatJSON, FormatICS, FormatPDF}

// Options controls how pixel geometry maps onto wall-clock time.
type Options struct {
	// Location of the period's first midnight. Nil = time.Local.
	Location *time.Location
	// Now stamps generated documents. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Item is one event placed on the wall clock.
type Item struct {
	Event model.Event
	Start time.Time
	End   time.Time
	Label string
}

// Items places every event of rec on the wall clock, ordered by row and then
// by start. Offsets are measured from midnight on the first day of the period.
func Items(periodKey string, rec model.PeriodRecord, loc *time.Location) ([]Item, error) {
	start, err := timecalc.ParsePeriodKey(periodKey, loc)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rec.Events))
	for _, ev := range rec.Events {
		items = append(items, Item{
			Event: ev,
			Start: start.Add(timecalc.PixelsToOffset(ev.LeftOffset)),
			End:   start.Add(timecalc.PixelsToOffset(ev.Right())),
			Label: timecalc.RangeLabel(ev.LeftOffset, ev.Width),
		})
	}
	slices.SortStableFunc(items, func(a, b Item) int {
		if a.Event.ResourceIndex != b.Event.ResourceIndex {
			return a.Event.ResourceIndex - b.Event.ResourceIndex
		}
		return a.Start.Compare(b.Start)
	})
	return items, nil
}

// Write renders rec in the named format.
func Write(w io.Writer, format, periodKey string, rec model.PeriodRecord, opts Options) error {
	switch format {
	case FormatJSON:
		return JSON(w, periodKey, rec, opts)
	case FormatICS:
		return ICS(w, periodKey, rec, opts)
	case FormatPDF:
		return PDF(w, periodKey, rec, opts)
	}
	return fmt.Errorf("unknown export format %q (want one of %v)", format, Formats)
}

type jsonEvent struct {
	model.Event
	UID   string    `json:"uid"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

type jsonPeriod struct {
	Period        string      `json:"period"`
	ResourceCount int         `json:"resourceCount"`
	Events        []jsonEvent `json:"events"`
}

// JSON writes the period with wall-clock times next to the stored geometry.
func JSON(w io.Writer, periodKey string, rec model.PeriodRecord, opts Options) error {
	items, err := Items(periodKey, rec, opts.Location)
	if err != nil {
		return err
	}
	out := jsonPeriod{Period: periodKey, ResourceCount: rec.ResourceCount, Events: make([]jsonEvent, 0, len(items))}
	for _, it := range items {
		out.Events = append(out.Events, jsonEvent{
			Event: it.Event,
			UID:   model.EventUID(periodKey, it.Event.ID).String(),
			Start: it.Start,
			End:   it.End,
			Label: it.Label,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding json export: %w", err)
	}
	return nil
}
