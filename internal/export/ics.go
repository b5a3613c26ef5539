package export

import (
	"fmt"
	"io"

	ical "github.com/arran4/golang-ical"

	"github.com/Tiliavir/resource-board/internal/model"
)

const productID = "-//Tiliavir//resource-board//EN"

// ICS writes the period as an iCalendar document with one VEVENT per event.
// UIDs are derived from the period key and event id.
func ICS(w io.Writer, periodKey string, rec model.PeriodRecord, opts Options) error {
	items, err := Items(periodKey, rec, opts.Location)
	if err != nil {
		return err
	}
	stamp := opts.now()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("Resource board " + periodKey)

	for _, it := range items {
		ev := cal.AddEvent(model.EventUID(periodKey, it.Event.ID).String())
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(it.Start)
		ev.SetEndAt(it.End)
		ev.SetSummary(fmt.Sprintf("Resource %d: %s", it.Event.ResourceIndex+1, it.Label))
		ev.SetLocation(fmt.Sprintf("Resource %d", it.Event.ResourceIndex+1))
		ev.SetDescription(fmt.Sprintf("Board event %d, color %s", it.Event.ID, it.Event.Color))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing ics export: %w", err)
	}
	return nil
}
