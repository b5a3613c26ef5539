package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Tiliavir/resource-board/internal/export"
	"github.com/Tiliavir/resource-board/internal/model"
)

func sample() model.PeriodRecord {
	return model.PeriodRecord{
		ResourceCount: 15,
		Events: []model.Event{
			{ID: 3, ResourceIndex: 2, LeftOffset: 160, Width: 30, Color: "#ff0000"},
			{ID: 1, ResourceIndex: 0, LeftOffset: 72, Width: 3, Color: "#00ff00"},
			{ID: 2, ResourceIndex: 2, LeftOffset: 0, Width: 9, Color: "#0000ff"},
		},
	}
}

func fixedOpts() export.Options {
	return export.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC) },
	}
}

func TestItemsPlaceEventsOnWallClock(t *testing.T) {
	items, err := export.Items("2025-02", sample(), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	var ids []int64
	for _, it := range items {
		ids = append(ids, it.Event.ID)
	}
	if want := []int64{1, 2, 3}; !equalIDs(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}

	tests := []struct {
		id         int64
		start, end time.Time
		label      string
	}{
		{1, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 2, 1, 0, 0, 0, time.UTC), "00:00 - 01:00"},
		{2, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC), "00:00 - 03:00"},
		{3, time.Date(2025, 2, 3, 5, 20, 0, 0, time.UTC), time.Date(2025, 2, 3, 15, 20, 0, 0, time.UTC), "05:20 - 15:20"},
	}
	for i, tt := range tests {
		it := items[i]
		if it.Event.ID != tt.id || !it.Start.Equal(tt.start) || !it.End.Equal(tt.end) || it.Label != tt.label {
			t.Errorf("item %d = {%d %v %v %q}, want {%d %v %v %q}",
				i, it.Event.ID, it.Start, it.End, it.Label, tt.id, tt.start, tt.end, tt.label)
		}
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatJSON, "2025-02", sample(), fixedOpts()); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Period        string `json:"period"`
		ResourceCount int    `json:"resourceCount"`
		Events        []struct {
			ID         int64   `json:"id"`
			LeftOffset float64 `json:"leftOffset"`
			UID        string  `json:"uid"`
			Label      string  `json:"label"`
			Start      string  `json:"start"`
		} `json:"events"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if got.Period != "2025-02" || got.ResourceCount != 15 || len(got.Events) != 3 {
		t.Fatalf("export = %+v", got)
	}
	last := got.Events[2]
	if last.ID != 3 || last.LeftOffset != 160 || last.Label != "05:20 - 15:20" || last.Start != "2025-02-03T05:20:00Z" {
		t.Errorf("event = %+v", last)
	}
	if last.UID != model.EventUID("2025-02", 3).String() {
		t.Errorf("uid = %s", last.UID)
	}
}

func TestICSExportParsesBack(t *testing.T) {
	var buf bytes.Buffer
	if err := export.ICS(&buf, "2025-02", sample(), fixedOpts()); err != nil {
		t.Fatal(err)
	}
	cal, err := ical.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseCalendar: %v\n%s", err, buf.String())
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("VEVENTs = %d, want 3", len(events))
	}
	ev := events[2]
	if uid := ev.GetProperty(ical.ComponentPropertyUniqueId); uid == nil || uid.Value != model.EventUID("2025-02", 3).String() {
		t.Errorf("uid = %v", uid)
	}
	start, err := ev.GetStartAt()
	if err != nil || !start.Equal(time.Date(2025, 2, 3, 5, 20, 0, 0, time.UTC)) {
		t.Errorf("start = %v, %v", start, err)
	}
	if s := ev.GetProperty(ical.ComponentPropertySummary); s == nil || s.Value != "Resource 3: 05:20 - 15:20" {
		t.Errorf("summary = %v", s)
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	rec := sample()
	rec.Events = append(rec.Events,
		model.Event{ID: 9, ResourceIndex: 1, LeftOffset: -50, Width: 20, Color: "bogus"},
		model.Event{ID: 10, ResourceIndex: 40, LeftOffset: 10, Width: 20, Color: "#123456"},
	)
	if err := export.Write(&buf, export.FormatPDF, "2025-02", rec, fixedOpts()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	if err := export.Write(&bytes.Buffer{}, "csv", "2025-02", sample(), fixedOpts()); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := export.Write(&bytes.Buffer{}, export.FormatJSON, "Feb", sample(), fixedOpts()); err == nil {
		t.Error("expected error for bad period key")
	}
}
