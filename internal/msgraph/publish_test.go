package msgraph_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/msgraph"
)

func TestMapEvent(t *testing.T) {
	ev := model.Event{ID: 4, ResourceIndex: 2, LeftOffset: 160, Width: 30, Color: "#ff8800"}
	got, err := msgraph.MapEvent("2025-02", ev, "UTC")
	if err != nil {
		t.Fatalf("MapEvent: %v", err)
	}
	if got.Start.DateTime != "2025-02-03T05:20:00" || got.End.DateTime != "2025-02-03T15:20:00" {
		t.Errorf("start/end = %s / %s", got.Start.DateTime, got.End.DateTime)
	}
	if got.Start.TimeZone != "UTC" {
		t.Errorf("timezone = %q", got.Start.TimeZone)
	}
	if got.Subject != "Resource 3" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if got.TransactionID != model.EventUID("2025-02", 4).String() {
		t.Errorf("TransactionID = %q", got.TransactionID)
	}
	if got.Body == nil || !strings.Contains(got.Body.Content, "05:20 - 15:20") {
		t.Errorf("Body = %+v", got.Body)
	}
}

func TestMapEventTimezone(t *testing.T) {
	ev := model.Event{ID: 1, LeftOffset: 3, Width: 3}
	got, err := msgraph.MapEvent("2025-07", ev, "Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	if got.Start.DateTime != "2025-07-01T01:00:00" || got.Start.TimeZone != "Europe/Berlin" {
		t.Errorf("start = %+v", got.Start)
	}
}

func TestMapEventRejectsBadInput(t *testing.T) {
	if _, err := msgraph.MapEvent("2025-02", model.Event{Width: 1}, "Mars/Olympus"); err == nil {
		t.Error("expected error for unknown timezone")
	}
	if _, err := msgraph.MapEvent("02/2025", model.Event{Width: 1}, ""); err == nil {
		t.Error("expected error for bad period key")
	}
}

// fakeGraph serves calendarView and event creation for one calendar.
type fakeGraph struct {
	mu       sync.Mutex
	existing []msgraph.CalendarEvent
	created  []msgraph.CalendarEvent
	paths    []string
	failPost bool
}

func (f *fakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/calendarView"):
		if r.URL.Query().Get("startDateTime") == "" {
			http.Error(w, "missing range", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"value": f.existing})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		if f.failPost {
			http.Error(w, `{"error":"throttled"}`, http.StatusTooManyRequests)
			return
		}
		var ev msgraph.CalendarEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ev.ID = "graph-" + ev.TransactionID[:8]
		f.created = append(f.created, ev)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ev)
	default:
		http.NotFound(w, r)
	}
}

func period() model.PeriodRecord {
	return model.PeriodRecord{
		ResourceCount: 15,
		Events: []model.Event{
			{ID: 1, ResourceIndex: 0, LeftOffset: 0, Width: 9, Color: "#111111"},
			{ID: 2, ResourceIndex: 4, LeftOffset: 100, Width: 30, Color: "#222222"},
		},
	}
}

func TestPublishSkipsAlreadyPublished(t *testing.T) {
	fake := &fakeGraph{existing: []msgraph.CalendarEvent{
		{ID: "old", TransactionID: model.EventUID("2025-02", 1).String()},
		{ID: "foreign"},
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	var out bytes.Buffer
	c := msgraph.NewClient(srv.Client(), srv.URL)
	res, err := msgraph.Publish(context.Background(), c, period(), msgraph.PublishOptions{PeriodKey: "2025-02", Out: &out})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Created != 1 || res.Skipped != 1 || res.Errors != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(fake.created) != 1 || fake.created[0].TransactionID != model.EventUID("2025-02", 2).String() {
		t.Errorf("created = %+v", fake.created)
	}
	if !strings.Contains(out.String(), "Skipped") || !strings.Contains(out.String(), "Resource 5") {
		t.Errorf("output = %q", out.String())
	}
	if fake.paths[0] != "GET /me/calendarView" {
		t.Errorf("first request = %s", fake.paths[0])
	}
}

func TestPublishDryRunCreatesNothing(t *testing.T) {
	fake := &fakeGraph{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := msgraph.NewClient(srv.Client(), srv.URL)
	res, err := msgraph.Publish(context.Background(), c, period(), msgraph.PublishOptions{PeriodKey: "2025-02", DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 2 || len(fake.created) != 0 {
		t.Errorf("dry run: result=%+v created=%d", res, len(fake.created))
	}
}

func TestPublishToNamedCalendarCountsErrors(t *testing.T) {
	fake := &fakeGraph{failPost: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := msgraph.NewClient(srv.Client(), srv.URL)
	res, err := msgraph.Publish(context.Background(), c, period(), msgraph.PublishOptions{PeriodKey: "2025-02", CalendarID: "team"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Errors != 2 || res.Created != 0 {
		t.Errorf("result = %+v", res)
	}
	for _, p := range fake.paths {
		if !strings.HasPrefix(p, "GET /me/calendars/team/") && !strings.HasPrefix(p, "POST /me/calendars/team/") {
			t.Errorf("request outside named calendar: %s", p)
		}
	}
}

func TestPublishEmptyPeriodMakesNoRequests(t *testing.T) {
	fake := &fakeGraph{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := msgraph.NewClient(srv.Client(), srv.URL)
	res, err := msgraph.Publish(context.Background(), c, model.NewPeriodRecord(), msgraph.PublishOptions{PeriodKey: "2025-02"})
	if err != nil || res != (msgraph.PublishResult{}) {
		t.Errorf("result = %+v, err = %v", res, err)
	}
	if len(fake.paths) != 0 {
		t.Errorf("requests = %v", fake.paths)
	}
}
