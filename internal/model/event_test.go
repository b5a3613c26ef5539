package model_test

import (
	"encoding/json"
	"testing"

	"github.com/Tiliavir/resource-board/internal/model"
)

func TestPeriodRecordLegacyFields(t *testing.T) {
	data := []byte(`{"events":[{"id":7,"resourceIndex":2,"left":100,"width":60,"color":"#00ff00"}],"resources":18}`)

	var rec model.PeriodRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rec.ResourceCount != 18 {
		t.Errorf("ResourceCount = %d, want 18", rec.ResourceCount)
	}
	if len(rec.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.Events))
	}
	if rec.Events[0].LeftOffset != 100 {
		t.Errorf("LeftOffset = %v, want 100", rec.Events[0].LeftOffset)
	}
}

func TestPeriodRecordCurrentFieldsWin(t *testing.T) {
	data := []byte(`{"events":[{"id":1,"resourceIndex":0,"leftOffset":5,"left":99,"width":10,"color":"#000000"}],"resourceCount":16,"resources":3}`)

	var rec model.PeriodRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rec.ResourceCount != 16 {
		t.Errorf("ResourceCount = %d, want 16", rec.ResourceCount)
	}
	if rec.Events[0].LeftOffset != 5 {
		t.Errorf("LeftOffset = %v, want 5", rec.Events[0].LeftOffset)
	}
}

func TestPeriodRecordNormalize(t *testing.T) {
	rec := model.PeriodRecord{
		Events: []model.Event{
			{ID: 1, ResourceIndex: 0, Width: 10},
			{ID: 2, ResourceIndex: 1, Width: 0},
			{ID: 3, ResourceIndex: -1, Width: 20},
			{ID: 4, ResourceIndex: 3, LeftOffset: -50, Width: 5},
		},
		ResourceCount: 0,
	}

	dropped := rec.Normalize()
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if rec.ResourceCount != model.DefaultResourceCount {
		t.Errorf("ResourceCount = %d, want %d", rec.ResourceCount, model.DefaultResourceCount)
	}
	if len(rec.Events) != 2 || rec.Events[0].ID != 1 || rec.Events[1].ID != 4 {
		t.Errorf("events = %+v, want ids 1 and 4", rec.Events)
	}
}

func TestPeriodRecordClone(t *testing.T) {
	rec := model.PeriodRecord{Events: []model.Event{{ID: 1, Width: 10}}, ResourceCount: 15}
	c := rec.Clone()
	c.Events[0].Width = 99
	if rec.Events[0].Width != 10 {
		t.Error("Clone shares the events slice with the original")
	}
}

func TestEventUIDIsStable(t *testing.T) {
	a := model.EventUID("2025-02", 7)
	if a != model.EventUID("2025-02", 7) {
		t.Error("EventUID not deterministic")
	}
	if a == model.EventUID("2025-03", 7) || a == model.EventUID("2025-02", 8) {
		t.Error("EventUID collides across periods or ids")
	}
	if a.Version() != 5 {
		t.Errorf("version = %d, want 5", a.Version())
	}
}
