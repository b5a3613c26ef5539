package script_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/script"
	"github.com/Tiliavir/resource-board/internal/storage"
)

func newRunner(t *testing.T) (*board.Board, *script.Runner, *storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	answers := &script.Answers{}
	g := board.DefaultGeometry()
	g.ContainerLeft = 100
	b := board.New(store, board.Options{
		Geometry: g,
		Color:    func() string { return "#00ff00" },
		Confirm:  answers,
	})
	return b, script.NewRunner(b, answers, nil), store
}

func mustParse(t *testing.T, src string) script.Script {
	t.Helper()
	s, err := script.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestRunCreateMoveResize(t *testing.T) {
	b, r, store := newRunner(t)
	s := mustParse(t, `
period: 2025-02
steps:
  - {op: down, row: 2, x: 100}
  - {op: move, x: 160}
  - {op: up}
  - {op: down, x: 120}
  - {op: move, x: 140, row: 4}
  - {op: up}
  - {op: down, x: 175}
  - {op: move, x: 215}
  - {op: up}
`)
	results, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantOutcomes := map[int]string{3: "created", 6: "moved", 9: "resized"}
	for step, want := range wantOutcomes {
		if got := results[step-1].Outcome; got != want {
			t.Errorf("step %d outcome = %q, want %q", step, got, want)
		}
	}
	if results[3].Hit != "body" || results[6].Hit != "resize-handle" {
		t.Errorf("hits = %q, %q", results[3].Hit, results[6].Hit)
	}

	events := b.Events()
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}
	ev := events[0]
	if ev.ResourceIndex != 4 || ev.LeftOffset != 120 || ev.Width != 100 || ev.Color != "#00ff00" {
		t.Errorf("event = %+v", ev)
	}
	rec, _, _ := store.Load(context.Background(), "2025-02")
	if len(rec.Events) != 1 || rec.Events[0] != ev {
		t.Errorf("stored = %+v", rec.Events)
	}
}

func TestRunDeleteUsesStepAnswer(t *testing.T) {
	b, r, _ := newRunner(t)
	s := mustParse(t, `
period: "2025-02"
confirm: false
steps:
  - {op: down, row: 0, x: 10}
  - {op: move, x: 90}
  - {op: up}
  - {op: delete, id: 1}
  - {op: delete, id: 1, confirm: true}
`)
	results, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if results[3].Outcome != "" {
		t.Errorf("declined delete outcome = %q", results[3].Outcome)
	}
	if results[4].Outcome != "deleted" {
		t.Errorf("confirmed delete outcome = %q", results[4].Outcome)
	}
	if len(b.Events()) != 0 {
		t.Errorf("events left: %+v", b.Events())
	}
}

func TestRunSwitchMidDragAndStaleAddRow(t *testing.T) {
	b, r, store := newRunner(t)
	s := mustParse(t, `
period: 2025-02
steps:
  - {op: down, row: 1, x: 0}
  - {op: move, x: 300}
  - {op: next}
  - {op: up}
  - {op: add-row, period: 2025-02}
  - {op: add-row}
`)
	results, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if results[3].Outcome != "" {
		t.Errorf("release after switch = %q, want nothing", results[3].Outcome)
	}
	if results[4].Outcome != "ignored" {
		t.Errorf("stale add-row = %q, want ignored", results[4].Outcome)
	}
	if b.Period() != "2025-03" || b.ResourceCount() != 16 || len(b.Events()) != 0 {
		t.Errorf("board = %s %+v", b.Period(), b.Snapshot())
	}
	feb, _, _ := store.Load(context.Background(), "2025-02")
	if len(feb.Events) != 0 || feb.ResourceCount != 15 {
		t.Errorf("february = %+v", feb)
	}
}

func TestRunRecordsRejectedInput(t *testing.T) {
	_, r, _ := newRunner(t)
	s := mustParse(t, `
steps:
  - {op: down, row: 0, x: 10}
`)
	results, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Rejected == "" {
		t.Error("input before hydration was not rejected")
	}
}

func TestRunCancelAndFocusLost(t *testing.T) {
	b, r, _ := newRunner(t)
	s := mustParse(t, `
period: 2025-02
steps:
  - {op: down, row: 0, x: 10}
  - {op: move, x: 90}
  - {op: cancel}
  - {op: up}
  - {op: down, row: 0, x: 10}
  - {op: focus-lost}
  - {op: leave, row: 0}
`)
	results, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if results[2].Outcome != "discarded" || results[5].Outcome != "discarded" {
		t.Errorf("outcomes = %q, %q", results[2].Outcome, results[5].Outcome)
	}
	if len(b.Events()) != 0 {
		t.Errorf("events = %+v", b.Events())
	}
}

func TestParseRejectsBadScripts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ``},
		{"unknown op", "steps:\n  - {op: jump}\n"},
		{"unknown field", "steps:\n  - {op: up, speed: 3}\n"},
		{"down without x", "steps:\n  - {op: down, row: 1}\n"},
		{"switch without period", "steps:\n  - {op: switch}\n"},
		{"delete without id", "steps:\n  - {op: delete}\n"},
		{"leave without row", "steps:\n  - {op: leave}\n"},
	}
	for _, tt := range tests {
		if _, err := script.Parse(strings.NewReader(tt.src)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestResultString(t *testing.T) {
	r := script.Result{Step: 3, Op: "up", Period: "2025-02", Outcome: "created", EventID: 7}
	got := r.String()
	if !strings.Contains(got, "outcome=created") || !strings.Contains(got, "event=7") {
		t.Errorf("String() = %q", got)
	}
}
