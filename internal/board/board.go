// Package board implements the resource-by-day scheduling board: the event
// model, resource rows, the pointer interaction engine and the period
// controller that keeps them in sync with durable storage.
//
// A Board is driven by one input dispatcher at a time and is not safe for
// concurrent use.
package board

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// ErrNotHydrated is returned for input that arrives before the active period
// has been loaded.
var ErrNotHydrated = errors.New("board has no hydrated period")

// ErrUnknownEvent is returned when an event id does not exist in the active period.
var ErrUnknownEvent = errors.New("unknown event")

// ErrNoSuchRow is returned for a resource row the active period does not have.
var ErrNoSuchRow = errors.New("no such resource row")

// PersistenceStore is the durable per-period storage the board loads from and saves to.
type PersistenceStore interface {
	Load(ctx context.Context, periodKey string) (model.PeriodRecord, bool, error)
	Save(ctx context.Context, periodKey string, rec model.PeriodRecord) error
}

// Confirmer answers the delete confirmation prompt.
type Confirmer interface {
	ConfirmDelete(ev model.Event) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ev model.Event) bool

// ConfirmDelete calls f(ev).
func (f ConfirmFunc) ConfirmDelete(ev model.Event) bool { return f(ev) }

// Options configures a Board.
type Options struct {
	Geometry Geometry
	// Color picks the color of a newly created event. Defaults to RandomColor.
	Color func() string
	// Confirm answers delete prompts. Defaults to always declining.
	Confirm Confirmer
	// Now is the clock used for "jump to current period". Defaults to time.Now.
	Now func() time.Time
	// DefaultResources is the row count of a period with no stored record.
	// Defaults to model.DefaultResourceCount.
	DefaultResources int
	Logger           *slog.Logger
}

// Board is the period controller: it owns the event model, the resource
// manager and the interaction engine of the active period.
type Board struct {
	store       PersistenceStore
	ids         *IDAllocator
	events      *EventModel
	rows        *ResourceManager
	engine      *Engine
	confirm     Confirmer
	now         func() time.Time
	defaultRows int
	logger      *slog.Logger

	period   string
	ref      time.Time
	hydrated bool
}

// New returns an un-hydrated board. Call SwitchPeriod before feeding input.
func New(store PersistenceStore, opts Options) *Board {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	confirm := opts.Confirm
	if confirm == nil {
		confirm = ConfirmFunc(func(model.Event) bool { return false })
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	defaultRows := opts.DefaultResources
	if defaultRows <= 0 {
		defaultRows = model.DefaultResourceCount
	}
	ids := &IDAllocator{}
	events := NewEventModel(ids)
	rows := NewResourceManager()
	return &Board{
		store:       store,
		ids:         ids,
		events:      events,
		rows:        rows,
		engine:      NewEngine(events, rows, opts.Geometry, opts.Color, logger),
		confirm:     confirm,
		now:         now,
		defaultRows: defaultRows,
		logger:      logger.With("component", "board"),
	}
}

// Period returns the active period key, or "" before the first switch.
func (b *Board) Period() string {
	return b.period
}

// Reference returns the first day of the active period.
func (b *Board) Reference() time.Time {
	return b.ref
}

// Hydrated reports whether the active period has been loaded.
func (b *Board) Hydrated() bool {
	return b.hydrated
}

// Geometry returns the surface layout.
func (b *Board) Geometry() Geometry {
	return b.engine.Geometry()
}

// Mode returns the active interaction mode.
func (b *Board) Mode() Mode {
	return b.engine.State().Mode()
}

// State returns the active interaction state.
func (b *Board) State() State {
	return b.engine.State()
}

// ResourceCount returns the row count of the active period.
func (b *Board) ResourceCount() int {
	return b.rows.Count()
}

// Events returns the committed events of the active period.
func (b *Board) Events() []model.Event {
	return b.events.All()
}

// Event returns the committed event with the given id.
func (b *Board) Event(id int64) (model.Event, bool) {
	return b.events.Get(id)
}

// Snapshot returns the active period as a record.
func (b *Board) Snapshot() model.PeriodRecord {
	return model.PeriodRecord{Events: b.events.All(), ResourceCount: b.rows.Count()}
}

// SwitchPeriod makes ref's month the active period. Any in-flight
// interaction is abandoned first, the outgoing period is persisted, and the
// new period is hydrated from the store before input is accepted again.
func (b *Board) SwitchPeriod(ctx context.Context, ref time.Time) error {
	if ref.IsZero() {
		return timecalc.ErrNoReferenceDate
	}
	key := timecalc.PeriodKey(ref)

	if b.engine.Abandon() {
		b.logger.Info("in-flight interaction discarded by period switch", "from", b.period, "to", key)
	}
	if b.hydrated {
		if err := b.persist(ctx); err != nil {
			return err
		}
	}

	b.hydrated = false
	rec, found, err := b.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("loading period %s: %w", key, err)
	}
	if !found {
		rec = model.NewPeriodRecord()
		rec.ResourceCount = b.defaultRows
	}
	if dropped := rec.Normalize(); dropped > 0 {
		b.logger.Warn("dropped invalid stored events", "period", key, "count", dropped)
	}

	b.period = key
	b.ref = timecalc.StartOfMonth(ref)
	b.events.Reset(rec.Events)
	b.rows.Reset(key, rec.ResourceCount)
	b.hydrated = true
	b.logger.Debug("period hydrated", "period", key, "found", found, "events", len(rec.Events), "resources", rec.ResourceCount)
	return nil
}

// SwitchPeriodKey is SwitchPeriod for a "YYYY-MM" key.
func (b *Board) SwitchPeriodKey(ctx context.Context, key string) error {
	ref, err := timecalc.ParsePeriodKey(key, nil)
	if err != nil {
		return err
	}
	return b.SwitchPeriod(ctx, ref)
}

// PreviousPeriod switches to the month before the active one.
func (b *Board) PreviousPeriod(ctx context.Context) error {
	return b.SwitchPeriod(ctx, timecalc.PrevPeriod(b.reference()))
}

// NextPeriod switches to the month after the active one.
func (b *Board) NextPeriod(ctx context.Context) error {
	return b.SwitchPeriod(ctx, timecalc.NextPeriod(b.reference()))
}

// CurrentPeriod switches to the month containing today.
func (b *Board) CurrentPeriod(ctx context.Context) error {
	return b.SwitchPeriod(ctx, b.now())
}

func (b *Board) reference() time.Time {
	if b.ref.IsZero() {
		return b.now()
	}
	return b.ref
}

// HitTest resolves what lies under p. Events drawn later sit on top.
func (b *Board) HitTest(p Pointer) Hit {
	g := b.engine.Geometry()
	row := g.RowAt(p.Y)
	if !b.rows.Contains(row) {
		return Hit{Kind: HitNone, Row: row}
	}
	x := p.X - g.ContainerLeft
	yIn := p.Y - g.ContainerTop - float64(row)*g.RowHeight

	hit := Hit{Kind: HitEmpty, Row: row}
	for ev := range b.events.ByResource(row) {
		if k := g.hitEvent(ev, x, yIn); k != HitNone {
			hit = Hit{Kind: k, Row: row, Event: ev}
		}
	}
	return hit
}

// PointerDown starts the interaction matching what lies under p. A press on
// an event's delete control goes through the delete confirmation instead.
func (b *Board) PointerDown(ctx context.Context, p Pointer) (Hit, error) {
	if !b.hydrated {
		return Hit{}, ErrNotHydrated
	}
	hit := b.HitTest(p)
	var err error
	switch hit.Kind {
	case HitEmpty:
		err = b.engine.BeginCreate(hit.Row, p)
	case HitBody:
		err = b.engine.BeginMove(hit.Event, p)
	case HitResizeHandle:
		err = b.engine.BeginResize(hit.Event, p)
	case HitDelete:
		_, err = b.RequestDelete(ctx, hit.Event.ID)
	}
	return hit, err
}

// PointerMove feeds a pointer sample. During a create drag, moving onto
// another row counts as leaving the drag's row.
func (b *Board) PointerMove(ctx context.Context, p Pointer) (Outcome, error) {
	if !b.hydrated {
		return Outcome{}, ErrNotHydrated
	}
	if s, ok := b.engine.State().(CreateDrag); ok {
		if row := b.engine.Geometry().RowAt(p.Y); row != s.ResourceIndex {
			return b.PointerLeave(ctx, s.ResourceIndex)
		}
	}
	b.engine.Move(p)
	return Outcome{}, nil
}

// PointerUp ends the active interaction and persists any committed change.
func (b *Board) PointerUp(ctx context.Context) (Outcome, error) {
	if !b.hydrated {
		return Outcome{}, ErrNotHydrated
	}
	return b.commit(ctx, b.engine.Release())
}

// PointerLeave reports that the pointer left row.
func (b *Board) PointerLeave(ctx context.Context, row int) (Outcome, error) {
	if !b.hydrated {
		return Outcome{}, ErrNotHydrated
	}
	return b.commit(ctx, b.engine.Leave(row))
}

// Cancel discards the active interaction without touching the model.
func (b *Board) Cancel() bool {
	return b.engine.Abandon()
}

// FocusLost is called when the surface loses pointer capture. A release
// will never arrive, so the interaction is discarded.
func (b *Board) FocusLost() bool {
	if b.engine.Abandon() {
		b.logger.Info("interaction discarded after focus loss", "period", b.period)
		return true
	}
	return false
}

// RequestDelete asks the confirmer and deletes the event on "yes".
func (b *Board) RequestDelete(ctx context.Context, id int64) (bool, error) {
	if !b.hydrated {
		return false, ErrNotHydrated
	}
	ev, ok := b.events.Get(id)
	if !ok {
		return false, nil
	}
	if !b.confirm.ConfirmDelete(ev) {
		return false, nil
	}
	return b.Delete(ctx, id)
}

// Delete removes the event unconditionally. Deleting the target of an
// in-flight move or resize abandons that interaction.
func (b *Board) Delete(ctx context.Context, id int64) (bool, error) {
	if !b.hydrated {
		return false, ErrNotHydrated
	}
	if target, ok := b.engine.Target(); ok && target == id {
		b.engine.Abandon()
	}
	if !b.events.Remove(id) {
		return false, nil
	}
	return true, b.persist(ctx)
}

// AddRow applies an add-row command. Commands addressed to another period
// are ignored.
func (b *Board) AddRow(ctx context.Context, cmd AddRowCommand) (bool, error) {
	if !b.hydrated {
		return false, ErrNotHydrated
	}
	if !b.rows.Apply(cmd) {
		b.logger.Debug("stale add-row ignored", "target", cmd.TargetPeriodKey, "active", b.period)
		return false, nil
	}
	return true, b.persist(ctx)
}

// CreateEvent performs a create drag of width pixels starting at left on row.
func (b *Board) CreateEvent(ctx context.Context, row int, left, width float64) (Outcome, error) {
	if !b.hydrated {
		return Outcome{}, ErrNotHydrated
	}
	if !b.rows.Contains(row) {
		return Outcome{}, fmt.Errorf("row %d of %d: %w", row, b.rows.Count(), ErrNoSuchRow)
	}
	g := b.engine.Geometry()
	start := Pointer{X: g.ContainerLeft + left, Y: g.RowCenter(row)}
	if err := b.engine.BeginCreate(row, start); err != nil {
		return Outcome{}, err
	}
	b.engine.Move(Pointer{X: start.X + width, Y: start.Y})
	return b.commit(ctx, b.engine.Release())
}

// MoveEvent drags event id so that it lands at left on row. The row is
// clamped like any other move.
func (b *Board) MoveEvent(ctx context.Context, id int64, left float64, row int) (Outcome, error) {
	if !b.hydrated {
		return Outcome{}, ErrNotHydrated
	}
	ev, ok := b.events.Get(id)
	if !ok {
		return Outcome{}, fmt.Errorf("event %d: %w", id, ErrUnknownEvent)
	}
	g := b.engine.Geometry()
	start := Pointer{X: g.ContainerLeft + ev.LeftOffset, Y: g.RowCenter(ev.ResourceIndex)}
	if err := b.engine.BeginMove(ev, start); err != nil {
		return Outcome{}, err
	}
	b.engine.Move(Pointer{X: start.X + left - ev.LeftOffset, Y: start.Y + float64(row-ev.ResourceIndex)*g.RowHeight})
	return b.commit(ctx, b.engine.Release())
}

// ResizeEvent drags the trailing edge of event id to the given width, subject
// to the minimum resize width.
func (b *Board) ResizeEvent(ctx context.Context, id int64, width float64) (Outcome, error) {
	if !b.hydrated {
		return Outcome{}, ErrNotHydrated
	}
	ev, ok := b.events.Get(id)
	if !ok {
		return Outcome{}, fmt.Errorf("event %d: %w", id, ErrUnknownEvent)
	}
	g := b.engine.Geometry()
	start := Pointer{X: g.ContainerLeft + ev.Right(), Y: g.RowCenter(ev.ResourceIndex)}
	if err := b.engine.BeginResize(ev, start); err != nil {
		return Outcome{}, err
	}
	b.engine.Move(Pointer{X: start.X + width - ev.Width, Y: start.Y})
	return b.commit(ctx, b.engine.Release())
}

// RowEvents yields the events rendered in row. The target of an in-flight
// move or resize is left out; Preview draws it instead.
func (b *Board) RowEvents(row int) iter.Seq[model.Event] {
	target, dragging := b.engine.Target()
	return func(yield func(model.Event) bool) {
		for ev := range b.events.ByResource(row) {
			if dragging && ev.ID == target {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// Preview is the provisional geometry of the active interaction.
type Preview struct {
	Mode          Mode
	EventID       int64
	ResourceIndex int
	LeftOffset    float64
	Width         float64
	Color         string
}

// Label returns the "HH:MM - HH:MM" label of the preview.
func (p Preview) Label() string {
	return timecalc.RangeLabel(p.LeftOffset, p.Width)
}

// Preview returns the provisional geometry, if an interaction is in progress.
func (b *Board) Preview() (Preview, bool) {
	switch s := b.engine.State().(type) {
	case CreateDrag:
		return Preview{Mode: ModeCreating, ResourceIndex: s.ResourceIndex, LeftOffset: s.Left(), Width: s.Width()}, true
	case MoveDrag:
		return Preview{Mode: ModeMoving, EventID: s.EventID, ResourceIndex: s.ProvisionalResourceIndex,
			LeftOffset: s.ProvisionalLeft, Width: s.Width, Color: s.Color}, true
	case ResizeDrag:
		return Preview{Mode: ModeResizing, EventID: s.EventID, ResourceIndex: s.ResourceIndex,
			LeftOffset: s.LeftOffset, Width: s.Width(), Color: s.Color}, true
	}
	return Preview{}, false
}

func (b *Board) commit(ctx context.Context, out Outcome) (Outcome, error) {
	if !out.Changed() {
		return out, nil
	}
	b.logger.Debug("interaction committed", "outcome", out.Kind.String(), "event", out.Event.ID)
	return out, b.persist(ctx)
}

func (b *Board) persist(ctx context.Context) error {
	if err := b.store.Save(ctx, b.period, b.Snapshot()); err != nil {
		return fmt.Errorf("saving period %s: %w", b.period, err)
	}
	return nil
}
