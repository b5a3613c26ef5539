package board

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/Tiliavir/resource-board/internal/model"
)

// ErrBusy is returned when an interaction starts while another is in progress.
var ErrBusy = errors.New("another interaction is in progress")

// Mode names the active interaction.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCreating
	ModeMoving
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	case ModeMoving:
		return "moving"
	case ModeResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// State is exactly one of Idle, CreateDrag, MoveDrag or ResizeDrag.
type State interface {
	Mode() Mode
	isState()
}

// Idle is the resting state.
type Idle struct{}

// CreateDrag is an in-progress drag that creates a new event on release.
type CreateDrag struct {
	ResourceIndex        int
	AnchorX              float64
	CurrentX             float64
	ContainerLeftAtStart float64
}

// Left returns the provisional container-relative left edge.
func (d CreateDrag) Left() float64 {
	return math.Min(d.AnchorX, d.CurrentX) - d.ContainerLeftAtStart
}

// Width returns the provisional width.
func (d CreateDrag) Width() float64 {
	return math.Abs(d.CurrentX - d.AnchorX)
}

// MoveDrag is an in-progress drag of an existing event's body.
type MoveDrag struct {
	EventID                  int64
	AnchorX, AnchorY         float64
	OriginalLeft             float64
	OriginalResourceIndex    int
	Width                    float64
	Color                    string
	ProvisionalLeft          float64
	ProvisionalResourceIndex int
}

// ResizeDrag is an in-progress drag of an event's trailing edge.
// ProvisionalWidth is zero until the first pointer move.
type ResizeDrag struct {
	EventID          int64
	AnchorX          float64
	OriginalWidth    float64
	ResourceIndex    int
	LeftOffset       float64
	Color            string
	ProvisionalWidth float64
}

// Width returns the width the event would get if released now.
func (d ResizeDrag) Width() float64 {
	if d.ProvisionalWidth == 0 {
		return d.OriginalWidth
	}
	return d.ProvisionalWidth
}

func (Idle) Mode() Mode       { return ModeIdle }
func (CreateDrag) Mode() Mode { return ModeCreating }
func (MoveDrag) Mode() Mode   { return ModeMoving }
func (ResizeDrag) Mode() Mode { return ModeResizing }

func (Idle) isState()       {}
func (CreateDrag) isState() {}
func (MoveDrag) isState()   {}
func (ResizeDrag) isState() {}

// OutcomeKind describes what a terminating pointer event did.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeCreated
	OutcomeMoved
	OutcomeResized
	OutcomeDiscarded
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeMoved:
		return "moved"
	case OutcomeResized:
		return "resized"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "none"
	}
}

// Outcome is the result of ending an interaction.
type Outcome struct {
	Kind  OutcomeKind
	Event model.Event
}

// Changed reports whether the outcome mutated the event model.
func (o Outcome) Changed() bool {
	switch o.Kind {
	case OutcomeCreated, OutcomeMoved, OutcomeResized:
		return true
	}
	return false
}

// RandomColor returns a uniformly sampled "#rrggbb" color.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(1<<24))
}

// Engine is the pointer interaction state machine. It never touches
// persistence; callers persist when an Outcome reports a change.
type Engine struct {
	events   *EventModel
	rows     *ResourceManager
	geom     Geometry
	newColor func() string
	state    State
	logger   *slog.Logger
}

// NewEngine returns an idle engine committing into events.
func NewEngine(events *EventModel, rows *ResourceManager, geom Geometry, newColor func() string, logger *slog.Logger) *Engine {
	if newColor == nil {
		newColor = RandomColor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		events:   events,
		rows:     rows,
		geom:     geom.withDefaults(),
		newColor: newColor,
		state:    Idle{},
		logger:   logger.With("component", "interaction"),
	}
}

// State returns the current interaction state.
func (e *Engine) State() State {
	return e.state
}

// Busy reports whether an interaction is in progress.
func (e *Engine) Busy() bool {
	return e.state.Mode() != ModeIdle
}

// Geometry returns the layout the engine works with.
func (e *Engine) Geometry() Geometry {
	return e.geom
}

// BeginCreate starts a create drag on row at p.
func (e *Engine) BeginCreate(row int, p Pointer) error {
	if e.Busy() {
		return ErrBusy
	}
	e.state = CreateDrag{
		ResourceIndex:        row,
		AnchorX:              p.X,
		CurrentX:             p.X,
		ContainerLeftAtStart: e.geom.ContainerLeft,
	}
	e.logger.Debug("create started", "row", row, "x", p.X)
	return nil
}

// BeginMove starts moving ev from p.
func (e *Engine) BeginMove(ev model.Event, p Pointer) error {
	if e.Busy() {
		return ErrBusy
	}
	e.state = MoveDrag{
		EventID:                  ev.ID,
		AnchorX:                  p.X,
		AnchorY:                  p.Y,
		OriginalLeft:             ev.LeftOffset,
		OriginalResourceIndex:    ev.ResourceIndex,
		Width:                    ev.Width,
		Color:                    ev.Color,
		ProvisionalLeft:          ev.LeftOffset,
		ProvisionalResourceIndex: ev.ResourceIndex,
	}
	e.logger.Debug("move started", "event", ev.ID)
	return nil
}

// BeginResize starts resizing ev from p.
func (e *Engine) BeginResize(ev model.Event, p Pointer) error {
	if e.Busy() {
		return ErrBusy
	}
	e.state = ResizeDrag{
		EventID:       ev.ID,
		AnchorX:       p.X,
		OriginalWidth: ev.Width,
		ResourceIndex: ev.ResourceIndex,
		LeftOffset:    ev.LeftOffset,
		Color:         ev.Color,
	}
	e.logger.Debug("resize started", "event", ev.ID)
	return nil
}

// Move feeds a pointer sample into the active interaction. It only updates
// provisional geometry.
func (e *Engine) Move(p Pointer) {
	switch s := e.state.(type) {
	case CreateDrag:
		s.CurrentX = p.X
		e.state = s
	case MoveDrag:
		dx := p.X - s.AnchorX
		dy := p.Y - s.AnchorY
		rowDelta := int(math.Floor(dy/e.geom.RowHeight + 0.5))
		s.ProvisionalLeft = s.OriginalLeft + dx
		s.ProvisionalResourceIndex = e.rows.Clamp(s.OriginalResourceIndex + rowDelta)
		e.state = s
	case ResizeDrag:
		dx := p.X - s.AnchorX
		s.ProvisionalWidth = math.Max(e.geom.MinResizeWidth, s.OriginalWidth+dx)
		e.state = s
	}
}

// Release ends the active interaction, committing eligible geometry.
func (e *Engine) Release() Outcome {
	state := e.state
	e.state = Idle{}

	switch s := state.(type) {
	case CreateDrag:
		width := s.Width()
		if width <= e.geom.MinCreateWidth {
			e.logger.Debug("create discarded", "width", width)
			return Outcome{Kind: OutcomeDiscarded}
		}
		ev, err := e.events.Add(model.Event{
			ResourceIndex: s.ResourceIndex,
			LeftOffset:    s.Left(),
			Width:         width,
			Color:         e.newColor(),
		})
		if err != nil {
			e.logger.Debug("create rejected", "err", err)
			return Outcome{Kind: OutcomeDiscarded}
		}
		return Outcome{Kind: OutcomeCreated, Event: ev}

	case MoveDrag:
		left, row := s.ProvisionalLeft, s.ProvisionalResourceIndex
		ev, ok := e.events.Update(s.EventID, Patch{LeftOffset: &left, ResourceIndex: &row})
		if !ok {
			return Outcome{Kind: OutcomeDiscarded}
		}
		return Outcome{Kind: OutcomeMoved, Event: ev}

	case ResizeDrag:
		width := s.Width()
		ev, ok := e.events.Update(s.EventID, Patch{Width: &width})
		if !ok {
			return Outcome{Kind: OutcomeDiscarded}
		}
		return Outcome{Kind: OutcomeResized, Event: ev}
	}
	return Outcome{}
}

// Leave handles the pointer leaving row. Only a create drag on that row
// reacts, and it commits exactly like a release.
func (e *Engine) Leave(row int) Outcome {
	s, ok := e.state.(CreateDrag)
	if !ok || s.ResourceIndex != row {
		return Outcome{}
	}
	return e.Release()
}

// Abandon discards any provisional state and returns to Idle. It reports
// whether an interaction was in progress.
func (e *Engine) Abandon() bool {
	if !e.Busy() {
		return false
	}
	e.logger.Debug("interaction abandoned", "mode", e.state.Mode().String())
	e.state = Idle{}
	return true
}

// Target returns the id of the event being moved or resized.
func (e *Engine) Target() (int64, bool) {
	switch s := e.state.(type) {
	case MoveDrag:
		return s.EventID, true
	case ResizeDrag:
		return s.EventID, true
	}
	return 0, false
}
