// Package script replays recorded pointer sessions against a board.
//
// A script is a YAML document:
//
//	period: 2025-02
//	confirm: true
//	steps:
//	  - {op: down, row: 2, x: 100}
//	  - {op: move, x: 160}
//	  - {op: up}
//	  - {op: add-row}
//	  - {op: switch, period: 2025-03}
//
// x is container-relative. y defaults to the middle of the event box on row.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/model"
)

// Supported step operations.
const (
	OpDown      = "down"
	OpMove      = "move"
	OpUp        = "up"
	OpLeave     = "leave"
	OpCancel    = "cancel"
	OpFocusLost = "focus-lost"
	OpSwitch    = "switch"
	OpPrev      = "prev"
	OpNext      = "next"
	OpAddRow    = "add-row"
	OpDelete    = "delete"
)

var validOps = map[string]bool{
	OpDown: true, OpMove: true, OpUp: true, OpLeave: true, OpCancel: true,
	OpFocusLost: true, OpSwitch: true, OpPrev: true, OpNext: true,
	OpAddRow: true, OpDelete: true,
}

// Script is a parsed pointer session.
type Script struct {
	// Period is switched to before the first step. Empty keeps the board's period.
	Period string `yaml:"period"`
	// Confirm is the default answer to delete prompts.
	Confirm bool   `yaml:"confirm"`
	Steps   []Step `yaml:"steps"`
}

// Step is one input event.
type Step struct {
	Op      string   `yaml:"op"`
	Row     *int     `yaml:"row,omitempty"`
	X       *float64 `yaml:"x,omitempty"`
	Y       *float64 `yaml:"y,omitempty"`
	Period  string   `yaml:"period,omitempty"`
	ID      int64    `yaml:"id,omitempty"`
	Confirm *bool    `yaml:"confirm,omitempty"`
}

// Parse decodes and validates a script. Unknown fields are rejected.
func Parse(r io.Reader) (Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, errors.New("empty script")
		}
		return Script{}, fmt.Errorf("decoding script: %w", err)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return Script{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return s, nil
}

func (st Step) validate() error {
	if !validOps[st.Op] {
		return fmt.Errorf("unknown op %q", st.Op)
	}
	switch st.Op {
	case OpDown:
		if st.X == nil || (st.Row == nil && st.Y == nil) {
			return errors.New("down needs x and row or y")
		}
	case OpLeave:
		if st.Row == nil {
			return errors.New("leave needs row")
		}
	case OpSwitch:
		if st.Period == "" {
			return errors.New("switch needs period")
		}
	case OpDelete:
		if st.ID == 0 {
			return errors.New("delete needs id")
		}
	}
	return nil
}

// Answers is a board.Confirmer whose reply is set per step by the Runner.
type Answers struct {
	next bool
}

// ConfirmDelete returns the answer of the running step.
func (a *Answers) ConfirmDelete(model.Event) bool {
	return a.next
}

// Result records what one step did.
type Result struct {
	Step    int
	Op      string
	Period  string
	Hit     string
	Outcome string
	EventID int64
	// Rejected holds the reason the board refused the input, if it did.
	Rejected string
}

func (r Result) String() string {
	s := fmt.Sprintf("%3d %-10s %s", r.Step, r.Op, r.Period)
	if r.Hit != "" {
		s += " hit=" + r.Hit
	}
	if r.Outcome != "" {
		s += " outcome=" + r.Outcome
	}
	if r.EventID != 0 {
		s += fmt.Sprintf(" event=%d", r.EventID)
	}
	if r.Rejected != "" {
		s += " rejected=" + r.Rejected
	}
	return s
}

// Runner feeds script steps into a board.
type Runner struct {
	board   *board.Board
	answers *Answers
	logger  *slog.Logger

	lastRow int
	lastX   float64
}

// NewRunner returns a runner for b. answers must be the Confirmer b was built with.
func NewRunner(b *board.Board, answers *Answers, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if answers == nil {
		answers = &Answers{}
	}
	return &Runner{board: b, answers: answers, logger: logger.With("component", "script")}
}

// Run executes s. Input the board rejects (busy, not hydrated) is recorded
// and the run continues; any other error aborts it.
func (r *Runner) Run(ctx context.Context, s Script) ([]Result, error) {
	if s.Period != "" {
		if err := r.board.SwitchPeriodKey(ctx, s.Period); err != nil {
			return nil, err
		}
	}
	results := make([]Result, 0, len(s.Steps))
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.answers.next = s.Confirm
		if st.Confirm != nil {
			r.answers.next = *st.Confirm
		}
		res, err := r.step(ctx, st)
		res.Step, res.Op, res.Period = i+1, st.Op, r.board.Period()
		if errors.Is(err, board.ErrBusy) || errors.Is(err, board.ErrNotHydrated) {
			res.Rejected = err.Error()
			r.logger.Debug("step rejected", "step", i+1, "op", st.Op, "err", err)
			err = nil
		}
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
	}
	return results, nil
}

func (r *Runner) step(ctx context.Context, st Step) (Result, error) {
	var res Result
	switch st.Op {
	case OpDown:
		hit, err := r.board.PointerDown(ctx, r.pointer(st))
		res.Hit, res.EventID = hit.Kind.String(), hit.Event.ID
		return res, err
	case OpMove:
		out, err := r.board.PointerMove(ctx, r.pointer(st))
		return outcome(res, out), err
	case OpUp:
		out, err := r.board.PointerUp(ctx)
		return outcome(res, out), err
	case OpLeave:
		out, err := r.board.PointerLeave(ctx, *st.Row)
		return outcome(res, out), err
	case OpCancel:
		if r.board.Cancel() {
			res.Outcome = board.OutcomeDiscarded.String()
		}
	case OpFocusLost:
		if r.board.FocusLost() {
			res.Outcome = board.OutcomeDiscarded.String()
		}
	case OpSwitch:
		return res, r.board.SwitchPeriodKey(ctx, st.Period)
	case OpPrev:
		return res, r.board.PreviousPeriod(ctx)
	case OpNext:
		return res, r.board.NextPeriod(ctx)
	case OpAddRow:
		target := st.Period
		if target == "" {
			target = r.board.Period()
		}
		applied, err := r.board.AddRow(ctx, board.AddRowCommand{TargetPeriodKey: target})
		if !applied && err == nil {
			res.Outcome = "ignored"
		}
		return res, err
	case OpDelete:
		removed, err := r.board.RequestDelete(ctx, st.ID)
		res.EventID = st.ID
		if removed {
			res.Outcome = "deleted"
		}
		return res, err
	}
	return res, nil
}

// pointer converts a step into client coordinates. Omitted fields repeat
// the previous sample.
func (r *Runner) pointer(st Step) board.Pointer {
	g := r.board.Geometry()
	if st.Row != nil {
		r.lastRow = *st.Row
	}
	if st.X != nil {
		r.lastX = *st.X
	}
	p := board.Pointer{X: g.ContainerLeft + r.lastX, Y: g.RowCenter(r.lastRow)}
	if st.Y != nil {
		p.Y = *st.Y
		r.lastRow = g.RowAt(p.Y)
	}
	return p
}

func outcome(res Result, out board.Outcome) Result {
	if out.Kind != board.OutcomeNone {
		res.Outcome = out.Kind.String()
		res.EventID = out.Event.ID
	}
	return res
}
