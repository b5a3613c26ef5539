// Package tui hosts a board in the terminal. Mouse presses, drags and
// releases become board pointer input; one terminal line is one resource row.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	weekendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	gridStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")).Padding(0, 1)
)

// Options configures the terminal surface.
type Options struct {
	CellWidth  float64
	LabelWidth int
	Logger     *slog.Logger
}

// Model is the bubbletea model around a board.
type Model struct {
	ctx    context.Context
	board  *board.Board
	layout Layout
	logger *slog.Logger

	width, height int

	// pendingDelete is the event awaiting a y/n answer; zero when none.
	pendingDelete int64
	status        string
	err           error
}

// New returns a model for b. b should be built with SurfaceGeometry so that
// cells line up with rows.
func New(ctx context.Context, b *board.Board, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		ctx:    ctx,
		board:  b,
		layout: NewLayout(b.Geometry(), opts.CellWidth, opts.LabelWidth),
		logger: logger.With("component", "tui"),
		width:  120,
		height: 24,
	}
}

// Run starts the terminal surface and blocks until the user quits.
func Run(ctx context.Context, b *board.Board, opts Options) error {
	p := tea.NewProgram(New(ctx, b, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.BlurMsg:
		if m.board.FocusLost() {
			m.status = "drag discarded: focus lost"
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.pendingDelete != 0 {
		return
	}
	p := m.layout.Pointer(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			hit, err := m.board.PointerDown(m.ctx, p)
			m.report(err)
			if err == nil && hit.Kind != board.HitNone {
				m.status = ""
			}
		case tea.MouseButtonRight:
			hit := m.board.HitTest(p)
			if hit.Kind == board.HitBody || hit.Kind == board.HitResizeHandle || hit.Kind == board.HitDelete {
				m.pendingDelete = hit.Event.ID
			}
		}
	case tea.MouseActionMotion:
		if m.board.Mode() == board.ModeIdle {
			return
		}
		out, err := m.board.PointerMove(m.ctx, p)
		m.report(err)
		m.describe(out)
	case tea.MouseActionRelease:
		out, err := m.board.PointerUp(m.ctx)
		m.report(err)
		m.describe(out)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.pendingDelete != 0 {
		switch key {
		case "y", "Y":
			removed, err := m.board.Delete(m.ctx, m.pendingDelete)
			m.report(err)
			if removed {
				m.status = fmt.Sprintf("event %d deleted", m.pendingDelete)
			}
			m.pendingDelete = 0
		case "n", "N", "esc":
			m.pendingDelete = 0
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.board.Cancel() {
			m.status = "drag cancelled"
		}
	case "left", "p":
		m.report(m.board.PreviousPeriod(m.ctx))
		m.layout.Offset = 0
	case "right", "n":
		m.report(m.board.NextPeriod(m.ctx))
		m.layout.Offset = 0
	case "t":
		m.report(m.board.CurrentPeriod(m.ctx))
		m.layout.Offset = 0
	case "+", "a":
		applied, err := m.board.AddRow(m.ctx, board.AddRowCommand{TargetPeriodKey: m.board.Period()})
		m.report(err)
		if applied {
			m.status = fmt.Sprintf("%d resources", m.board.ResourceCount())
		}
	case "]", "l":
		m.layout.ScrollDays(1)
	case "[", "h":
		m.layout.ScrollDays(-1)
	}
	return m, nil
}

func (m *Model) report(err error) {
	if err == nil || errors.Is(err, board.ErrBusy) {
		return
	}
	m.err = err
	m.logger.Error("board operation failed", "err", err)
}

func (m *Model) describe(out board.Outcome) {
	if out.Changed() {
		m.status = fmt.Sprintf("%s event %d  %s", out.Kind, out.Event.ID, timecalc.RangeLabel(out.Event.LeftOffset, out.Event.Width))
	} else if out.Kind == board.OutcomeDiscarded {
		m.status = "too small, discarded"
	}
}

func (m Model) gridColumns() int {
	return max(1, m.width-m.layout.LabelWidth)
}

func (m Model) View() string {
	var b strings.Builder

	title := titleStyle.Render("Resource board " + m.board.Period())
	help := helpStyle.Render("  ←/→ month · t today · [/] scroll · + row · esc cancel · right-click delete · q quit")
	b.WriteString(title + help + "\n")
	b.WriteString(m.dayHeader() + "\n")

	preview, dragging := m.board.Preview()
	rows := m.board.ResourceCount()
	visible := max(0, m.height-headerLines-1)
	for r := 0; r < rows && r < visible; r++ {
		label := fmt.Sprintf("Resource %d", r+1)
		b.WriteString(labelStyle.Render(padRight(label, m.layout.LabelWidth)))
		var pv *board.Preview
		if dragging && preview.ResourceIndex == r {
			pv = &preview
		}
		b.WriteString(m.renderRow(r, pv))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine(preview, dragging))
	return b.String()
}

func (m Model) statusLine(preview board.Preview, dragging bool) string {
	switch {
	case m.pendingDelete != 0:
		ev, _ := m.board.Event(m.pendingDelete)
		return promptStyle.Render(fmt.Sprintf("Delete event %d (%s)? y/n", ev.ID, timecalc.RangeLabel(ev.LeftOffset, ev.Width)))
	case m.err != nil:
		return errorStyle.Render("error: " + m.err.Error())
	case dragging:
		return fmt.Sprintf("%s  %s", preview.Mode, preview.Label())
	}
	return m.status
}

func (m Model) dayHeader() string {
	days, err := timecalc.MonthDays(m.board.Reference())
	if err != nil {
		return ""
	}
	cols := m.gridColumns()
	line := []rune(strings.Repeat(" ", cols))
	for c := 0; c < cols; c++ {
		day, first := m.layout.DayAt(c)
		if !first || day >= len(days) {
			continue
		}
		txt := fmt.Sprintf("%d%s", days[day].Number, days[day].Weekday[:2])
		for i, r := range txt {
			if c+i < cols {
				line[c+i] = r
			}
		}
	}
	return strings.Repeat(" ", m.layout.LabelWidth) + labelStyle.Render(string(line))
}

// paint is the content of one grid column.
type paint struct {
	color   string
	weekend bool
	glyph   rune
}

func (p paint) style() lipgloss.Style {
	switch {
	case p.color != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(p.color))
	case p.weekend:
		return weekendStyle
	}
	return gridStyle
}

// renderRow draws row r. A non-nil preview is drawn over the committed events.
func (m Model) renderRow(r int, preview *board.Preview) string {
	cols := m.gridColumns()
	cells := make([]paint, cols)
	days, _ := timecalc.MonthDays(m.board.Reference())
	for c := range cells {
		day, first := m.layout.DayAt(c)
		if day >= len(days) {
			cells[c] = paint{glyph: ' '}
			continue
		}
		wd := days[day].Date.Weekday()
		cells[c] = paint{weekend: wd == time.Saturday || wd == time.Sunday, glyph: '·'}
		if first {
			cells[c].glyph = '│'
		}
	}

	fill := func(left, width float64, color string, glyph rune) {
		from, to := m.layout.Columns(left, left+width)
		for c := max(0, from); c < min(cols, to); c++ {
			cells[c] = paint{color: color, glyph: glyph}
		}
	}
	for ev := range m.board.RowEvents(r) {
		fill(ev.LeftOffset, ev.Width, ev.Color, '█')
	}
	if preview != nil {
		color := preview.Color
		if color == "" {
			color = "#888888"
		}
		fill(preview.LeftOffset, preview.Width, color, '▓')
	}

	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		var run strings.Builder
		for j < len(cells) && cells[j].color == cells[i].color && cells[j].weekend == cells[i].weekend {
			run.WriteRune(cells[j].glyph)
			j++
		}
		b.WriteString(cells[i].style().Render(run.String()))
		i = j
	}
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// EventAt returns the committed event drawn at terminal cell (cx, cy).
func (m Model) EventAt(cx, cy int) (model.Event, bool) {
	hit := m.board.HitTest(m.layout.Pointer(cx, cy))
	switch hit.Kind {
	case board.HitBody, board.HitResizeHandle, board.HitDelete:
		return hit.Event, true
	}
	return model.Event{}, false
}
