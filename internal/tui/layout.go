package tui

import (
	"math"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// headerLines is the number of terminal lines above row 0: title and day header.
const headerLines = 2

// pixelsPerDay is the board width of one day.
const pixelsPerDay = 24 * 60 / timecalc.MinutesPerPixel

// Layout maps terminal cells onto board pixels. Each terminal line is one
// resource row; each column covers CellWidth pixels.
type Layout struct {
	CellWidth  float64
	LabelWidth int
	// Offset is the horizontal scroll position in board pixels.
	Offset float64

	rowHeight   float64
	eventHeight float64
}

// NewLayout returns a layout for a board surface with geometry g.
func NewLayout(g board.Geometry, cellWidth float64, labelWidth int) Layout {
	if cellWidth <= 0 {
		cellWidth = 8
	}
	if labelWidth < 0 {
		labelWidth = 0
	}
	return Layout{CellWidth: cellWidth, LabelWidth: labelWidth, rowHeight: g.RowHeight, eventHeight: g.EventHeight}
}

// SurfaceGeometry positions g's container so that grid column 0 of the first
// resource line sits at the board origin.
func SurfaceGeometry(g board.Geometry, cellWidth float64, labelWidth int) board.Geometry {
	if cellWidth <= 0 {
		cellWidth = 8
	}
	g.ContainerLeft = float64(labelWidth) * cellWidth
	g.ContainerTop = headerLines * g.RowHeight
	return g
}

// Pointer converts a terminal cell into a client position. The y coordinate
// lands in the middle of the event box of the cell's row.
func (l Layout) Pointer(cx, cy int) board.Pointer {
	return board.Pointer{
		X: float64(cx)*l.CellWidth + l.Offset,
		Y: float64(cy)*l.rowHeight + l.eventHeight/2,
	}
}

// Columns returns the half-open grid column span [from, to) covering the
// container-relative pixel interval [left, right). Any overlap with a column
// paints it.
func (l Layout) Columns(left, right float64) (int, int) {
	from := int(math.Floor((left - l.Offset) / l.CellWidth))
	to := int(math.Ceil((right - l.Offset) / l.CellWidth))
	return from, to
}

// DayAt returns the 0-based day index under grid column col and whether the
// column is the first one of that day.
func (l Layout) DayAt(col int) (int, bool) {
	px := l.Offset + float64(col)*l.CellWidth
	day := int(math.Floor(px / pixelsPerDay))
	start := float64(day) * pixelsPerDay
	return day, px-start < l.CellWidth
}

// ScrollDays moves the viewport by n days, never before the start of the period.
func (l *Layout) ScrollDays(n int) {
	l.Offset = math.Max(0, l.Offset+float64(n)*pixelsPerDay)
}
