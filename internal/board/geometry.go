package board

import (
	"math"

	"github.com/Tiliavir/resource-board/internal/model"
)

// Pointer is a pointer sample in client coordinates.
type Pointer struct {
	X, Y float64
}

// Geometry describes the layout of the interactive surface in client pixels.
type Geometry struct {
	// ContainerLeft and ContainerTop locate the top-left corner of row 0.
	ContainerLeft float64
	ContainerTop  float64

	RowHeight         float64
	EventHeight       float64
	ResizeHandleWidth float64
	DeleteControlSize float64

	// A create drag must be strictly wider than MinCreateWidth to commit.
	MinCreateWidth float64
	// A resize never shrinks an event below MinResizeWidth.
	MinResizeWidth float64
}

// DefaultGeometry returns the stock board layout.
func DefaultGeometry() Geometry {
	return Geometry{
		RowHeight:         60,
		EventHeight:       40,
		ResizeHandleWidth: 12,
		DeleteControlSize: 16,
		MinCreateWidth:    4,
		MinResizeWidth:    10,
	}
}

func (g Geometry) withDefaults() Geometry {
	d := DefaultGeometry()
	if g.RowHeight <= 0 {
		g.RowHeight = d.RowHeight
	}
	if g.EventHeight <= 0 {
		g.EventHeight = d.EventHeight
	}
	if g.ResizeHandleWidth <= 0 {
		g.ResizeHandleWidth = d.ResizeHandleWidth
	}
	if g.DeleteControlSize <= 0 {
		g.DeleteControlSize = d.DeleteControlSize
	}
	if g.MinCreateWidth <= 0 {
		g.MinCreateWidth = d.MinCreateWidth
	}
	if g.MinResizeWidth <= 0 {
		g.MinResizeWidth = d.MinResizeWidth
	}
	return g
}

// RowAt returns the row index under client y. The result may be out of range.
func (g Geometry) RowAt(y float64) int {
	return int(math.Floor((y - g.ContainerTop) / g.RowHeight))
}

// RowCenter returns the client y of the middle of an event box on row.
func (g Geometry) RowCenter(row int) float64 {
	return g.ContainerTop + float64(row)*g.RowHeight + g.EventHeight/2
}

// HitKind classifies what lies under a pointer.
type HitKind int

const (
	HitNone HitKind = iota
	HitEmpty
	HitBody
	HitResizeHandle
	HitDelete
)

func (k HitKind) String() string {
	switch k {
	case HitEmpty:
		return "empty"
	case HitBody:
		return "body"
	case HitResizeHandle:
		return "resize-handle"
	case HitDelete:
		return "delete"
	default:
		return "none"
	}
}

// Hit is the result of a hit test.
type Hit struct {
	Kind  HitKind
	Row   int
	Event model.Event
}

// hitEvent classifies the point (x, yIn) relative to ev, where x is
// container-relative and yIn is measured from the top of the row.
// The delete control sits in the top-right corner above the resize handle.
func (g Geometry) hitEvent(ev model.Event, x, yIn float64) HitKind {
	if x < ev.LeftOffset || x >= ev.Right() || yIn < 0 || yIn >= g.EventHeight {
		return HitNone
	}
	if x >= ev.Right()-g.DeleteControlSize && yIn < g.DeleteControlSize {
		return HitDelete
	}
	if x >= ev.Right()-g.ResizeHandleWidth {
		return HitResizeHandle
	}
	return HitBody
}
