package board

import (
	"errors"
	"iter"
	"sync/atomic"

	"github.com/Tiliavir/resource-board/internal/model"
)

// ErrInvalidEvent is returned by Add for events that violate the committed-model invariants.
var ErrInvalidEvent = errors.New("event must have a positive width and a non-negative row")

// IDAllocator hands out event ids that are unique for the process lifetime.
type IDAllocator struct {
	last atomic.Int64
}

// Next returns a fresh id.
func (a *IDAllocator) Next() int64 {
	return a.last.Add(1)
}

// Observe makes sure future ids are allocated above id.
func (a *IDAllocator) Observe(id int64) {
	for {
		cur := a.last.Load()
		if id <= cur || a.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Patch is a partial update of an event's geometry.
type Patch struct {
	LeftOffset    *float64
	Width         *float64
	ResourceIndex *int
}

// EventModel is the in-memory, insertion-ordered event collection of the active period.
type EventModel struct {
	ids    *IDAllocator
	events []model.Event
}

// NewEventModel returns an empty model allocating ids from ids.
func NewEventModel(ids *IDAllocator) *EventModel {
	if ids == nil {
		ids = &IDAllocator{}
	}
	return &EventModel{ids: ids, events: []model.Event{}}
}

// Reset replaces the collection with events, keeping their ids.
func (m *EventModel) Reset(events []model.Event) {
	m.events = make([]model.Event, 0, len(events))
	for _, e := range events {
		m.ids.Observe(e.ID)
		m.events = append(m.events, e)
	}
}

// Add commits ev under a freshly allocated id.
func (m *EventModel) Add(ev model.Event) (model.Event, error) {
	if !ev.Valid() {
		return model.Event{}, ErrInvalidEvent
	}
	ev.ID = m.ids.Next()
	m.events = append(m.events, ev)
	return ev, nil
}

// Update applies p to the event with the given id. Updating an absent id is
// a no-op and reports false. A non-positive width in p is ignored.
func (m *EventModel) Update(id int64, p Patch) (model.Event, bool) {
	i := m.index(id)
	if i < 0 {
		return model.Event{}, false
	}
	ev := &m.events[i]
	if p.LeftOffset != nil {
		ev.LeftOffset = *p.LeftOffset
	}
	if p.Width != nil && *p.Width > 0 {
		ev.Width = *p.Width
	}
	if p.ResourceIndex != nil && *p.ResourceIndex >= 0 {
		ev.ResourceIndex = *p.ResourceIndex
	}
	return *ev, true
}

// Remove deletes the event with the given id. It is idempotent and reports
// whether anything was removed.
func (m *EventModel) Remove(id int64) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.events = append(m.events[:i], m.events[i+1:]...)
	return true
}

// Get returns the event with the given id.
func (m *EventModel) Get(id int64) (model.Event, bool) {
	i := m.index(id)
	if i < 0 {
		return model.Event{}, false
	}
	return m.events[i], true
}

// ByResource yields the events of one row in insertion order.
func (m *EventModel) ByResource(row int) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		for _, e := range m.events {
			if e.ResourceIndex != row {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// All returns a copy of every event in insertion order.
func (m *EventModel) All() []model.Event {
	out := make([]model.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Len returns the number of events.
func (m *EventModel) Len() int {
	return len(m.events)
}

func (m *EventModel) index(id int64) int {
	for i := range m.events {
		if m.events[i].ID == id {
			return i
		}
	}
	return -1
}
