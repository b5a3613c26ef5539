package model

import "encoding/json"

// DefaultResourceCount is the number of resource rows a period starts with.
const DefaultResourceCount = 15

// Event is a time-block positioned on a resource row by pixel offset and width.
type Event struct {
	ID            int64   `json:"id"`
	ResourceIndex int     `json:"resourceIndex"`
	LeftOffset    float64 `json:"leftOffset"`
	Width         float64 `json:"width"`
	Color         string  `json:"color"`
}

// Right returns the exclusive right edge of the event.
func (e Event) Right() float64 {
	return e.LeftOffset + e.Width
}

// Valid reports whether the event may live in a committed model.
func (e Event) Valid() bool {
	return e.Width > 0 && e.ResourceIndex >= 0
}

// UnmarshalJSON also accepts the older "left" field name.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		*plain
		Left *float64 `json:"left"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Left != nil && e.LeftOffset == 0 {
		e.LeftOffset = *aux.Left
	}
	return nil
}

// PeriodRecord is the persisted state of one period.
type PeriodRecord struct {
	Events        []Event `json:"events"`
	ResourceCount int     `json:"resourceCount"`
}

// NewPeriodRecord returns the record used for a period with no stored data.
func NewPeriodRecord() PeriodRecord {
	return PeriodRecord{Events: []Event{}, ResourceCount: DefaultResourceCount}
}

// UnmarshalJSON also accepts the older "resources" field name.
func (r *PeriodRecord) UnmarshalJSON(data []byte) error {
	type plain PeriodRecord
	aux := struct {
		*plain
		Resources *int `json:"resources"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Resources != nil && r.ResourceCount == 0 {
		r.ResourceCount = *aux.Resources
	}
	return nil
}

// Normalize drops events that violate the committed-model invariants and
// restores the default resource count when the stored one is unusable.
// It returns the number of dropped events.
func (r *PeriodRecord) Normalize() int {
	if r.ResourceCount <= 0 {
		r.ResourceCount = DefaultResourceCount
	}
	kept := make([]Event, 0, len(r.Events))
	for _, e := range r.Events {
		if e.Valid() {
			kept = append(kept, e)
		}
	}
	dropped := len(r.Events) - len(kept)
	r.Events = kept
	return dropped
}

// Clone returns a deep copy of the record.
func (r PeriodRecord) Clone() PeriodRecord {
	events := make([]Event, len(r.Events))
	copy(events, r.Events)
	return PeriodRecord{Events: events, ResourceCount: r.ResourceCount}
}

// Container is the durable mapping from period key to period record.
type Container map[string]PeriodRecord
