package board

import "github.com/Tiliavir/resource-board/internal/model"

// AddRowCommand asks the board of TargetPeriodKey to append one resource row.
type AddRowCommand struct {
	TargetPeriodKey string
}

// ResourceManager tracks the resource row count of the active period.
type ResourceManager struct {
	period string
	count  int
}

// NewResourceManager returns a manager with no active period.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{count: model.DefaultResourceCount}
}

// Reset scopes the manager to period with count rows.
func (r *ResourceManager) Reset(period string, count int) {
	if count <= 0 {
		count = model.DefaultResourceCount
	}
	r.period = period
	r.count = count
}

// Count returns the number of rows.
func (r *ResourceManager) Count() int {
	return r.count
}

// Apply appends one row if cmd targets the active period and reports whether it did.
func (r *ResourceManager) Apply(cmd AddRowCommand) bool {
	if r.period == "" || cmd.TargetPeriodKey != r.period {
		return false
	}
	r.count++
	return true
}

// Clamp limits row to [0, Count()-1].
func (r *ResourceManager) Clamp(row int) int {
	return max(0, min(r.count-1, row))
}

// Contains reports whether row is a valid row index.
func (r *ResourceManager) Contains(row int) bool {
	return row >= 0 && row < r.count
}
