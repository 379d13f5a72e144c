package imposition

import "fmt"

// InternalConsistencyError reports a source index outside the page source.
// It can only happen when the planner or the padding view is broken.
type InternalConsistencyError struct {
	Index     int
	PageCount int
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency: source page index %d out of range [0,%d)", e.Index, e.PageCount)
}
