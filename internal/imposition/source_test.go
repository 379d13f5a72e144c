package imposition

// memSource is an in-memory PageSource used across the package tests.
type memSource struct {
	pages int
	w, h  float64
	calls int
}

func (m *memSource) PageCount() int               { return m.pages }
func (m *memSource) PageSize() (float64, float64) { return m.w, m.h }

func (m *memSource) RenderInto(dst *OutputPage, rect Rect, index int) error {
	m.calls++
	if index < 0 || index >= m.pages {
		return &InternalConsistencyError{Index: index, PageCount: m.pages}
	}
	dst.Place(rect, index)
	return nil
}
