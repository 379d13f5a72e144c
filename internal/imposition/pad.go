package imposition

// PadCount returns how many blank pages must be appended to n pages so the
// total is a multiple of 4.
func PadCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (4 - n%4) % 4
}

// PaddedCount returns the smallest multiple of 4 that is >= n.
func PaddedCount(n int) int {
	if n <= 0 {
		return 0
	}
	return n + PadCount(n)
}

// paddedSource extends a PageSource with trailing blank pages. The wrapped
// source is never touched for indices past its own page count.
type paddedSource struct {
	src    PageSource
	blanks int
}

// WithPadding returns a view of src with blanks blank pages appended after the
// last real page. Real page indices keep their meaning. A non-positive blanks
// returns src unchanged.
func WithPadding(src PageSource, blanks int) PageSource {
	if blanks <= 0 {
		return src
	}
	if p, ok := src.(*paddedSource); ok {
		return &paddedSource{src: p.src, blanks: p.blanks + blanks}
	}
	return &paddedSource{src: src, blanks: blanks}
}

// Pad extends src to the next multiple of 4 and reports the number of blanks added.
func Pad(src PageSource) (PageSource, int) {
	blanks := PadCount(src.PageCount())
	return WithPadding(src, blanks), blanks
}

func (p *paddedSource) PageCount() int { return p.src.PageCount() + p.blanks }

func (p *paddedSource) PageSize() (float64, float64) { return p.src.PageSize() }

func (p *paddedSource) RenderInto(dst *OutputPage, rect Rect, index int) error {
	n := p.src.PageCount()
	if index < n {
		return p.src.RenderInto(dst, rect, index)
	}
	if index >= p.PageCount() {
		return &InternalConsistencyError{Index: index, PageCount: p.PageCount()}
	}
	dst.place(Placement{Rect: rect, Source: index, Blank: true})
	return nil
}
