package imposition

// Sheet describes one physical sheet of paper: the source page index for each
// half of its front and back.
type Sheet struct {
	FrontLeft  int
	FrontRight int
	BackLeft   int
	BackRight  int
}

// Plan computes the booklet imposition for n pages. n must already be a
// multiple of 4; callers pad first. The result holds n/4 sheets, outermost
// sheet first, which is the stacking order for double sided printing on the
// short edge.
func Plan(n int, binding Binding) []Sheet {
	if n <= 0 {
		return nil
	}
	sheets := make([]Sheet, 0, n/4)
	for i := 0; i < n/4; i++ {
		outerHigh := n - 1 - 2*i
		outerLow := 2 * i
		innerLow := 2*i + 1
		innerHigh := n - 2 - 2*i

		s := Sheet{FrontLeft: outerHigh, FrontRight: outerLow, BackLeft: innerLow, BackRight: innerHigh}
		if binding == BindRight {
			s = s.Mirror()
		}
		sheets = append(sheets, s)
	}
	return sheets
}

// Mirror swaps left and right on both faces.
func (s Sheet) Mirror() Sheet {
	return Sheet{FrontLeft: s.FrontRight, FrontRight: s.FrontLeft, BackLeft: s.BackRight, BackRight: s.BackLeft}
}

// Indices returns the four source indices in front-left, front-right,
// back-left, back-right order.
func (s Sheet) Indices() [4]int {
	return [4]int{s.FrontLeft, s.FrontRight, s.BackLeft, s.BackRight}
}
