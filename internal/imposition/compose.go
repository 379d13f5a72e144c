package imposition

// Rect is an axis aligned rectangle in PDF points, origin at the lower left.
type Rect struct {
	LLX, LLY, URX, URY float64
}

func (r Rect) Width() float64  { return r.URX - r.LLX }
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Placement records that source page Source is drawn into Rect. Blank
// placements come from padding and carry no content.
type Placement struct {
	Rect   Rect
	Source int
	Blank  bool
}

// OutputPage is one face of a sheet: a canvas twice as wide as a source page.
type OutputPage struct {
	Width      float64
	Height     float64
	Placements []Placement
}

func (p *OutputPage) place(pl Placement) {
	p.Placements = append(p.Placements, pl)
}

// Place appends a placement. PageSource implementations call it from RenderInto.
func (p *OutputPage) Place(rect Rect, source int) {
	p.place(Placement{Rect: rect, Source: source})
}

// Document is the composed booklet, pages in print order.
type Document struct {
	Pages []*OutputPage
}

func (d *Document) newPage(w, h float64) *OutputPage {
	p := &OutputPage{Width: w, Height: h, Placements: make([]Placement, 0, 2)}
	d.Pages = append(d.Pages, p)
	return p
}

// PageSource gives the composer access to source pages.
type PageSource interface {
	// PageCount is the number of addressable pages, padding included.
	PageCount() int
	// PageSize is the authoritative page size (first page).
	PageSize() (width, height float64)
	// RenderInto places source page index into rect of dst. Placing the same
	// page into the same rectangle again yields the same placement.
	RenderInto(dst *OutputPage, rect Rect, index int) error
}

// Face is reported once per composed output page.
type Face struct {
	Sheet      int  // zero based sheet index
	Back       bool // false for the front of the sheet
	PageNumber int  // one based output page number
	Left       int  // zero based source index on the left half
	Right      int  // zero based source index on the right half
}

// ProgressFunc receives composer progress; it may be nil.
type ProgressFunc func(Face)

// Compose lays the planned sheets out onto a new document. Each sheet yields
// a front page followed by a back page, both 2W x H, each carrying two source
// pages side by side.
func Compose(plan []Sheet, src PageSource, progress ProgressFunc) (*Document, error) {
	w, h := src.PageSize()
	left := Rect{LLX: 0, LLY: 0, URX: w, URY: h}
	right := Rect{LLX: w, LLY: 0, URX: 2 * w, URY: h}
	count := src.PageCount()

	doc := &Document{Pages: make([]*OutputPage, 0, 2*len(plan))}
	for i, s := range plan {
		for _, idx := range s.Indices() {
			if idx < 0 || idx >= count {
				return nil, &InternalConsistencyError{Index: idx, PageCount: count}
			}
		}

		faces := []Face{
			{Sheet: i, Back: false, Left: s.FrontLeft, Right: s.FrontRight},
			{Sheet: i, Back: true, Left: s.BackLeft, Right: s.BackRight},
		}
		for _, f := range faces {
			page := doc.newPage(2*w, h)
			if err := src.RenderInto(page, left, f.Left); err != nil {
				return nil, err
			}
			if err := src.RenderInto(page, right, f.Right); err != nil {
				return nil, err
			}
			f.PageNumber = len(doc.Pages)
			if progress != nil {
				progress(f)
			}
		}
	}
	return doc, nil
}
