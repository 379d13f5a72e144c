// Package pdfdoc is the pdfcpu backed page source and sink for booklet
// imposition: it reads source pages, and writes a composed document by turning
// each used source page into a form XObject drawn into its slot.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbooklet/internal/filetype"
	"github.com/local/pdfbooklet/internal/imposition"
)

// Keep pdfcpu from creating a config dir under the user's home.
func init() {
	model.ConfigPath = "disable"
}

// OpenError means the input could not be read or is not a usable PDF.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// ErrNoPages is returned for documents without any page.
var ErrNoPages = errors.New("document has no pages")

// Source is a read-only PDF page source. The raw bytes are kept so the writer
// can build the output from its own copy of the document.
type Source struct {
	name   string
	data   []byte
	ctx    *model.Context
	width  float64
	height float64
}

var _ imposition.PageSource = (*Source)(nil)

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Open reads and validates the PDF at path.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return Load(path, data)
}

// Load parses an in-memory PDF. name is used for errors and logs.
func Load(name string, data []byte) (*Source, error) {
	if err := filetype.New().RequirePDF(name, data); err != nil {
		return nil, &OpenError{Path: name, Err: err}
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, &OpenError{Path: name, Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &OpenError{Path: name, Err: err}
	}

	s := &Source{name: name, data: data, ctx: ctx}
	if ctx.PageCount > 0 {
		_, _, inh, err := ctx.PageDict(1, false)
		if err != nil {
			return nil, &OpenError{Path: name, Err: fmt.Errorf("first page: %w", err)}
		}
		box, rot, err := pageBox(inh)
		if err != nil {
			return nil, &OpenError{Path: name, Err: fmt.Errorf("first page: %w", err)}
		}
		s.width, s.height = box.Width(), box.Height()
		if quarterTurn(rot) {
			s.width, s.height = s.height, s.width
		}
	}

	log.Debug().
		Str("file", name).
		Int("pages", ctx.PageCount).
		Float64("width", s.width).
		Float64("height", s.height).
		Msg("opened source pdf")
	return s, nil
}

// Name returns the name the source was opened with.
func (s *Source) Name() string { return s.name }

// PageCount returns the number of real pages.
func (s *Source) PageCount() int { return s.ctx.PageCount }

// PageSize returns the first page's size in points, rotation applied.
func (s *Source) PageSize() (float64, float64) { return s.width, s.height }

// RenderInto records that page index is drawn into rect of dst. The content is
// transplanted when the document is written.
func (s *Source) RenderInto(dst *imposition.OutputPage, rect imposition.Rect, index int) error {
	if index < 0 || index >= s.ctx.PageCount {
		return &imposition.InternalConsistencyError{Index: index, PageCount: s.ctx.PageCount}
	}
	dst.Place(rect, index)
	return nil
}

// pageBox returns the visible box of a page and its normalised rotation.
func pageBox(inh *model.InheritedPageAttrs) (*types.Rectangle, int, error) {
	if inh == nil {
		return nil, 0, errors.New("missing page attributes")
	}
	box := inh.CropBox
	if box == nil {
		box = inh.MediaBox
	}
	if box == nil {
		return nil, 0, errors.New("page has no media box")
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, 0, fmt.Errorf("degenerate page box %v", box)
	}
	rot := inh.Rotate % 360
	if rot < 0 {
		rot += 360
	}
	return box, rot, nil
}

func quarterTurn(rot int) bool { return rot == 90 || rot == 270 }
