package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbooklet/internal/imposition"
)

// Catalog entries that point at the source pages. They are meaningless once
// the page tree is replaced.
var staleCatalogKeys = []string{"Outlines", "Dests", "Names", "PageLabels", "OpenAction", "StructTreeRoot", "AcroForm"}

// Page tree attributes that new pages would otherwise inherit.
var inheritableKeys = []string{"CropBox", "Rotate", "MediaBox", "Resources"}

// form is a source page wrapped as a form XObject.
type form struct {
	ref    *types.IndirectRef
	width  float64
	height float64
}

type builder struct {
	ctx   *model.Context
	forms map[int]form
}

// Write renders doc into w. Every non-blank placement draws the referenced
// page of src into its rectangle; blank placements leave the area empty.
func Write(doc *imposition.Document, src *Source, w io.Writer) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrNoPages
	}

	// Work on a private copy so src stays untouched.
	ctx, err := api.ReadContext(bytes.NewReader(src.data), configuration())
	if err != nil {
		return fmt.Errorf("re-read source: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("validate source: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return err
	}

	b := &builder{ctx: ctx, forms: map[int]form{}}
	kids := make(types.Array, 0, len(doc.Pages))

	root, err := ctx.Catalog()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	pagesRef := root.IndirectRefEntry("Pages")
	if pagesRef == nil {
		return fmt.Errorf("catalog: /Pages is not an indirect reference")
	}
	pagesDict, err := ctx.DereferenceDict(*pagesRef)
	if err != nil {
		return fmt.Errorf("page tree root: %w", err)
	}
	if pagesDict == nil {
		return fmt.Errorf("page tree root missing")
	}

	for i, page := range doc.Pages {
		ref, err := b.page(page, *pagesRef)
		if err != nil {
			return fmt.Errorf("output page %d: %w", i+1, err)
		}
		kids = append(kids, *ref)
	}

	for _, k := range inheritableKeys {
		pagesDict.Delete(k)
	}
	pagesDict.Update("Kids", kids)
	pagesDict.Update("Count", types.Integer(len(kids)))
	for _, k := range staleCatalogKeys {
		root.Delete(k)
	}
	ctx.PageCount = len(kids)

	log.Debug().Int("pages", len(kids)).Int("forms", len(b.forms)).Msg("built booklet page tree")

	return api.WriteContext(ctx, w)
}

// WriteFile writes doc to path. The file appears only once it is complete:
// output goes to a temp file in the same directory which is then renamed.
// With validate set the temp file is checked by pdfcpu before the rename.
func WriteFile(doc *imposition.Document, src *Source, path string, validate bool) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(doc, src, tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if validate {
		if err = Validate(tmp.Name()); err != nil {
			return fmt.Errorf("validate output: %w", err)
		}
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Validate re-reads a written PDF and checks it with pdfcpu.
func Validate(path string) error {
	return api.ValidateFile(path, configuration())
}

func (b *builder) page(page *imposition.OutputPage, parent types.IndirectRef) (*types.IndirectRef, error) {
	var content bytes.Buffer
	xobjects := types.Dict{}

	for _, pl := range page.Placements {
		if pl.Blank {
			continue
		}
		f, err := b.form(pl.Source)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("Fm%d", pl.Source)
		xobjects.Insert(name, *f.ref)
		content.WriteString(placeForm(name, f, pl.Rect))
	}

	sd, err := b.ctx.NewStreamDictForBuf(content.Bytes())
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	contentRef, err := b.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return nil, err
	}

	d := types.Dict(map[string]types.Object{
		"Type":      types.Name("Page"),
		"Parent":    parent,
		"MediaBox":  types.RectForWidthAndHeight(0, 0, page.Width, page.Height).Array(),
		"Resources": types.Dict(map[string]types.Object{"XObject": xobjects}),
		"Contents":  *contentRef,
	})
	return b.ctx.IndRefForNewObject(d)
}

// form wraps source page index as a form XObject, once per page.
func (b *builder) form(index int) (form, error) {
	if f, ok := b.forms[index]; ok {
		return f, nil
	}
	pageNr := index + 1

	pageDict, _, inh, err := b.ctx.PageDict(pageNr, false)
	if err != nil {
		return form{}, fmt.Errorf("source page %d: %w", pageNr, err)
	}
	if pageDict == nil {
		return form{}, fmt.Errorf("source page %d: missing", pageNr)
	}
	box, rot, err := pageBox(inh)
	if err != nil {
		return form{}, fmt.Errorf("source page %d: %w", pageNr, err)
	}

	var body []byte
	if _, found := pageDict.Find("Contents"); found {
		body, err = b.ctx.PageContent(pageDict)
		if err != nil {
			return form{}, fmt.Errorf("source page %d content: %w", pageNr, err)
		}
	}

	w, h := box.Width(), box.Height()
	var buf bytes.Buffer
	buf.WriteString("q ")
	if rot != 0 {
		buf.Write(model.ContentBytesForPageRotation(rot, w, h))
		if quarterTurn(rot) {
			w, h = h, w
		}
	}
	fmt.Fprintf(&buf, "1 0 0 1 %.5f %.5f cm ", -box.LL.X, -box.LL.Y)
	buf.Write(body)
	buf.WriteString(" Q")

	sd, err := b.ctx.NewStreamDictForBuf(buf.Bytes())
	if err != nil {
		return form{}, err
	}
	sd.InsertName("Type", "XObject")
	sd.InsertName("Subtype", "Form")
	sd.Insert("BBox", types.RectForWidthAndHeight(0, 0, w, h).Array())
	if inh.Resources != nil {
		sd.Insert("Resources", inh.Resources)
	}
	if err := sd.Encode(); err != nil {
		return form{}, err
	}
	ref, err := b.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return form{}, err
	}

	f := form{ref: ref, width: w, height: h}
	b.forms[index] = f
	return f, nil
}

// placeForm scales a form uniformly into rect and centres it. Same sized
// pages map at scale 1 with no offset.
func placeForm(name string, f form, rect imposition.Rect) string {
	scale := math.Min(rect.Width()/f.width, rect.Height()/f.height)
	tx := rect.LLX + (rect.Width()-f.width*scale)/2
	ty := rect.LLY + (rect.Height()-f.height*scale)/2
	return fmt.Sprintf("q %.5f 0 0 %.5f %.5f %.5f cm /%s Do Q\n", scale, scale, tx, ty, name)
}
