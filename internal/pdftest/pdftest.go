// Package pdftest builds small, well-formed PDF files for tests and probes
// written PDFs through pdfcpu.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageSpec describes one page of a generated document.
type PageSpec struct {
	Width  float64
	Height float64
	Rotate int
}

// Uniform returns n pages of the same size.
func Uniform(n int, width, height float64) []PageSpec {
	pages := make([]PageSpec, n)
	for i := range pages {
		pages[i] = PageSpec{Width: width, Height: height}
	}
	return pages
}

// Build renders a classic xref-table PDF with one content stream per page.
// Each page strokes a line and a label so pages are distinguishable.
func Build(pages []PageSpec) []byte {
	var buf bytes.Buffer
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1: catalog, 2: pages, 3: font, then (page, content) pairs.
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, p := range pages {
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s]%s /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			num(p.Width), num(p.Height), rotate, 5+2*i))

		content := fmt.Sprintf("0 0 m %s %s l S BT /F1 12 Tf 10 10 Td (page %d) Tj ET", num(p.Width), num(p.Height), i+1)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// WriteFile writes a generated PDF into a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name string, pages []PageSpec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(pages), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Dims returns the page dimensions of the PDF at path.
func Dims(t testing.TB, path string) [][2]float64 {
	t.Helper()
	dims, err := api.PageDimsFile(path)
	if err != nil {
		t.Fatalf("page dims %s: %v", path, err)
	}
	out := make([][2]float64, len(dims))
	for i, d := range dims {
		out[i] = [2]float64{d.Width, d.Height}
	}
	return out
}

func num(f float64) string {
	return fmt.Sprintf("%g", f)
}

var (
	doRe    = regexp.MustCompile(`q ([0-9.]+) 0 0 [0-9.]+ (-?[0-9.]+) -?[0-9.]+ cm /(\w+) Do Q`)
	labelRe = regexp.MustCompile(`\(page (\d+)\)`)
)

// Slots reads back a written booklet and describes, per output page, which
// generated source page is drawn at which x offset, e.g. "x=0:page2 x=300:page7".
// Blank halves draw nothing and do not appear.
func Slots(t testing.TB, path string) []string {
	t.Helper()
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("page count %s: %v", path, err)
	}

	out := make([]string, 0, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		page, _, _, err := ctx.PageDict(nr, false)
		if err != nil {
			t.Fatalf("page %d: %v", nr, err)
		}
		content, err := ctx.PageContent(page)
		if err != nil {
			t.Fatalf("page %d content: %v", nr, err)
		}
		res, _ := page.Find("Resources")
		resDict, err := ctx.DereferenceDict(res)
		if err != nil || resDict == nil {
			t.Fatalf("page %d resources: %v", nr, err)
		}
		xobj, _ := resDict.Find("XObject")
		xobjDict, err := ctx.DereferenceDict(xobj)
		if err != nil {
			t.Fatalf("page %d xobjects: %v", nr, err)
		}

		var slots []string
		for _, m := range doRe.FindAllStringSubmatch(string(content), -1) {
			ref, ok := xobjDict.Find(m[3])
			if !ok {
				t.Fatalf("page %d: form %s not in resources", nr, m[3])
			}
			sd, _, err := ctx.DereferenceStreamDict(ref)
			if err != nil || sd == nil {
				t.Fatalf("page %d form %s: %v", nr, m[3], err)
			}
			if err := sd.Decode(); err != nil {
				t.Fatalf("page %d form %s decode: %v", nr, m[3], err)
			}
			label := labelRe.FindStringSubmatch(string(sd.Content))
			if label == nil {
				t.Fatalf("page %d form %s: no page label", nr, m[3])
			}
			x, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				t.Fatalf("page %d: bad offset %q", nr, m[2])
			}
			slots = append(slots, fmt.Sprintf("x=%g:page%s", x, label[1]))
		}
		out = append(out, strings.Join(slots, " "))
	}
	return out
}
