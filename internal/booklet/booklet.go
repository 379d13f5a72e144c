// Package booklet runs one imposition job end to end: fetch the source,
// pad, plan, compose, write and deliver, reporting progress as it goes.
package booklet

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfbooklet/internal/config"
	"github.com/local/pdfbooklet/internal/imposition"
	"github.com/local/pdfbooklet/internal/metrics"
	"github.com/local/pdfbooklet/internal/pdfdoc"
	"github.com/local/pdfbooklet/internal/storage"
)

// Result summarises a finished run.
type Result struct {
	Output      string
	SourcePages int
	Blanks      int
	Sheets      int
	OutputPages int
}

// Dependencies are the collaborators of a Runner.
type Dependencies struct {
	Store    *storage.Store
	Metrics  *metrics.Run // optional
	Out      io.Writer    // progress report, usually stdout
	Validate bool         // check the written PDF before it is published
}

// Runner executes booklet jobs.
type Runner struct {
	deps Dependencies
}

// New creates a Runner.
func New(deps Dependencies) *Runner {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRun()
	}
	return &Runner{deps: deps}
}

// Run turns opts.InputPath into a booklet at opts.OutputPath. Nothing is
// written at the destination unless the whole document was composed and
// written successfully.
func (r *Runner) Run(ctx context.Context, opts config.Options) (res Result, err error) {
	defer func() { r.deps.Metrics.Finish(opts.Binding.String(), err) }()

	src, err := r.open(ctx, opts.InputPath)
	if err != nil {
		return res, err
	}

	out := r.deps.Out
	fmt.Fprintln(out, "\nBooklet Layout Generator")
	fmt.Fprintln(out, "------------------------")
	fmt.Fprintf(out, ">> Processing %s\n", src.Name())
	fmt.Fprintf(out, ">> Binding mode %s\n\n", opts.Binding.Describe())

	dest, err := storage.ParseRef(opts.OutputPath)
	if err != nil {
		return res, err
	}

	start := time.Now()
	padded, blanks := imposition.Pad(src)
	total := padded.PageCount()
	plan := imposition.Plan(total, opts.Binding)

	var progress imposition.ProgressFunc
	if !opts.Quiet {
		progress = progressPrinter(out, total)
	}
	doc, err := imposition.Compose(plan, padded, progress)
	if err != nil {
		log.Error().Err(err).Msg("compose failed")
		return res, err
	}
	r.deps.Metrics.ObserveStage("compose", time.Since(start))
	r.deps.Metrics.ObserveLayout(src.PageCount(), blanks, len(plan))

	log.Info().
		Int("source_pages", src.PageCount()).
		Int("blanks", blanks).
		Int("sheets", len(plan)).
		Str("binding", opts.Binding.String()).
		Msg("composed booklet")

	target, err := r.deps.Store.Prepare(dest)
	if err != nil {
		return res, err
	}
	start = time.Now()
	if err := pdfdoc.WriteFile(doc, src, target.Path(), r.deps.Validate); err != nil {
		r.deps.Store.Discard(target)
		return res, fmt.Errorf("write booklet: %w", err)
	}
	r.deps.Metrics.ObserveStage("write", time.Since(start))

	start = time.Now()
	if err := r.deps.Store.Commit(ctx, target); err != nil {
		return res, err
	}
	if dest.Scheme == storage.SchemeS3 {
		r.deps.Metrics.ObserveStage("upload", time.Since(start))
	}

	fmt.Fprintf(out, "\n>> Booklet PDF saved to %s\n\n", target.Dest())
	fmt.Fprintln(out, "When printing: double sided on short edge")

	return Result{
		Output:      target.Dest().String(),
		SourcePages: src.PageCount(),
		Blanks:      blanks,
		Sheets:      len(plan),
		OutputPages: len(doc.Pages),
	}, nil
}

// open fetches and parses the source; every failure is an *pdfdoc.OpenError.
func (r *Runner) open(ctx context.Context, input string) (*pdfdoc.Source, error) {
	ref, err := storage.ParseRef(input)
	if err != nil {
		return nil, &pdfdoc.OpenError{Path: input, Err: err}
	}

	start := time.Now()
	data, err := r.deps.Store.Fetch(ctx, ref)
	if err != nil {
		return nil, &pdfdoc.OpenError{Path: input, Err: err}
	}
	r.deps.Metrics.ObserveStage("fetch", time.Since(start))

	src, err := pdfdoc.Load(input, data)
	if err != nil {
		return nil, err
	}
	if src.PageCount() == 0 {
		return nil, &pdfdoc.OpenError{Path: input, Err: pdfdoc.ErrNoPages}
	}
	return src, nil
}

// progressPrinter reports each output page with 1-based source page numbers
// right-aligned to the width of the padded page count.
func progressPrinter(w io.Writer, total int) imposition.ProgressFunc {
	width := len(strconv.Itoa(total))
	return func(f imposition.Face) {
		fmt.Fprintf(w, "   Processing pages %*d & %*d -> new page %d\n", width, f.Right+1, width, f.Left+1, f.PageNumber)
	}
}
