package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/local/pdfbooklet/internal/imposition"
)

// Exit codes for usage problems.
const (
	ExitMissingInput = 1
	ExitBadFlags     = 2
)

// Options is one booklet job, built once from the command line.
type Options struct {
	InputPath   string
	OutputPath  string
	Binding     imposition.Binding
	Quiet       bool
	ShowVersion bool
}

// UsageError is a command line problem. Code is the process exit status.
type UsageError struct {
	Msg  string
	Code int
}

func (e *UsageError) Error() string { return e.Msg }

// ErrHelp is returned when -h/--help was requested.
var ErrHelp = flag.ErrHelp

// Usage is printed when the input path is missing.
const Usage = `
---------------------------------------------------------------
Reorganise a PDF (e.g. A4) into booklet format (e.g. A5) ready
for double sided printing on the short edge.

Default binding is left (Western).

Usage: booklet input.pdf [output.pdf] [--binding left|right]
---------------------------------------------------------------
`

// ParseArgs parses args (without the program name). Flags may come before,
// between or after the positional input and output paths. Flag errors are
// written to errOut.
func ParseArgs(args []string, errOut io.Writer) (Options, error) {
	var (
		opts    Options
		binding string
	)

	fs := flag.NewFlagSet("booklet", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&binding, "binding", "left", "binding side: 'left' (Western) or 'right' (Japanese)")
	fs.BoolVar(&opts.Quiet, "quiet", false, "do not print per page progress")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(errOut, "usage: booklet input.pdf [output.pdf] [--binding left|right] [--quiet]")
		fs.PrintDefaults()
	}

	// everything after a bare "--" is positional
	var positional, tail []string
	rest := args
	for i, a := range args {
		if a == "--" {
			rest, tail = args[:i], args[i+1:]
			break
		}
	}
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return opts, ErrHelp
			}
			return opts, &UsageError{Msg: err.Error(), Code: ExitBadFlags}
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}
	positional = append(positional, tail...)

	if opts.ShowVersion {
		return opts, nil
	}

	b, err := imposition.ParseBinding(binding)
	if err != nil {
		fmt.Fprintf(errOut, "booklet: argument --binding: %v\n", err)
		return opts, &UsageError{Msg: err.Error(), Code: ExitBadFlags}
	}
	opts.Binding = b

	switch len(positional) {
	case 0:
		return opts, &UsageError{Msg: "missing input path", Code: ExitMissingInput}
	case 1, 2:
	default:
		msg := fmt.Sprintf("unrecognized arguments: %s", strings.Join(positional[2:], " "))
		fmt.Fprintf(errOut, "booklet: %s\n", msg)
		return opts, &UsageError{Msg: msg, Code: ExitBadFlags}
	}

	opts.InputPath = positional[0]
	if len(positional) == 2 {
		opts.OutputPath = positional[1]
	} else {
		opts.OutputPath = OutputName(opts.InputPath, opts.Binding)
	}
	return opts, nil
}

// OutputName derives the default output path: report.pdf becomes
// report-booklet-left.pdf or report-booklet-right.pdf. Inputs without a .pdf
// suffix get the suffix appended. For http(s) inputs the name is taken from
// the URL path and the result is a local file.
func OutputName(input string, binding imposition.Binding) string {
	suffix := "-booklet-" + binding.String() + ".pdf"

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		base := "download"
		if u, err := url.Parse(input); err == nil {
			if b := path.Base(u.Path); b != "." && b != "/" {
				base = b
			}
		}
		input = base
	}

	if strings.HasSuffix(strings.ToLower(input), ".pdf") {
		return input[:len(input)-len(".pdf")] + suffix
	}
	return input + suffix
}
