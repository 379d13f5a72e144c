package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbooklet/internal/booklet"
	cfgpkg "github.com/local/pdfbooklet/internal/config"
	"github.com/local/pdfbooklet/internal/imposition"
	logpkg "github.com/local/pdfbooklet/internal/logger"
	"github.com/local/pdfbooklet/internal/metrics"
	"github.com/local/pdfbooklet/internal/pdfdoc"
	"github.com/local/pdfbooklet/internal/storage"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := cfgpkg.ParseArgs(args, stderr)
	var usageErr *cfgpkg.UsageError
	switch {
	case errors.Is(err, cfgpkg.ErrHelp):
		return 0
	case errors.As(err, &usageErr):
		if usageErr.Code == cfgpkg.ExitMissingInput {
			fmt.Fprint(stdout, cfgpkg.Usage)
		}
		return usageErr.Code
	case err != nil:
		fmt.Fprintln(stderr, err)
		return cfgpkg.ExitBadFlags
	}
	if opts.ShowVersion {
		fmt.Fprintf(stdout, "booklet %s\n", version)
		return 0
	}

	if err := cfgpkg.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "warning: .env: %v\n", err)
	}
	cfg := cfgpkg.FromEnv()

	if err := logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		Console:      stderr,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	}); err != nil {
		fmt.Fprintf(stderr, "warning: log file disabled: %v\n", err)
	}
	defer logpkg.Close()

	runID := uuid.NewString()
	logpkg.WithRun(runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewRun()
	runner := booklet.New(booklet.Dependencies{
		Store:    storage.New(cfg.Storage),
		Metrics:  m,
		Out:      stdout,
		Validate: cfg.ValidateOutput,
	})

	res, err := runner.Run(ctx, opts)
	pushMetrics(m, cfg.Metrics, runID)
	if err != nil {
		return report(stderr, err)
	}

	log.Info().
		Str("output", res.Output).
		Int("sheets", res.Sheets).
		Int("blanks", res.Blanks).
		Msg("booklet done")
	return 0
}

func pushMetrics(m *metrics.Run, cfg cfgpkg.MetricsConfig, runID string) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Push(ctx, cfg.PushgatewayURL, cfg.Job, runID); err != nil {
		log.Warn().Err(err).Str("url", cfg.PushgatewayURL).Msg("metrics push failed")
	}
}

// report prints a failure for the user and picks the exit status.
func report(w io.Writer, err error) int {
	var (
		openErr *pdfdoc.OpenError
		iceErr  *imposition.InternalConsistencyError
	)
	switch {
	case errors.As(err, &iceErr):
		log.Error().Err(err).Msg("imposition invariant violated")
		fmt.Fprintf(w, "internal error: %v\nThis is a bug, please report it.\n", err)
	case errors.As(err, &openErr):
		log.Error().Err(err).Str("input", openErr.Path).Msg("cannot read input")
		fmt.Fprintf(w, "error: %v\n", err)
	default:
		log.Error().Err(err).Msg("booklet failed")
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return 1
}
