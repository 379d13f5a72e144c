package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run collects the counters of one booklet run. A CLI run is a batch job,
// so the numbers are pushed to a Pushgateway once at the end instead of
// being scraped.
type Run struct {
	reg *prometheus.Registry

	sourcePages prometheus.Counter
	blankPages  prometheus.Counter
	sheets      prometheus.Counter
	outputPages prometheus.Counter
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess prometheus.Gauge
}

// NewRun builds a fresh registry for one run.
func NewRun() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		sourcePages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfbooklet",
			Name:      "source_pages_total",
			Help:      "Pages read from the source document",
		}),
		blankPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfbooklet",
			Name:      "blank_pages_total",
			Help:      "Blank pages added to reach a multiple of four",
		}),
		sheets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfbooklet",
			Name:      "sheets_total",
			Help:      "Physical sheets of paper in the booklet",
		}),
		outputPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfbooklet",
			Name:      "output_pages_total",
			Help:      "Pages written to the booklet (front and back)",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfbooklet",
			Name:      "runs_total",
			Help:      "Booklet runs by binding and result",
		}, []string{"binding", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pdfbooklet",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each run stage (fetch, compose, write, upload)",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pdfbooklet",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
	r.reg.MustRegister(r.sourcePages, r.blankPages, r.sheets, r.outputPages, r.runs, r.duration, r.lastSuccess)
	return r
}

// ObserveLayout records the shape of the composed booklet.
func (r *Run) ObserveLayout(sourcePages, blanks, sheets int) {
	r.sourcePages.Add(float64(sourcePages))
	r.blankPages.Add(float64(blanks))
	r.sheets.Add(float64(sheets))
	r.outputPages.Add(float64(2 * sheets))
}

// ObserveStage records how long a stage took.
func (r *Run) ObserveStage(stage string, d time.Duration) {
	r.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// Finish records the outcome of the run.
func (r *Run) Finish(binding string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	} else {
		r.lastSuccess.SetToCurrentTime()
	}
	r.runs.WithLabelValues(binding, result).Inc()
}

// Push sends the run's metrics to a Pushgateway. An empty url is a no-op.
func (r *Run) Push(ctx context.Context, url, job, instance string) error {
	if url == "" {
		return nil
	}
	p := push.New(url, job).Gatherer(r.reg)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	return p.AddContext(ctx)
}
