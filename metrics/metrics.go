// Package metrics provides Prometheus metrics for the takeoff pipeline and
// its HTTP service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/questions"
	"github.com/tsawler/takeoff/trace"
)

// Outcome labels for drawings_total.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeNoText = "no_text"
	OutcomeFailed = "failed"
)

// Cache result labels.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// TakeoffMetrics contains the Prometheus metrics for drawing analysis.
// It implements trace.Tracer so it can be attached to an analyzer.
type TakeoffMetrics struct {
	drawingsTotal    *prometheus.CounterVec
	stageEvents      *prometheus.CounterVec
	stageErrors      *prometheus.CounterVec
	trayRunsTotal    *prometheus.CounterVec
	trayMetresTotal  *prometheus.CounterVec
	questionsTotal   *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	cacheRequests    *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewTakeoffMetrics creates the metrics and registers them with registry.
func NewTakeoffMetrics(registry *prometheus.Registry) (*TakeoffMetrics, error) {
	m := &TakeoffMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register takeoff metrics: %w", err)
	}
	return m, nil
}

func (m *TakeoffMetrics) initMetrics() {
	m.drawingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_drawings_total",
			Help: "Total number of analysed drawing pages by outcome.",
		},
		[]string{"outcome"},
	)

	m.stageEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_stage_events_total",
			Help: "Total number of pipeline stage events.",
		},
		[]string{"stage"},
	)

	m.stageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_stage_errors_total",
			Help: "Total number of recovered pipeline stage failures.",
		},
		[]string{"stage"},
	)

	m.trayRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_tray_runs_total",
			Help: "Total number of tray runs found, by tray type.",
		},
		[]string{"tray_type"},
	)

	m.trayMetresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_tray_metres_total",
			Help: "Total tray length measured in metres, by tray type.",
		},
		[]string{"tray_type"},
	)

	m.questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_questions_total",
			Help: "Total number of review questions raised, by question id.",
		},
		[]string{"question"},
	)

	m.analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "takeoff_analysis_duration_seconds",
		Help:    "Duration of drawing analysis in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	m.cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_cache_requests_total",
			Help: "Total number of result cache lookups, by result.",
		},
		[]string{"result"},
	)
}

// Trace counts a pipeline stage event.
func (m *TakeoffMetrics) Trace(e trace.Event) {
	m.stageEvents.WithLabelValues(e.Stage).Inc()
	if e.Err != nil {
		m.stageErrors.WithLabelValues(e.Stage).Inc()
	}
}

// ObserveResult records the outcome of one analysis and how long it took.
func (m *TakeoffMetrics) ObserveResult(res *model.Result, elapsed time.Duration) {
	m.analysisDuration.Observe(elapsed.Seconds())
	m.drawingsTotal.WithLabelValues(Outcome(res)).Inc()
	if res == nil {
		return
	}
	for _, run := range res.TrayRuns {
		m.trayRunsTotal.WithLabelValues(string(run.TrayType)).Inc()
		m.trayMetresTotal.WithLabelValues(string(run.TrayType)).Add(run.LengthM)
	}
	for _, q := range res.Questions {
		m.questionsTotal.WithLabelValues(q.ID).Inc()
	}
}

// RecordCache counts a cache lookup.
func (m *TakeoffMetrics) RecordCache(hit bool) {
	if hit {
		m.cacheRequests.WithLabelValues(CacheHit).Inc()
		return
	}
	m.cacheRequests.WithLabelValues(CacheMiss).Inc()
}

// Outcome classifies a result for the drawings_total counter.
func Outcome(res *model.Result) string {
	if res == nil {
		return OutcomeFailed
	}
	if _, ok := res.Question(questions.IDExtractionFailed); ok {
		return OutcomeFailed
	}
	if _, ok := res.Question(questions.IDNoText); ok {
		return OutcomeNoText
	}
	if len(res.TrayRuns) == 0 {
		return OutcomeEmpty
	}
	return OutcomeOK
}

// Collect implements the prometheus.Collector interface.
func (m *TakeoffMetrics) Collect(ch chan<- prometheus.Metric) {
	m.drawingsTotal.Collect(ch)
	m.stageEvents.Collect(ch)
	m.stageErrors.Collect(ch)
	m.trayRunsTotal.Collect(ch)
	m.trayMetresTotal.Collect(ch)
	m.questionsTotal.Collect(ch)
	m.analysisDuration.Collect(ch)
	m.cacheRequests.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *TakeoffMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.drawingsTotal.Describe(ch)
	m.stageEvents.Describe(ch)
	m.stageErrors.Describe(ch)
	m.trayRunsTotal.Describe(ch)
	m.trayMetresTotal.Describe(ch)
	m.questionsTotal.Describe(ch)
	m.analysisDuration.Describe(ch)
	m.cacheRequests.Describe(ch)
}
