package observability

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/skillsprint-backend/internal/platform/envutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const namespace = "skillsprint"

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	llmRequests   *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	jobOutcomes   *prometheus.CounterVec
	stageLatency  *prometheus.HistogramVec
	placeholders  prometheus.Counter
	parseRepairs  *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	workerPanics  prometheus.Counter
	busPublishErr *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide collectors once. It returns nil when metrics are disabled.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("Prometheus metrics enabled")
		}
	})
	return instance
}

// New builds an independent set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency in seconds by method/route/status.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "In-flight API requests.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM requests by provider/model/outcome.",
		}, []string{"provider", "model", "outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "LLM request latency in seconds by provider/model/outcome.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "model", "outcome"}),
		jobOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "jobs_total",
			Help:      "Generation jobs by pipeline and terminal outcome.",
		}, []string{"pipeline", "outcome"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "stage_duration_seconds",
			Help:      "Generation stage duration in seconds.",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1200},
		}, []string{"pipeline", "stage", "status"}),
		placeholders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "placeholder_sprints_total",
			Help:      "Sprints that fell back to placeholder content.",
		}),
		parseRepairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "parse_repairs_total",
			Help:      "Repair passes applied to model output by repair name.",
		}, []string{"repair"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker.",
		}),
		workerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "panics_total",
			Help:      "Recovered worker panics.",
		}),
		busPublishErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "publish_errors_total",
			Help:      "Failed realtime bus publishes by bus kind.",
		}, []string{"bus"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.jobOutcomes, m.stageLatency, m.placeholders, m.parseRepairs,
		m.queueDepth, m.workerPanics, m.busPublishErr,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(provider, model, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	provider = orDefault(provider, "unknown")
	model = orDefault(model, "unknown")
	outcome = orDefault(outcome, "error")
	m.llmRequests.WithLabelValues(provider, model, outcome).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(provider, model, outcome).Observe(dur.Seconds())
	}
}

func (m *Metrics) IncJobOutcome(pipeline, outcome string) {
	if m == nil {
		return
	}
	m.jobOutcomes.WithLabelValues(orDefault(pipeline, "unknown"), orDefault(outcome, "unknown")).Inc()
}

func (m *Metrics) ObserveStage(pipeline, stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(orDefault(pipeline, "unknown"), orDefault(stage, "unknown"), orDefault(status, "ok")).Observe(dur.Seconds())
}

func (m *Metrics) IncPlaceholder() {
	if m == nil {
		return
	}
	m.placeholders.Inc()
}

func (m *Metrics) IncParseRepair(repair string) {
	if m == nil {
		return
	}
	m.parseRepairs.WithLabelValues(orDefault(repair, "unknown")).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) IncWorkerPanic() {
	if m == nil {
		return
	}
	m.workerPanics.Inc()
}

func (m *Metrics) IncBusPublishError(bus string) {
	if m == nil {
		return
	}
	m.busPublishErr.WithLabelValues(orDefault(bus, "unknown")).Inc()
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
