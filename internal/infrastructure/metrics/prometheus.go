package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const namespace = "newsdesk"

// Recorder implements ports.Recorder with Prometheus collectors registered on
// its own registry.
type Recorder struct {
	registry *prometheus.Registry

	fetchRuns        *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	sourceResults    *prometheus.CounterVec
	articlesSaved    prometheus.Counter
	duplicates       prometheus.Counter
	catResults       *prometheus.CounterVec
	tokens           *prometheus.CounterVec
	estimatedCostUSD *prometheus.CounterVec
}

var _ ports.Recorder = (*Recorder)(nil)

// NewRecorder registers every collector plus the Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "runs_total",
			Help:      "Fetch runs by job type and final status",
		}, []string{"job_type", "status"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "run_duration_seconds",
			Help:      "Wall time of fetch runs",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"job_type"}),
		sourceResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "source_results_total",
			Help:      "Per-source fetch outcomes",
		}, []string{"status"}),
		articlesSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "articles_saved_total",
			Help:      "Articles inserted by fetch runs",
		}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duplicates_skipped_total",
			Help:      "Candidates skipped because they were already stored",
		}),
		catResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "categorization",
			Name:      "results_total",
			Help:      "Per-article categorization outcomes",
		}, []string{"status"}),
		tokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "openai",
			Name:      "tokens_total",
			Help:      "Tokens consumed by categorization calls",
		}, []string{"model", "kind"}),
		estimatedCostUSD: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "openai",
			Name:      "estimated_cost_usd_total",
			Help:      "Estimated spend on categorization calls",
		}, []string{"model"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) FetchRun(jobType domain.JobType, status domain.RunStatus, d time.Duration) {
	r.fetchRuns.WithLabelValues(string(jobType), string(status)).Inc()
	r.fetchDuration.WithLabelValues(string(jobType)).Observe(d.Seconds())
}

func (r *Recorder) SourceResult(status domain.SourceStatus) {
	r.sourceResults.WithLabelValues(string(status)).Inc()
}

func (r *Recorder) ArticlesSaved(n int) {
	if n > 0 {
		r.articlesSaved.Add(float64(n))
	}
}

func (r *Recorder) DuplicatesSkipped(n int) {
	if n > 0 {
		r.duplicates.Add(float64(n))
	}
}

func (r *Recorder) CategorizationResults(status domain.ResultStatus, n int) {
	if n > 0 {
		r.catResults.WithLabelValues(string(status)).Add(float64(n))
	}
}

func (r *Recorder) TokenUsage(u domain.OpenAIUsage) {
	model := u.Model
	r.tokens.WithLabelValues(model, "prompt").Add(float64(u.PromptTokens))
	r.tokens.WithLabelValues(model, "completion").Add(float64(u.CompletionTokens))
	r.estimatedCostUSD.WithLabelValues(model).Add(u.EstimatedCostUSD)
}
