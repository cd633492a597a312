package observability

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	indexOps      *prometheus.CounterVec
	indexLatency  *prometheus.HistogramVec
	embedBatches  *prometheus.CounterVec
	embedTexts    prometheus.Counter
	ingestDocs    *prometheus.CounterVec
	ingestChunks  prometheus.Counter
	searchResults prometheus.Histogram
	dataQuality   *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil when metrics are disabled.
// All Metrics methods are nil-safe.
func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once when enabled.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

// NewMetrics registers a fresh set of collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vw_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "vw_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_llm_requests_total",
			Help: "LLM requests by model/endpoint/status.",
		}, []string{"model", "endpoint", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vw_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds by model/endpoint/status.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"model", "endpoint", "status"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_llm_tokens_total",
			Help: "LLM tokens by model/direction.",
		}, []string{"model", "direction"}),
		indexOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_vector_index_operations_total",
			Help: "Vector index operations by operation/status.",
		}, []string{"operation", "status"}),
		indexLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vw_vector_index_operation_duration_seconds",
			Help:    "Vector index operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		embedBatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_embedding_batches_total",
			Help: "Embedding provider calls by status.",
		}, []string{"status"}),
		embedTexts: f.NewCounter(prometheus.CounterOpts{
			Name: "vw_embedding_texts_total",
			Help: "Texts sent for embedding.",
		}),
		ingestDocs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_ingest_documents_total",
			Help: "Documents submitted for ingestion by status.",
		}, []string{"status"}),
		ingestChunks: f.NewCounter(prometheus.CounterOpts{
			Name: "vw_ingest_chunks_total",
			Help: "Chunks written to the vector index.",
		}),
		searchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vw_search_results",
			Help:    "Results returned per knowledge base search.",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
		dataQuality: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vw_data_quality_issues_total",
			Help: "Data quality issues by stage/issue.",
		}, []string{"stage", "issue"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "vw_redis_up",
			Help: "Whether the last redis ping succeeded.",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Name: "vw_redis_ping_seconds",
			Help: "Latency of the last redis ping.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// NewServer returns the standalone /metrics server, or nil when metrics are off or addr is empty.
func (m *Metrics) NewServer(addr string) *http.Server {
	if m == nil {
		return nil
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
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

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = "unknown"
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "0"
	}
	m.llmRequests.WithLabelValues(model, endpoint, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, endpoint, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) ObserveIndexOp(operation string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	m.indexOps.WithLabelValues(operation, statusLabel(err)).Inc()
	m.indexLatency.WithLabelValues(operation).Observe(dur.Seconds())
}

func (m *Metrics) ObserveEmbedding(texts int, err error) {
	if m == nil {
		return
	}
	m.embedBatches.WithLabelValues(statusLabel(err)).Inc()
	if err == nil && texts > 0 {
		m.embedTexts.Add(float64(texts))
	}
}

func (m *Metrics) ObserveIngest(documents, chunks int, err error) {
	if m == nil {
		return
	}
	m.ingestDocs.WithLabelValues(statusLabel(err)).Add(float64(documents))
	if err == nil && chunks > 0 {
		m.ingestChunks.Add(float64(chunks))
	}
}

func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	m.searchResults.Observe(float64(results))
}

func (m *Metrics) IncDataQuality(stage, issue string) {
	if m == nil {
		return
	}
	m.dataQuality.WithLabelValues(stage, issue).Inc()
}

// StartRedisCollector pings redis on an interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func scrapeInterval() time.Duration {
	if v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 15 * time.Second
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
