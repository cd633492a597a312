package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/rag/stats", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveLLMRequest("gpt-4", "/v1/chat/completions", "200", time.Second, 10, 5)
	m.ObserveIndexOp("search", nil, time.Millisecond)
	m.ObserveEmbedding(3, nil)
	m.ObserveIngest(1, 2, nil)
	m.ObserveSearch(0)
	m.IncDataQuality("ingest", "empty_document")
	if m.NewServer(":0") != nil {
		t.Fatalf("nil metrics should not build a server")
	}
}

func TestIndexAndIngestCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveIndexOp("upsert", nil, 5*time.Millisecond)
	m.ObserveIndexOp("upsert", errors.New("boom"), 5*time.Millisecond)
	m.ObserveIngest(2, 7, nil)
	m.ObserveIngest(1, 0, errors.New("embed failed"))

	if got := testutil.ToFloat64(m.indexOps.WithLabelValues("upsert", "ok")); got != 1 {
		t.Fatalf("upsert ok: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.indexOps.WithLabelValues("upsert", "error")); got != 1 {
		t.Fatalf("upsert error: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.ingestDocs.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ingest ok docs: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.ingestChunks); got != 7 {
		t.Fatalf("ingest chunks: want=7 got=%v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/rag/ingest", "200", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `vw_api_requests_total{method="POST",route="/api/rag/ingest",status="200"} 1`) {
		t.Fatalf("api counter missing from exposition:\n%s", rec.Body.String())
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" x-api-key=abc , bad, empty= ,tenant=vw")
	if len(got) != 2 || got["x-api-key"] != "abc" || got["tenant"] != "vw" {
		t.Fatalf("headers: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
