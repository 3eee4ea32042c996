package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ poem.Observer = (*Metrics)(nil)

func TestObserverCounters(t *testing.T) {
	m := New()
	m.Generated(poem.OutcomeOK)
	m.Generated(poem.OutcomeOK)
	m.Generated(poem.OutcomeNoTemplates)
	m.FellBack()
	m.UsageIncrementFailed()

	if got := testutil.ToFloat64(m.poemsGenerated.WithLabelValues(poem.OutcomeOK)); got != 2 {
		t.Errorf("ok generations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.selectionFallbacks); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.usageIncrementFails); got != 1 {
		t.Errorf("increment failures = %v, want 1", got)
	}
}

func TestBackfillRows(t *testing.T) {
	m := New()
	m.BackfillRows(5, 2, 1)
	m.BackfillRows(1, 0, 0)
	if got := testutil.ToFloat64(m.backfillRows.WithLabelValues("updated")); got != 6 {
		t.Errorf("updated = %v, want 6", got)
	}
	if got := testutil.ToFloat64(m.backfillRows.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
}

func TestHandlerExposesRequests(t *testing.T) {
	m := New()
	m.RecordRequest("POST", "/api/v1/poems/generate", 200, 0.01)
	m.RecordRequest("GET", "", 404, 0.001)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`http_requests_total{method="POST",route="/api/v1/poems/generate",status="200"} 1`,
		`route="unmatched"`,
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
