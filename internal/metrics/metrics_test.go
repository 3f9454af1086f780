package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestItem(t *testing.T) {
	m := New()
	m.Item("upload", OutcomePersisted, "")
	m.Item("upload", OutcomePersisted, "")
	m.Item("watch", OutcomeFailed, "decode_error")

	if got := testutil.ToFloat64(m.items.WithLabelValues("upload", OutcomePersisted, "")); got != 2 {
		t.Errorf("upload persisted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.items.WithLabelValues("watch", OutcomeFailed, "decode_error")); got != 1 {
		t.Errorf("watch failed = %v, want 1", got)
	}
}

func TestDiscovered(t *testing.T) {
	m := New()
	m.Discovered()
	m.Discovered()
	if got := testutil.ToFloat64(m.discovered); got != 2 {
		t.Errorf("discovered = %v, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveStage("normalize", 120*time.Millisecond)
	m.Insights("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`voice_insights_stage_seconds_count{stage="normalize"} 1`,
		`voice_insights_insights_requests_total{outcome="ok"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Discovered()
	if got := testutil.ToFloat64(b.discovered); got != 0 {
		t.Errorf("second registry saw %v discoveries, want 0", got)
	}
}
