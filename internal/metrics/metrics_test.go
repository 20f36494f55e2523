package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFetchCounters(t *testing.T) {
	startedBefore := testutil.ToFloat64(fetchAttemptsTotal)
	successBefore := testutil.ToFloat64(fetchOutcomesTotal.WithLabelValues(LabelSuccess))
	failureBefore := testutil.ToFloat64(fetchOutcomesTotal.WithLabelValues(LabelFailure))
	staleBefore := testutil.ToFloat64(staleCompletionsTotal)

	ObserveFetchStarted()
	ObserveFetchCompleted(true, 2*time.Second)
	ObserveFetchCompleted(false, time.Second)
	ObserveStaleCompletion()

	if got := testutil.ToFloat64(fetchAttemptsTotal) - startedBefore; got != 1 {
		t.Errorf("expected 1 started fetch, got %f", got)
	}
	if got := testutil.ToFloat64(fetchOutcomesTotal.WithLabelValues(LabelSuccess)) - successBefore; got != 1 {
		t.Errorf("expected 1 success, got %f", got)
	}
	if got := testutil.ToFloat64(fetchOutcomesTotal.WithLabelValues(LabelFailure)) - failureBefore; got != 1 {
		t.Errorf("expected 1 failure, got %f", got)
	}
	if got := testutil.ToFloat64(staleCompletionsTotal) - staleBefore; got != 1 {
		t.Errorf("expected 1 stale completion, got %f", got)
	}
}

func TestSessionAndStoreCounters(t *testing.T) {
	createdBefore := testutil.ToFloat64(sessionCreationsTotal.WithLabelValues(LabelSuccess))
	resetsBefore := testutil.ToFloat64(sessionResetsTotal)
	writesBefore := testutil.ToFloat64(storeWritesTotal.WithLabelValues("memory", LabelFailure))

	ObserveSessionCreation(true)
	ObserveSessionReset()
	ObserveStoreWrite("memory", false)

	if got := testutil.ToFloat64(sessionCreationsTotal.WithLabelValues(LabelSuccess)) - createdBefore; got != 1 {
		t.Errorf("expected 1 session creation, got %f", got)
	}
	if got := testutil.ToFloat64(sessionResetsTotal) - resetsBefore; got != 1 {
		t.Errorf("expected 1 reset, got %f", got)
	}
	if got := testutil.ToFloat64(storeWritesTotal.WithLabelValues("memory", LabelFailure)) - writesBefore; got != 1 {
		t.Errorf("expected 1 failed write, got %f", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveFetchStarted()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "trends_fetch_attempts_total") {
		t.Fatal("expected fetch attempts counter in exposition")
	}
}
