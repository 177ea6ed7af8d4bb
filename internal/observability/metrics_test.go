package observability

import (
	"sync"
	"testing"
	"time"
)

func TestRecordRequestCounts(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordRequest("/api/tickets", "GET", 200, 5*time.Millisecond)
	metrics.RecordRequest("/api/tickets", "GET", 200, 7*time.Millisecond)
	metrics.RecordRequest("/api/tickets", "POST", 201, 9*time.Millisecond)

	if got := metrics.RequestTotal("/api/tickets", "GET", 200); got != 2 {
		t.Errorf("GET 200 count = %d, want 2", got)
	}
	if got := metrics.RequestTotal("/api/tickets", "POST", 201); got != 1 {
		t.Errorf("POST 201 count = %d, want 1", got)
	}
	if got := metrics.RequestTotal("/api/tickets", "DELETE", 200); got != 0 {
		t.Errorf("unrecorded combination count = %d, want 0", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.RecordRequest("/health/live", "GET", 200, time.Millisecond)
	metrics.RecordError("/health/live", "GET", "INTERNAL_ERROR")
	if got := metrics.RequestTotal("/health/live", "GET", 200); got != 0 {
		t.Errorf("nil metrics count = %d, want 0", got)
	}
}

func TestConcurrentRecording(t *testing.T) {
	metrics := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.RecordRequest("/api/tickets", "GET", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	if got := metrics.RequestTotal("/api/tickets", "GET", 200); got != 50 {
		t.Errorf("count = %d, want 50", got)
	}
}
