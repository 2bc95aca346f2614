package observability

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMetricsConcurrency verifies that NewMetrics can be called concurrently
// without causing race conditions
func TestNewMetricsConcurrency(t *testing.T) {
	t.Parallel()

	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			m, err := NewMetrics()
			if err != nil {
				t.Errorf("NewMetrics failed: %v", err)
				return
			}
			if m == nil {
				t.Error("NewMetrics returned nil")
				return
			}
			if m.registry == nil {
				t.Error("metrics.registry is nil")
			}
			if m.Weather == nil {
				t.Error("metrics.Weather is nil")
			}
			if m.Scoring == nil {
				t.Error("metrics.Scoring is nil")
			}
			if m.HTTP == nil {
				t.Error("metrics.HTTP is nil")
			}
		}()
	}

	wg.Wait()
}

func TestMetricsHandlerServesExposition(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.Scoring.UpdateCurrentScore("ocean", 7.5)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fishing_score")
}
