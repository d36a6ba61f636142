package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/dto"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordScheduleCheck(StatusConflict, []string{dto.AlternativeRoom, dto.AlternativeTime, dto.AlternativeTime})
	m.RecordCommitConflict("makeup")
	m.RecordTransition("Canceled")
	m.RecordMakeupCommitted()
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/schedules/check-and-suggest", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.scheduleChecks.WithLabelValues(StatusConflict)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.alternatives.WithLabelValues(dto.AlternativeTime)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commitConflicts.WithLabelValues("makeup")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.makeupsPlanned))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "schedule_alternatives_total")
	assert.Contains(t, w.Body.String(), "session_transitions_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.RecordScheduleCheck(StatusAvailable, nil)
		m.RecordCommitConflict("create_class")
		m.RecordTransition("Completed")
		m.RecordMakeupCommitted()
		m.RecordCacheOperation(false, 0)
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, 0)
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
