package prometheus

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	return m, c
}

func getMetricOutput(t *testing.T, collector MetricsCollector) string {
	return scrapeMetrics(t, collector)
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.EvaluationsTotal)
	assert.NotNil(t, m.EvaluationDuration)
	assert.NotNil(t, m.EvaluationPointsTotal)
	assert.NotNil(t, m.UnsupportedShellTotal)
	assert.NotNil(t, m.KernelDispatchTotal)
	assert.NotNil(t, m.DBConnectionPoolSize)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.MessageQueueDepth)
}

func TestRecordEvaluation_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordEvaluation(m, "mo", true, 250*time.Millisecond, 8000)

	output := getMetricOutput(t, c)
	assert.Contains(t, output, `test_unit_evaluations_total{kind="mo",status="success"} 1`)
	assert.Contains(t, output, `test_unit_evaluation_points_total{kind="mo"} 8000`)
	assert.Contains(t, output, `test_unit_evaluation_duration_seconds_count{kind="mo"} 1`)
}

func TestRecordEvaluation_Failure(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordEvaluation(m, "density", false, 10*time.Millisecond, 0)

	output := getMetricOutput(t, c)
	assert.Contains(t, output, `test_unit_evaluations_total{kind="density",status="failure"} 1`)
}

func TestRecordDBQuery_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "select", 10*time.Millisecond, nil)

	output := getMetricOutput(t, c)
	assert.Contains(t, output, `test_unit_db_query_duration_seconds_count{db="postgres",operation="select"} 1`)
}

func TestRecordDBQuery_Error(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "insert", 5*time.Millisecond, errors.New("db error"))

	output := getMetricOutput(t, c)
	assert.Contains(t, output, `test_unit_db_query_duration_seconds_count{db="postgres",operation="insert"} 1`)
	assert.Contains(t, output, `test_unit_errors_total{component="postgres",error_type="query_error",severity="error"} 1`)
}

func TestRecordCacheAccess_Hit(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "coeffcache", true)

	output := getMetricOutput(t, c)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="coeffcache"} 1`)
}

func TestRecordCacheAccess_Miss(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "coeffcache", false)

	output := getMetricOutput(t, c)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="coeffcache"} 1`)
}

func TestMetricNaming_FollowsConvention(t *testing.T) {
	_, c := newTestAppMetrics(t)
	output := getMetricOutput(t, c)
	assert.Contains(t, output, "test_unit_evaluations_total")
}

func TestDefaultBuckets(t *testing.T) {
	assert.NotNil(t, DefaultEvaluationDurationBuckets)
	assert.NotNil(t, DefaultDBDurationBuckets)
}

func TestConcurrentMetricRecording(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				RecordEvaluation(m, "mo", true, time.Millisecond, 1)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
