package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrderTransition(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordOrderTransition("confirmed", true)
	m.RecordOrderTransition("confirmed", true)
	m.RecordOrderTransition("confirmed", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.orderTransitionsTotal.WithLabelValues("confirmed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderTransitionsTotal.WithLabelValues("confirmed", "rejected")))
}

func TestRecordCleanupAndHTTP(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordCleanup(3, 1)
	m.RecordHTTPRequest("GET", "/products", "200", 15*time.Millisecond)
	m.RecordOrdersCreated(2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.cleanupFilesTotal.WithLabelValues("deleted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cleanupFilesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/products", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreatedTotal))
}
