package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 业务指标
	orderTransitionsTotal *prometheus.CounterVec
	ordersCreatedTotal    prometheus.Counter
	couponEventsTotal     *prometheus.CounterVec
	cleanupFilesTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector 创建指标收集器，使用独立 Registry 方便测试
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		orderTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Order status transitions by target status and result",
			},
			[]string{"to", "result"},
		),
		ordersCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Order rows inserted at checkout",
			},
		),
		couponEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_events_total",
				Help: "Coupon ledger events (issued, used, restored)",
			},
			[]string{"event"},
		),
		cleanupFilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "result_file_cleanup_total",
				Help: "Expired result files processed by the cleanup job",
			},
			[]string{"result"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.orderTransitionsTotal,
		m.ordersCreatedTotal,
		m.couponEventsTotal,
		m.cleanupFilesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 供 /metrics 暴露
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOrderTransition 记录订单状态流转
func (m *MetricsCollector) RecordOrderTransition(to string, success bool) {
	result := "ok"
	if !success {
		result = "rejected"
	}
	m.orderTransitionsTotal.WithLabelValues(to, result).Inc()
}

// RecordOrdersCreated 记录下单行数
func (m *MetricsCollector) RecordOrdersCreated(n int) {
	m.ordersCreatedTotal.Add(float64(n))
}

// RecordCouponEvent 记录优惠券事件
func (m *MetricsCollector) RecordCouponEvent(event string) {
	m.couponEventsTotal.WithLabelValues(event).Inc()
}

// RecordCleanup 记录过期文件清理结果
func (m *MetricsCollector) RecordCleanup(deleted, failed int) {
	m.cleanupFilesTotal.WithLabelValues("deleted").Add(float64(deleted))
	m.cleanupFilesTotal.WithLabelValues("failed").Add(float64(failed))
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector()
	})
	return globalCollector
}
