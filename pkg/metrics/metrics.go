// Package metrics 提供 Prometheus 指标集合与 HTTP 暴露
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 定价请求计数，按结果分类
	PricingRequestsTotal *prometheus.CounterVec
	// 定价耗时
	PricingDuration prometheus.Histogram

	// 行情上传计数，按结果分类
	SnapshotUploadsTotal *prometheus.CounterVec
	// 当前快照行数
	SnapshotRows prometheus.Gauge
	// 当前快照版本
	SnapshotVersion prometheus.Gauge
}

// New 创建并注册指标实例，使用独立 registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		PricingRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "pricing_requests_total",
			Help:      "Total option pricing requests by outcome",
		}, []string{"symbol", "outcome"}),
		PricingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "pricing_duration_seconds",
			Help:      "Option pricing duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),

		SnapshotUploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "snapshot_uploads_total",
			Help:      "Total market data uploads by outcome",
		}, []string{"outcome"}),
		SnapshotRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "snapshot_rows",
			Help:      "Number of rows in the current market data snapshot",
		}),
		SnapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "snapshot_version",
			Help:      "Version of the current market data snapshot",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PricingRequestsTotal,
		m.PricingDuration,
		m.SnapshotUploadsTotal,
		m.SnapshotRows,
		m.SnapshotVersion,
	)
	return m
}

// Registry 返回指标 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 promhttp 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// unknownSymbol 定价失败时使用的 symbol 标签
const unknownSymbol = "unknown"

// RecordPricing 记录一次定价，outcome 为 ok 或错误分类
// symbol 来自请求路径，只有定价成功 (品种存在于快照中) 时才作为标签
func (m *Metrics) RecordPricing(symbol, outcome string, duration time.Duration) {
	if outcome != "ok" {
		symbol = unknownSymbol
	}
	m.PricingRequestsTotal.WithLabelValues(symbol, outcome).Inc()
	m.PricingDuration.Observe(duration.Seconds())
}

// RecordUpload 记录一次行情上传
func (m *Metrics) RecordUpload(outcome string) {
	m.SnapshotUploadsTotal.WithLabelValues(outcome).Inc()
}

// SetSnapshot 更新当前快照指标
func (m *Metrics) SetSnapshot(version uint64, rows int) {
	m.SnapshotVersion.Set(float64(version))
	m.SnapshotRows.Set(float64(rows))
}

// NewServer 创建独立的指标 HTTP 服务
func NewServer(addr, path string, m *Metrics) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	logger.Info(context.Background(), "metrics endpoint configured", "addr", addr, "path", path)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
