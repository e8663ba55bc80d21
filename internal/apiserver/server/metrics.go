// Package server Prometheus 指标导出
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 包含所有 API Server 指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 业务指标
	PostsTotal            *prometheus.GaugeVec
	EngagementEventsTotal *prometheus.CounterVec
	ModerationTotal       *prometheus.CounterVec

	// 薪资任务指标
	SalaryRunsTotal   prometheus.Counter
	SalaryRunDuration prometheus.Histogram
	SalaryRunFailures prometheus.Counter

	// 缓存指标
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewMetrics 创建指标实例
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		PostsTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "posts_total",
				Help:      "Total posts by moderation status",
			},
			[]string{"status"},
		),
		EngagementEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engagement_events_total",
				Help:      "Total engagement events by kind",
			},
			[]string{"kind"},
		),
		ModerationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_decisions_total",
				Help:      "Total moderation decisions by action",
			},
			[]string{"action"},
		),
		SalaryRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "salary_runs_total",
				Help:      "Total salary recompute runs",
			},
		),
		SalaryRunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "salary_run_duration_seconds",
				Help:      "Salary recompute duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		SalaryRunFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "salary_run_failures_total",
				Help:      "Total per-user failures during salary recompute",
			},
		),
		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total cache hits",
			},
			[]string{"key"},
		),
		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total cache misses",
			},
			[]string{"key"},
		),
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath 规范化路径，将 ID 替换为占位符避免高基数
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/posts/") && len(path) > len("/api/v1/posts/"):
		rest := path[len("/api/v1/posts/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/v1/posts/{id}" + rest[i:]
		}
		return "/api/v1/posts/{id}"
	case strings.HasPrefix(path, "/api/v1/users/") && len(path) > len("/api/v1/users/"):
		rest := path[len("/api/v1/users/"):]
		if strings.HasSuffix(rest, "/salary") {
			return "/api/v1/users/{id}/salary"
		}
		return "/api/v1/users/{id}"
	case strings.HasPrefix(path, "/api/v1/request/"):
		return "/api/v1/request/{id}"
	case strings.HasPrefix(path, "/api/v1/backoffice/posts/") && len(path) > len("/api/v1/backoffice/posts/"):
		rest := path[len("/api/v1/backoffice/posts/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/v1/backoffice/posts/{id}" + rest[i:]
		}
		return "/api/v1/backoffice/posts/{id}"
	default:
		return path
	}
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordSalaryRun 记录一轮薪资重算
func (m *Metrics) RecordSalaryRun(duration time.Duration, failures int) {
	m.SalaryRunsTotal.Inc()
	m.SalaryRunDuration.Observe(duration.Seconds())
	m.SalaryRunFailures.Add(float64(failures))
}

// RecordEngagement 记录一次互动事件
func (m *Metrics) RecordEngagement(kind string) {
	m.EngagementEventsTotal.WithLabelValues(kind).Inc()
}

// RecordModeration 记录一次审核决定
func (m *Metrics) RecordModeration(action string) {
	m.ModerationTotal.WithLabelValues(action).Inc()
}

// SetPostsCount 设置各状态帖子数量
func (m *Metrics) SetPostsCount(status string, count int) {
	m.PostsTotal.WithLabelValues(status).Set(float64(count))
}

// RecordCacheHit 记录缓存命中
func (m *Metrics) RecordCacheHit(key string) {
	m.CacheHitsTotal.WithLabelValues(key).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *Metrics) RecordCacheMiss(key string) {
	m.CacheMissesTotal.WithLabelValues(key).Inc()
}
