package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Mutations 按操作统计课程相关写入
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "study_tracker",
			Name:      "mutations_total",
			Help:      "Number of course mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	StudyMinutes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "study_tracker",
			Name:      "study_minutes_total",
			Help:      "Minutes recorded through study sessions",
		},
	)

	StatsCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "study_tracker",
			Name:      "stats_cache_lookups_total",
			Help:      "Stats cache lookups by result",
		},
		[]string{"result"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(Mutations)
	prometheus.MustRegister(StudyMinutes)
	prometheus.MustRegister(StatsCacheLookups)
}

// ObserveMutation 记录一次写操作的结果
func ObserveMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Mutations.WithLabelValues(operation, outcome).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
