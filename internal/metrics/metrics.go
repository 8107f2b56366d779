package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tradoora"

// Metrics はHTTPと決済のメトリクス。
type Metrics struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	Checkouts     *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "notifications_total",
			Help:      "Payment notifications by mapped status and outcome.",
		}, []string{"status", "outcome"}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Checkouts, m.Notifications)
	return m
}

func (m *Metrics) ObserveCheckout(result string) {
	m.Checkouts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveNotification(status model.OrderStatus, outcome string) {
	m.Notifications.WithLabelValues(string(status), outcome).Inc()
}

// Middleware はルート単位でリクエスト数と処理時間を記録する。
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// エラーはまだ書かれていないので HTTPError のコードを使う
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(c.Request().Method, route).Observe(float64(time.Since(start).Microseconds()) / 1000)
			return err
		}
	}
}

// Handler は /metrics 用
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
