package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPaymentCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCheckout("ok")
	m.ObserveCheckout("ok")
	m.ObserveNotification(model.OrderStatusPaid, "applied")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Checkouts.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Notifications.WithLabelValues("PAID", "applied")))
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/products/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "down")
	})

	for _, path := range []string{"/products/1", "/products/2", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/products/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/boom", "502")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tradoora_http_requests_total"))
}
