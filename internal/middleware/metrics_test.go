package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_MiddlewareRecordsCommittedStatus(t *testing.T) {
	m := NewMetrics("aqualink_mwtest")

	e := echo.New()
	e.Use(m.Middleware)
	e.GET("/orders/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "no such order")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/o-404", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/orders/:id", "404")); got != 1 {
		t.Errorf("requests_total{status=404} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/orders/:id", "200")); got != 0 {
		t.Errorf("requests_total{status=200} = %v, want 0", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/health", "200")); got != 1 {
		t.Errorf("requests_total{status=200} = %v, want 1", got)
	}
}
