package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/news/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("GET", "/api/news/:slug", "200"))

	for _, slug := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/news/"+slug, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("GET", "/api/news/:slug", "200"))
	assert.Equal(t, before+2, after)
}

func TestRecordWrite(t *testing.T) {
	ok := ContentWritesTotal.WithLabelValues("news", "create", "ok")
	failed := ContentWritesTotal.WithLabelValues("news", "create", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordWrite("news", "create", nil)
	RecordWrite("news", "create", errors.New("conflict"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordWrite("podcasts", "delete", nil)

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "content_writes_total"))
}
