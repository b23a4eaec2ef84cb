package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/me", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/me", "GET", 200, 4*time.Millisecond)
	m.RecordError("/admin/sales", "POST", "INVALID_AMOUNT")

	snap := m.Snapshot()
	assert.Equal(t, RouteStats{Count: 2, AverageMs: 3}, snap.Requests["/me|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/admin/sales|POST|INVALID_AMOUNT"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLoggerCountsRoutePattern(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/users/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	}

	assert.Equal(t, int64(2), m.Snapshot().Requests["/users/:id|GET|204"].Count)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
