package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/types"
)

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"custom", types.NewNotFoundError("Host 'node1' not found"), http.StatusNotFound, `{"error":"Host 'node1' not found"}`},
		{"wrapped custom", errors.Join(types.NewCapacityError("Nodeset too large")), http.StatusRequestEntityTooLarge, `{"error":"Nodeset too large"}`},
		{"fiber", fiber.NewError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, `{"error":"Method Not Allowed"}`},
		{"unexpected", errors.New("disk I/O error"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.body, string(body))
		})
	}

	unhandled := logs.FilterMessage("unhandled error").All()
	require.Len(t, unhandled, 1)
	assert.Equal(t, "disk I/O error", unhandled[0].ContextMap()["error"])
}

func TestTextResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return TextResponse(c, "#!ipxe\nexit") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "#!ipxe\nexit", string(body))
}

func TestProbeHealth(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	status, err := ProbeHealth(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	healthy = false
	status, err = ProbeHealth(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestPingServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	assert.Error(t, PingService(addr, 200*time.Millisecond))
	assert.Error(t, PingService("://bad", time.Second))
}
