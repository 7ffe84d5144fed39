package diagnostics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealthzReturnsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handleHealthz(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNewServerRoutesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewTCPInfoCollector(nil)
	require.NoError(t, registry.Register(collector))

	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()
	collector.Add(client, "test-correlation-id")

	srv := NewServer(":0", registry, nil)
	require.NotNil(t, srv.httpServer.Handler)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go61850_tcp_rtt_microseconds")
}
