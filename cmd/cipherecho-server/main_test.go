package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecstasoy/cipherecho/pkg/logger"
)

func TestRunStartupErrors(t *testing.T) {
	assert.Equal(t, 1, run([]string{"127.0.0.1"}))
	assert.Equal(t, 1, run([]string{"--frobnicate", "127.0.0.1", "8080"}))
	assert.Equal(t, 1, run([]string{"0.0.0.0", "8080"}))
	assert.Equal(t, 1, run([]string{"224.0.0.1", "8080"}))
}

func TestMetricsServerServesRegistry(t *testing.T) {
	srv := newMetricsServer("127.0.0.1:0", logger.Discard())
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	require.NotNil(t, srv.ErrorLog)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), "cipherecho_connections_active")
}
