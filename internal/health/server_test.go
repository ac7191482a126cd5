package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestReadyReflectsChecks(t *testing.T) {
	corpusErr := errors.New("corpus is empty")
	failing := true
	s := NewServer(Config{
		ServiceName: "line-edge",
		Logger:      quietLogger(),
		Checks: map[string]Checker{
			"corpus": CheckerFunc(func(ctx context.Context) error {
				if failing {
					return corpusErr
				}
				return nil
			}),
		},
	})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "not_ready", resp.Checks["service"])
	assert.Contains(t, resp.Checks["corpus"], "corpus is empty")

	s.SetReady(true)
	failing = false
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Checks["corpus"])
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "line-edge", Version: "dev", Logger: quietLogger()})
	h := s.Handler()

	for _, path := range []string{"/health", "/live"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "line-edge", resp.Service)
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "line_edge_games_processed_total 3\n")
	})
	s := NewServer(Config{MetricsPath: "/prom", Metrics: metrics, Logger: quietLogger()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prom", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "line_edge_games_processed_total"))
}

func TestStartAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(Config{ServiceName: "line-edge", Logger: quietLogger()})
	addr, err := s.Start(ctx)
	require.NoError(t, err)

	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	resp, err := http.Get("http://127.0.0.1:" + port + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown())
}
