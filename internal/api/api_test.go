package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, *metrics.Collector) {
	t.Helper()
	auth = nil
	tlsConfig = nil

	m := metrics.NewCollector("test")
	return NewServer(Config{Metrics: m}), m
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	w := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "schemagraph", resp.Service)
}

func TestMetricsEndpoint(t *testing.T) {
	s, m := newTestServer(t)
	m.ObserveBuild("singular", "built", 9, time.Millisecond)

	w := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_graph_builds_total{kind="singular",outcome="built"} 1`)
}

func TestEventsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	events.Clear()
	_, err := events.Emit("info", "watch.reload", "", nil)
	require.NoError(t, err)

	w := get(t, s.Handler(), "/events")
	require.Equal(t, http.StatusOK, w.Code)
	var got []events.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "watch.reload", got[0].Name)
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t)
	auth = &authConfig{
		adminUser:  "admin",
		adminPass:  "secret",
		readerUser: "reader",
		readerPass: "read",
		enabled:    true,
	}
	defer func() { auth = nil }()

	do := func(path, user, pass string) int {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		if user != "" {
			r.SetBasicAuth(user, pass)
		}
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/health", "", ""))
	assert.Equal(t, http.StatusUnauthorized, do("/metrics", "", ""))
	assert.Equal(t, http.StatusUnauthorized, do("/metrics", "reader", "wrong"))
	assert.Equal(t, http.StatusOK, do("/metrics", "reader", "read"))
	assert.Equal(t, http.StatusOK, do("/metrics", "admin", "secret"))
	assert.Equal(t, http.StatusForbidden, do("/events", "reader", "read"))
	assert.Equal(t, http.StatusOK, do("/events", "admin", "secret"))
}

func TestInitAuth(t *testing.T) {
	defer func() { auth = nil }()

	t.Setenv("SCHEMAGRAPH_ADMIN_USER", "")
	t.Setenv("SCHEMAGRAPH_ADMIN_PASS", "")
	require.NoError(t, InitAuth())
	assert.False(t, IsAuthEnabled())

	path := filepath.Join(t.TempDir(), "pass")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0600))
	t.Setenv("SCHEMAGRAPH_ADMIN_USER", "admin")
	t.Setenv("SCHEMAGRAPH_ADMIN_PASS_FILE", path)
	require.NoError(t, InitAuth())
	assert.True(t, IsAuthEnabled())
	assert.Equal(t, "s3cret", auth.adminPass)

	t.Setenv("SCHEMAGRAPH_READER_PASS_FILE", "/does/not/exist")
	assert.ErrorContains(t, InitAuth(), "SCHEMAGRAPH_READER_PASS")
}

func TestInitTLS(t *testing.T) {
	defer func() { tlsConfig = nil }()

	t.Setenv("SCHEMAGRAPH_TLS_CERT", "")
	t.Setenv("SCHEMAGRAPH_TLS_KEY", "")
	require.NoError(t, InitTLS())
	assert.False(t, IsTLSEnabled())
	assert.Nil(t, LoadTLSConfig())

	t.Setenv("SCHEMAGRAPH_TLS_CERT", "/does/not/exist.crt")
	t.Setenv("SCHEMAGRAPH_TLS_KEY", "/does/not/exist.key")
	assert.Error(t, InitTLS())
	assert.False(t, IsTLSEnabled())
}

func TestWebSocketStreamsEvents(t *testing.T) {
	s, _ := newTestServer(t)
	events.Clear()
	for i := 0; i < 3; i++ {
		_, err := events.Emit("info", "graph.built", "", map[string]interface{}{"i": i})
		require.NoError(t, err)
	}

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.Event {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var e events.Event
		require.NoError(t, json.Unmarshal(msg, &e))
		return e
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, "graph.built", read().Name)
	}

	_, err = events.Emit("info", "watch.reload", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "watch.reload", read().Name)
}

func TestRecentEvents(t *testing.T) {
	events.Clear()
	for i := 0; i < 5; i++ {
		_, err := events.Emit("info", "graph.built", "", map[string]interface{}{"i": i})
		require.NoError(t, err)
	}
	recent := recentEvents(2)
	require.Len(t, recent, 2)
	assert.EqualValues(t, 3, recent[0].Fields["i"])
}

func TestListenAndServeShutsDown(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
