// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package eventapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventapi"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*httptest.Server, eventbus.Bus) {
	t.Helper()
	cfg := &config.Config{}
	bus, err := eventbus.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	srv := eventapi.New(cfg, bus, nil)
	handler := eventapi.Handler(srv)
	return httptest.NewServer(handler), bus
}

func dialWS(t *testing.T, serverURL, path string) *gorillaWS.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + path
	dialer := gorillaWS.Dialer{}
	header := http.Header{}
	header.Set("Origin", serverURL)
	conn, resp, err := dialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn
}

func TestEventsStreamToWebSocket(t *testing.T) {
	t.Parallel()
	server, bus := setupTestServer(t)
	defer server.Close()

	conn := dialWS(t, server.URL, "/ws/events")
	defer func() { _ = conn.Close() }()

	// Give the handler a moment to register its subscription.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, bus.Publish("events", []byte(`{"kind":"group_grant","tgid":100}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "group_grant")
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	server, _ := setupTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSnapshotUnavailableWithoutProvider(t *testing.T) {
	t.Parallel()
	server, _ := setupTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/snapshot")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
