// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package eventapi_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventapi"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	"github.com/stretchr/testify/require"
)

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	cfg := &config.Config{
		EventAPI: config.EventAPI{Enabled: true, Bind: "127.0.0.1", Port: port},
	}
	bus, err := eventbus.New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = bus.Close() }()

	server := eventapi.New(cfg, bus, nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Give the listener a moment to come up before we ask it to stop.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, server.Stop())

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}
}

func TestSnapshotServesProvider(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	bus, err := eventbus.New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = bus.Close() }()

	type state struct {
		Tuned bool `json:"tuned"`
	}
	provider := snapshotFunc(func() any { return state{Tuned: true} })

	server := eventapi.New(cfg, bus, provider)
	testServer := httptest.NewServer(eventapi.Handler(server))
	defer testServer.Close()

	resp, err := http.Get(testServer.URL + "/snapshot")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded state
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.True(t, decoded.Tuned)
}

type snapshotFunc func() any

func (f snapshotFunc) Snapshot() any { return f() }
