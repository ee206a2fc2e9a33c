// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package eventapi is the decoder's one inbound surface: a small HTTP+WS
// server that streams the event bus's diagnostic events out to external
// observers and exposes /healthz and /snapshot for the trunking state the
// core otherwise treats as opaque to anything outside itself.
package eventapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	defTimeout     = 10 * time.Second
	rateLimitRate  = time.Second
	rateLimitLimit = 10
	eventsTopic    = "events"
)

// SnapshotProvider renders the current trunking state for the /snapshot
// endpoint. The trunking state machine implements this; eventapi only
// depends on the capability so it can be wired up without a cyclic import.
type SnapshotProvider interface {
	Snapshot() any
}

// Server is the event API's HTTP+WS listener.
type Server struct {
	http     *http.Server
	shutdown chan struct{}
}

// Handler returns the server's http.Handler, for use in tests with
// httptest.NewServer instead of a real listening socket.
func Handler(s *Server) http.Handler {
	return s.http.Handler
}

// New builds the event API server. bus is where decoder events are
// published; snapshot (optional, may be nil) backs /snapshot.
func New(cfg *config.Config, bus eventbus.Bus, snapshot SnapshotProvider) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	if err := r.SetTrustedProxies(cfg.EventAPI.TrustedProxies); err != nil {
		slog.Error("failed setting trusted proxies", "error", err)
	}

	if cfg.PProf.Enabled {
		pprof.Register(r)
	}

	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  rateLimitRate,
		Limit: rateLimitLimit,
	})
	limiter := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.String(http.StatusTooManyRequests, "too many requests, retry in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/snapshot", limiter, func(c *gin.Context) {
		if snapshot == nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.JSON(http.StatusOK, snapshot.Snapshot())
	})

	wsHandler := newWSHandler()
	r.GET("/ws/events", func(c *gin.Context) {
		wsHandler.handle(c.Request.Context(), bus, c.Writer, c.Request)
	})

	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.EventAPI.Bind, cfg.EventAPI.Port),
			Handler:           r,
			ReadHeaderTimeout: defTimeout,
		},
		shutdown: make(chan struct{}),
	}
}

// Start runs the server, blocking until it stops. A clean shutdown via Stop
// returns nil.
func (s *Server) Start() error {
	g := new(errgroup.Group)
	g.Go(func() error {
		err := s.http.ListenAndServe()
		switch {
		case errors.Is(err, http.ErrServerClosed):
			close(s.shutdown)
			return nil
		case err != nil:
			return fmt.Errorf("event API server: %w", err)
		default:
			return nil
		}
	})
	return g.Wait() //nolint:wrapcheck
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	const timeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("event API shutdown: %w", err)
	}
	<-s.shutdown
	return nil
}
