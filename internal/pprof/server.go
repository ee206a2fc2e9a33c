// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package pprof mounts Go's profiler alongside the event API, for
// profiling the DSP-heavy pipeline the way the teacher profiles its
// packet-handling hot path.
package pprof

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

const readHeaderTimeout = 3 * time.Second

// CreatePProfServer starts the profiling server if enabled. It blocks and
// is meant to be run in its own goroutine.
func CreatePProfServer(cfg *config.Config) {
	if !cfg.PProf.Enabled {
		return
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	pprof.Register(r)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.PProf.Bind, cfg.PProf.Port),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	slog.Info("pprof server listening", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("pprof server exited", "error", err)
	}
}
