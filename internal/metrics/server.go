// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readTimeout = 3 * time.Second

// CreateMetricsServer starts the Prometheus /metrics endpoint if enabled.
// It blocks and is meant to be run in its own goroutine; a bind failure is
// returned rather than panicking so the caller can log and continue.
func CreateMetricsServer(cfg *config.Config) error {
	if !cfg.Metrics.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Metrics.Bind, cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: readTimeout,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
