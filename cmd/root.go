// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package cmd wires the decoder's cobra root command: config load,
// logging, the metrics/pprof/event-API servers, the keystore and event
// bus, and the trunking hard-set warmup, the same shape as the teacher's
// internal/cmd/root.go.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/bandplan"
	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventapi"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	"github.com/arancormonk/dsd-neo-sub008/internal/iosource"
	"github.com/arancormonk/dsd-neo-sub008/internal/keystore"
	"github.com/arancormonk/dsd-neo-sub008/internal/logging"
	"github.com/arancormonk/dsd-neo-sub008/internal/metrics"
	"github.com/arancormonk/dsd-neo-sub008/internal/persistence"
	"github.com/arancormonk/dsd-neo-sub008/internal/pipeline"
	"github.com/arancormonk/dsd-neo-sub008/internal/pprof"
	"github.com/arancormonk/dsd-neo-sub008/internal/trunking"
	"github.com/arancormonk/dsd-neo-sub008/internal/tuner"
	"github.com/USA-RedDragon/configulator"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewCommand builds the decoder's root cobra command.
func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dmr-p25-decoder",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("dmr-p25-decoder - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			slog.Error("failed to shutdown tracer", "error", err)
		}
	}()

	startBackgroundServices(cfg)

	// Warm the IDEN hard-set into memory before anything tries to trust
	// a frequency, per spec §6.
	table := bandplan.Default()
	slog.Info("loaded IDEN hard-set", "entries", table.Len(), "built_in_date", table.GetBuiltInDate())

	kv, err := keystore.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to keystore: %w", err)
	}

	bus, err := eventbus.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to event bus: %w", err)
	}

	// The RTL-SDR front-end is an external collaborator this core never
	// owns (spec §1/§5); until it is wired in, retunes are logged rather
	// than applied.
	sm := trunking.New(cfg, bus, loggingTuner(), trunking.SiteIdentity{
		WACN:  cfg.Site.WACN,
		SysID: cfg.Site.SysID,
		RFSS:  cfg.Site.RFSS,
		Site:  cfg.Site.Site,
	}, table)
	go runTrunkingClock(ctx, sm)

	// The IQ-capture thread (spec §1/§5's external producer) pushes into
	// this ring; the decoder only ever reads from it.
	iqRing := iosource.NewRing(cfg.Decoder.IQRingCapacity)
	dsp := pipeline.New(iqRing, cfg.Decoder.ControlChannelSPS, sm)
	dspGroup, dspCtx := errgroup.WithContext(ctx)
	dsp.Start(dspCtx, dspGroup)
	go func() {
		if err := dspGroup.Wait(); err != nil {
			slog.Error("DSP pipeline stopped", "error", err)
		}
	}()

	var store *persistence.Store
	var scheduler *persistence.Scheduler
	if cfg.Persistence.Enabled {
		store, scheduler, err = setupPersistence(cfg, sm)
		if err != nil {
			return err
		}
	}

	api := eventapi.New(cfg, bus, sm)
	apiErrCh := make(chan error, 1)
	if cfg.EventAPI.Enabled {
		go func() { apiErrCh <- api.Start() }()
	}

	setupShutdownHandlers(ctx, kv, bus, api, store, scheduler, cleanup)

	select {
	case err := <-apiErrCh:
		if err != nil {
			return fmt.Errorf("event API server: %w", err)
		}
	case <-ctx.Done():
	}
	return nil
}

// loggingTuner builds a placeholder tuner.Tuner that only logs a retune
// request. It stands in for the out-of-scope RTL-SDR driver (spec §1's
// "external collaborators specified only by the contract the core
// consumes") until a real device binding is wired in.
func loggingTuner() tuner.Tuner {
	return tuner.Func(func(_ context.Context, freqHz uint64) error {
		slog.Info("retune requested", "freq_hz", freqHz)
		return nil
	})
}

// runTrunkingClock drives the trunking SM's hang-timer tick once a second
// until ctx is cancelled, the same periodic-background-task shape the
// teacher uses for its scheduled jobs.
func runTrunkingClock(ctx context.Context, sm *trunking.Machine) {
	const tickInterval = time.Second
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sm.Tick(now)
		}
	}
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// setupTracing initializes OpenTelemetry tracing if configured. When
// tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg)
}

// startBackgroundServices starts the metrics and pprof servers.
func startBackgroundServices(cfg *config.Config) {
	go func() {
		if err := metrics.CreateMetricsServer(cfg); err != nil {
			slog.Error("failed to start metrics server", "error", err)
		}
	}()
	go pprof.CreatePProfServer(cfg)
}

// setupPersistence opens the durable store, hydrates the trunking SM from
// any previously-persisted state, and starts the periodic flush job, the
// same open-then-migrate-then-schedule shape as the teacher's MakeDB plus
// NetScheduler wiring.
func setupPersistence(cfg *config.Config, sm *trunking.Machine) (*persistence.Store, *persistence.Scheduler, error) {
	store, err := persistence.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open persistence store: %w", err)
	}

	if err := sm.LoadFrom(store); err != nil {
		slog.Error("failed to hydrate trunking state from persistence", "error", err)
	}

	const flushInterval = 30 * time.Second
	scheduler, err := persistence.NewScheduler(store, flushInterval, func(s *persistence.Store) error {
		return sm.FlushTo(s)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start persistence scheduler: %w", err)
	}
	scheduler.Start()

	return store, scheduler, nil
}

// setupShutdownHandlers registers the signal-driven graceful shutdown,
// the same shape as the teacher's ztrue/shutdown wiring.
func setupShutdownHandlers(ctx context.Context, kv keystore.Provider, bus eventbus.Bus, api *eventapi.Server, store *persistence.Store, scheduler *persistence.Scheduler, cleanup func(context.Context) error) {
	stop := func(sig os.Signal) {
		slog.Error("shutting down due to signal", "signal", sig)
		wg := new(sync.WaitGroup)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := api.Stop(); err != nil {
				slog.Error("failed to stop event API", "error", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bus.Close(); err != nil {
				slog.Error("failed to close event bus", "error", err)
			}
			if err := kv.Close(); err != nil {
				slog.Error("failed to close keystore", "error", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			if err := cleanup(shutdownCtx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()

		if scheduler != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := scheduler.Stop(); err != nil {
					slog.Error("failed to stop persistence scheduler", "error", err)
				}
				if err := store.Close(); err != nil {
					slog.Error("failed to close persistence store", "error", err)
				}
			}()
		}

		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			slog.Info("all servers stopped, shutting down gracefully")
			os.Exit(0)
		case <-time.After(shutdownTimeout):
			slog.Error("shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}

	shutdown.AddWithParam(stop)
	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

func initTracer(cfg *config.Config) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "dmr-p25-decoder"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}
