package main

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"codeberg.org/mutker/freqctl/internal/config"
	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/exporter"
	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/logger"
	"codeberg.org/mutker/freqctl/internal/pid"
	"codeberg.org/mutker/freqctl/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func runMonitor(ctx context.Context, cfg *config.Config, reg *frequency.Registry) error {
	errFactory := errors.New()

	if len(cfg.Args) > 1 {
		return usageError("monitor takes no arguments")
	}

	pidFile := pid.New(cfg.PIDFile)
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	tcfg := telemetry.DefaultConfig()
	tcfg.Enabled = cfg.Telemetry
	tcfg.DBPath = cfg.TelemetryDB
	tcfg.BackupDir = filepath.Join(filepath.Dir(cfg.TelemetryDB), "backups")

	collector, err := telemetry.NewService(tcfg, logger.New().With("component", "telemetry"))
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.ErrorWithCode(err).Msg("Failed to close telemetry")
		}
	}()

	if cfg.MetricsListen != "" {
		srv := newMetricsServer(cfg.MetricsListen, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorWithCode(errFactory.Wrap(errors.ErrInitFailed, err)).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Failed to shut down metrics server")
			}
		}()
		logger.Info().Str("listen", cfg.MetricsListen).Msg("Serving Prometheus metrics")
	}

	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().
		Uint32("domains", reg.Count()).
		Dur("interval", interval).
		Msg("Monitor mode activated")

	for {
		samples := sample(reg, time.Now())
		if err := collector.Record(ctx, samples...); err != nil {
			logger.Warn().Err(err).Msg("Failed to record telemetry")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Exiting...")
			return nil
		case <-ticker.C:
		}
	}
}

func newMetricsServer(addr string, reg *frequency.Registry) *http.Server {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(exporter.NewCollector(reg, logger.New().With("component", "exporter")))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// sample reads every domain once and logs it. Domains whose range or state
// cannot be read are logged and left out.
func sample(reg *frequency.Registry, now time.Time) []*telemetry.Sample {
	handles := reg.Handles()
	samples := make([]*telemetry.Sample, 0, len(handles))

	for _, h := range handles {
		d, err := reg.Resolve(h)
		if err != nil {
			continue
		}

		limits, err := d.Range()
		if err != nil {
			logger.Warn().Err(err).Str("domain", d.Name()).Msg("Failed to read range")
			continue
		}
		state, err := d.State()
		if err != nil {
			logger.Warn().Err(err).Str("domain", d.Name()).Msg("Failed to read state")
			continue
		}

		logger.Info().
			Str("domain", d.Name()).
			Float64("min", limits.Min).
			Float64("max", limits.Max).
			Float64("request", state.Request).
			Float64("actual", state.Actual).
			Float64("tdp", state.TDP).
			Float64("efficient", state.Efficient).
			Uint32("throttle_reasons", state.ThrottleReasons).
			Msg("")

		samples = append(samples, &telemetry.Sample{
			Timestamp: now,
			Domain:    h.Index(),
			Kind:      d.Properties().Kind,
			Range:     limits,
			State:     state,
		})
	}

	return samples
}
