package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/freqctl/internal/api"
	"codeberg.org/mutker/freqctl/internal/config"
	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			return 0
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 2
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 2
	}
	logger.Init(level, logger.IsService())
	logger.Debug().
		Str("backend", string(cfg.Backend)).
		Str("api", string(cfg.API)).
		Msg("Config loaded")

	if len(cfg.Args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	sources, shutdown, err := openSources(cfg)
	if err != nil {
		logger.ErrorWithCode(err).Msg("Failed to open frequency domains")
		return 1
	}
	defer shutdown()

	reg := frequency.NewRegistry(sources, logger.New().With("component", "frequency"))
	defer reg.Close()

	name, rest := cfg.Args[0], cfg.Args[1:]
	if name == "monitor" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go handleSignals(cancel)

		err = runMonitor(ctx, cfg, reg)
	} else {
		c := &cli{out: os.Stdout, api: newSurface(cfg.API, reg)}
		err = c.run(name, rest)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "freqctl: %s: %v\n", api.ResultFromError(err), err)
		return 1
	}

	return 0
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// openSources builds frequency sources for the configured backend. The
// returned shutdown func releases backend resources.
func openSources(cfg *config.Config) ([]frequency.Source, func(), error) {
	log := logger.New().With("component", "hwaccess")

	switch cfg.Backend {
	case config.BackendNVML:
		return openNVML(cfg, log)
	default:
		targets, err := hwaccess.DiscoverSysfs(cfg.SysfsRoot, cfg.Card, log)
		if err != nil {
			return nil, nil, err
		}

		sources := make([]frequency.Source, 0, len(targets))
		for _, t := range targets {
			sources = append(sources, frequency.Source{
				Name:        t.Name,
				Kind:        frequency.DomainGPU,
				OnSubdevice: t.Subdevice,
				CanControl:  true,
				Step:        cfg.Step,
				Accessor:    t.Accessor,
			})
		}

		return sources, func() {}, nil
	}
}

func openNVML(cfg *config.Config, log logger.Logger) ([]frequency.Source, func(), error) {
	errFactory := errors.New()

	lib := hwaccess.NewNVMLLibrary()
	if err := lib.Initialize(); err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		if err := lib.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down NVML")
		}
	}

	count, err := lib.GetDeviceCount()
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	if cfg.NVMLDevice < 0 || cfg.NVMLDevice >= count {
		shutdown()
		return nil, nil, errFactory.WithData(hwaccess.ErrNoDevice, fmt.Sprintf("nvml device %d of %d", cfg.NVMLDevice, count))
	}

	device, err := lib.GetDevice(cfg.NVMLDevice)
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	acc, err := hwaccess.NewNVML(device, cfg.NVMLMinClock)
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	log.Info().
		Int("device", cfg.NVMLDevice).
		Float64("min_clock", cfg.NVMLMinClock).
		Msg("NVML device opened")

	return []frequency.Source{{
		Name:       fmt.Sprintf("nvml%d", cfg.NVMLDevice),
		Kind:       frequency.DomainGPU,
		CanControl: true,
		Step:       cfg.Step,
		Accessor:   acc,
	}}, shutdown, nil
}
