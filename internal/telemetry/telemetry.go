// Package telemetry stores frequency domain samples in SQLite.
package telemetry

import (
	"context"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/logger"
)

type service struct {
	repo Repository
}

type noopCollector struct{}

// NewService returns a collector backed by a SQLite repository, or a no-op
// collector when telemetry is disabled.
func NewService(cfg Config, log logger.Logger) (Collector, error) {
	errFactory := errors.New()

	if log == nil {
		log = logger.Nop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Telemetry disabled, using no-op collector")
		return noopCollector{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, samples ...*Sample) error {
	errFactory := errors.New()

	for _, sample := range samples {
		if sample == nil {
			return errFactory.New(ErrInvalidSample)
		}
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	if err := s.repo.Record(samples...); err != nil {
		return errFactory.Wrap(ErrCollection, err)
	}

	return nil
}

func (s *service) Close() error {
	return s.repo.Close()
}

func (noopCollector) Record(context.Context, ...*Sample) error {
	return nil
}

func (noopCollector) Close() error {
	return nil
}
