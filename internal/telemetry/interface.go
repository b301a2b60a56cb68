package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/freqctl/internal/frequency"
)

// Collector records frequency samples.
type Collector interface {
	Record(ctx context.Context, samples ...*Sample) error
	Close() error
}

// Repository is the storage behind a Collector.
type Repository interface {
	Record(samples ...*Sample) error
	Close() error
}

// Sample is one observation of a frequency domain.
type Sample struct {
	Timestamp time.Time
	Domain    uint32
	Kind      frequency.DomainKind
	Range     frequency.Range
	State     frequency.State
}
