package frequency

import (
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/logger"
)

var registrySeq atomic.Uint64

// Handle refers to a domain owned by a Registry. It confers no ownership and
// stops resolving once the registry is closed.
type Handle struct {
	registry uint64
	index    uint32
}

// IsZero reports whether h was never issued by a registry.
func (h Handle) IsZero() bool {
	return h.registry == 0
}

// Index is the position of the domain in enumeration order.
func (h Handle) Index() uint32 {
	return h.index
}

// Registry owns the frequency domains of one device.
type Registry struct {
	id      uint64
	domains []*Domain
	logger  logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewRegistry builds a domain for every source whose hardware bounds can be
// read. Sources that fail are skipped with a warning.
func NewRegistry(sources []Source, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}

	r := &Registry{
		id:     registrySeq.Add(1),
		logger: log,
	}

	for _, src := range sources {
		d, err := NewDomain(src, log)
		if err != nil {
			log.Warn().
				Err(err).
				Str("source", src.Name).
				Msg("Skipping frequency domain")
			continue
		}
		r.domains = append(r.domains, d)
	}

	log.Info().
		Int("domains", len(r.domains)).
		Msg("Frequency domains discovered")

	return r
}

// Count returns the number of domains, or zero once closed.
func (r *Registry) Count() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0
	}

	return uint32(len(r.domains))
}

// Enumerate follows the count/buffer convention used by AvailableClocks.
func (r *Registry) Enumerate(count *uint32, handles []Handle) error {
	errFactory := errors.New()

	if count == nil {
		return errFactory.WithData(ErrInvalidCount, "nil count")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return errFactory.WithData(ErrInvalidHandle, "registry closed")
	}

	total := uint32(len(r.domains))
	if handles == nil {
		*count = total
		return nil
	}

	n := min(*count, total)
	if uint32(len(handles)) < n {
		return errFactory.WithData(ErrInvalidCount, "buffer shorter than count")
	}

	for i := uint32(0); i < n; i++ {
		handles[i] = Handle{registry: r.id, index: i}
	}
	*count = n

	return nil
}

// Handles returns a handle for every domain.
func (r *Registry) Handles() []Handle {
	count := r.Count()
	handles := make([]Handle, count)
	if err := r.Enumerate(&count, handles); err != nil {
		return nil
	}

	return handles[:count]
}

// Resolve returns the domain h refers to. It fails for handles from another
// registry and for every handle once the registry is closed.
func (r *Registry) Resolve(h Handle) (*Domain, error) {
	errFactory := errors.New()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, errFactory.WithData(ErrInvalidHandle, "registry closed")
	}
	if h.registry != r.id || int(h.index) >= len(r.domains) {
		return nil, errFactory.WithData(ErrInvalidHandle, "unknown handle")
	}

	return r.domains[h.index], nil
}

// Close releases every domain. Handles stop resolving afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.closed = true
	r.domains = nil
	r.logger.Debug().Msg("Frequency registry closed")
}
