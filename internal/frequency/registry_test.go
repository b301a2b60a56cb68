package frequency_test

import (
	"testing"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(n int) *frequency.Registry {
	sources := make([]frequency.Source, n)
	for i := range sources {
		sources[i] = frequency.Source{
			Kind:        frequency.DomainGPU,
			OnSubdevice: i > 0,
			CanControl:  true,
			Accessor:    newMock(),
		}
	}
	return frequency.NewRegistry(sources, logger.Nop())
}

func TestRegistryEnumerateCount(t *testing.T) {
	r := newRegistry(1)

	var count uint32
	require.NoError(t, r.Enumerate(&count, nil))
	assert.Equal(t, uint32(1), count)

	count++
	require.NoError(t, r.Enumerate(&count, nil))
	assert.Equal(t, uint32(1), count)

	handles := make([]frequency.Handle, count)
	require.NoError(t, r.Enumerate(&count, handles))
	for _, h := range handles {
		assert.False(t, h.IsZero())
	}
}

func TestRegistryEnumeratePartial(t *testing.T) {
	r := newRegistry(2)

	count := uint32(1)
	handles := make([]frequency.Handle, count)
	require.NoError(t, r.Enumerate(&count, handles))
	assert.Equal(t, uint32(1), count)
	assert.Equal(t, uint32(0), handles[0].Index())

	count = 2
	err := r.Enumerate(&count, make([]frequency.Handle, 1))
	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))

	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(r.Enumerate(nil, nil)))
}

func TestRegistryResolve(t *testing.T) {
	r := newRegistry(2)
	handles := r.Handles()
	require.Len(t, handles, 2)

	d0, err := r.Resolve(handles[0])
	require.NoError(t, err)
	assert.False(t, d0.Properties().OnSubdevice)

	d1, err := r.Resolve(handles[1])
	require.NoError(t, err)
	assert.True(t, d1.Properties().OnSubdevice)

	_, err = r.Resolve(frequency.Handle{})
	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))

	other := newRegistry(2)
	_, err = other.Resolve(handles[0])
	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))
}

func TestRegistrySkipsUnreadableSources(t *testing.T) {
	broken := newMock()
	broken.FailRead(hwaccess.AttrHWMin)

	r := frequency.NewRegistry([]frequency.Source{
		{Name: "broken", Accessor: broken},
		{Name: "tiny-step", Step: 1e-300, Accessor: newMock()},
		{Name: "good", CanControl: true, Accessor: newMock()},
	}, logger.Nop())

	require.Equal(t, uint32(1), r.Count())
	d, err := r.Resolve(r.Handles()[0])
	require.NoError(t, err)
	assert.Equal(t, "good", d.Name())
}

func TestRegistryCloseInvalidatesHandles(t *testing.T) {
	r := newRegistry(1)
	h := r.Handles()[0]

	r.Close()
	r.Close()

	_, err := r.Resolve(h)
	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))
	assert.Zero(t, r.Count())
	assert.Empty(t, r.Handles())

	var count uint32
	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(r.Enumerate(&count, nil)))
}

func TestRegistryConcurrentResolve(t *testing.T) {
	r := newRegistry(2)
	handles := r.Handles()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(h frequency.Handle) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				d, err := r.Resolve(h)
				if assert.NoError(t, err) {
					_ = d.Properties()
				}
			}
		}(handles[i%2])
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
