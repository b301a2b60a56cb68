package hwaccess

import (
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"codeberg.org/mutker/freqctl/internal/errors"
)

// NVMLLibrary abstracts NVML library lifecycle for testing.
type NVMLLibrary interface {
	Initialize() error
	Shutdown() error
	GetDeviceCount() (int, error)
	GetDevice(index int) (nvml.Device, error)
}

type nvmlWrapper struct {
	initialized bool
}

// NewNVMLLibrary returns the process-wide NVML binding.
func NewNVMLLibrary() NVMLLibrary {
	return &nvmlWrapper{}
}

func (w *nvmlWrapper) Initialize() error {
	errFactory := errors.New()
	if w.initialized {
		return nil
	}

	ret := nvml.Init()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrNVMLInit, newNVMLError(ret))
	}

	w.initialized = true

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	errFactory := errors.New()
	if !w.initialized {
		return nil
	}

	ret := nvml.Shutdown()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrNVMLShutdown, newNVMLError(ret))
	}

	w.initialized = false

	return nil
}

func (w *nvmlWrapper) GetDeviceCount() (int, error) {
	errFactory := errors.New()
	if !w.initialized {
		return 0, errFactory.New(ErrNVMLNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrNVMLDevice, newNVMLError(ret))
	}

	return count, nil
}

func (w *nvmlWrapper) GetDevice(index int) (nvml.Device, error) {
	errFactory := errors.New()
	if !w.initialized {
		return nil, errFactory.New(ErrNVMLNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrNVMLDevice, newNVMLError(ret))
	}

	return device, nil
}

// ClockDevice is the part of an NVML device the graphics clock accessor uses.
type ClockDevice interface {
	GetClockInfo(nvml.ClockType) (uint32, nvml.Return)
	GetMaxClockInfo(nvml.ClockType) (uint32, nvml.Return)
	GetApplicationsClock(nvml.ClockType) (uint32, nvml.Return)
	GetDefaultApplicationsClock(nvml.ClockType) (uint32, nvml.Return)
	GetMaxCustomerBoostClock(nvml.ClockType) (uint32, nvml.Return)
	GetCurrentClocksThrottleReasons() (uint64, nvml.Return)
	SetGpuLockedClocks(uint32, uint32) nvml.Return
}

// NVML exposes the graphics clock of one NVML device. NVML only locks both
// bounds at once and has no getter for them, so the accessor keeps the last
// locked pair and writes it back with the changed bound.
type NVML struct {
	device ClockDevice
	hwMin  float64
	hwMax  float64

	mu  sync.Mutex
	min float64
	max float64
}

var _ Accessor = (*NVML)(nil)

// NewNVML returns an accessor over device. NVML reports no lower clock bound,
// so hwMin comes from configuration.
func NewNVML(device ClockDevice, hwMin float64) (*NVML, error) {
	errFactory := errors.New()

	maxClock, ret := device.GetMaxClockInfo(nvml.CLOCK_GRAPHICS)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrNVMLQuery, newNVMLError(ret))
	}

	hwMax := float64(maxClock)
	if hwMin <= 0 || hwMin > hwMax {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, struct {
			HWMin float64
			HWMax float64
		}{
			HWMin: hwMin,
			HWMax: hwMax,
		})
	}

	return &NVML{
		device: device,
		hwMin:  hwMin,
		hwMax:  hwMax,
		min:    hwMin,
		max:    hwMax,
	}, nil
}

func (n *NVML) Read(attr Attribute) (float64, error) {
	switch attr {
	case AttrHWMin:
		return n.hwMin, nil
	case AttrHWMax:
		return n.hwMax, nil
	case AttrMin, AttrMax:
		n.mu.Lock()
		defer n.mu.Unlock()
		if attr == AttrMin {
			return n.min, nil
		}
		return n.max, nil
	case AttrActual:
		return n.clock(n.device.GetClockInfo)
	case AttrRequest:
		return n.clock(n.device.GetApplicationsClock)
	case AttrTDP:
		return n.clock(n.device.GetMaxCustomerBoostClock)
	case AttrEfficient:
		return n.clock(n.device.GetDefaultApplicationsClock)
	case AttrThrottleReasons:
		reasons, ret := n.device.GetCurrentClocksThrottleReasons()
		if !IsNVMLSuccess(ret) {
			return 0, errors.New().Wrap(ErrNVMLQuery, newNVMLError(ret))
		}
		return float64(reasons), nil
	}

	return 0, errors.New().WithData(ErrAttributeNotSupported, attr)
}

func (n *NVML) Write(attr Attribute, value float64) error {
	errFactory := errors.New()

	if attr != AttrMin && attr != AttrMax {
		return errFactory.WithData(ErrAttributeNotSupported, attr)
	}
	if value < 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, value)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	lo, hi := n.min, n.max
	if attr == AttrMin {
		lo = value
	} else {
		hi = value
	}

	ret := n.device.SetGpuLockedClocks(uint32(lo+0.5), uint32(hi+0.5))
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrWriteFailed, newNVMLError(ret))
	}

	n.min, n.max = lo, hi

	return nil
}

func (n *NVML) clock(query func(nvml.ClockType) (uint32, nvml.Return)) (float64, error) {
	mhz, ret := query(nvml.CLOCK_GRAPHICS)
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrNVMLQuery, newNVMLError(ret))
	}

	return float64(mhz), nil
}
