package frequency

import "codeberg.org/mutker/freqctl/internal/hwaccess"

// DefaultStep is the clock granularity of the supported GT hardware in MHz.
// Clocks are reported as whole MHz, so every step is quantized.
const DefaultStep = 50.0 / 3

// VoltageUnknown is reported when the accessor exposes no voltage reading.
const VoltageUnknown = -1.0

// DomainKind identifies the clock a domain controls.
type DomainKind int

const (
	DomainGPU DomainKind = iota
	DomainMemory
)

func (k DomainKind) String() string {
	switch k {
	case DomainGPU:
		return "gpu"
	case DomainMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Throttle reason bits.
const (
	ThrottleAveragePower uint32 = 1 << iota
	ThrottleBurstPower
	ThrottleCurrentLimit
	ThrottleThermalLimit
	ThrottlePSULimit
	ThrottleSoftwareRange
	ThrottleHardwareRange
)

// Source describes a discoverable clock domain.
type Source struct {
	Name        string
	Kind        DomainKind
	OnSubdevice bool
	CanControl  bool
	// Step defaults to DefaultStep when zero.
	Step     float64
	Accessor hwaccess.Accessor
}

type (
	// Properties are fixed when the domain is discovered.
	Properties struct {
		Kind        DomainKind
		OnSubdevice bool
		CanControl  bool
		HWMin       float64
		HWMax       float64
		Step        float64
	}

	// Range is the software-controlled operating window, in MHz.
	Range struct {
		Min float64
		Max float64
	}

	// State is a telemetry snapshot, in MHz except for CurrentVoltage (V).
	State struct {
		Request         float64
		TDP             float64
		Efficient       float64
		Actual          float64
		CurrentVoltage  float64
		ThrottleReasons uint32
	}

	// ThrottleTime is never populated; see Domain.ThrottleTime.
	ThrottleTime struct {
		ThrottleTime uint64
		Timestamp    uint64
	}
)
