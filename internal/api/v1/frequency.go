// Package v1 is the legacy frequency API surface. It reports the clock step
// in Properties; otherwise it returns the same values as v2.
package v1

import (
	"codeberg.org/mutker/freqctl/internal/api"
	"codeberg.org/mutker/freqctl/internal/frequency"
)

type (
	FreqHandle = frequency.Handle
	FreqDomain = frequency.DomainKind
)

type FreqProperties struct {
	Type        FreqDomain
	OnSubdevice bool
	CanControl  bool
	Min         float64
	Max         float64
	Step        float64
}

type FreqRange struct {
	Min float64
	Max float64
}

type FreqState struct {
	Request         float64
	TDP             float64
	Efficient       float64
	Actual          float64
	ThrottleReasons uint32
	CurrentVoltage  float64
}

type FreqThrottleTime struct {
	ThrottleTime uint64
	Timestamp    uint64
}

// FrequencyGet enumerates the frequency domains of reg.
func FrequencyGet(reg *frequency.Registry, count *uint32, handles []FreqHandle) api.Result {
	if reg == nil {
		return api.ErrorInvalidArgument
	}

	return api.ResultFromError(reg.Enumerate(count, handles))
}

func FrequencyGetProperties(reg *frequency.Registry, h FreqHandle, props *FreqProperties) api.Result {
	if props == nil {
		return api.ErrorInvalidArgument
	}
	d, res := resolve(reg, h)
	if res != api.Success {
		return res
	}

	p := d.Properties()
	props.Type = p.Kind
	props.OnSubdevice = p.OnSubdevice
	props.CanControl = p.CanControl
	props.Min = p.HWMin
	props.Max = p.HWMax
	props.Step = p.Step

	return api.Success
}

func FrequencyGetAvailableClocks(reg *frequency.Registry, h FreqHandle, count *uint32, clocks []float64) api.Result {
	d, res := resolve(reg, h)
	if res != api.Success {
		return res
	}

	return api.ResultFromError(d.AvailableClocks(count, clocks))
}

func FrequencyGetRange(reg *frequency.Registry, h FreqHandle, limits *FreqRange) api.Result {
	if limits == nil {
		return api.ErrorInvalidArgument
	}
	d, res := resolve(reg, h)
	if res != api.Success {
		return res
	}

	r, err := d.Range()
	if err != nil {
		return api.ResultFromError(err)
	}
	limits.Min, limits.Max = r.Min, r.Max

	return api.Success
}

func FrequencySetRange(reg *frequency.Registry, h FreqHandle, limits *FreqRange) api.Result {
	if limits == nil {
		return api.ErrorInvalidArgument
	}
	d, res := resolve(reg, h)
	if res != api.Success {
		return res
	}

	return api.ResultFromError(d.SetRange(frequency.Range{Min: limits.Min, Max: limits.Max}))
}

func FrequencyGetState(reg *frequency.Registry, h FreqHandle, state *FreqState) api.Result {
	if state == nil {
		return api.ErrorInvalidArgument
	}
	d, res := resolve(reg, h)
	if res != api.Success {
		return res
	}

	s, err := d.State()
	if err != nil {
		return api.ResultFromError(err)
	}
	state.Request = s.Request
	state.TDP = s.TDP
	state.Efficient = s.Efficient
	state.Actual = s.Actual
	state.ThrottleReasons = s.ThrottleReasons
	state.CurrentVoltage = s.CurrentVoltage

	return api.Success
}

// FrequencyGetThrottleTime is unsupported. The result does not depend on tt.
func FrequencyGetThrottleTime(reg *frequency.Registry, h FreqHandle, _ *FreqThrottleTime) api.Result {
	d, res := resolve(reg, h)
	if res != api.Success {
		return res
	}

	_, err := d.ThrottleTime()

	return api.ResultFromError(err)
}

func resolve(reg *frequency.Registry, h FreqHandle) (*frequency.Domain, api.Result) {
	if reg == nil {
		return nil, api.ErrorInvalidArgument
	}

	d, err := reg.Resolve(h)
	if err != nil {
		return nil, api.ResultFromError(err)
	}

	return d, api.Success
}
