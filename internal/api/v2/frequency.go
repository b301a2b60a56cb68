// Package v2 is the current frequency API surface.
package v2

import (
	"codeberg.org/mutker/freqctl/internal/api"
	"codeberg.org/mutker/freqctl/internal/frequency"
)

type (
	Handle     = frequency.Handle
	DomainKind = frequency.DomainKind
)

// Properties omits the clock step; callers derive it from Min, Max and the
// available clock count.
type Properties struct {
	Kind        DomainKind
	OnSubdevice bool
	CanControl  bool
	Min         float64
	Max         float64
}

type Range struct {
	Min float64
	Max float64
}

type State struct {
	CurrentVoltage  float64
	Request         float64
	TDP             float64
	Efficient       float64
	Actual          float64
	ThrottleReasons uint32
}

type ThrottleTime struct {
	ThrottleTime uint64
	Timestamp    uint64
}

func EnumFrequencyDomains(reg *frequency.Registry, count *uint32, handles []Handle) api.Result {
	if reg == nil {
		return api.ErrorInvalidArgument
	}

	return api.ResultFromError(reg.Enumerate(count, handles))
}

func FrequencyGetProperties(reg *frequency.Registry, h Handle, props *Properties) api.Result {
	d, res := resolve(reg, h, props != nil)
	if res != api.Success {
		return res
	}

	p := d.Properties()
	*props = Properties{
		Kind:        p.Kind,
		OnSubdevice: p.OnSubdevice,
		CanControl:  p.CanControl,
		Min:         p.HWMin,
		Max:         p.HWMax,
	}

	return api.Success
}

func FrequencyGetAvailableClocks(reg *frequency.Registry, h Handle, count *uint32, clocks []float64) api.Result {
	d, res := resolve(reg, h, true)
	if res != api.Success {
		return res
	}

	return api.ResultFromError(d.AvailableClocks(count, clocks))
}

func FrequencyGetRange(reg *frequency.Registry, h Handle, limits *Range) api.Result {
	d, res := resolve(reg, h, limits != nil)
	if res != api.Success {
		return res
	}

	r, err := d.Range()
	if err != nil {
		return api.ResultFromError(err)
	}
	*limits = Range{Min: r.Min, Max: r.Max}

	return api.Success
}

func FrequencySetRange(reg *frequency.Registry, h Handle, limits *Range) api.Result {
	d, res := resolve(reg, h, limits != nil)
	if res != api.Success {
		return res
	}

	return api.ResultFromError(d.SetRange(frequency.Range{Min: limits.Min, Max: limits.Max}))
}

func FrequencyGetState(reg *frequency.Registry, h Handle, state *State) api.Result {
	d, res := resolve(reg, h, state != nil)
	if res != api.Success {
		return res
	}

	s, err := d.State()
	if err != nil {
		return api.ResultFromError(err)
	}
	*state = State{
		CurrentVoltage:  s.CurrentVoltage,
		Request:         s.Request,
		TDP:             s.TDP,
		Efficient:       s.Efficient,
		Actual:          s.Actual,
		ThrottleReasons: s.ThrottleReasons,
	}

	return api.Success
}

// FrequencyGetThrottleTime is unsupported. The result does not depend on tt.
func FrequencyGetThrottleTime(reg *frequency.Registry, h Handle, _ *ThrottleTime) api.Result {
	d, res := resolve(reg, h, true)
	if res != api.Success {
		return res
	}

	_, err := d.ThrottleTime()

	return api.ResultFromError(err)
}

func resolve(reg *frequency.Registry, h Handle, outOK bool) (*frequency.Domain, api.Result) {
	if reg == nil || !outOK {
		return nil, api.ErrorInvalidArgument
	}

	d, err := reg.Resolve(h)
	if err != nil {
		return nil, api.ResultFromError(err)
	}

	return d, api.Success
}
