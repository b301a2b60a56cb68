package main

import (
	"codeberg.org/mutker/freqctl/internal/api"
	v1 "codeberg.org/mutker/freqctl/internal/api/v1"
	v2 "codeberg.org/mutker/freqctl/internal/api/v2"
	"codeberg.org/mutker/freqctl/internal/config"
	"codeberg.org/mutker/freqctl/internal/frequency"
)

// properties is what the CLI prints. hasStep is false on surfaces that do
// not report the clock step.
type properties struct {
	kind        frequency.DomainKind
	onSubdevice bool
	canControl  bool
	min, max    float64
	step        float64
	hasStep     bool
}

// surface lets commands run unchanged against either API version.
type surface interface {
	enum(count *uint32, handles []frequency.Handle) api.Result
	properties(h frequency.Handle) (properties, api.Result)
	clocks(h frequency.Handle, count *uint32, clocks []float64) api.Result
	getRange(h frequency.Handle) (frequency.Range, api.Result)
	setRange(h frequency.Handle, r frequency.Range) api.Result
	state(h frequency.Handle) (frequency.State, api.Result)
	throttleTime(h frequency.Handle) (frequency.ThrottleTime, api.Result)
}

func newSurface(version config.APIVersion, reg *frequency.Registry) surface {
	if version == config.APIv1 {
		return legacySurface{reg: reg}
	}

	return currentSurface{reg: reg}
}

type currentSurface struct {
	reg *frequency.Registry
}

func (s currentSurface) enum(count *uint32, handles []frequency.Handle) api.Result {
	return v2.EnumFrequencyDomains(s.reg, count, handles)
}

func (s currentSurface) properties(h frequency.Handle) (properties, api.Result) {
	var p v2.Properties
	res := v2.FrequencyGetProperties(s.reg, h, &p)

	return properties{
		kind:        p.Kind,
		onSubdevice: p.OnSubdevice,
		canControl:  p.CanControl,
		min:         p.Min,
		max:         p.Max,
	}, res
}

func (s currentSurface) clocks(h frequency.Handle, count *uint32, clocks []float64) api.Result {
	return v2.FrequencyGetAvailableClocks(s.reg, h, count, clocks)
}

func (s currentSurface) getRange(h frequency.Handle) (frequency.Range, api.Result) {
	var r v2.Range
	res := v2.FrequencyGetRange(s.reg, h, &r)

	return frequency.Range{Min: r.Min, Max: r.Max}, res
}

func (s currentSurface) setRange(h frequency.Handle, r frequency.Range) api.Result {
	return v2.FrequencySetRange(s.reg, h, &v2.Range{Min: r.Min, Max: r.Max})
}

func (s currentSurface) state(h frequency.Handle) (frequency.State, api.Result) {
	var st v2.State
	res := v2.FrequencyGetState(s.reg, h, &st)

	return frequency.State{
		Request:         st.Request,
		TDP:             st.TDP,
		Efficient:       st.Efficient,
		Actual:          st.Actual,
		CurrentVoltage:  st.CurrentVoltage,
		ThrottleReasons: st.ThrottleReasons,
	}, res
}

func (s currentSurface) throttleTime(h frequency.Handle) (frequency.ThrottleTime, api.Result) {
	var tt v2.ThrottleTime
	res := v2.FrequencyGetThrottleTime(s.reg, h, &tt)

	return frequency.ThrottleTime{ThrottleTime: tt.ThrottleTime, Timestamp: tt.Timestamp}, res
}

type legacySurface struct {
	reg *frequency.Registry
}

func (s legacySurface) enum(count *uint32, handles []frequency.Handle) api.Result {
	return v1.FrequencyGet(s.reg, count, handles)
}

func (s legacySurface) properties(h frequency.Handle) (properties, api.Result) {
	var p v1.FreqProperties
	res := v1.FrequencyGetProperties(s.reg, h, &p)

	return properties{
		kind:        p.Type,
		onSubdevice: p.OnSubdevice,
		canControl:  p.CanControl,
		min:         p.Min,
		max:         p.Max,
		step:        p.Step,
		hasStep:     true,
	}, res
}

func (s legacySurface) clocks(h frequency.Handle, count *uint32, clocks []float64) api.Result {
	return v1.FrequencyGetAvailableClocks(s.reg, h, count, clocks)
}

func (s legacySurface) getRange(h frequency.Handle) (frequency.Range, api.Result) {
	var r v1.FreqRange
	res := v1.FrequencyGetRange(s.reg, h, &r)

	return frequency.Range{Min: r.Min, Max: r.Max}, res
}

func (s legacySurface) setRange(h frequency.Handle, r frequency.Range) api.Result {
	return v1.FrequencySetRange(s.reg, h, &v1.FreqRange{Min: r.Min, Max: r.Max})
}

func (s legacySurface) state(h frequency.Handle) (frequency.State, api.Result) {
	var st v1.FreqState
	res := v1.FrequencyGetState(s.reg, h, &st)

	return frequency.State{
		Request:         st.Request,
		TDP:             st.TDP,
		Efficient:       st.Efficient,
		Actual:          st.Actual,
		CurrentVoltage:  st.CurrentVoltage,
		ThrottleReasons: st.ThrottleReasons,
	}, res
}

func (s legacySurface) throttleTime(h frequency.Handle) (frequency.ThrottleTime, api.Result) {
	var tt v1.FreqThrottleTime
	res := v1.FrequencyGetThrottleTime(s.reg, h, &tt)

	return frequency.ThrottleTime{ThrottleTime: tt.ThrottleTime, Timestamp: tt.Timestamp}, res
}
