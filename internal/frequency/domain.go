package frequency

import (
	"math"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
)

// Domain is one controllable clock. Properties are captured at construction;
// every other query goes to the accessor.
//
// SetRange performs two writes and is not serialized against other callers.
// Concurrent range updates on one domain must be serialized by the caller.
type Domain struct {
	name   string
	props  Properties
	clocks []float64
	acc    hwaccess.Accessor
	logger logger.Logger
}

// NewDomain reads the hardware bounds of src and builds the domain.
func NewDomain(src Source, log logger.Logger) (*Domain, error) {
	errFactory := errors.New()

	if log == nil {
		log = logger.Nop()
	}

	if src.Accessor == nil {
		return nil, errFactory.WithData(ErrInvalidSource, "nil accessor")
	}

	step := src.Step
	if step == 0 {
		step = DefaultStep
	}
	if step < 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, errFactory.WithData(ErrInvalidSource, struct {
			Name string
			Step float64
		}{
			Name: src.Name,
			Step: step,
		})
	}

	hwMin, err := src.Accessor.Read(hwaccess.AttrHWMin)
	if err != nil {
		return nil, errFactory.Wrap(ErrNotAvailable, err)
	}

	hwMax, err := src.Accessor.Read(hwaccess.AttrHWMax)
	if err != nil {
		return nil, errFactory.Wrap(ErrNotAvailable, err)
	}

	if hwMin < 0 || hwMax < hwMin {
		return nil, errFactory.WithData(ErrInvalidSource, struct {
			Name  string
			HWMin float64
			HWMax float64
		}{
			Name:  src.Name,
			HWMin: hwMin,
			HWMax: hwMax,
		})
	}

	if span := (hwMax - hwMin) / step; span >= MaxClocks {
		return nil, errFactory.WithData(ErrInvalidSource, struct {
			Name   string
			Step   float64
			Clocks float64
		}{
			Name:   src.Name,
			Step:   step,
			Clocks: math.Floor(span) + 1,
		})
	}

	d := &Domain{
		name: src.Name,
		props: Properties{
			Kind:        src.Kind,
			OnSubdevice: src.OnSubdevice,
			CanControl:  src.CanControl,
			HWMin:       hwMin,
			HWMax:       hwMax,
			Step:        step,
		},
		clocks: availableClocks(hwMin, hwMax, step),
		acc:    src.Accessor,
		logger: log.With("domain", src.Name),
	}

	d.logger.Debug().
		Str("kind", src.Kind.String()).
		Float64("hw_min", hwMin).
		Float64("hw_max", hwMax).
		Float64("step", step).
		Int("clocks", len(d.clocks)).
		Msg("Frequency domain initialized")

	return d, nil
}

func (d *Domain) Name() string {
	return d.name
}

func (d *Domain) Properties() Properties {
	return d.props
}

// Clocks returns every representable clock in ascending order.
func (d *Domain) Clocks() []float64 {
	clocks := make([]float64, len(d.clocks))
	copy(clocks, d.clocks)

	return clocks
}

// AvailableClocks follows the count/buffer convention: with a nil buffer it
// stores the total in *count; otherwise it fills min(*count, total) entries
// and stores the number written.
func (d *Domain) AvailableClocks(count *uint32, clocks []float64) error {
	errFactory := errors.New()

	if count == nil {
		return errFactory.WithData(ErrInvalidCount, "nil count")
	}

	total := uint32(len(d.clocks))
	if clocks == nil {
		*count = total
		return nil
	}

	n := min(*count, total)
	if uint32(len(clocks)) < n {
		return errFactory.WithData(ErrInvalidCount, "buffer shorter than count")
	}

	copy(clocks, d.clocks[:n])
	*count = n

	return nil
}

// Range reads the current operating window.
func (d *Domain) Range() (Range, error) {
	errFactory := errors.New()

	lo, err := d.acc.Read(hwaccess.AttrMin)
	if err != nil {
		return Range{}, errFactory.Wrap(ErrNotAvailable, err)
	}

	hi, err := d.acc.Read(hwaccess.AttrMax)
	if err != nil {
		return Range{}, errFactory.Wrap(ErrNotAvailable, err)
	}

	return Range{Min: lo, Max: hi}, nil
}

// SetRange validates r and writes it. The write order keeps the stored
// max from dropping below the stored min between the two writes. A failed
// second write leaves the first in place.
func (d *Domain) SetRange(r Range) error {
	errFactory := errors.New()

	if !d.props.CanControl {
		return errFactory.WithData(ErrUnsupported, "domain is not controllable")
	}

	if err := d.validate(r); err != nil {
		return err
	}

	cur, err := d.Range()
	if err != nil {
		return err
	}

	first, second := hwaccess.AttrMax, hwaccess.AttrMin
	firstVal, secondVal := r.Max, r.Min
	if r.Max < cur.Min {
		first, second = hwaccess.AttrMin, hwaccess.AttrMax
		firstVal, secondVal = r.Min, r.Max
	}

	if err := d.acc.Write(first, firstVal); err != nil {
		return errFactory.Wrap(ErrNotAvailable, err)
	}
	if err := d.acc.Write(second, secondVal); err != nil {
		return errFactory.Wrap(ErrNotAvailable, err)
	}

	d.logger.Debug().
		Float64("old_min", cur.Min).
		Float64("old_max", cur.Max).
		Float64("min", r.Min).
		Float64("max", r.Max).
		Str("first", string(first)).
		Msg("Frequency range set")

	return nil
}

func (d *Domain) validate(r Range) error {
	errFactory := errors.New()

	if !(r.Min >= d.props.HWMin && r.Min <= r.Max && r.Max <= d.props.HWMax) {
		return errFactory.WithData(ErrInvalidRange, struct {
			Min   float64
			Max   float64
			HWMin float64
			HWMax float64
		}{
			Min:   r.Min,
			Max:   r.Max,
			HWMin: d.props.HWMin,
			HWMax: d.props.HWMax,
		})
	}

	for _, v := range []float64{r.Min, r.Max} {
		if !d.isClock(v) {
			return errFactory.WithData(ErrInvalidRange, struct {
				Clock float64
				Step  float64
			}{
				Clock: v,
				Step:  d.props.Step,
			})
		}
	}

	return nil
}

func (d *Domain) isClock(v float64) bool {
	for _, c := range d.clocks {
		if c == v {
			return true
		}
	}

	return false
}

// State reads request, tdp, efficient and actual in that order and stops at
// the first failure. Voltage and throttle reasons are optional.
func (d *Domain) State() (State, error) {
	errFactory := errors.New()

	state := State{
		CurrentVoltage: VoltageUnknown,
	}

	required := []struct {
		attr hwaccess.Attribute
		dst  *float64
	}{
		{hwaccess.AttrRequest, &state.Request},
		{hwaccess.AttrTDP, &state.TDP},
		{hwaccess.AttrEfficient, &state.Efficient},
		{hwaccess.AttrActual, &state.Actual},
	}

	for _, r := range required {
		v, err := d.acc.Read(r.attr)
		if err != nil {
			return State{}, errFactory.Wrap(ErrNotAvailable, err)
		}
		*r.dst = v
	}

	if v, err := d.acc.Read(hwaccess.AttrVoltage); err == nil && v > 0 {
		state.CurrentVoltage = v
	}

	if v, err := d.acc.Read(hwaccess.AttrThrottleReasons); err == nil && v > 0 && v <= math.MaxUint32 {
		state.ThrottleReasons = uint32(v)
	}

	return state, nil
}

// ThrottleTime is not supported by any backend and always fails.
func (*Domain) ThrottleTime() (ThrottleTime, error) {
	return ThrottleTime{}, errors.New().New(ErrUnsupported)
}
