// Package exporter exposes frequency domains as Prometheus metrics.
package exporter

import (
	"strconv"

	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "freqctl"

// reading is one scrape of a domain. Range and state are read separately so
// that one failing does not hide the other.
type reading struct {
	props   frequency.Properties
	limits  frequency.Range
	rangeOK bool
	state   frequency.State
	stateOK bool
}

type domainMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	extract   func(r reading) (float64, bool)
}

type collector struct {
	registry *frequency.Registry
	logger   logger.Logger
	metrics  []domainMetric
}

// NewCollector returns a collector that reads every domain of reg on each
// scrape.
func NewCollector(reg *frequency.Registry, log logger.Logger) prometheus.Collector {
	if log == nil {
		log = logger.Nop()
	}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "domain", name),
			help,
			[]string{"domain", "name", "kind"},
			nil,
		)
	}

	always := func(get func(r reading) float64) func(r reading) (float64, bool) {
		return func(r reading) (float64, bool) { return get(r), true }
	}
	withRange := func(get func(r frequency.Range) float64) func(r reading) (float64, bool) {
		return func(r reading) (float64, bool) { return get(r.limits), r.rangeOK }
	}
	withState := func(get func(s frequency.State) float64) func(r reading) (float64, bool) {
		return func(r reading) (float64, bool) { return get(r.state), r.stateOK }
	}

	metrics := []domainMetric{
		{
			desc:      desc("hw_min_mhz", "Lowest clock the hardware supports in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   always(func(r reading) float64 { return r.props.HWMin }),
		},
		{
			desc:      desc("hw_max_mhz", "Highest clock the hardware supports in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   always(func(r reading) float64 { return r.props.HWMax }),
		},
		{
			desc:      desc("can_control", "1 if the clock range of the domain can be changed."),
			valueType: prometheus.GaugeValue,
			extract: always(func(r reading) float64 {
				if r.props.CanControl {
					return 1
				}
				return 0
			}),
		},
		{
			desc:      desc("range_min_mhz", "Configured lower clock limit in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   withRange(func(r frequency.Range) float64 { return r.Min }),
		},
		{
			desc:      desc("range_max_mhz", "Configured upper clock limit in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   withRange(func(r frequency.Range) float64 { return r.Max }),
		},
		{
			desc:      desc("request_mhz", "Clock requested by the driver in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   withState(func(s frequency.State) float64 { return s.Request }),
		},
		{
			desc:      desc("tdp_mhz", "Highest clock sustainable within the power limit in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   withState(func(s frequency.State) float64 { return s.TDP }),
		},
		{
			desc:      desc("efficient_mhz", "Most power efficient clock in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   withState(func(s frequency.State) float64 { return s.Efficient }),
		},
		{
			desc:      desc("actual_mhz", "Clock the hardware is running at in MHz."),
			valueType: prometheus.GaugeValue,
			extract:   withState(func(s frequency.State) float64 { return s.Actual }),
		},
		{
			desc:      desc("voltage_volts", "Current voltage, when reported."),
			valueType: prometheus.GaugeValue,
			extract: func(r reading) (float64, bool) {
				if !r.stateOK || r.state.CurrentVoltage == frequency.VoltageUnknown {
					return 0, false
				}
				return r.state.CurrentVoltage, true
			},
		},
		{
			desc:      desc("throttle_reasons", "Bit mask of active throttle reasons."),
			valueType: prometheus.GaugeValue,
			extract:   withState(func(s frequency.State) float64 { return float64(s.ThrottleReasons) }),
		},
	}

	return &collector{
		registry: reg,
		logger:   log,
		metrics:  metrics,
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range c.metrics {
		ch <- metric.desc
	}
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	if c.registry == nil {
		return
	}

	for _, h := range c.registry.Handles() {
		d, err := c.registry.Resolve(h)
		if err != nil {
			continue
		}

		r := reading{props: d.Properties()}
		if limits, err := d.Range(); err == nil {
			r.limits, r.rangeOK = limits, true
		} else {
			c.logger.Debug().Err(err).Str("domain", d.Name()).Msg("Range unavailable for scrape")
		}
		if state, err := d.State(); err == nil {
			r.state, r.stateOK = state, true
		} else {
			c.logger.Debug().Err(err).Str("domain", d.Name()).Msg("State unavailable for scrape")
		}

		labels := []string{strconv.FormatUint(uint64(h.Index()), 10), d.Name(), r.props.Kind.String()}
		for _, metric := range c.metrics {
			value, ok := metric.extract(r)
			if !ok {
				continue
			}
			ch <- prometheus.MustNewConstMetric(metric.desc, metric.valueType, value, labels...)
		}
	}
}
