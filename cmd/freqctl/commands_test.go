package main

import (
	"bytes"
	"testing"
	"time"

	"codeberg.org/mutker/freqctl/internal/api"
	"codeberg.org/mutker/freqctl/internal/config"
	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI(t *testing.T, version config.APIVersion) (*cli, *bytes.Buffer, *hwaccess.Mock) {
	t.Helper()
	m := hwaccess.NewMock(map[hwaccess.Attribute]float64{
		hwaccess.AttrMin:       300,
		hwaccess.AttrMax:       1100,
		hwaccess.AttrHWMin:     300,
		hwaccess.AttrHWMax:     1100,
		hwaccess.AttrRequest:   450,
		hwaccess.AttrTDP:       1100,
		hwaccess.AttrEfficient: 300,
		hwaccess.AttrActual:    433,
	})
	reg := frequency.NewRegistry([]frequency.Source{
		{Name: "card0", Kind: frequency.DomainGPU, CanControl: true, Accessor: m},
	}, logger.Nop())
	t.Cleanup(reg.Close)

	out := &bytes.Buffer{}
	return &cli{out: out, api: newSurface(version, reg)}, out, m
}

func TestPropsStepOnlyOnLegacySurface(t *testing.T) {
	c, out, _ := newTestCLI(t, config.APIv1)
	require.NoError(t, c.run("props", []string{"0"}))
	assert.Contains(t, out.String(), "step: 16.6667")

	c, out, _ = newTestCLI(t, config.APIv2)
	require.NoError(t, c.run("props", []string{"0"}))
	assert.NotContains(t, out.String(), "step:")
	assert.Contains(t, out.String(), "max: 1100")
}

func TestClocksCommand(t *testing.T) {
	c, out, _ := newTestCLI(t, config.APIv2)
	require.NoError(t, c.run("clocks", []string{"0"}))
	assert.Regexp(t, `^300 317 333 .* 1083 1100\n$`, out.String())
}

func TestSetCommand(t *testing.T) {
	for _, version := range []config.APIVersion{config.APIv1, config.APIv2} {
		t.Run(string(version), func(t *testing.T) {
			c, out, m := newTestCLI(t, version)
			require.NoError(t, c.run("set", []string{"0", "400", "500"}))
			assert.Equal(t, "min: 400\nmax: 500\n", out.String())

			got, _ := m.Get(hwaccess.AttrMax)
			assert.InDelta(t, 500.0, got, 0)

			err := c.run("set", []string{"0", "401", "500"})
			assert.Equal(t, api.ErrorInvalidArgument, api.ResultFromError(err))
		})
	}
}

func TestStateAndThrottle(t *testing.T) {
	c, out, _ := newTestCLI(t, config.APIv2)
	require.NoError(t, c.run("state", []string{"0"}))
	assert.Contains(t, out.String(), "actual: 433\n")
	assert.Contains(t, out.String(), "voltage: unknown\n")

	err := c.run("throttle", []string{"0"})
	assert.Equal(t, api.ErrorUnsupportedFeature, api.ResultFromError(err))
}

func TestListCommand(t *testing.T) {
	c, out, _ := newTestCLI(t, config.APIv1)
	require.NoError(t, c.run("list", nil))
	assert.Contains(t, out.String(), "DOMAIN")
	assert.Regexp(t, `0\s+gpu\s+false\s+true\s+300\s+1100`, out.String())
}

func TestUsageErrors(t *testing.T) {
	c, _, _ := newTestCLI(t, config.APIv2)

	tests := []struct {
		name string
		cmd  string
		args []string
	}{
		{"unknown command", "fan", nil},
		{"missing argument", "range", nil},
		{"bad index", "range", []string{"x"}},
		{"index out of range", "range", []string{"1"}},
		{"bad clock", "set", []string{"0", "low", "500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.run(tt.cmd, tt.args)
			assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))
		})
	}
}

func TestSampleSkipsUnreadableDomains(t *testing.T) {
	good := hwaccess.NewMock(map[hwaccess.Attribute]float64{
		hwaccess.AttrMin: 300, hwaccess.AttrMax: 1100,
		hwaccess.AttrHWMin: 300, hwaccess.AttrHWMax: 1100,
		hwaccess.AttrRequest: 300, hwaccess.AttrTDP: 1100,
		hwaccess.AttrEfficient: 300, hwaccess.AttrActual: 300,
	})
	bad := hwaccess.NewMock(map[hwaccess.Attribute]float64{
		hwaccess.AttrMin: 300, hwaccess.AttrMax: 1100,
		hwaccess.AttrHWMin: 300, hwaccess.AttrHWMax: 1100,
	})
	reg := frequency.NewRegistry([]frequency.Source{
		{Name: "card0", Accessor: good},
		{Name: "gt1", OnSubdevice: true, Accessor: bad},
	}, logger.Nop())
	defer reg.Close()

	samples := sample(reg, time.Unix(0, 0))
	require.Len(t, samples, 1)
	assert.Equal(t, uint32(0), samples[0].Domain)
	assert.InDelta(t, 1100.0, samples[0].Range.Max, 0)
}
