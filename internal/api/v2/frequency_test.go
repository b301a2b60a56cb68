package v2_test

import (
	"testing"

	"codeberg.org/mutker/freqctl/internal/api"
	v2 "codeberg.org/mutker/freqctl/internal/api/v2"
	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*frequency.Registry, *hwaccess.Mock, v2.Handle) {
	t.Helper()
	m := hwaccess.NewMock(map[hwaccess.Attribute]float64{
		hwaccess.AttrMin:       300,
		hwaccess.AttrMax:       1100,
		hwaccess.AttrHWMin:     300,
		hwaccess.AttrHWMax:     1100,
		hwaccess.AttrRequest:   300,
		hwaccess.AttrTDP:       1100,
		hwaccess.AttrEfficient: 300,
		hwaccess.AttrActual:    300,
	})
	reg := frequency.NewRegistry([]frequency.Source{{
		Kind:        frequency.DomainGPU,
		OnSubdevice: true,
		CanControl:  true,
		Accessor:    m,
	}}, logger.Nop())

	var count uint32
	require.Equal(t, api.Success, v2.EnumFrequencyDomains(reg, &count, nil))
	require.Equal(t, uint32(1), count)
	handles := make([]v2.Handle, count)
	require.Equal(t, api.Success, v2.EnumFrequencyDomains(reg, &count, handles))

	return reg, m, handles[0]
}

func TestProperties(t *testing.T) {
	reg, _, h := setup(t)

	var p v2.Properties
	require.Equal(t, api.Success, v2.FrequencyGetProperties(reg, h, &p))
	assert.Equal(t, v2.Properties{
		Kind:        frequency.DomainGPU,
		OnSubdevice: true,
		CanControl:  true,
		Min:         300,
		Max:         1100,
	}, p)
}

func TestSetAndGetRange(t *testing.T) {
	reg, m, h := setup(t)

	require.Equal(t, api.Success, v2.FrequencySetRange(reg, h, &v2.Range{Min: 400, Max: 500}))

	var r v2.Range
	require.Equal(t, api.Success, v2.FrequencyGetRange(reg, h, &r))
	assert.Equal(t, v2.Range{Min: 400, Max: 500}, r)
	assert.Len(t, m.Writes(), 2)
}

func TestInvalidArguments(t *testing.T) {
	reg, _, h := setup(t)

	assert.Equal(t, api.ErrorInvalidArgument, v2.EnumFrequencyDomains(nil, new(uint32), nil))
	assert.Equal(t, api.ErrorInvalidArgument, v2.EnumFrequencyDomains(reg, nil, nil))
	assert.Equal(t, api.ErrorInvalidArgument, v2.FrequencyGetProperties(reg, h, nil))
	assert.Equal(t, api.ErrorInvalidArgument, v2.FrequencyGetRange(reg, h, nil))
	assert.Equal(t, api.ErrorInvalidArgument, v2.FrequencySetRange(reg, h, nil))
	assert.Equal(t, api.ErrorInvalidArgument, v2.FrequencyGetState(reg, h, nil))
	assert.Equal(t, api.ErrorInvalidArgument, v2.FrequencyGetProperties(reg, v2.Handle{}, &v2.Properties{}))
}

func TestClosedRegistry(t *testing.T) {
	reg, _, h := setup(t)
	reg.Close()

	var r v2.Range
	assert.Equal(t, api.ErrorInvalidArgument, v2.FrequencyGetRange(reg, h, &r))
	assert.Equal(t, api.ErrorInvalidArgument, v2.EnumFrequencyDomains(reg, new(uint32), nil))
}
