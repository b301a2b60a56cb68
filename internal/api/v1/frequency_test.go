package v1_test

import (
	"testing"

	"codeberg.org/mutker/freqctl/internal/api"
	v1 "codeberg.org/mutker/freqctl/internal/api/v1"
	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacySurface(t *testing.T) {
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
		Kind:     frequency.DomainMemory,
		Accessor: m,
	}}, logger.Nop())

	count := uint32(1)
	handles := make([]v1.FreqHandle, 1)
	require.Equal(t, api.Success, v1.FrequencyGet(reg, &count, handles))

	var p v1.FreqProperties
	require.Equal(t, api.Success, v1.FrequencyGetProperties(reg, handles[0], &p))
	assert.Equal(t, frequency.DomainMemory, p.Type)
	assert.False(t, p.CanControl)
	assert.InDelta(t, 50.0/3, p.Step, 0)

	res := v1.FrequencySetRange(reg, handles[0], &v1.FreqRange{Min: 300, Max: 1100})
	assert.Equal(t, api.ErrorUnsupportedFeature, res)
	assert.Empty(t, m.Writes())

	var st v1.FreqState
	require.Equal(t, api.Success, v1.FrequencyGetState(reg, handles[0], &st))
	assert.InDelta(t, -1.0, st.CurrentVoltage, 0)
	assert.Zero(t, st.ThrottleReasons)

	assert.Equal(t, api.ErrorInvalidArgument, v1.FrequencyGetProperties(reg, handles[0], nil))
	assert.Equal(t, api.ErrorInvalidArgument, v1.FrequencyGet(nil, &count, handles))
}
