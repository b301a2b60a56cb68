package hwaccess_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/hwaccess"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func writeLayout(t *testing.T, dir string, layout hwaccess.Layout, values map[hwaccess.Attribute]string) {
	t.Helper()
	for attr, content := range values {
		writeFile(t, filepath.Join(dir, layout[attr]), content)
	}
}

func i915Values() map[hwaccess.Attribute]string {
	return map[hwaccess.Attribute]string{
		hwaccess.AttrMin:       "300\n",
		hwaccess.AttrMax:       "1100\n",
		hwaccess.AttrHWMin:     "300\n",
		hwaccess.AttrHWMax:     "1100\n",
		hwaccess.AttrRequest:   "450\n",
		hwaccess.AttrTDP:       "1100\n",
		hwaccess.AttrEfficient: "400\n",
		hwaccess.AttrActual:    "550\n",
	}
}

func TestSysfsRead(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, hwaccess.DeviceLayout, i915Values())

	s := hwaccess.NewSysfs(dir, hwaccess.DeviceLayout)

	v, err := s.Read(hwaccess.AttrRequest)
	require.NoError(t, err)
	assert.InDelta(t, 450.0, v, 0)

	v, err = s.Read(hwaccess.AttrMax)
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, v, 0)
}

func TestSysfsReadFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, hwaccess.DeviceLayout[hwaccess.AttrActual]), "garbage")

	s := hwaccess.NewSysfs(dir, hwaccess.DeviceLayout)

	_, err := s.Read(hwaccess.AttrActual)
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrParseFailed, errors.CodeOf(err))

	_, err = s.Read(hwaccess.AttrMin)
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrReadFailed, errors.CodeOf(err))

	_, err = s.Read(hwaccess.AttrVoltage)
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrAttributeNotSupported, errors.CodeOf(err))
}

func TestSysfsWriteRoundsToWholeMHz(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, hwaccess.DeviceLayout, i915Values())

	s := hwaccess.NewSysfs(dir, hwaccess.DeviceLayout)
	require.NoError(t, s.Write(hwaccess.AttrMax, 616.6666))

	data, err := os.ReadFile(filepath.Join(dir, "gt_max_freq_mhz"))
	require.NoError(t, err)
	assert.Equal(t, "617", string(data))

	v, err := s.Read(hwaccess.AttrMax)
	require.NoError(t, err)
	assert.InDelta(t, 617.0, v, 0)
}

func TestSysfsWriteMissingFile(t *testing.T) {
	s := hwaccess.NewSysfs(t.TempDir(), hwaccess.DeviceLayout)

	err := s.Write(hwaccess.AttrMin, 300)
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrWriteFailed, errors.CodeOf(err))

	err = s.Write(hwaccess.AttrThrottleReasons, 1)
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrAttributeNotSupported, errors.CodeOf(err))
}

func TestDiscoverSysfs(t *testing.T) {
	root := t.TempDir()
	card := filepath.Join(root, "class", "drm", "card1")
	writeLayout(t, card, hwaccess.DeviceLayout, i915Values())
	writeLayout(t, filepath.Join(card, "gt", "gt0"), hwaccess.TileLayout, i915Values())
	writeLayout(t, filepath.Join(card, "gt", "gt1"), hwaccess.TileLayout, i915Values())
	// a render node and a connector without frequency files
	require.NoError(t, os.MkdirAll(filepath.Join(root, "class", "drm", "renderD128"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "class", "drm", "card0"), 0o755))

	targets, err := hwaccess.DiscoverSysfs(root, "auto", logger.Nop())
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, "card1", targets[0].Name)
	assert.False(t, targets[0].Subdevice)
	assert.Equal(t, "card1/gt0", targets[1].Name)
	assert.True(t, targets[1].Subdevice)
	assert.Equal(t, "card1/gt1", targets[2].Name)

	tile, ok := targets[1].Accessor.(*hwaccess.Sysfs)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(card, "gt", "gt0"), tile.Dir())
}

func TestDiscoverSysfsExplicitCard(t *testing.T) {
	root := t.TempDir()
	writeLayout(t, filepath.Join(root, "class", "drm", "card0"), hwaccess.DeviceLayout, i915Values())

	targets, err := hwaccess.DiscoverSysfs(root, "card0", logger.Nop())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "card0", targets[0].Name)
}

func TestDiscoverSysfsNoDevice(t *testing.T) {
	root := t.TempDir()

	_, err := hwaccess.DiscoverSysfs(root, "auto", logger.Nop())
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrNoDevice, errors.CodeOf(err))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "class", "drm", "card0"), 0o755))
	_, err = hwaccess.DiscoverSysfs(root, "card0", logger.Nop())
	require.Error(t, err)
	assert.Equal(t, hwaccess.ErrNoDevice, errors.CodeOf(err))
}
