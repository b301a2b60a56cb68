package hwaccess

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/logger"
)

const drmClassPath = "class/drm"

// Layout maps attributes to file names inside a sysfs directory. Attributes
// without an entry are reported as not supported.
type Layout map[Attribute]string

// DeviceLayout is the card-level frequency interface.
var DeviceLayout = Layout{
	AttrMin:       "gt_min_freq_mhz",
	AttrMax:       "gt_max_freq_mhz",
	AttrHWMin:     "gt_RPn_freq_mhz",
	AttrHWMax:     "gt_RP0_freq_mhz",
	AttrRequest:   "gt_cur_freq_mhz",
	AttrTDP:       "gt_boost_freq_mhz",
	AttrEfficient: "gt_RP1_freq_mhz",
	AttrActual:    "gt_act_freq_mhz",
}

// TileLayout is the per-tile interface found under gt/gtN.
var TileLayout = Layout{
	AttrMin:             "rps_min_freq_mhz",
	AttrMax:             "rps_max_freq_mhz",
	AttrHWMin:           "rps_RPn_freq_mhz",
	AttrHWMax:           "rps_RP0_freq_mhz",
	AttrRequest:         "rps_cur_freq_mhz",
	AttrTDP:             "rps_boost_freq_mhz",
	AttrEfficient:       "rps_RP1_freq_mhz",
	AttrActual:          "rps_act_freq_mhz",
	AttrThrottleReasons: "throttle_reason_status",
}

var (
	cardPattern = regexp.MustCompile(`^card[0-9]+$`)
	tilePattern = regexp.MustCompile(`^gt[0-9]+$`)
)

// Sysfs reads and writes attributes as files in a single directory.
type Sysfs struct {
	dir    string
	layout Layout
}

var _ Accessor = (*Sysfs)(nil)

// NewSysfs returns an accessor over dir using layout.
func NewSysfs(dir string, layout Layout) *Sysfs {
	return &Sysfs{dir: dir, layout: layout}
}

// Dir returns the directory backing the accessor.
func (s *Sysfs) Dir() string {
	return s.dir
}

func (s *Sysfs) path(attr Attribute) (string, error) {
	name, ok := s.layout[attr]
	if !ok || name == "" {
		return "", errors.New().WithData(ErrAttributeNotSupported, attr)
	}

	return filepath.Join(s.dir, name), nil
}

func (s *Sysfs) Read(attr Attribute) (float64, error) {
	errFactory := errors.New()

	path, err := s.path(attr)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errFactory.Wrap(ErrReadFailed, err)
	}

	raw := strings.TrimSpace(string(data))
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errFactory.WithData(ErrParseFailed, struct {
			Path  string
			Value string
		}{
			Path:  path,
			Value: raw,
		})
	}

	return value, nil
}

// Write stores value rounded to whole MHz, the only unit the kernel accepts.
func (s *Sysfs) Write(attr Attribute, value float64) error {
	errFactory := errors.New()

	path, err := s.path(attr)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	_, werr := f.WriteString(strconv.FormatInt(int64(math.Round(value)), 10))
	cerr := f.Close()
	if werr != nil {
		return errFactory.Wrap(ErrWriteFailed, werr)
	}
	if cerr != nil {
		return errFactory.Wrap(ErrWriteFailed, cerr)
	}

	return nil
}

// Target is one discoverable frequency interface.
type Target struct {
	Name      string
	Subdevice bool
	Accessor  Accessor
}

// DiscoverSysfs finds the frequency interfaces of a DRM card under root.
// card may be "auto" to pick the first card exposing frequency files.
func DiscoverSysfs(root, card string, log logger.Logger) ([]Target, error) {
	errFactory := errors.New()

	if card == "" || card == "auto" {
		found, err := findCard(root)
		if err != nil {
			return nil, err
		}
		card = found
	}

	cardDir := filepath.Join(root, drmClassPath, card)
	var targets []Target

	if exists(filepath.Join(cardDir, DeviceLayout[AttrMax])) {
		targets = append(targets, Target{
			Name:     card,
			Accessor: NewSysfs(cardDir, DeviceLayout),
		})
	}

	tiles, err := os.ReadDir(filepath.Join(cardDir, "gt"))
	if err == nil {
		names := make([]string, 0, len(tiles))
		for _, entry := range tiles {
			if tilePattern.MatchString(entry.Name()) {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			dir := filepath.Join(cardDir, "gt", name)
			if !exists(filepath.Join(dir, TileLayout[AttrMax])) {
				continue
			}
			targets = append(targets, Target{
				Name:      card + "/" + name,
				Subdevice: true,
				Accessor:  NewSysfs(dir, TileLayout),
			})
		}
	}

	if len(targets) == 0 {
		return nil, errFactory.WithData(ErrNoDevice, cardDir)
	}

	log.Debug().
		Str("card", card).
		Int("targets", len(targets)).
		Msg("Discovered sysfs frequency interfaces")

	return targets, nil
}

func findCard(root string) (string, error) {
	errFactory := errors.New()
	classDir := filepath.Join(root, drmClassPath)

	entries, err := os.ReadDir(classDir)
	if err != nil {
		return "", errFactory.Wrap(ErrNoDevice, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if cardPattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return cardIndex(names[i]) < cardIndex(names[j])
	})

	for _, name := range names {
		dir := filepath.Join(classDir, name)
		if exists(filepath.Join(dir, DeviceLayout[AttrMax])) ||
			exists(filepath.Join(dir, "gt", "gt0", TileLayout[AttrMax])) {
			return name, nil
		}
	}

	return "", errFactory.WithData(ErrNoDevice, classDir)
}

func cardIndex(name string) int {
	idx, err := strconv.Atoi(strings.TrimPrefix(name, "card"))
	if err != nil {
		return math.MaxInt
	}
	return idx
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
