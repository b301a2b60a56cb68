package config

import (
	"math"
	"os"
	"strings"

	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix     = "FREQCTL"
	DefaultConfigFile    = "/etc/freqctl.toml"
	DefaultSysfsRoot     = "/sys"
	DefaultCard          = "auto"
	DefaultStep          = 50.0 / 3
	DefaultNVMLMinClock  = 210
	DefaultInterval      = 2
	DefaultLogLevel      = "info"
	DefaultTelemetryDB   = "/var/lib/freqctl/telemetry.db"
	DefaultMetricsListen = ""
	DefaultPIDFile       = "/run/freqctl.pid"
)

type Config struct {
	Backend       Backend    `mapstructure:"backend"`
	SysfsRoot     string     `mapstructure:"sysfs_root"`
	Card          string     `mapstructure:"card"`
	Step          float64    `mapstructure:"step"`
	NVMLDevice    int        `mapstructure:"nvml_device"`
	NVMLMinClock  float64    `mapstructure:"nvml_min_clock"`
	API           APIVersion `mapstructure:"api"`
	Interval      int        `mapstructure:"interval"`
	LogLevel      string     `mapstructure:"log_level"`
	Telemetry     bool       `mapstructure:"telemetry"`
	TelemetryDB   string     `mapstructure:"telemetry_db"`
	MetricsListen string     `mapstructure:"metrics_listen"`
	PIDFile       string     `mapstructure:"pid_file"`

	// Args holds the positional arguments left after flag parsing.
	Args []string `mapstructure:"-"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"backend":        "backend",
	"sysfs-root":     "sysfs_root",
	"card":           "card",
	"step":           "step",
	"nvml-device":    "nvml_device",
	"nvml-min-clock": "nvml_min_clock",
	"api":            "api",
	"interval":       "interval",
	"log-level":      "log_level",
	"telemetry":      "telemetry",
	"telemetry-db":   "telemetry_db",
	"metrics-listen": "metrics_listen",
	"pid-file":       "pid_file",
}

// NewFlagSet returns the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetInterspersed(true)

	fs.String("backend", string(BackendSysfs), "Hardware backend: sysfs or nvml")
	fs.String("sysfs-root", DefaultSysfsRoot, "Root of the sysfs tree")
	fs.String("card", DefaultCard, "DRM card to use, or auto")
	fs.Float64("step", DefaultStep, "Clock step in MHz")
	fs.Int("nvml-device", 0, "NVML device index")
	fs.Float64("nvml-min-clock", DefaultNVMLMinClock, "Lowest lockable graphics clock for NVML devices, in MHz")
	fs.String("api", string(APIv2), "API surface: v1 or v2")
	fs.Int("interval", DefaultInterval, "Seconds between samples in monitor mode")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	fs.Bool("telemetry", false, "Record samples to the telemetry database")
	fs.String("telemetry-db", DefaultTelemetryDB, "Path to the telemetry database")
	fs.String("metrics-listen", DefaultMetricsListen, "Address for the Prometheus endpoint, empty to disable")
	fs.String("pid-file", DefaultPIDFile, "PID file used in monitor mode")

	return fs
}

// Load parses args, then layers flags over environment over the TOML file
// over defaults.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	fs := NewFlagSet("freqctl")
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.Args = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", string(BackendSysfs))
	v.SetDefault("sysfs_root", DefaultSysfsRoot)
	v.SetDefault("card", DefaultCard)
	v.SetDefault("step", DefaultStep)
	v.SetDefault("nvml_device", 0)
	v.SetDefault("nvml_min_clock", DefaultNVMLMinClock)
	v.SetDefault("api", string(APIv2))
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("telemetry_db", DefaultTelemetryDB)
	v.SetDefault("metrics_listen", DefaultMetricsListen)
	v.SetDefault("pid_file", DefaultPIDFile)
}

// readConfigFile loads an explicitly named file or, failing that, the
// default one if it exists.
func readConfigFile(v *viper.Viper, o options) error {
	errFactory := errors.New()

	path := o.configPath
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return nil
		}
		path = DefaultConfigFile
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.Backend.IsValid() {
		return errFactory.WithData(errors.ErrInvalidConfig, "backend: "+string(c.Backend))
	}
	if !c.API.IsValid() {
		return errFactory.WithData(errors.ErrInvalidConfig, "api: "+string(c.API))
	}
	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Step <= 0 || math.IsNaN(c.Step) || math.IsInf(c.Step, 0) {
		return errFactory.WithData(errors.ErrInvalidConfig, "step must be positive")
	}
	if c.Backend == BackendNVML && c.NVMLMinClock <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "nvml_min_clock must be positive")
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "telemetry_db is required when telemetry is enabled")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}
