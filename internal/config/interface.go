package config

// Backend selects the hardware access layer.
type Backend string

const (
	BackendSysfs Backend = "sysfs"
	BackendNVML  Backend = "nvml"
)

func (b Backend) IsValid() bool {
	return b == BackendSysfs || b == BackendNVML
}

// APIVersion selects the frequency API surface used by the CLI.
type APIVersion string

const (
	APIv1 APIVersion = "v1"
	APIv2 APIVersion = "v2"
)

func (v APIVersion) IsValid() bool {
	return v == APIv1 || v == APIv2
}

// Option defines a configuration option that can be passed to Load
type Option func(*options)

type options struct {
	configPath string
	envPrefix  string
}

// WithConfigFile specifies an explicit configuration file path. It takes
// precedence over the FREQCTL_CONFIG environment variable.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "FREQCTL"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}
