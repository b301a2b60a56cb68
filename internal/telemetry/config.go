package telemetry

import "codeberg.org/mutker/freqctl/internal/errors"

const (
	// File system permissions and paths
	defaultDirPerm      = 0o755
	defaultDBPath       = "/var/lib/freqctl/telemetry.db"
	defaultBackupDir    = "/var/lib/freqctl/backups"
	defaultBatchSize    = 32
	defaultBatchTimeout = 10
)

type Config struct {
	DBPath    string
	BackupDir string
	// BatchSize is the number of buffered samples that triggers a flush.
	// Values below 2 write every sample immediately.
	BatchSize int
	// BatchTimeout is the flush period in seconds for partial batches.
	BatchTimeout int
	Enabled      bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		BackupDir:    defaultBackupDir,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate paths if telemetry is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, "negative batch setting")
	}

	return nil
}
