package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/freqctl/internal/frequency"
	"codeberg.org/mutker/freqctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBoundedWhileFlushFails(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		DBPath:    filepath.Join(dir, "telemetry.db"),
		BackupDir: filepath.Join(dir, "backups"),
		BatchSize: 4,
		Enabled:   true,
	}

	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)
	r := repo.(*repository)
	defer r.Close()

	_, err = r.db.Exec("DROP TABLE samples")
	require.NoError(t, err)

	base := time.UnixMilli(1_700_000_000_000)
	var last *Sample
	for i := 0; i < 20*cfg.BatchSize; i++ {
		last = &Sample{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Kind:      frequency.DomainGPU,
		}
		err := r.Record(last)
		if i+1 >= cfg.BatchSize {
			assert.Error(t, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Len(t, r.buffer, r.bufferLimit())
	assert.Same(t, last, r.buffer[len(r.buffer)-1])
}
