package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, 4096, cfg.ChunkRecords)
	assert.Equal(t, 1, cfg.Export.ProgressStep)
	assert.Equal(t, 30*time.Second, cfg.Export.ProgressInterval)
	assert.Equal(t, 10, cfg.Validate.MinRecords)
	assert.Equal(t, 5, cfg.Validate.Samples)
	assert.False(t, cfg.Postgres.Configured())

	end, err := cfg.EndClock()
	require.NoError(t, err)
	assert.True(t, end.IsNone())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /data/md
day: "20260122"
end_time: "094500"
export:
  progress_step: 5
  progress_interval: 10s
postgres:
  host: db
  database: market
`), 0o644))
	t.Setenv("MDLOG_VALIDATE_MIN_RECORDS", "50")
	t.Setenv("MDLOG_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data/md", "2026", "01", "22"), cfg.DayPath())
	assert.Equal(t, 5, cfg.Export.ProgressStep)
	assert.Equal(t, 10*time.Second, cfg.Export.ProgressInterval)
	assert.Equal(t, 50, cfg.Validate.MinRecords)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.True(t, cfg.Postgres.Configured())

	end, err := cfg.EndClock()
	require.NoError(t, err)
	assert.Equal(t, int32(94500000), end.Unwrap())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("MDLOG_EXPORT_PROGRESS_STEP", "0")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsBadClock(t *testing.T) {
	t.Setenv("MDLOG_END_TIME", "9450")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}

func TestDayDir(t *testing.T) {
	p, err := DayDir("/data", "20260122")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "2026", "01", "22"), p)

	_, err = DayDir("/data", "2026-01-22")
	require.Error(t, err)
	_, err = DayDir("/data", "20261345")
	require.Error(t, err)
}
