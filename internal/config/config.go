package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/spf13/viper"

	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/pkg/conn"
)

// EnvPrefix prefixes every environment override, e.g. MDLOG_DATA_DIR or
// MDLOG_EXPORT_PROGRESS_STEP.
const EnvPrefix = "MDLOG"

// Config is the resolved configuration of the mdlog tools.
type Config struct {
	// DataDir is the root of the day directories, or a day directory itself
	// when Day is empty.
	DataDir string `mapstructure:"data_dir"`
	// Day is YYYYMMDD and selects DataDir/YYYY/MM/DD.
	Day         string `mapstructure:"day"`
	OutputDir   string `mapstructure:"output_dir"`
	SymbolsFile string `mapstructure:"symbols_file"`
	// EndTime is an HHMMSS export cut-off. Empty exports the whole day.
	EndTime      string `mapstructure:"end_time"`
	ChunkRecords int    `mapstructure:"chunk_records"`

	Export   ExportConfig   `mapstructure:"export"`
	Validate ValidateConfig `mapstructure:"validate"`
	Postgres conn.Option    `mapstructure:"postgres"`

	MetricsAddr   string `mapstructure:"metrics_addr"`
	PyroscopeAddr string `mapstructure:"pyroscope_addr"`
}

type ExportConfig struct {
	ProgressStep     int           `mapstructure:"progress_step"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	DumpWorkers      int           `mapstructure:"dump_workers"`
}

type ValidateConfig struct {
	MinRecords int    `mapstructure:"min_records"`
	MaxRecords uint64 `mapstructure:"max_records"`
	Samples    int    `mapstructure:"samples"`
}

var defaults = map[string]any{
	"data_dir":                   ".",
	"day":                        "",
	"output_dir":                 "export",
	"symbols_file":               "",
	"end_time":                   "",
	"chunk_records":              4096,
	"export.progress_step":       1,
	"export.progress_interval":   30 * time.Second,
	"export.dump_workers":        0,
	"validate.min_records":       10,
	"validate.max_records":       0,
	"validate.samples":           5,
	"postgres.host":              "",
	"postgres.port":              0,
	"postgres.user":              "",
	"postgres.password":          "",
	"postgres.database":          "",
	"postgres.sslmode":           "",
	"postgres.conn_string":       "",
	"postgres.max_open_conns":    0,
	"postgres.conn_max_lifetime": time.Duration(0),
	"metrics_addr":               "",
	"pyroscope_addr":             "",
}

// Load resolves defaults, the optional YAML file at path and MDLOG_*
// environment variables, in increasing priority.
func Load(path string) (Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check validates the resolved values.
func (c Config) Check() error {
	if c.DataDir == "" {
		return fmt.Errorf("invalid config: data_dir is required")
	}
	if c.Day != "" {
		if _, err := DayDir(c.DataDir, c.Day); err != nil {
			return err
		}
	}
	if _, err := c.EndClock(); err != nil {
		return err
	}
	if c.ChunkRecords <= 0 {
		return fmt.Errorf("invalid config: chunk_records must be > 0")
	}
	if c.Export.ProgressStep < 1 || c.Export.ProgressStep > 100 {
		return fmt.Errorf("invalid config: export.progress_step must be in [1, 100]")
	}
	if c.Export.ProgressInterval <= 0 {
		return fmt.Errorf("invalid config: export.progress_interval must be > 0")
	}
	if c.Export.DumpWorkers < 0 {
		return fmt.Errorf("invalid config: export.dump_workers must be >= 0")
	}
	if c.Validate.MinRecords < 1 {
		return fmt.Errorf("invalid config: validate.min_records must be > 0")
	}
	if c.Validate.Samples < 0 {
		return fmt.Errorf("invalid config: validate.samples must be >= 0")
	}
	return nil
}

// DayPath is the directory holding the day's log files.
func (c Config) DayPath() string {
	if c.Day == "" {
		return c.DataDir
	}
	p, err := DayDir(c.DataDir, c.Day)
	if err != nil {
		return c.DataDir
	}
	return p
}

// EndClock parses EndTime into a packed MDTime.
func (c Config) EndClock() (optional.Option[int32], error) {
	if c.EndTime == "" {
		return optional.None[int32](), nil
	}
	v, err := schema.ParseClock(c.EndTime)
	if err != nil {
		return optional.None[int32](), errors.Wrap(err, "invalid config: end_time")
	}
	return optional.Some(v), nil
}

// DayDir maps a YYYYMMDD day onto base/YYYY/MM/DD.
func DayDir(base, day string) (string, error) {
	if _, err := time.Parse("20060102", day); err != nil {
		return "", fmt.Errorf("invalid day %q, want YYYYMMDD", day)
	}
	return filepath.Join(base, day[:4], day[4:6], day[6:]), nil
}
