package store

import (
	"fmt"

	"mdlog/internal/obs"
	"mdlog/internal/schema"
)

const defaultChunkRecords = 4096

// Config controls how a log file is opened.
type Config struct {
	Path string
	// Kind, when set, rejects files holding another record kind.
	Kind schema.Kind
	// ChunkRecords bounds how many records Visit hands out per read lock,
	// so a concurrent remap is never starved by a long pass.
	ChunkRecords int
	// Metrics receives visit and remap counts. Optional.
	Metrics *obs.Metrics
}

// DefaultConfig returns a baseline configuration for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		ChunkRecords: defaultChunkRecords,
	}
}

func (c Config) withDefaults() Config {
	if c.ChunkRecords == 0 {
		c.ChunkRecords = defaultChunkRecords
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("invalid store config: Path is empty")
	}
	if c.ChunkRecords <= 0 {
		return fmt.Errorf("invalid store config: ChunkRecords must be > 0")
	}
	if c.Kind > schema.KindSnapshot {
		return fmt.Errorf("invalid store config: unknown Kind %d", c.Kind)
	}
	return nil
}
