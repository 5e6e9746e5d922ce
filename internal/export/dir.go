package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"

	"mdlog/internal/errors"
	"mdlog/internal/schema"
	"mdlog/internal/store"
	"mdlog/pkg/exception"
)

var outputPrefixes = map[schema.Kind]string{
	schema.KindOrder:       "MD_ORDER_StockType_",
	schema.KindTransaction: "MD_TRANSACTION_StockType_",
	schema.KindTick:        "MD_TICK_StockType_",
}

// OutputName is the file an export writes for one kind and symbol, e.g.
// MD_ORDER_StockType_600000.SH.csv.
func OutputName(kind schema.Kind, code string) string {
	return outputPrefixes[kind] + schema.FullSymbol(schema.BareCode(code)) + ".csv"
}

// DefaultKinds are the kinds exported from a day directory.
var DefaultKinds = []schema.Kind{schema.KindOrder, schema.KindTransaction, schema.KindTick}

// DirConfig describes the export of one day directory.
type DirConfig struct {
	DataDir   string
	OutputDir string
	Symbols   Set
	// Kinds defaults to DefaultKinds. Each kind is exported concurrently.
	Kinds  []schema.Kind
	Export Config
	// ChunkRecords is handed to every opened store.
	ChunkRecords int
}

func (c DirConfig) withDefaults() DirConfig {
	if len(c.Kinds) == 0 {
		c.Kinds = DefaultKinds
	}
	return c
}

// Validate checks if the configuration is usable.
func (c DirConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("invalid export dir config: DataDir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("invalid export dir config: OutputDir is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("invalid export dir config: Symbols is empty")
	}
	for _, k := range c.Kinds {
		if !Exportable(k) {
			return errors.Wrapf(exception.ErrKindUnsupported, "export %s", k)
		}
	}
	return c.Export.withDefaults().Validate()
}

// DirResult collects the outcome of every kind. A failed kind never stops
// its siblings.
type DirResult struct {
	Stats   map[schema.Kind]Stats
	Errors  map[schema.Kind]error
	Missing []schema.Kind
	Elapsed time.Duration
}

// Count is how many lines were written for code from the given kind.
func (r DirResult) Count(kind schema.Kind, code string) uint64 {
	return r.Stats[kind].Matched[schema.BareCode(code)]
}

// Err joins the per-kind failures.
func (r DirResult) Err() error {
	var errs []error
	for _, k := range schema.Kinds {
		if err := r.Errors[k]; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dir exports every requested kind of a day directory, one output file per
// kind and symbol. Missing input files are reported in Missing.
func Dir(ctx context.Context, cfg DirConfig) (DirResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return DirResult{}, err
	}
	ex, err := New(cfg.Export)
	if err != nil {
		return DirResult{}, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return DirResult{}, errors.Wrap(err, "create output dir")
	}

	res := DirResult{
		Stats:  make(map[schema.Kind]Stats, len(cfg.Kinds)),
		Errors: make(map[schema.Kind]error),
	}
	start := time.Now()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, kind := range cfg.Kinds {
		g.Go(func() error {
			stats, found, err := exportKind(ctx, ex, cfg, kind)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case !found:
				res.Missing = append(res.Missing, kind)
			case err != nil:
				res.Errors[kind] = err
				logs.Errorf("export %s failed, err: %+v", kind, err)
			default:
				res.Stats[kind] = stats
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func exportKind(ctx context.Context, ex *Exporter, cfg DirConfig, kind schema.Kind) (Stats, bool, error) {
	path := filepath.Join(cfg.DataDir, kind.FileName())
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logs.Infof("warning: %s not found", path)
			return Stats{}, false, nil
		}
		return Stats{}, true, errors.Wrap(err, "stat input")
	}

	st, err := store.New(store.Config{
		Path:         path,
		Kind:         kind,
		ChunkRecords: cfg.ChunkRecords,
		Metrics:      cfg.Export.Metrics,
	})
	if err != nil {
		return Stats{}, true, err
	}
	defer st.Close()

	files := make([]*os.File, 0, len(cfg.Symbols))
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		files = nil
		return errors.Join(errs...)
	}
	defer closeAll()

	sinks := make(map[string]io.Writer, len(cfg.Symbols))
	for _, code := range cfg.Symbols.Sorted() {
		f, err := os.Create(filepath.Join(cfg.OutputDir, OutputName(kind, code)))
		if err != nil {
			return Stats{}, true, errors.Wrap(err, "create output")
		}
		files = append(files, f)
		sinks[code] = f
	}

	stats, err := ex.Run(ctx, st, sinks)
	if err != nil {
		return stats, true, err
	}
	if err := closeAll(); err != nil {
		return stats, true, errors.Wrap(err, "close output")
	}
	return stats, true, nil
}
