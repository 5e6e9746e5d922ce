package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"mdlog/internal/errors"
	"mdlog/internal/scan"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

const defaultBatchSize = 1000

// Config controls a load.
type Config struct {
	// BatchSize is the number of rows per INSERT.
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid loader config: BatchSize must be > 0")
	}
	return nil
}

// Loader copies decoded orders and transactions into SQL tables.
type Loader struct {
	db  *gorm.DB
	cfg Config
}

func New(db *gorm.DB, cfg Config) (*Loader, error) {
	if db == nil {
		return nil, exception.ErrNilInstance
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loader{db: db, cfg: cfg}, nil
}

// Migrate creates or updates md_orders and md_transactions.
func (l *Loader) Migrate(ctx context.Context) error {
	if err := l.db.WithContext(ctx).AutoMigrate(&OrderRow{}, &TransactionRow{}); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

// Load inserts every record of src matching f and returns the number of
// rows written. Only order and transaction files can be loaded.
func (l *Loader) Load(ctx context.Context, src scan.Source, f scan.Filter) (uint64, error) {
	layout := src.Layout()
	switch layout.Kind() {
	case schema.KindOrder:
		return load(ctx, l, src, f, func(h scan.Hit) OrderRow {
			return orderRow(h.Index, h.Record.(schema.Order))
		})
	case schema.KindTransaction:
		return load(ctx, l, src, f, func(h scan.Hit) TransactionRow {
			return transactionRow(h.Index, h.Record.(schema.Transaction))
		})
	}
	return 0, errors.Wrapf(exception.ErrKindUnsupported, "load %s", layout)
}

func load[T any](ctx context.Context, l *Loader, src scan.Source, f scan.Filter, row func(scan.Hit) T) (uint64, error) {
	start := time.Now()
	db := l.db.WithContext(ctx)
	batch := make([]T, 0, l.cfg.BatchSize)

	var written uint64
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.Create(&batch).Error; err != nil {
			return errors.Wrapf(err, "insert %d rows after %d", len(batch), written)
		}
		written += uint64(len(batch))
		batch = batch[:0]
		return nil
	}

	sc := scan.New(src, f)
	for sc.Next() {
		batch = append(batch, row(sc.Hit()))
		if len(batch) == l.cfg.BatchSize {
			if err := flush(); err != nil {
				return written, err
			}
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return written, err
	}
	if err := flush(); err != nil {
		return written, err
	}

	logs.Infof("load %s done in %s, rows %d", src.Layout(), time.Since(start).Round(time.Millisecond), written)
	return written, nil
}
