package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Common errors.
var (
	ErrNotFound = errors.New("journal: entry not found")
	ErrClosed   = errors.New("journal: closed")
)

// Default values.
const (
	DefaultGCInterval  = 10 * time.Minute
	DefaultGCThreshold = 0.5
	DefaultListLimit   = 100
)

var keyPrefix = []byte("flow/")

// Config configures a Journal.
type Config struct {
	// Dir is the Badger directory. Ignored when InMemory is set.
	Dir string
	// Retention expires entries after the given age. Zero keeps them.
	Retention time.Duration
	// GCInterval is the value log GC period.
	GCInterval time.Duration
	// SyncWrites fsyncs every append.
	SyncWrites bool
	// InMemory keeps the journal in memory only.
	InMemory bool
}

// Journal is an append-only record of the flows served by the daemon,
// stored in Badger and keyed by ULID so iteration follows arrival order.
type Journal struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger

	appended prometheus.Counter

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Open opens or creates a journal.
func Open(cfg Config, logger *slog.Logger) (*Journal, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("journal: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}

	j := &Journal{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go j.gcLoop()

	logger.Info("journal opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"retention", cfg.Retention)

	return j, nil
}

// Append stores an entry. A missing ID is generated from the entry time,
// and a zero Time is set to now.
func (j *Journal) Append(ctx context.Context, e *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.ID == "" {
		id, err := ulid.New(ulid.Timestamp(e.Time), ulid.DefaultEntropy())
		if err != nil {
			return fmt.Errorf("journal: new id: %w", err)
		}
		e.ID = id.String()
	}
	id, err := ulid.ParseStrict(e.ID)
	if err != nil {
		return fmt.Errorf("journal: invalid id %q: %w", e.ID, err)
	}

	entry := badger.NewEntry(entryKey(id), e.marshal())
	if j.cfg.Retention > 0 {
		entry = entry.WithTTL(j.cfg.Retention)
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
	if err != nil {
		if errors.Is(err, badger.ErrDBClosed) {
			return ErrClosed
		}
		return fmt.Errorf("journal: append: %w", err)
	}

	if j.appended != nil {
		j.appended.Inc()
	}
	return nil
}

// Get returns the entry with the given ID.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	uid, err := ulid.ParseStrict(id)
	if err != nil {
		return nil, fmt.Errorf("journal: invalid id %q: %w", id, err)
	}

	var e *Entry
	err = j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(uid))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			e, err = unmarshalEntry(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Since skips entries recorded before the given time.
	Since time.Time
	// Program keeps only entries for the named program.
	Program string
	// Limit caps the result. Zero means DefaultListLimit.
	Limit int
	// Newest lists the most recent entries first.
	Newest bool
}

// List returns entries in arrival order, or newest first.
func (j *Journal) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var out []*Entry
	err := j.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.Prefix = keyPrefix
		iopts.Reverse = opts.Newest
		it := txn.NewIterator(iopts)
		defer it.Close()

		seek := keyPrefix
		if opts.Newest {
			// Reverse iteration seeks to the last key with the prefix.
			seek = append(append([]byte(nil), keyPrefix...), 0xFF)
		} else if !opts.Since.IsZero() {
			seek = sinceKey(opts.Since)
		}

		for it.Seek(seek); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var e *Entry
			err := it.Item().Value(func(val []byte) error {
				var err error
				e, err = unmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}

			if !opts.Since.IsZero() && e.Time.Before(opts.Since) {
				if opts.Newest {
					break
				}
				continue
			}
			if opts.Program != "" && e.Program != opts.Program {
				continue
			}

			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Size returns the LSM and value log sizes in bytes.
func (j *Journal) Size() (lsm, vlog int64) {
	return j.db.Size()
}

// RegisterMetrics registers journal metrics with Prometheus.
//
// Returns the journal for method chaining.
func (j *Journal) RegisterMetrics(registry *prometheus.Registry) *Journal {
	j.appended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ecigate",
		Subsystem: "journal",
		Name:      "entries_appended_total",
		Help:      "Total flow entries appended to the journal",
	})

	size := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "ecigate",
		Subsystem: "journal",
		Name:      "size_bytes",
		Help:      "Journal storage size in bytes (LSM + value log)",
	}, func() float64 {
		lsm, vlog := j.db.Size()
		return float64(lsm + vlog)
	})

	registry.MustRegister(j.appended, size)
	return j
}

// Close stops background GC and closes the database. It is safe to call
// more than once.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		close(j.stopCh)
		<-j.doneCh

		if cerr := j.db.Close(); cerr != nil {
			err = fmt.Errorf("journal: close db: %w", cerr)
			return
		}
		j.logger.Info("journal closed")
	})
	return err
}

// gcLoop runs periodic value log garbage collection.
func (j *Journal) gcLoop() {
	defer close(j.doneCh)

	if j.cfg.InMemory {
		<-j.stopCh
		return
	}

	ticker := time.NewTicker(j.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runGC()
		case <-j.stopCh:
			return
		}
	}
}

func (j *Journal) runGC() {
	runs := 0
	for {
		err := j.db.RunValueLogGC(DefaultGCThreshold)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				j.logger.Error("journal gc failed", "error", err)
			}
			break
		}
		runs++
	}
	if runs > 0 {
		j.logger.Debug("journal gc completed", "rewrites", runs)
	}
}

func entryKey(id ulid.ULID) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(id))
	key = append(key, keyPrefix...)
	return append(key, id[:]...)
}

// sinceKey is the smallest key that can hold an entry recorded at t.
func sinceKey(t time.Time) []byte {
	var id ulid.ULID
	if err := id.SetTime(ulid.Timestamp(t)); err != nil {
		return keyPrefix
	}
	return entryKey(id)
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
