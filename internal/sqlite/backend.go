// Package sqlite implements the SQLite storage backend for campus records.
// SQLite is the query engine; one JSONL file per record table is the source
// of truth and is reloaded into a fresh database on every Attach.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// dbFileName is the SQLite database inside the data directory.
const dbFileName = "campus.db"

// Backend implements types.Repository using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sqlx.DB
	log      *zap.Logger

	articles               *table[int64, *types.Article]
	recommendationRequests *table[int64, *types.RecommendationRequest]
	menuItems              *table[int64, *types.MenuItem]
	organizations          *table[string, *types.Organization]

	// persistMu serializes JSONL snapshots so the last writer always
	// writes the latest table state.
	persistMu sync.Mutex

	// Sync strategy state.
	syncStrategy  string                  // effective sync strategy: immediate, on_close, batch
	batchSize     int                     // number of writes before batch flush
	batchInterval time.Duration           // time between batch flushes
	pendingWrites map[string]pendingWrite // deferred JSONL writes keyed by table
	pendingCount  int                     // writes since the last flush
	batchTimer    *time.Timer             // timer for interval-based batch flush
	batchMu       sync.Mutex              // protects pendingWrites, pendingCount, batchTimer
}

var _ types.Repository = (*Backend)(nil)

// pendingWrite represents a deferred JSONL write. Writes to the same table
// collapse into one, since each persist snapshots the whole table.
type pendingWrite struct {
	tableName string       // record table name
	operation string       // last operation: "save" or "delete"
	persist   func() error // writes the table's JSONL file
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Backend{log: log}
	b.articles = newTable(b, articlesDef)
	b.recommendationRequests = newTable(b, recommendationRequestsDef)
	b.menuItems = newTable(b, menuItemsDef)
	b.organizations = newTable(b, organizationsDef)
	return b
}

func (b *Backend) Articles() types.Store[int64, *types.Article] { return b.articles }

func (b *Backend) RecommendationRequests() types.Store[int64, *types.RecommendationRequest] {
	return b.recommendationRequests
}

func (b *Backend) MenuItems() types.Store[int64, *types.MenuItem] { return b.menuItems }

func (b *Backend) Organizations() types.Store[string, *types.Organization] {
	return b.organizations
}

func (b *Backend) persisters() []persister {
	return []persister{b.articles, b.recommendationRequests, b.menuItems, b.organizations}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, recreates the SQLite database,
// creates the record tables, and loads the JSONL files.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// One connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir

	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = make(map[string]pendingWrite)
	b.pendingCount = 0

	if err := b.initJSONLFiles(); err != nil {
		b.closeDB()
		return err
	}

	if err := b.loadAllJSONL(ctx); err != nil {
		b.closeDB()
		return fmt.Errorf("load JSONL: %w", err)
	}

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.attached = true
	b.log.Info("Attached sqlite backend",
		zap.String("data_dir", dataDir),
		zap.String("sync_strategy", b.syncStrategy))
	return nil
}

// Detach flushes pending JSONL writes and closes the database. After Detach
// all store operations return ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	var err error
	if ferr := b.flushPendingWritesLocked(); ferr != nil {
		err = multierr.Append(err, fmt.Errorf("flush pending writes: %w", ferr))
	}
	err = multierr.Append(err, b.closeDB())

	b.attached = false
	return err
}

func (b *Backend) closeDB() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// shouldPersistImmediately returns true if JSONL writes happen on every
// write: true for "immediate", false for "on_close" and "batch".
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// queueWrite records a deferred JSONL write. For the batch strategy the
// queue is flushed once batchSize writes have accumulated.
// The caller must hold b.mu (read or write lock).
func (b *Backend) queueWrite(tableName, operation string, persist func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites[tableName] = pendingWrite{
		tableName: tableName,
		operation: operation,
		persist:   persist,
	}
	b.pendingCount++

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && b.pendingCount >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.log.Warn("Batch flush failed", zap.Error(err))
		}
	}
}

// flushPendingWritesLocked flushes all pending writes to JSONL files.
// The caller must hold b.mu write lock.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked executes all pending writes. Failed writes
// stay queued for the next flush.
// The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}

	var err error
	for name, pw := range b.pendingWrites {
		if perr := pw.persist(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("flush %s %s: %w", pw.tableName, pw.operation, perr))
			continue
		}
		delete(b.pendingWrites, name)
	}
	b.pendingCount = 0
	return err
}

// startBatchTimer starts the timer for interval-based flushes.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		if err := b.flushPendingWritesLocked(); err != nil {
			b.log.Warn("Interval flush failed", zap.Error(err))
		}

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
