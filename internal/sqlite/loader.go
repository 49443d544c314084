package sqlite

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// persister is the part of a table the backend drives on startup.
type persister interface {
	jsonlName() string
	loadInto(ctx context.Context, b *Backend) (int, error)
}

func (t *table[K, R]) jsonlName() string { return t.def.jsonlFile() }

func (t *table[K, R]) loadInto(ctx context.Context, b *Backend) (int, error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := t.load(ctx, tx)
	if err != nil {
		return 0, err
	}
	if err := t.restoreHighWater(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return n, nil
}

// initJSONLFiles creates any missing JSONL file in the data directory.
func (b *Backend) initJSONLFiles() error {
	for _, p := range b.persisters() {
		if err := ensureJSONLFile(filepath.Join(b.dataDir, p.jsonlName())); err != nil {
			return err
		}
	}
	return nil
}

// loadAllJSONL reads each JSONL file into its SQLite table. Each table loads
// in its own transaction: a table either loads completely or stays empty.
func (b *Backend) loadAllJSONL(ctx context.Context) error {
	for _, p := range b.persisters() {
		n, err := p.loadInto(ctx, b)
		if err != nil {
			return fmt.Errorf("loading %s: %w", p.jsonlName(), err)
		}
		b.log.Debug("Loaded records", zap.String("file", p.jsonlName()), zap.Int("count", n))
	}
	return nil
}
