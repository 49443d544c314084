package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// tableDef maps one record type onto its SQLite table.
type tableDef[K cmp.Ordered, R types.Record[K]] struct {
	schema    types.Schema[K, R]
	keyColumn string
	columns   []string     // non-key columns, in insert order
	values    func(R) []any // values for columns, same order
}

func (d tableDef[K, R]) allColumns() []string {
	return append([]string{d.keyColumn}, d.columns...)
}

func (d tableDef[K, R]) jsonlFile() string {
	return d.schema.Table + ".jsonl"
}

// seqFile holds the table's id high-water mark, so ids freed by deletes are
// not handed out again after the database is rebuilt.
func (d tableDef[K, R]) seqFile() string {
	return d.schema.Table + ".seq"
}

// table implements types.Store for a single record type. Reads go straight
// to SQLite; writes are mirrored to the table's JSONL file according to the
// backend's sync strategy.
type table[K cmp.Ordered, R types.Record[K]] struct {
	def     tableDef[K, R]
	backend *Backend
}

func newTable[K cmp.Ordered, R types.Record[K]](b *Backend, def tableDef[K, R]) *table[K, R] {
	return &table[K, R]{def: def, backend: b}
}

// FindAll returns every record ordered by key.
func (t *table[K, R]) FindAll(ctx context.Context) ([]R, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrDetached
	}
	return t.selectAll(ctx, t.backend.db)
}

func (t *table[K, R]) selectAll(ctx context.Context, q sqlx.QueryerContext) ([]R, error) {
	query, args, err := sq.Select(t.def.allColumns()...).
		From(t.def.schema.Table).
		OrderBy(t.def.keyColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select for %s: %w", t.def.schema.Table, err)
	}

	var out []R
	if err := sqlx.SelectContext(ctx, q, &out, query, args...); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", t.def.schema.Table, err)
	}
	// Empty slice, not nil.
	if out == nil {
		out = []R{}
	}
	return out, nil
}

// FindByKey returns the record with the given key or types.ErrNotFound.
func (t *table[K, R]) FindByKey(ctx context.Context, key K) (R, error) {
	var zero R

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return zero, types.ErrDetached
	}

	query, args, err := sq.Select(t.def.allColumns()...).
		From(t.def.schema.Table).
		Where(sq.Eq{t.def.keyColumn: key}).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("building select for %s: %w", t.def.schema.Table, err)
	}

	rec := t.def.schema.New()
	if err := t.backend.db.GetContext(ctx, rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, types.ErrNotFound
		}
		return zero, fmt.Errorf("getting %s %v: %w", t.def.schema.Table, key, err)
	}
	return rec, nil
}

// Save inserts a record without a key (assigning the next AUTOINCREMENT id)
// or upserts a record that carries one.
func (t *table[K, R]) Save(ctx context.Context, rec R) (R, error) {
	var zero R

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return zero, types.ErrDetached
	}

	var zeroKey K
	if rec.RecordKey() == zeroKey {
		if t.def.schema.Sequence == nil {
			return zero, types.ErrInvalidID
		}
		if err := t.insert(ctx, rec); err != nil {
			return zero, err
		}
	} else if err := t.upsert(ctx, t.backend.db, rec); err != nil {
		return zero, err
	}

	if err := t.afterWrite("save"); err != nil {
		return zero, err
	}
	return rec, nil
}

func (t *table[K, R]) insert(ctx context.Context, rec R) error {
	query, args, err := sq.Insert(t.def.schema.Table).
		Columns(t.def.columns...).
		Values(t.def.values(rec)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert for %s: %w", t.def.schema.Table, err)
	}

	res, err := t.backend.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", t.def.schema.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading %s id: %w", t.def.schema.Table, err)
	}
	rec.SetRecordKey(t.def.schema.Sequence(id))
	return nil
}

// upsert writes rec under its own key, replacing every non-key column of an
// existing row.
func (t *table[K, R]) upsert(ctx context.Context, ex sqlx.ExecerContext, rec R) error {
	assignments := make([]string, len(t.def.columns))
	for i, col := range t.def.columns {
		assignments[i] = col + " = excluded." + col
	}

	query, args, err := sq.Insert(t.def.schema.Table).
		Columns(t.def.allColumns()...).
		Values(append([]any{rec.RecordKey()}, t.def.values(rec)...)...).
		Suffix("ON CONFLICT(" + t.def.keyColumn + ") DO UPDATE SET " + strings.Join(assignments, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("building upsert for %s: %w", t.def.schema.Table, err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting %s %v: %w", t.def.schema.Table, rec.RecordKey(), err)
	}
	return nil
}

// Delete removes the record with the given key or returns types.ErrNotFound.
func (t *table[K, R]) Delete(ctx context.Context, key K) error {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return types.ErrDetached
	}

	query, args, err := sq.Delete(t.def.schema.Table).
		Where(sq.Eq{t.def.keyColumn: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete for %s: %w", t.def.schema.Table, err)
	}

	res, err := t.backend.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting %s %v: %w", t.def.schema.Table, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %v: %w", t.def.schema.Table, key, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	return t.afterWrite("delete")
}

// afterWrite persists the table's JSONL file now or queues the write,
// depending on the sync strategy. The caller must hold backend.mu.
func (t *table[K, R]) afterWrite(operation string) error {
	if t.backend.shouldPersistImmediately() {
		if err := t.persistJSONL(); err != nil {
			return fmt.Errorf("persisting %s: %w", t.def.jsonlFile(), err)
		}
		return nil
	}
	t.backend.queueWrite(t.def.schema.Table, operation, t.persistJSONL)
	return nil
}

// persistJSONL snapshots the whole table into its JSONL file.
func (t *table[K, R]) persistJSONL() error {
	t.backend.persistMu.Lock()
	defer t.backend.persistMu.Unlock()

	recs, err := t.selectAll(context.Background(), t.backend.db)
	if err != nil {
		return err
	}

	lines := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling %s %v: %w", t.def.schema.Table, rec.RecordKey(), err)
		}
		lines = append(lines, data)
	}
	if err := writeJSONL(filepath.Join(t.backend.dataDir, t.def.jsonlFile()), lines); err != nil {
		return err
	}

	if t.def.schema.Sequence == nil {
		return nil
	}
	seq, err := t.highWater(context.Background(), t.backend.db)
	if err != nil {
		return err
	}
	return writeSeq(filepath.Join(t.backend.dataDir, t.def.seqFile()), seq)
}

// highWater returns the largest id AUTOINCREMENT has assigned in the table.
func (t *table[K, R]) highWater(ctx context.Context, q sqlx.QueryerContext) (int64, error) {
	query, args, err := sq.Select("seq").
		From("sqlite_sequence").
		Where(sq.Eq{"name": t.def.schema.Table}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building sequence query for %s: %w", t.def.schema.Table, err)
	}

	var seq int64
	if err := sqlx.GetContext(ctx, q, &seq, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading sequence of %s: %w", t.def.schema.Table, err)
	}
	return seq, nil
}

// restoreHighWater raises the table's AUTOINCREMENT sequence to the mark
// recorded in its seq file. The sequence never moves down.
func (t *table[K, R]) restoreHighWater(ctx context.Context, ex sqlx.ExecerContext) error {
	if t.def.schema.Sequence == nil {
		return nil
	}
	mark, err := readSeq(filepath.Join(t.backend.dataDir, t.def.seqFile()))
	if err != nil || mark == 0 {
		return err
	}

	name := t.def.schema.Table
	if _, err := ex.ExecContext(ctx,
		"UPDATE sqlite_sequence SET seq = ? WHERE name = ? AND seq < ?", mark, name, mark); err != nil {
		return fmt.Errorf("restoring sequence of %s: %w", name, err)
	}
	if _, err := ex.ExecContext(ctx,
		"INSERT INTO sqlite_sequence (name, seq) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM sqlite_sequence WHERE name = ?)",
		name, mark, name); err != nil {
		return fmt.Errorf("restoring sequence of %s: %w", name, err)
	}
	return nil
}

// load inserts the records of the table's JSONL file using ex. Malformed
// lines and records without a key are skipped; unknown fields are ignored.
func (t *table[K, R]) load(ctx context.Context, ex sqlx.ExecerContext) (int, error) {
	lines, err := readJSONL(filepath.Join(t.backend.dataDir, t.def.jsonlFile()))
	if err != nil {
		return 0, err
	}

	var zeroKey K
	loaded := 0
	for _, line := range lines {
		rec := t.def.schema.New()
		if err := json.Unmarshal(line, rec); err != nil {
			continue
		}
		if rec.RecordKey() == zeroKey {
			continue
		}
		if err := t.upsert(ctx, ex, rec); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
