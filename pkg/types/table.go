package types

import (
	"cmp"
	"context"
	"errors"
)

// Record is implemented by pointers to the record structs. The key is
// assigned once, by the store or by the caller for natural keys, and never
// changes afterwards.
type Record[K cmp.Ordered] interface {
	RecordKey() K
	SetRecordKey(K)
}

// Store provides uniform key-based persistence for a single record type.
type Store[K cmp.Ordered, R Record[K]] interface {
	// FindAll returns every record. An empty store returns an empty slice.
	FindAll(ctx context.Context) ([]R, error)

	// FindByKey returns the record with the given key.
	// Returns ErrNotFound if no record has that key.
	FindByKey(ctx context.Context, key K) (R, error)

	// Save inserts or replaces a record. A record without a key gets one
	// from the store's sequence; natural-key records must carry their key.
	// The returned record carries the persisted key.
	Save(ctx context.Context, rec R) (R, error)

	// Delete removes the record with the given key.
	// Returns ErrNotFound if no record has that key.
	Delete(ctx context.Context, key K) error
}

// Schema describes how a backend materializes one record type.
type Schema[K cmp.Ordered, R Record[K]] struct {
	// Table is the storage name (SQLite table, JSONL file stem, Redis hash).
	Table string

	// New returns an empty record ready to be decoded into.
	New func() R

	// Sequence converts the n-th value of the store's key sequence into a
	// key. Nil means the key is natural and must be supplied by the caller.
	Sequence func(n int64) K
}

// Int64Sequence is the Sequence used by records keyed by an auto-assigned id.
func Int64Sequence(n int64) int64 { return n }

// Store operation errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidID   = errors.New("invalid record key")
	ErrInvalidData = errors.New("invalid record data")
)
