package inmem

import (
	"cmp"
	"context"
	"fmt"

	"github.com/google/btree"
	"github.com/jinzhu/copier"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// degree of the btrees backing each store.
const degree = 8

// store is a btree of records ordered by key. All access goes through the
// owning backend's lock.
type store[K cmp.Ordered, R types.Record[K]] struct {
	backend *Backend
	schema  types.Schema[K, R]
	tree    *btree.BTreeG[R]
	seq     int64
}

func newStore[K cmp.Ordered, R types.Record[K]](b *Backend, schema types.Schema[K, R]) *store[K, R] {
	s := &store[K, R]{backend: b, schema: schema}
	s.reset()
	return s
}

func (s *store[K, R]) reset() {
	s.tree = btree.NewG(degree, func(a, b R) bool {
		return a.RecordKey() < b.RecordKey()
	})
	s.seq = 0
}

// keyRecord returns a record carrying only key, for btree lookups.
func (s *store[K, R]) keyRecord(key K) R {
	rec := s.schema.New()
	rec.SetRecordKey(key)
	return rec
}

func (s *store[K, R]) clone(rec R) (R, error) {
	out := s.schema.New()
	if err := copier.Copy(out, rec); err != nil {
		var zero R
		return zero, fmt.Errorf("copying %s %v: %w", s.schema.Table, rec.RecordKey(), err)
	}
	return out, nil
}

// FindAll returns a copy of every record in ascending key order.
func (s *store[K, R]) FindAll(ctx context.Context) ([]R, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if !s.backend.attached {
		return nil, types.ErrDetached
	}

	out := make([]R, 0, s.tree.Len())
	var err error
	s.tree.Ascend(func(rec R) bool {
		var c R
		if c, err = s.clone(rec); err != nil {
			return false
		}
		out = append(out, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[K, R]) FindByKey(ctx context.Context, key K) (R, error) {
	var zero R

	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if !s.backend.attached {
		return zero, types.ErrDetached
	}

	rec, ok := s.tree.Get(s.keyRecord(key))
	if !ok {
		return zero, types.ErrNotFound
	}
	return s.clone(rec)
}

// Save stores a copy of rec, assigning the next sequence value when rec has
// no key. Caller-chosen numeric keys advance the sequence past them.
func (s *store[K, R]) Save(ctx context.Context, rec R) (R, error) {
	var zero R

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if !s.backend.attached {
		return zero, types.ErrDetached
	}

	stored, err := s.clone(rec)
	if err != nil {
		return zero, err
	}

	var zeroKey K
	if stored.RecordKey() == zeroKey {
		if s.schema.Sequence == nil {
			return zero, types.ErrInvalidID
		}
		s.seq++
		stored.SetRecordKey(s.schema.Sequence(s.seq))
	} else if n, ok := any(stored.RecordKey()).(int64); ok && n > s.seq {
		s.seq = n
	}

	s.tree.ReplaceOrInsert(stored)
	rec.SetRecordKey(stored.RecordKey())
	return s.clone(stored)
}

func (s *store[K, R]) Delete(ctx context.Context, key K) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if !s.backend.attached {
		return types.ErrDetached
	}

	if _, ok := s.tree.Delete(s.keyRecord(key)); !ok {
		return types.ErrNotFound
	}
	return nil
}
