package redisstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/campus/pkg/types"
)

type store[K cmp.Ordered, R types.Record[K]] struct {
	backend *Backend
	schema  types.Schema[K, R]
}

func newStore[K cmp.Ordered, R types.Record[K]](b *Backend, schema types.Schema[K, R]) *store[K, R] {
	return &store[K, R]{backend: b, schema: schema}
}

// hashKey is the hash holding every record of the table.
func (s *store[K, R]) hashKey() string {
	return s.backend.prefix + ":" + s.schema.Table
}

// seqKey is the counter that numeric keys are drawn from.
func (s *store[K, R]) seqKey() string {
	return s.hashKey() + ":seq"
}

func field[K cmp.Ordered](key K) string {
	return fmt.Sprint(key)
}

// client returns the connection, or ErrDetached. The caller must hold
// backend.mu.
func (s *store[K, R]) client() (*redis.Client, error) {
	if !s.backend.attached {
		return nil, types.ErrDetached
	}
	return s.backend.rdb, nil
}

func (s *store[K, R]) decode(data string) (R, error) {
	rec := s.schema.New()
	if err := json.Unmarshal([]byte(data), rec); err != nil {
		var zero R
		return zero, fmt.Errorf("decoding %s record: %w: %w", s.schema.Table, types.ErrInvalidData, err)
	}
	return rec, nil
}

// FindAll returns every record sorted by key.
func (s *store[K, R]) FindAll(ctx context.Context) ([]R, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	rdb, err := s.client()
	if err != nil {
		return nil, err
	}

	hash, err := rdb.HGetAll(ctx, s.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.hashKey(), err)
	}

	out := make([]R, 0, len(hash))
	for _, data := range hash {
		rec, err := s.decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b R) int {
		return cmp.Compare(a.RecordKey(), b.RecordKey())
	})
	return out, nil
}

func (s *store[K, R]) FindByKey(ctx context.Context, key K) (R, error) {
	var zero R

	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	rdb, err := s.client()
	if err != nil {
		return zero, err
	}

	data, err := rdb.HGet(ctx, s.hashKey(), field(key)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, types.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("reading %s %v: %w", s.schema.Table, key, err)
	}
	return s.decode(data)
}

// Save writes rec under its key. A record without a key takes the next
// counter value whose field is still free, so caller-chosen keys are never
// overwritten by generated ones.
func (s *store[K, R]) Save(ctx context.Context, rec R) (R, error) {
	var zero R

	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	rdb, err := s.client()
	if err != nil {
		return zero, err
	}

	var zeroKey K
	if rec.RecordKey() != zeroKey {
		data, err := json.Marshal(rec)
		if err != nil {
			return zero, fmt.Errorf("encoding %s %v: %w", s.schema.Table, rec.RecordKey(), err)
		}
		if err := rdb.HSet(ctx, s.hashKey(), field(rec.RecordKey()), data).Err(); err != nil {
			return zero, fmt.Errorf("writing %s %v: %w", s.schema.Table, rec.RecordKey(), err)
		}
		return rec, nil
	}

	if s.schema.Sequence == nil {
		return zero, types.ErrInvalidID
	}
	for {
		n, err := rdb.Incr(ctx, s.seqKey()).Result()
		if err != nil {
			return zero, fmt.Errorf("advancing %s: %w", s.seqKey(), err)
		}
		rec.SetRecordKey(s.schema.Sequence(n))

		data, err := json.Marshal(rec)
		if err != nil {
			rec.SetRecordKey(zeroKey)
			return zero, fmt.Errorf("encoding %s: %w", s.schema.Table, err)
		}
		ok, err := rdb.HSetNX(ctx, s.hashKey(), field(rec.RecordKey()), data).Result()
		if err != nil {
			rec.SetRecordKey(zeroKey)
			return zero, fmt.Errorf("writing %s %v: %w", s.schema.Table, n, err)
		}
		if ok {
			return rec, nil
		}
	}
}

func (s *store[K, R]) Delete(ctx context.Context, key K) error {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	rdb, err := s.client()
	if err != nil {
		return err
	}

	n, err := rdb.HDel(ctx, s.hashKey(), field(key)).Result()
	if err != nil {
		return fmt.Errorf("deleting %s %v: %w", s.schema.Table, key, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
