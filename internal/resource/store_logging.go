package resource

import (
	"cmp"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// StoreLogger logs every call to a record store at debug level.
type StoreLogger[K cmp.Ordered, R types.Record[K]] struct {
	logger *zap.Logger
	store  types.Store[K, R]
}

func NewStoreLogger[K cmp.Ordered, R types.Record[K]](log *zap.Logger, s types.Store[K, R]) *StoreLogger[K, R] {
	return &StoreLogger[K, R]{
		logger: log,
		store:  s,
	}
}

func (l *StoreLogger[K, R]) FindAll(ctx context.Context) (recs []R, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find records", zap.Error(err), dur)
			return
		}
		l.logger.Debug("records find", zap.Int("count", len(recs)), dur)
	}(time.Now())
	return l.store.FindAll(ctx)
}

func (l *StoreLogger[K, R]) FindByKey(ctx context.Context, key K) (rec R, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find record", zap.Any("key", key), zap.Error(err), dur)
			return
		}
		l.logger.Debug("record find by key", zap.Any("key", key), dur)
	}(time.Now())
	return l.store.FindByKey(ctx, key)
}

func (l *StoreLogger[K, R]) Save(ctx context.Context, in R) (rec R, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to save record", zap.Error(err), dur)
			return
		}
		l.logger.Debug("record save", zap.Any("key", rec.RecordKey()), dur)
	}(time.Now())
	return l.store.Save(ctx, in)
}

func (l *StoreLogger[K, R]) Delete(ctx context.Context, key K) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to delete record", zap.Any("key", key), zap.Error(err), dur)
			return
		}
		l.logger.Debug("record delete", zap.Any("key", key), dur)
	}(time.Now())
	return l.store.Delete(ctx, key)
}
