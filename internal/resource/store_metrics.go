package resource

import (
	"cmp"
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/campus/internal/metric"
	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// StoreMetrics records RED metrics for every call to a record store.
type StoreMetrics[K cmp.Ordered, R types.Record[K]] struct {
	// RED metrics
	rec *metric.REDClient

	store types.Store[K, R]
}

// NewStoreMetrics returns a metrics middleware for s, reporting under
// "service_<table>_*".
func NewStoreMetrics[K cmp.Ordered, R types.Record[K]](reg prometheus.Registerer, table string, s types.Store[K, R]) *StoreMetrics[K, R] {
	return &StoreMetrics[K, R]{
		rec:   metric.New(reg, table),
		store: s,
	}
}

// record reports err under a platform code; store sentinels carry none.
func (m *StoreMetrics[K, R]) record(method string) func(error) error {
	done := m.rec.Record(method)
	return func(err error) error {
		if errors.Is(err, types.ErrNotFound) {
			_ = done(&perrors.Error{Code: perrors.ENotFound, Err: err})
			return err
		}
		return done(err)
	}
}

func (m *StoreMetrics[K, R]) FindAll(ctx context.Context) ([]R, error) {
	rec := m.record("find_all")
	recs, err := m.store.FindAll(ctx)
	return recs, rec(err)
}

func (m *StoreMetrics[K, R]) FindByKey(ctx context.Context, key K) (R, error) {
	rec := m.record("find_by_key")
	r, err := m.store.FindByKey(ctx, key)
	return r, rec(err)
}

func (m *StoreMetrics[K, R]) Save(ctx context.Context, in R) (R, error) {
	rec := m.record("save")
	r, err := m.store.Save(ctx, in)
	return r, rec(err)
}

func (m *StoreMetrics[K, R]) Delete(ctx context.Context, key K) error {
	rec := m.record("delete")
	err := m.store.Delete(ctx, key)
	return rec(err)
}
