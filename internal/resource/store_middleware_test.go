package resource

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/campus/pkg/types"
)

func TestStoreLogger(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	store := NewStoreLogger[int64, *types.MenuItem](zap.New(core), newFakeStore())

	_, err := store.Save(ctx, &types.MenuItem{Name: "x"})
	require.NoError(t, err)
	_, err = store.FindByKey(ctx, 2)
	assert.ErrorIs(t, err, types.ErrNotFound)
	recs, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	require.NoError(t, store.Delete(ctx, 1))

	assert.Equal(t, 1, logs.FilterMessage("record save").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to find record").Len())
	assert.Equal(t, 1, logs.FilterMessage("records find").Len())
	assert.Equal(t, 1, logs.FilterMessage("record delete").Len())
	for _, e := range logs.All() {
		assert.Contains(t, e.ContextMap(), "took")
	}
}

func TestStoreMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	store := NewStoreMetrics[int64, *types.MenuItem](reg, "menu_items", newFakeStore())

	_, err := store.Save(ctx, &types.MenuItem{Name: "x"})
	require.NoError(t, err)
	_, err = store.FindByKey(ctx, 1)
	require.NoError(t, err)
	_, err = store.FindByKey(ctx, 2)
	assert.ErrorIs(t, err, types.ErrNotFound, "errors pass through unchanged")

	n, err := testutil.GatherAndCount(reg, "service_menu_items_call_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per method")

	expected := `
# HELP service_menu_items_call_total Number of calls
# TYPE service_menu_items_call_total counter
service_menu_items_call_total{method="find_by_key"} 2
service_menu_items_call_total{method="save"} 1
# HELP service_menu_items_error_total Number of errors encountered
# TYPE service_menu_items_error_total counter
service_menu_items_error_total{code="not found",method="find_by_key"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"service_menu_items_call_total", "service_menu_items_error_total"))
}

func TestOperations(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testMenuItems, newFakeStore())
	_, err := svc.Create(ctx, &types.MenuItem{Name: "Pho"})
	require.NoError(t, err)

	ops := svc.Operations()
	assert.Equal(t, "UCSBDiningCommonsMenuItem", ops.TypeName())
	assert.Equal(t, "ucsbdiningcommonsmenuitem", ops.Path())

	got, err := ops.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Pho", got.(*types.MenuItem).Name)

	list, err := ops.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = ops.Get(ctx, "one")
	assert.Error(t, err)

	msg, err := ops.Delete(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "UCSBDiningCommonsMenuItem with id 1 deleted", msg.Message)
}
