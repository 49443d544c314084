package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/campus/internal/storetest"
	"github.com/mesh-intelligence/campus/pkg/types"
)

func initRepository(t *testing.T) (types.Repository, func()) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	return b, func() {
		require.NoError(t, b.Detach())
	}
}

func TestRepository(t *testing.T) {
	storetest.Repository(initRepository, t)
}

func TestBackend_AttachTwice(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	defer b.Detach()

	err := b.Attach(types.Config{Backend: types.BackendMemory})
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	err := NewBackend().Attach(types.Config{})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}

func TestBackend_ReattachStartsEmpty(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	cfg := types.Config{Backend: types.BackendMemory}

	require.NoError(t, b.Attach(cfg))
	_, err := b.Articles().Save(ctx, &types.Article{Title: "ephemeral"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(cfg))
	defer b.Detach()

	all, err := b.Articles().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	saved, err := b.Articles().Save(ctx, &types.Article{Title: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
}

func TestStore_ExplicitKeyAdvancesSequence(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	defer b.Detach()

	_, err := b.MenuItems().Save(ctx, &types.MenuItem{ID: 41, Name: "imported"})
	require.NoError(t, err)

	next, err := b.MenuItems().Save(ctx, &types.MenuItem{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), next.ID)
}
