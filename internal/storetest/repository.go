// Package storetest holds the behavior every types.Repository backend must
// share. Backend packages run it from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/campus/pkg/types"
)

// Init returns an attached, empty repository and a function that detaches it.
type Init func(t *testing.T) (types.Repository, func())

type repositoryF func(init Init, t *testing.T)

// Repository tests all the store operations of a backend.
func Repository(init Init, t *testing.T) {
	tests := []struct {
		name string
		fn   repositoryF
	}{
		{name: "EmptyFindAll", fn: EmptyFindAll},
		{name: "CreateAssignsKeys", fn: CreateAssignsKeys},
		{name: "FindAllOrdered", fn: FindAllOrdered},
		{name: "ReplaceKeepsKey", fn: ReplaceKeepsKey},
		{name: "DeleteRemoves", fn: DeleteRemoves},
		{name: "NaturalKeys", fn: NaturalKeys},
		{name: "CallerOwnsRecords", fn: CallerOwnsRecords},
		{name: "Detached", fn: Detached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(init, t)
		})
	}
}

func EmptyFindAll(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	articles, err := repo.Articles().FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)

	orgs, err := repo.Organizations().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func CreateAssignsKeys(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	first, err := repo.MenuItems().Save(ctx, &types.MenuItem{DiningCommonsCode: "ortega", Name: "Baked Pesto Pasta", Station: "Entree Specials"})
	require.NoError(t, err)
	second, err := repo.MenuItems().Save(ctx, &types.MenuItem{DiningCommonsCode: "portola", Name: "Tofu Banh Mi", Station: "Grill"})
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	got, err := repo.MenuItems().FindByKey(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tofu Banh Mi", got.Name)
	assert.Equal(t, "portola", got.DiningCommonsCode)
	assert.Equal(t, "Grill", got.Station)

	_, err = repo.MenuItems().FindByKey(ctx, second.ID+100)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func FindAllOrdered(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	added, err := types.ParseLocalDateTime("2022-01-03T00:10:00")
	require.NoError(t, err)

	for _, title := range []string{"one", "two", "three"} {
		_, err := repo.Articles().Save(ctx, &types.Article{Title: title, DateAdded: added})
		require.NoError(t, err)
	}

	all, err := repo.Articles().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	assert.Equal(t, "one", all[0].Title)
	assert.Equal(t, "2022-01-03T00:10:00", all[0].DateAdded.String())
}

func ReplaceKeepsKey(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	store := repo.RecommendationRequests()
	saved, err := store.Save(ctx, &types.RecommendationRequest{
		RequesterEmail: "cgaucho@ucsb.edu",
		ProfessorEmail: "phtcon@ucsb.edu",
		Explanation:    "BS/MS program",
	})
	require.NoError(t, err)

	needed, err := types.ParseLocalDateTime("2022-05-01T00:00:00")
	require.NoError(t, err)

	_, err = store.Save(ctx, &types.RecommendationRequest{
		ID:             saved.ID,
		RequesterEmail: "ldelplaya@ucsb.edu",
		ProfessorEmail: "richert@ucsb.edu",
		Explanation:    "PhD CS Stanford",
		DateNeeded:     needed,
		Done:           true,
	})
	require.NoError(t, err)

	got, err := store.FindByKey(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "ldelplaya@ucsb.edu", got.RequesterEmail)
	assert.Equal(t, "PhD CS Stanford", got.Explanation)
	assert.Equal(t, needed, got.DateNeeded)
	assert.True(t, got.Done)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func DeleteRemoves(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	saved, err := repo.Articles().Save(ctx, &types.Article{Title: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, repo.Articles().Delete(ctx, saved.ID))

	_, err = repo.Articles().FindByKey(ctx, saved.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, repo.Articles().Delete(ctx, saved.ID), types.ErrNotFound)

	// Keys are not reused after a delete.
	next, err := repo.Articles().Save(ctx, &types.Article{Title: "next"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, saved.ID)
}

func NaturalKeys(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	store := repo.Organizations()

	_, err := store.Save(ctx, &types.Organization{OrgTranslation: "missing code"})
	assert.ErrorIs(t, err, types.ErrInvalidID)

	for _, org := range []*types.Organization{
		{OrgCode: "ZPR", OrgTranslationShort: "ZETA PHI RHO", OrgTranslation: "ZETA PHI RHO"},
		{OrgCode: "KRC", OrgTranslationShort: "KOREAN RADIO CL", OrgTranslation: "KOREAN RADIO CLUB", Inactive: true},
	} {
		_, err := store.Save(ctx, org)
		require.NoError(t, err)
	}

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "KRC", all[0].OrgCode)
	assert.True(t, all[0].Inactive)
	assert.Equal(t, "ZPR", all[1].OrgCode)

	_, err = store.FindByKey(ctx, "OSLI")
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "ZPR"))
	_, err = store.FindByKey(ctx, "ZPR")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func CallerOwnsRecords(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	defer done()

	in := &types.Article{Title: "original"}
	saved, err := repo.Articles().Save(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, in.ID, "Save reports the assigned key on its argument")

	in.Title = "mutated after save"
	got, err := repo.Articles().FindByKey(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)

	got.Title = "mutated after find"
	again, err := repo.Articles().FindByKey(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Title)
}

func Detached(init Init, t *testing.T) {
	ctx := context.Background()
	repo, done := init(t)
	done()

	_, err := repo.Articles().FindAll(ctx)
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = repo.Organizations().FindByKey(ctx, "ZPR")
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = repo.MenuItems().Save(ctx, &types.MenuItem{Name: "late"})
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, repo.RecommendationRequests().Delete(ctx, 1), types.ErrDetached)

	assert.NoError(t, repo.Detach(), "Detach is idempotent")
}
