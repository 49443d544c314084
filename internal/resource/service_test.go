package resource

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// fakeStore is a map-backed store whose calls can be made to fail.
type fakeStore struct {
	recs    map[int64]*types.MenuItem
	seq     int64
	err     error
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[int64]*types.MenuItem{}}
}

func (s *fakeStore) FindAll(ctx context.Context) ([]*types.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*types.MenuItem{}
	for _, r := range s.recs {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (s *fakeStore) FindByKey(ctx context.Context, key int64) (*types.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.recs[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (s *fakeStore) Save(ctx context.Context, rec *types.MenuItem) (*types.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rec.ID == 0 {
		s.seq++
		rec.ID = s.seq
	}
	c := *rec
	s.recs[rec.ID] = &c
	return rec, nil
}

func (s *fakeStore) Delete(ctx context.Context, key int64) error {
	s.deletes++
	if s.err != nil {
		return s.err
	}
	if _, ok := s.recs[key]; !ok {
		return types.ErrNotFound
	}
	delete(s.recs, key)
	return nil
}

var testMenuItems = Definition[int64, *types.MenuItem]{
	TypeName: "UCSBDiningCommonsMenuItem",
	Path:     "ucsbdiningcommonsmenuitem",
	KeyParam: "id",
	Schema:   types.MenuItemSchema,
	ParseKey: ParseInt64Key,
	FromForm: func(f *Form) *types.MenuItem {
		return &types.MenuItem{
			DiningCommonsCode: f.String("diningCommonsCode"),
			Name:              f.String("name"),
			Station:           f.String("station"),
		}
	},
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testMenuItems, newFakeStore())

	created, err := svc.Create(ctx, &types.MenuItem{ID: 500, Name: "Chicken Caesar Salad", DiningCommonsCode: "ortega", Station: "Entrees"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Chicken Caesar Salad", got.Name)

	updated, err := svc.Update(ctx, 1, &types.MenuItem{ID: 9, Name: "Tofu Caesar Salad"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "Tofu Caesar Salad", updated.Name)
	assert.Empty(t, updated.Station, "every field is replaced")

	msg, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "UCSBDiningCommonsMenuItem with id 1 deleted", msg.Message)

	_, err = svc.Get(ctx, 1)
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))
	assert.Equal(t, "UCSBDiningCommonsMenuItem with id 1 not found", perrors.ErrorMessage(err))
}

func TestService_NotFoundDoesNotTouchStore(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(testMenuItems, store)

	_, err := svc.Delete(ctx, 7)
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))
	assert.Equal(t, "resource/UCSBDiningCommonsMenuItem.Delete", perrors.ErrorOp(err))
	assert.Zero(t, store.deletes)

	_, err = svc.Update(ctx, 7, &types.MenuItem{Name: "x"})
	assert.Equal(t, "UCSBDiningCommonsMenuItem with id 7 not found", perrors.ErrorMessage(err))
	assert.Empty(t, store.recs)
}

func TestService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.err = errors.New("disk full")
	svc := NewService(testMenuItems, store)

	_, err := svc.List(ctx)
	assert.Equal(t, perrors.EInternal, perrors.ErrorCode(err))
	assert.Equal(t, "resource/UCSBDiningCommonsMenuItem.List", perrors.ErrorOp(err))
	assert.ErrorIs(t, err, store.err)

	_, err = svc.Get(ctx, 1)
	assert.Equal(t, perrors.EInternal, perrors.ErrorCode(err))

	_, err = svc.Create(ctx, &types.MenuItem{})
	assert.Equal(t, perrors.EInternal, perrors.ErrorCode(err))
}

func TestDefinition_BindForm(t *testing.T) {
	rec, err := testMenuItems.bindForm(url.Values{
		"diningCommonsCode": {"portola"},
		"name":              {"Tofu Banh Mi"},
		"station":           {"Grill"},
	})
	require.NoError(t, err)
	assert.Equal(t, &types.MenuItem{DiningCommonsCode: "portola", Name: "Tofu Banh Mi", Station: "Grill"}, rec)

	_, err = testMenuItems.bindForm(url.Values{"name": {"x"}})
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))
	assert.Equal(t,
		"required parameter 'diningCommonsCode' is not present; required parameter 'station' is not present",
		perrors.ErrorMessage(err))
}

func TestDefinition_ParseKey(t *testing.T) {
	k, err := testMenuItems.parseKey("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), k)

	for _, in := range []string{"", "twelve", "1.5"} {
		_, err := testMenuItems.parseKey(in)
		assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err), in)
	}
}

func TestForm(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		want    types.RecommendationRequest
		wantErr bool
	}{
		{
			name: "all fields",
			values: url.Values{
				"requesterEmail": {"a@ucsb.edu"},
				"done":           {"true"},
				"dateNeeded":     {"2022-05-01T00:00"},
			},
			want: types.RecommendationRequest{
				RequesterEmail: "a@ucsb.edu",
				Done:           true,
				DateNeeded:     mustParse(t, "2022-05-01T00:00:00"),
			},
		},
		{
			name:   "numeric boolean",
			values: url.Values{"requesterEmail": {""}, "done": {"0"}, "dateNeeded": {"2022-05-01T00:00:00"}},
			want:   types.RecommendationRequest{DateNeeded: mustParse(t, "2022-05-01T00:00:00")},
		},
		{
			name:    "bad boolean",
			values:  url.Values{"requesterEmail": {"a"}, "done": {"yes please"}, "dateNeeded": {"2022-05-01T00:00:00"}},
			wantErr: true,
		},
		{
			name:    "missing",
			values:  url.Values{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(tt.values)
			got := types.RecommendationRequest{
				RequesterEmail: f.String("requesterEmail"),
				Done:           f.Bool("done"),
				DateNeeded:     f.LocalDateTime("dateNeeded"),
			}
			if tt.wantErr {
				assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(f.Err()))
				return
			}
			require.NoError(t, f.Err())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplaceFields(t *testing.T) {
	dst := &types.Organization{OrgCode: "KRC", OrgTranslationShort: "old", Inactive: true}
	src := &types.Organization{OrgCode: "XYZ", OrgTranslation: "new"}

	require.NoError(t, ReplaceFields[string](dst, src))
	assert.Equal(t, &types.Organization{OrgCode: "KRC", OrgTranslation: "new"}, dst)
}

func mustParse(t *testing.T, s string) types.LocalDateTime {
	t.Helper()
	d, err := types.ParseLocalDateTime(s)
	require.NoError(t, err)
	return d
}
