package lifecycle

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/access"
	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

func strPtr(s string) *string { return &s }

func TestUpdateAsset(t *testing.T) {
	tests := []struct {
		name       string
		assetState model.AssetState
		assetID    string
		user       *model.User
		wantKind   apperr.Kind
		wantMsg    string
	}{
		{
			name:     "asset not found",
			assetID:  "missing",
			user:     &model.User{ID: "u1", Location: "HN"},
			wantKind: apperr.KindNotFound,
			wantMsg:  "Can't find asset",
		},
		{
			name:       "asset assigned",
			assetState: model.AssetAssigned,
			user:       &model.User{ID: "u1", Location: "HN"},
			wantKind:   apperr.KindInvalidState,
			wantMsg:    "Can't edit asset whose state is not Available",
		},
		{
			name:       "asset waiting for recycling",
			assetState: model.AssetWaitingForRecycling,
			user:       &model.User{ID: "u1", Location: "HN"},
			wantKind:   apperr.KindInvalidState,
			wantMsg:    "Can't edit asset whose state is not Available",
		},
		{
			name:       "user not found",
			assetState: model.AssetAvailable,
			wantKind:   apperr.KindNotFound,
			wantMsg:    "User is not found!",
		},
		{
			name:       "user disabled",
			assetState: model.AssetAvailable,
			user:       &model.User{ID: "u1", Location: "HN", Disabled: true},
			wantKind:   apperr.KindForbidden,
			wantMsg:    "Your account is disabled!",
		},
		{
			name:       "location mismatch",
			assetState: model.AssetAvailable,
			user:       &model.User{ID: "u1", Location: "HCM"},
			wantKind:   apperr.KindUnauthorized,
			wantMsg:    "This asset doesn't belong to this user",
		},
		{
			name:       "admin in another location",
			assetState: model.AssetAvailable,
			user:       &model.User{ID: "u1", Location: "HCM", Role: model.RoleAdmin},
			wantKind:   apperr.KindUnauthorized,
			wantMsg:    "This asset doesn't belong to this user",
		},
		{
			name:       "success",
			assetState: model.AssetAvailable,
			user:       &model.User{ID: "u1", Location: "HN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.addAsset("a1", "HN", tt.assetState)
			if tt.user != nil {
				fs.users[tt.user.ID] = tt.user
			}
			svc := newTestService(fs, access.Rule{})

			id := tt.assetID
			if id == "" {
				id = "a1"
			}
			got, err := svc.UpdateAsset(context.Background(), id, model.AssetPatch{Name: strPtr("Renamed")}, "u1")

			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				assert.Equal(t, tt.wantMsg, err.Error())
				assert.Zero(t, fs.updates, "update must not be called")
				assert.Zero(t, fs.commits, "commit must not be called")
				assert.Equal(t, 1, fs.rollbacks)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.Name)
			assert.Equal(t, 1, fs.updates)
			assert.Equal(t, 1, fs.commits)
			assert.Zero(t, fs.rollbacks)
			assert.Equal(t, "Renamed", fs.assets["a1"].Name)
		})
	}
}

func TestUpdateAsset_AdminBypassPolicy(t *testing.T) {
	fs := newFakeStore()
	fs.addAsset("a1", "HN", model.AssetAvailable)
	fs.addUser("admin", "HCM", model.RoleAdmin, false)
	fs.addUser("staff", "HCM", model.RoleStaff, false)
	svc := newTestService(fs, access.Rule{AdminBypassesLocation: true})

	_, err := svc.UpdateAsset(context.Background(), "a1", model.AssetPatch{Name: strPtr("X")}, "admin")
	require.NoError(t, err)

	_, err = svc.UpdateAsset(context.Background(), "a1", model.AssetPatch{Name: strPtr("Y")}, "staff")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestUpdateAsset_InvalidPatch(t *testing.T) {
	fs := newFakeStore()
	fs.addAsset("a1", "HN", model.AssetAvailable)
	fs.addUser("u1", "HN", model.RoleAdmin, false)
	svc := newTestService(fs, access.Rule{})

	assigned := model.AssetAssigned
	recycled := model.AssetRecycled
	tests := []struct {
		name     string
		patch    model.AssetPatch
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"blank name", model.AssetPatch{Name: strPtr("   ")}, apperr.KindValidation, "Asset name is required"},
		{"assigned state", model.AssetPatch{State: &assigned}, apperr.KindValidation, "Can't set asset state to Assigned"},
		{"zero installed date", model.AssetPatch{InstalledDate: &time.Time{}}, apperr.KindValidation, "Installed date is required"},
		{"skips recycling queue", model.AssetPatch{Name: strPtr("Old"), State: &recycled}, apperr.KindInvalidState, "Can't move asset from Available to Recycled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateAsset(context.Background(), "a1", tt.patch, "u1")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
	assert.Zero(t, fs.updates)
	assert.Zero(t, fs.commits)
	assert.Equal(t, model.AssetAvailable, fs.assets["a1"].State)
	assert.Equal(t, "Laptop a1", fs.assets["a1"].Name)
}

func TestUpdateAsset_StateFollowsTransitions(t *testing.T) {
	tests := []struct {
		name string
		to   model.AssetState
	}{
		{"unchanged", model.AssetAvailable},
		{"not available", model.AssetNotAvailable},
		{"waiting for recycling", model.AssetWaitingForRecycling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.addAsset("a1", "HN", model.AssetAvailable)
			fs.addUser("u1", "HN", model.RoleAdmin, false)
			svc := newTestService(fs, access.Rule{})

			to := tt.to
			got, err := svc.UpdateAsset(context.Background(), "a1", model.AssetPatch{State: &to}, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.State)
			assert.Equal(t, 1, fs.updates)
			assert.Equal(t, 1, fs.commits)
		})
	}
}

func TestUpdateAsset_ConflictIsNotCommitted(t *testing.T) {
	fs := newFakeStore()
	fs.addAsset("a1", "HN", model.AssetAvailable)
	fs.addUser("u1", "HN", model.RoleAdmin, false)
	fs.updateErr = apperr.Conflict("asset was modified by another request")
	svc := newTestService(fs, access.Rule{})

	_, err := svc.UpdateAsset(context.Background(), "a1", model.AssetPatch{Name: strPtr("X")}, "u1")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Zero(t, fs.commits)
	assert.Equal(t, 1, fs.rollbacks)
	assert.Equal(t, "Laptop a1", fs.assets["a1"].Name)
}

func TestCreateAsset(t *testing.T) {
	fs := newFakeStore()
	fs.addUser("u1", "HN", model.RoleAdmin, false)
	fs.categories["c1"] = &model.Category{ID: "c1", Name: "Laptop", Prefix: "LA"}
	fs.sequences["LA"] = 41
	svc := newTestService(fs, access.Rule{})

	installed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.CreateAsset(context.Background(), model.NewAsset{
		Name:          "  Dell XPS ",
		CategoryID:    "c1",
		InstalledDate: installed,
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "LA000042", got.Code)
	assert.Equal(t, "Dell XPS", got.Name)
	assert.Equal(t, "HN", got.Location)
	assert.Equal(t, model.AssetAvailable, got.State)
	assert.Equal(t, "Laptop", got.CategoryName)
	assert.Equal(t, testNow, got.CreatedAt)
	assert.Equal(t, 1, fs.inserts)
	assert.Equal(t, 1, fs.commits)
	assert.Contains(t, fs.assets, got.ID)
}

func TestCreateAsset_Failures(t *testing.T) {
	installed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		req      model.NewAsset
		actor    string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"missing name", model.NewAsset{CategoryID: "c1", InstalledDate: installed}, "u1", apperr.KindValidation, "Asset name is required"},
		{"missing installed date", model.NewAsset{Name: "X", CategoryID: "c1"}, "u1", apperr.KindValidation, "Installed date is required"},
		{"recycled initial state", model.NewAsset{Name: "X", CategoryID: "c1", InstalledDate: installed, State: model.AssetRecycled}, "u1", apperr.KindValidation, "New asset state must be Available or Not available"},
		{"unknown category", model.NewAsset{Name: "X", CategoryID: "nope", InstalledDate: installed}, "u1", apperr.KindNotFound, "Can't find category"},
		{"unknown user", model.NewAsset{Name: "X", CategoryID: "c1", InstalledDate: installed}, "ghost", apperr.KindNotFound, "User is not found!"},
		{"disabled user", model.NewAsset{Name: "X", CategoryID: "c1", InstalledDate: installed}, "off", apperr.KindForbidden, "Your account is disabled!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.addUser("u1", "HN", model.RoleAdmin, false)
			fs.addUser("off", "HN", model.RoleAdmin, true)
			fs.categories["c1"] = &model.Category{ID: "c1", Name: "Laptop", Prefix: "LA"}
			svc := newTestService(fs, access.Rule{})

			_, err := svc.CreateAsset(context.Background(), tt.req, tt.actor)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, fs.mutations())
			assert.Zero(t, fs.commits)
		})
	}
}

func TestDeleteAsset(t *testing.T) {
	tests := []struct {
		name     string
		state    model.AssetState
		history  bool
		actor    string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"historical assignments", model.AssetAvailable, true, "u1", apperr.KindInvalidState, "Can't delete asset which belongs to one or more historical assignments"},
		{"assigned", model.AssetAssigned, false, "u1", apperr.KindInvalidState, "Can't delete asset whose state is not Available"},
		{"not available", model.AssetNotAvailable, false, "u1", apperr.KindInvalidState, "Can't delete asset whose state is not Available"},
		{"waiting for recycling", model.AssetWaitingForRecycling, false, "u1", apperr.KindInvalidState, "Can't delete asset whose state is not Available"},
		{"recycled", model.AssetRecycled, false, "u1", apperr.KindInvalidState, "Can't delete asset whose state is not Available"},
		{"other location", model.AssetAvailable, false, "far", apperr.KindUnauthorized, "This asset doesn't belong to this user"},
		{"available asset", model.AssetAvailable, false, "u1", apperr.KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.addAsset("a1", "HN", tt.state)
			fs.history["a1"] = tt.history
			fs.addUser("u1", "HN", model.RoleAdmin, false)
			fs.addUser("far", "HCM", model.RoleAdmin, false)
			svc := newTestService(fs, access.Rule{})

			err := svc.DeleteAsset(context.Background(), "a1", tt.actor)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				assert.Equal(t, tt.wantMsg, err.Error())
				assert.Zero(t, fs.deletes)
				assert.Zero(t, fs.commits)
				assert.Contains(t, fs.assets, "a1")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, fs.deletes)
			assert.Equal(t, 1, fs.commits)
			assert.NotContains(t, fs.assets, "a1")
		})
	}
}

func TestDeleteAsset_NotFound(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, access.Rule{})

	err := svc.DeleteAsset(context.Background(), "missing", "u1")
	assert.Equal(t, "Can't find asset", err.Error())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTransitionAsset(t *testing.T) {
	tests := []struct {
		from    model.AssetState
		to      model.AssetState
		wantMsg string
	}{
		{model.AssetAvailable, model.AssetNotAvailable, ""},
		{model.AssetNotAvailable, model.AssetWaitingForRecycling, ""},
		{model.AssetWaitingForRecycling, model.AssetRecycled, ""},
		{model.AssetWaitingForRecycling, model.AssetAvailable, ""},
		{model.AssetAvailable, model.AssetAssigned, "Can't move asset from Available to Assigned"},
		{model.AssetAssigned, model.AssetAvailable, "Can't move asset from Assigned to Available"},
		{model.AssetRecycled, model.AssetAvailable, "Can't move asset from Recycled to Available"},
		{model.AssetAvailable, model.AssetRecycled, "Can't move asset from Available to Recycled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			fs := newFakeStore()
			fs.addAsset("a1", "HN", tt.from)
			fs.addUser("u1", "HN", model.RoleAdmin, false)
			svc := newTestService(fs, access.Rule{})

			got, err := svc.TransitionAsset(context.Background(), "a1", tt.to, "u1")
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindInvalidState))
				assert.Equal(t, tt.wantMsg, err.Error())
				assert.Zero(t, fs.updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.State)
			assert.Equal(t, tt.to, fs.assets["a1"].State)
			assert.Equal(t, 1, fs.commits)
		})
	}
}

func TestTransitionAsset_UnknownState(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, access.Rule{})

	_, err := svc.TransitionAsset(context.Background(), "a1", model.AssetState("lost"), "u1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFilterAssets_Defaults(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, access.Rule{})

	_, err := svc.FilterAssets(context.Background(), model.AssetFilter{Location: "HN"})
	require.NoError(t, err)

	assert.Equal(t, 1, fs.lastFilter.Page)
	assert.Equal(t, 5, fs.lastFilter.PageSize)
	assert.Equal(t, model.AssetSortCode, fs.lastFilter.SortBy)
	assert.Equal(t, model.DefaultAssetStates, fs.lastFilter.States)
}

func TestFilterAssets_Invalid(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, access.Rule{})

	tests := []struct {
		name string
		f    model.AssetFilter
	}{
		{"negative page", model.AssetFilter{Page: -1}},
		{"negative page size", model.AssetFilter{PageSize: -5}},
		{"page size above limit", model.AssetFilter{PageSize: model.MaxPageSize + 1}},
		{"page offset overflows", model.AssetFilter{Page: math.MaxInt, PageSize: model.MaxPageSize}},
		{"unknown sort", model.AssetFilter{SortBy: "price"}},
		{"unknown state", model.AssetFilter{States: []model.AssetState{"lost"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FilterAssets(context.Background(), tt.f)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
	assert.Zero(t, fs.lastFilter.PageSize, "store must not be queried")
}

func TestFilterAssets_MaxPageSize(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, access.Rule{})

	_, err := svc.FilterAssets(context.Background(), model.AssetFilter{PageSize: model.MaxPageSize, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, model.MaxPageSize, fs.lastFilter.PageSize)
	assert.Equal(t, 3, fs.lastFilter.Page)
}

func TestGetAsset(t *testing.T) {
	fs := newFakeStore()
	fs.addAsset("a1", "HN", model.AssetAvailable)
	fs.addUser("u1", "HN", model.RoleAdmin, false)
	fs.addUser("far", "HCM", model.RoleAdmin, false)
	svc := newTestService(fs, access.Rule{})

	got, err := svc.GetAsset(context.Background(), "a1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = svc.GetAsset(context.Background(), "missing", "u1")
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Can't find asset", appErr.Message)

	_, err = svc.GetAsset(context.Background(), "a1", "far")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "This asset doesn't belong to this user", err.Error())

	bypass := newTestService(fs, access.Rule{AdminBypassesLocation: true})
	_, err = bypass.GetAsset(context.Background(), "a1", "far")
	assert.NoError(t, err)
	assert.Zero(t, fs.commits)
}
