package lifecycle

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

const maxAssetNameLength = 100

// GetAsset returns a single asset the acting user is authorized for.
func (s *Service) GetAsset(ctx context.Context, id, actingUserID string) (*model.Asset, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	asset, err := loadAsset(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.actingUser(ctx, tx, actingUserID, asset.Location, msgAssetNotOwned); err != nil {
		return nil, err
	}
	return asset, nil
}

// CreateAsset registers a new asset at the acting user's location.
func (s *Service) CreateAsset(ctx context.Context, req model.NewAsset, actingUserID string) (*model.Asset, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateAssetName(req.Name); err != nil {
		return nil, err
	}
	if req.InstalledDate.IsZero() {
		return nil, apperr.Validation("Installed date is required")
	}
	if req.State == "" {
		req.State = model.AssetAvailable
	}
	if req.State != model.AssetAvailable && req.State != model.AssetNotAvailable {
		return nil, apperr.Validation("New asset state must be Available or Not available")
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := findActor(ctx, tx, actingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(user, user.Location, msgAssetNotOwned); err != nil {
		return nil, err
	}

	category, err := tx.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("Can't find category")
	}

	n, err := tx.NextAssetSequence(ctx, category.Prefix)
	if err != nil {
		return nil, err
	}

	asset := &model.Asset{
		Code:          model.AssetCode(category.Prefix, n),
		CategoryID:    category.ID,
		Name:          req.Name,
		Specification: req.Specification,
		InstalledDate: req.InstalledDate,
		Location:      user.Location,
		State:         req.State,
		CreatedAt:     s.nowFn(),
	}
	if err := tx.InsertAsset(ctx, asset); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	asset.CategoryName = category.Name
	return asset, nil
}

// UpdateAsset edits an Available asset the acting user is authorized for.
func (s *Service) UpdateAsset(ctx context.Context, id string, patch model.AssetPatch, actingUserID string) (*model.Asset, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	asset, err := loadAsset(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if asset.State != model.AssetAvailable {
		return nil, apperr.InvalidState("Can't edit asset whose state is not Available")
	}
	if _, err := s.actingUser(ctx, tx, actingUserID, asset.Location, msgAssetNotOwned); err != nil {
		return nil, err
	}
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}
	if p := patch.State; p != nil && *p != asset.State && !model.CanTransitionAsset(asset.State, *p) {
		return nil, apperr.InvalidState(fmt.Sprintf("Can't move asset from %s to %s", asset.State.Label(), p.Label()))
	}

	patch.Apply(asset)
	if err := tx.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return asset, nil
}

// DeleteAsset removes an Available asset that has never been assigned.
func (s *Service) DeleteAsset(ctx context.Context, id, actingUserID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	asset, err := loadAsset(ctx, tx, id)
	if err != nil {
		return err
	}
	assigned, err := tx.AssetHasAssignments(ctx, asset.ID)
	if err != nil {
		return err
	}
	if assigned {
		return apperr.InvalidState("Can't delete asset which belongs to one or more historical assignments")
	}
	if asset.State != model.AssetAvailable {
		return apperr.InvalidState("Can't delete asset whose state is not Available")
	}
	if _, err := s.actingUser(ctx, tx, actingUserID, asset.Location, msgAssetNotOwned); err != nil {
		return err
	}

	if err := tx.DeleteAsset(ctx, asset); err != nil {
		return err
	}
	return tx.Commit()
}

// TransitionAsset moves an asset to another state by hand.
// Assigned is only ever entered through an assignment.
func (s *Service) TransitionAsset(ctx context.Context, id string, target model.AssetState, actingUserID string) (*model.Asset, error) {
	if !target.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Unknown asset state %q", target))
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	asset, err := loadAsset(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionAsset(asset.State, target) {
		return nil, apperr.InvalidState(fmt.Sprintf("Can't move asset from %s to %s", asset.State.Label(), target.Label()))
	}
	if _, err := s.actingUser(ctx, tx, actingUserID, asset.Location, msgAssetNotOwned); err != nil {
		return nil, err
	}

	asset.State = target
	if err := tx.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return asset, nil
}

// FilterAssets returns one page of assets. Zero paging and sort values take
// their defaults; an empty state set means Available, Not available and Assigned.
func (s *Service) FilterAssets(ctx context.Context, f model.AssetFilter) (*model.AssetPage, error) {
	if f.Page == 0 {
		f.Page = model.DefaultPage
	}
	if f.PageSize == 0 {
		f.PageSize = model.DefaultPageSize
	}
	if f.Page < 1 {
		return nil, apperr.Validation("Page number must be at least 1")
	}
	if f.PageSize < 1 {
		return nil, apperr.Validation("Page size must be greater than 0")
	}
	if f.PageSize > model.MaxPageSize {
		return nil, apperr.Validation(fmt.Sprintf("Page size must be at most %d", model.MaxPageSize))
	}
	// The store computes OFFSET as (page-1)*pageSize.
	if f.Page-1 > math.MaxInt32/f.PageSize {
		return nil, apperr.Validation("Page number is too large")
	}
	if f.SortBy == "" {
		f.SortBy = model.AssetSortCode
	}
	if !store.ValidAssetSort(f.SortBy) {
		return nil, apperr.Validation(fmt.Sprintf("Can't sort assets by %q", f.SortBy))
	}
	if len(f.States) == 0 {
		f.States = model.DefaultAssetStates
	}
	for _, st := range f.States {
		if !st.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("Unknown asset state %q", st))
		}
	}
	return s.store.FilterAssets(ctx, f)
}

func validateAssetName(name string) error {
	if name == "" {
		return apperr.Validation("Asset name is required")
	}
	if len(name) > maxAssetNameLength {
		return apperr.Validation(fmt.Sprintf("Asset name must be at most %d characters", maxAssetNameLength))
	}
	return nil
}

// validatePatch normalizes and checks the fields an edit may set.
func validatePatch(p *model.AssetPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateAssetName(name); err != nil {
			return err
		}
		p.Name = &name
	}
	if p.InstalledDate != nil && p.InstalledDate.IsZero() {
		return apperr.Validation("Installed date is required")
	}
	if p.State != nil {
		switch *p.State {
		case model.AssetAvailable, model.AssetNotAvailable, model.AssetWaitingForRecycling, model.AssetRecycled:
		default:
			return apperr.Validation(fmt.Sprintf("Can't set asset state to %s", p.State.Label()))
		}
	}
	return nil
}
