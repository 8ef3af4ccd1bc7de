package lifecycle

import (
	"context"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

// CreateAssignment hands an Available asset to a user, pending their acceptance.
// The asset becomes Assigned in the same transaction.
func (s *Service) CreateAssignment(ctx context.Context, req model.NewAssignment, actingUserID string) (*model.Assignment, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	asset, err := loadAsset(ctx, tx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if asset.State != model.AssetAvailable {
		return nil, apperr.InvalidState("Can't assign asset whose state is not Available")
	}

	assignee, err := tx.FindUserByID(ctx, req.AssignedToID)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, apperr.NotFound("Assigned user is not found!")
	}
	if assignee.Disabled {
		return nil, apperr.Forbidden("Assigned user's account is disabled!")
	}

	now := s.nowFn()
	if req.AssignedDate.IsZero() || req.AssignedDate.In(now.Location()).Before(startOfDay(now)) {
		return nil, apperr.Validation("Assigned date must be today or in the future")
	}

	actor, err := s.actingUser(ctx, tx, actingUserID, asset.Location, msgAssetNotOwned)
	if err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		AssetID:      asset.ID,
		AssignedByID: actor.ID,
		AssignedToID: assignee.ID,
		AssignedDate: req.AssignedDate,
		Note:         req.Note,
		State:        model.AssignmentWaitingForAcceptance,
		CreatedAt:    now,
	}
	if err := tx.InsertAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	asset.State = model.AssetAssigned
	if err := tx.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	assignment.AssetCode = asset.Code
	assignment.AssetName = asset.Name
	assignment.AssignedToName = assignee.Username
	assignment.AssignedByName = actor.Username
	return assignment, nil
}

// RespondToAssignment records the assignee's answer. Declining releases the asset.
func (s *Service) RespondToAssignment(ctx context.Context, id, actingUserID string, accept bool) (*model.Assignment, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	assignment, err := loadAssignment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if assignment.AssignedToID != actingUserID {
		return nil, apperr.Unauthorized(msgAssignmentNotOwned)
	}
	if assignment.State != model.AssignmentWaitingForAcceptance {
		return nil, apperr.InvalidState("Can't respond to assignment whose state is not Waiting for acceptance")
	}

	if accept {
		assignment.State = model.AssignmentAccepted
	} else {
		assignment.State = model.AssignmentDeclined
		asset, err := loadAsset(ctx, tx, assignment.AssetID)
		if err != nil {
			return nil, err
		}
		if err := releaseAsset(ctx, tx, asset); err != nil {
			return nil, err
		}
	}
	if err := tx.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return assignment, nil
}

// DeleteAssignment withdraws an assignment that has not been answered yet
// and releases its asset.
func (s *Service) DeleteAssignment(ctx context.Context, id, actingUserID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	assignment, err := loadAssignment(ctx, tx, id)
	if err != nil {
		return err
	}
	if assignment.State != model.AssignmentWaitingForAcceptance {
		return apperr.InvalidState("Can't delete assignment whose state is not Waiting for acceptance")
	}

	asset, err := loadAsset(ctx, tx, assignment.AssetID)
	if err != nil {
		return err
	}
	if _, err := s.actingUser(ctx, tx, actingUserID, asset.Location, msgAssignmentNotOwned); err != nil {
		return err
	}

	if err := tx.DeleteAssignment(ctx, assignment); err != nil {
		return err
	}
	if err := releaseAsset(ctx, tx, asset); err != nil {
		return err
	}
	return tx.Commit()
}

// ListAssignments returns assignments matching the filter.
func (s *Service) ListAssignments(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, error) {
	return s.store.ListAssignments(ctx, f)
}

// releaseAsset puts an asset back to Available.
func releaseAsset(ctx context.Context, tx store.Tx, asset *model.Asset) error {
	asset.State = model.AssetAvailable
	return tx.UpdateAsset(ctx, asset)
}
