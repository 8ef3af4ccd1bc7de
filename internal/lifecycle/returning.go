package lifecycle

import (
	"context"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

// CreateReturningRequest asks for an accepted assignment's asset to be handed back.
// The requester must be the assignee or an admin authorized for the asset's location.
func (s *Service) CreateReturningRequest(ctx context.Context, assignmentID, requestedByID string) (*model.ReturningRequest, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	assignment, err := loadAssignment(ctx, tx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.State != model.AssignmentAccepted {
		return nil, apperr.InvalidState("Can't create returning request for assignment whose state is not Accepted")
	}

	requester, err := findActor(ctx, tx, requestedByID)
	if err != nil {
		return nil, err
	}
	if requester.Disabled {
		return nil, apperr.Forbidden(msgAccountDisabled)
	}
	if requester.ID != assignment.AssignedToID {
		if requester.Role != model.RoleAdmin {
			return nil, apperr.Unauthorized(msgAssignmentNotOwned)
		}
		asset, err := loadAsset(ctx, tx, assignment.AssetID)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(requester, asset.Location, msgAssignmentNotOwned); err != nil {
			return nil, err
		}
	}

	assignment.State = model.AssignmentWaitingForReturning
	if err := tx.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	request := &model.ReturningRequest{
		AssignmentID:  assignment.ID,
		RequestedByID: requester.ID,
		State:         model.ReturningWaiting,
		CreatedAt:     s.nowFn(),
	}
	if err := tx.InsertReturningRequest(ctx, request); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	request.AssetCode = assignment.AssetCode
	request.AssetName = assignment.AssetName
	request.RequestedByName = requester.Username
	return request, nil
}

// CompleteReturningRequest accepts or rejects a pending returning request.
// Accepting completes the assignment and makes the asset Available again;
// rejecting puts the assignment back to Accepted.
func (s *Service) CompleteReturningRequest(ctx context.Context, id, acceptedByID string, accept bool) (*model.ReturningRequest, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	request, err := tx.GetReturningRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperr.NotFound("Can't find returning request")
	}
	if request.State != model.ReturningWaiting {
		return nil, apperr.InvalidState("Can't complete returning request whose state is not Waiting for returning")
	}

	assignment, err := loadAssignment(ctx, tx, request.AssignmentID)
	if err != nil {
		return nil, err
	}
	asset, err := loadAsset(ctx, tx, assignment.AssetID)
	if err != nil {
		return nil, err
	}
	actor, err := s.actingUser(ctx, tx, acceptedByID, asset.Location, msgAssetNotOwned)
	if err != nil {
		return nil, err
	}

	request.AcceptedByID = &actor.ID
	if accept {
		returned := s.nowFn()
		request.ReturnedDate = &returned
		request.State = model.ReturningCompleted
		assignment.State = model.AssignmentCompleted
		if err := releaseAsset(ctx, tx, asset); err != nil {
			return nil, err
		}
	} else {
		request.State = model.ReturningRejected
		assignment.State = model.AssignmentAccepted
	}

	if err := tx.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	if err := tx.UpdateReturningRequest(ctx, request); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return request, nil
}

// ListReturningRequests returns returning requests matching the filter.
func (s *Service) ListReturningRequests(ctx context.Context, f model.ReturningFilter) ([]model.ReturningRequest, error) {
	return s.store.ListReturningRequests(ctx, f)
}
