package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/model"
)

func TestReturningRequestRoundTrip(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()

	admin := mustCreateUser(t, s.DB(), "admin", "HN", model.RoleAdmin)
	staff := mustCreateUser(t, s.DB(), "staff", "HN", model.RoleStaff)
	cat := mustCreateCategory(t, s.DB(), "Laptop", "LA")
	asset := mustInsertAsset(t, s, cat, "Dell", "HN", model.AssetAssigned)
	assignment := mustInsertAssignment(t, s, asset, admin, staff, model.AssignmentWaitingForReturning)

	tx, _ := s.Begin(ctx)
	r := &model.ReturningRequest{
		AssignmentID:  assignment.ID,
		RequestedByID: staff.ID,
		State:         model.ReturningWaiting,
	}
	if err := tx.InsertReturningRequest(ctx, r); err != nil {
		t.Fatalf("InsertReturningRequest: %v", err)
	}
	tx.Commit()

	got, err := GetReturningRequest(ctx, s.DB(), r.ID)
	if err != nil {
		t.Fatalf("GetReturningRequest: %v", err)
	}
	if got.AcceptedByID != nil || got.ReturnedDate != nil {
		t.Errorf("expected unset accepted-by and returned date, got %+v", got)
	}
	if got.AssetCode != "LA000001" || got.RequestedByName != "staff" {
		t.Errorf("unexpected joined fields %+v", got)
	}

	returned := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	got.AcceptedByID = &admin.ID
	got.ReturnedDate = &returned
	got.State = model.ReturningCompleted

	tx, _ = s.Begin(ctx)
	if err := tx.UpdateReturningRequest(ctx, got); err != nil {
		t.Fatalf("UpdateReturningRequest: %v", err)
	}
	tx.Commit()

	done, _ := GetReturningRequest(ctx, s.DB(), r.ID)
	if done.State != model.ReturningCompleted {
		t.Errorf("expected completed, got %q", done.State)
	}
	if done.AcceptedByID == nil || *done.AcceptedByID != admin.ID {
		t.Errorf("expected accepted by admin, got %v", done.AcceptedByID)
	}
	if done.ReturnedDate == nil || !done.ReturnedDate.Equal(returned) {
		t.Errorf("expected returned date %v, got %v", returned, done.ReturnedDate)
	}
	if done.Version != 2 {
		t.Errorf("expected version 2, got %d", done.Version)
	}

	waiting, _ := ListReturningRequests(ctx, s.DB(), model.ReturningFilter{
		Location: "HN",
		States:   []model.ReturningState{model.ReturningWaiting},
	})
	if len(waiting) != 0 {
		t.Errorf("expected no waiting requests, got %d", len(waiting))
	}

	all, _ := ListReturningRequests(ctx, s.DB(), model.ReturningFilter{Location: "HN"})
	if len(all) != 1 {
		t.Errorf("expected 1 request in HN, got %d", len(all))
	}
}
