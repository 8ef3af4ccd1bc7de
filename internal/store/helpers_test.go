package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/assetdesk/internal/model"
)

func mustCreateUser(t *testing.T, database *sql.DB, username, location, role string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, NewUser{
		Username:     username,
		PasswordHash: "hash",
		Location:     location,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustCreateCategory(t *testing.T, database *sql.DB, name, prefix string) *model.Category {
	t.Helper()
	c, err := CreateCategory(context.Background(), database, name, prefix)
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return c
}

// mustInsertAsset inserts an asset through a committed transaction.
func mustInsertAsset(t *testing.T, s *Store, cat *model.Category, name, location string, state model.AssetState) *model.Asset {
	t.Helper()
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	n, err := tx.NextAssetSequence(ctx, cat.Prefix)
	if err != nil {
		t.Fatalf("NextAssetSequence: %v", err)
	}
	a := &model.Asset{
		Code:          model.AssetCode(cat.Prefix, n),
		CategoryID:    cat.ID,
		Name:          name,
		InstalledDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Location:      location,
		State:         state,
	}
	if err := tx.InsertAsset(ctx, a); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return a
}

func mustInsertAssignment(t *testing.T, s *Store, asset *model.Asset, by, to *model.User, state model.AssignmentState) *model.Assignment {
	t.Helper()
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	a := &model.Assignment{
		AssetID:      asset.ID,
		AssignedByID: by.ID,
		AssignedToID: to.ID,
		AssignedDate: time.Now().UTC(),
		State:        state,
	}
	if err := tx.InsertAssignment(ctx, a); err != nil {
		t.Fatalf("InsertAssignment: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return a
}
