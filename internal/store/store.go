package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same finder can run
// inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Directory looks up users by ID. A missing user is (nil, nil).
type Directory interface {
	FindUserByID(ctx context.Context, id string) (*model.User, error)
}

// Tx is one unit of work against the entity store. Reads see the writes made
// earlier in the same Tx; nothing is durable until Commit. Update and Delete
// calls check the entity's Version and fail with a Conflict error if the row
// changed since it was read.
type Tx interface {
	Directory

	GetCategory(ctx context.Context, id string) (*model.Category, error)
	NextAssetSequence(ctx context.Context, prefix string) (int, error)

	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	AssetHasAssignments(ctx context.Context, assetID string) (bool, error)
	InsertAsset(ctx context.Context, a *model.Asset) error
	UpdateAsset(ctx context.Context, a *model.Asset) error
	DeleteAsset(ctx context.Context, a *model.Asset) error

	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	InsertAssignment(ctx context.Context, a *model.Assignment) error
	UpdateAssignment(ctx context.Context, a *model.Assignment) error
	DeleteAssignment(ctx context.Context, a *model.Assignment) error

	GetReturningRequest(ctx context.Context, id string) (*model.ReturningRequest, error)
	InsertReturningRequest(ctx context.Context, r *model.ReturningRequest) error
	UpdateReturningRequest(ctx context.Context, r *model.ReturningRequest) error

	Commit() error
	Rollback() error
}

var (
	_ Directory = (*Store)(nil)
	_ Tx        = (*sqlTx)(nil)
)

// Store is the SQLite-backed entity store and user directory.
type Store struct {
	db *sql.DB
}

// New wraps an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database for non-transactional queries.
func (s *Store) DB() *sql.DB { return s.db }

// Begin starts a transaction. The caller must end it with Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

// FindUserByID returns a user by ID, or nil if absent.
func (s *Store) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return GetUser(ctx, s.db, id)
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return GetUser(ctx, t.tx, id)
}

func (t *sqlTx) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return GetCategory(ctx, t.tx, id)
}

func (t *sqlTx) NextAssetSequence(ctx context.Context, prefix string) (int, error) {
	return nextSequence(ctx, t.tx, "asset:"+prefix)
}

func (t *sqlTx) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	return GetAsset(ctx, t.tx, id)
}

func (t *sqlTx) AssetHasAssignments(ctx context.Context, assetID string) (bool, error) {
	return assetHasAssignments(ctx, t.tx, assetID)
}

func (t *sqlTx) InsertAsset(ctx context.Context, a *model.Asset) error {
	return insertAsset(ctx, t.tx, a)
}

func (t *sqlTx) UpdateAsset(ctx context.Context, a *model.Asset) error {
	return updateAsset(ctx, t.tx, a)
}

func (t *sqlTx) DeleteAsset(ctx context.Context, a *model.Asset) error {
	return deleteAsset(ctx, t.tx, a)
}

func (t *sqlTx) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	return GetAssignment(ctx, t.tx, id)
}

func (t *sqlTx) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	return insertAssignment(ctx, t.tx, a)
}

func (t *sqlTx) UpdateAssignment(ctx context.Context, a *model.Assignment) error {
	return updateAssignment(ctx, t.tx, a)
}

func (t *sqlTx) DeleteAssignment(ctx context.Context, a *model.Assignment) error {
	return deleteAssignment(ctx, t.tx, a)
}

func (t *sqlTx) GetReturningRequest(ctx context.Context, id string) (*model.ReturningRequest, error) {
	return GetReturningRequest(ctx, t.tx, id)
}

func (t *sqlTx) InsertReturningRequest(ctx context.Context, r *model.ReturningRequest) error {
	return insertReturningRequest(ctx, t.tx, r)
}

func (t *sqlTx) UpdateReturningRequest(ctx context.Context, r *model.ReturningRequest) error {
	return updateReturningRequest(ctx, t.tx, r)
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback is safe to call after Commit.
func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// nextSequence increments and returns the named counter, starting at 1.
func nextSequence(ctx context.Context, q Querier, name string) (int, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = value + 1`,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("advancing sequence %s: %w", name, err)
	}

	var value int
	err = q.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("reading sequence %s: %w", name, err)
	}
	return value, nil
}

// checkVersioned turns a zero-row versioned write into a Conflict error.
func checkVersioned(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s rows affected: %w", what, err)
	}
	if n == 0 {
		return conflict(what)
	}
	return nil
}

func conflict(what string) error {
	return apperr.Conflict(fmt.Sprintf("%s was modified by another request", what))
}

// placeholders returns "?, ?, ..." with n placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}

// FilterAssets returns one page of assets matching the filter.
func (s *Store) FilterAssets(ctx context.Context, f model.AssetFilter) (*model.AssetPage, error) {
	return FilterAssets(ctx, s.db, f)
}

// ListAssignments returns assignments matching the filter.
func (s *Store) ListAssignments(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, error) {
	return ListAssignments(ctx, s.db, f)
}

// ListReturningRequests returns returning requests matching the filter.
func (s *Store) ListReturningRequests(ctx context.Context, f model.ReturningFilter) ([]model.ReturningRequest, error) {
	return ListReturningRequests(ctx, s.db, f)
}
