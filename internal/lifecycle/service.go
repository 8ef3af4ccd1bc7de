// Package lifecycle validates and applies state changes to assets,
// assignments and returning requests.
//
// Every mutating operation runs in one store transaction: referenced entities
// are loaded through it, all checks run before anything is written, and the
// transaction is committed once. Any failure rolls the transaction back.
package lifecycle

import (
	"context"
	"time"

	"github.com/erazemk/assetdesk/internal/access"
	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

// Store is the persistence the services need. *store.Store satisfies it.
type Store interface {
	Begin(ctx context.Context) (store.Tx, error)
	FilterAssets(ctx context.Context, f model.AssetFilter) (*model.AssetPage, error)
	ListAssignments(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, error)
	ListReturningRequests(ctx context.Context, f model.ReturningFilter) ([]model.ReturningRequest, error)
}

var _ Store = (*store.Store)(nil)

// Messages shared by more than one operation.
const (
	msgAssetNotFound      = "Can't find asset"
	msgUserNotFound       = "User is not found!"
	msgAccountDisabled    = "Your account is disabled!"
	msgAssetNotOwned      = "This asset doesn't belong to this user"
	msgAssignmentNotFound = "Can't find assignment"
	msgAssignmentNotOwned = "This assignment doesn't belong to this user"
)

// Service implements the asset, assignment and returning request lifecycles.
type Service struct {
	store Store
	rule  access.Rule
	nowFn func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for dates the service sets and checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.nowFn = now }
}

// New constructs a service over the given store and authorization rule.
func New(st Store, rule access.Rule, opts ...Option) *Service {
	s := &Service{
		store: st,
		rule:  rule,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rule returns the authorization rule in effect.
func (s *Service) Rule() access.Rule { return s.rule }

// actingUser loads the acting user and authorizes them against a location.
// A location mismatch is reported with mismatchMsg.
func (s *Service) actingUser(ctx context.Context, tx store.Tx, userID, location, mismatchMsg string) (*model.User, error) {
	user, err := findActor(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(user, location, mismatchMsg); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) authorize(user *model.User, location, mismatchMsg string) error {
	switch s.rule.Authorize(user, location) {
	case access.DenyAccountDisabled:
		return apperr.Forbidden(msgAccountDisabled)
	case access.DenyLocationMismatch:
		return apperr.Unauthorized(mismatchMsg)
	}
	return nil
}

// findActor returns the acting user or a NotFound error.
func findActor(ctx context.Context, dir store.Directory, userID string) (*model.User, error) {
	user, err := dir.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return user, nil
}

// loadAsset returns the asset or a NotFound error.
func loadAsset(ctx context.Context, tx store.Tx, id string) (*model.Asset, error) {
	asset, err := tx.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperr.NotFound(msgAssetNotFound)
	}
	return asset, nil
}

// loadAssignment returns the assignment or a NotFound error.
func loadAssignment(ctx context.Context, tx store.Tx, id string) (*model.Assignment, error) {
	assignment, err := tx.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperr.NotFound(msgAssignmentNotFound)
	}
	return assignment, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
