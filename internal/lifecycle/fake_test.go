package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/erazemk/assetdesk/internal/access"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

var testNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

// fakeStore is an in-memory Store that records every call made through its
// transactions. Writes are staged and only become visible on Commit.
type fakeStore struct {
	users       map[string]*model.User
	categories  map[string]*model.Category
	assets      map[string]*model.Asset
	assignments map[string]*model.Assignment
	requests    map[string]*model.ReturningRequest
	history     map[string]bool
	sequences   map[string]int

	updateErr error

	updates   int
	inserts   int
	deletes   int
	commits   int
	rollbacks int

	lastFilter model.AssetFilter
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*model.User{},
		categories:  map[string]*model.Category{},
		assets:      map[string]*model.Asset{},
		assignments: map[string]*model.Assignment{},
		requests:    map[string]*model.ReturningRequest{},
		history:     map[string]bool{},
		sequences:   map[string]int{},
	}
}

func newTestService(fs *fakeStore, rule access.Rule) *Service {
	return New(fs, rule, WithClock(func() time.Time { return testNow }))
}

func (f *fakeStore) addUser(id, location string, role string, disabled bool) *model.User {
	u := &model.User{ID: id, Username: id, Location: location, Role: role, Disabled: disabled}
	f.users[id] = u
	return u
}

func (f *fakeStore) addAsset(id, location string, state model.AssetState) *model.Asset {
	a := &model.Asset{ID: id, Code: "LA000001", Name: "Laptop " + id, Location: location, State: state, Version: 1}
	f.assets[id] = a
	return a
}

func (f *fakeStore) addAssignment(id, assetID, assignedTo string, state model.AssignmentState) *model.Assignment {
	a := &model.Assignment{ID: id, AssetID: assetID, AssignedToID: assignedTo, AssignedByID: "admin", State: state, Version: 1}
	f.assignments[id] = a
	f.history[assetID] = true
	return a
}

func (f *fakeStore) mutations() int { return f.updates + f.inserts + f.deletes }

func (f *fakeStore) Begin(ctx context.Context) (store.Tx, error) {
	return &fakeTx{store: f}, nil
}

func (f *fakeStore) getAsset(id string) (*model.Asset, error) {
	if a, ok := f.assets[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) FilterAssets(ctx context.Context, filter model.AssetFilter) (*model.AssetPage, error) {
	f.lastFilter = filter
	return &model.AssetPage{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeStore) ListAssignments(ctx context.Context, filter model.AssignmentFilter) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range f.assignments {
		if filter.AssignedToID == "" || a.AssignedToID == filter.AssignedToID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListReturningRequests(ctx context.Context, filter model.ReturningFilter) ([]model.ReturningRequest, error) {
	var out []model.ReturningRequest
	for _, r := range f.requests {
		out = append(out, *r)
	}
	return out, nil
}

type fakeTx struct {
	store  *fakeStore
	staged []func()
	done   bool
}

var _ store.Tx = (*fakeTx)(nil)

func (t *fakeTx) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := t.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeTx) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if c, ok := t.store.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeTx) NextAssetSequence(ctx context.Context, prefix string) (int, error) {
	t.store.sequences[prefix]++
	return t.store.sequences[prefix], nil
}

func (t *fakeTx) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	return t.store.getAsset(id)
}

func (t *fakeTx) AssetHasAssignments(ctx context.Context, assetID string) (bool, error) {
	return t.store.history[assetID], nil
}

func (t *fakeTx) InsertAsset(ctx context.Context, a *model.Asset) error {
	t.store.inserts++
	a.ID = "asset-new"
	a.Version = 1
	cp := *a
	t.stage(func() { t.store.assets[cp.ID] = &cp })
	return nil
}

func (t *fakeTx) UpdateAsset(ctx context.Context, a *model.Asset) error {
	t.store.updates++
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	a.Version++
	cp := *a
	t.stage(func() { t.store.assets[cp.ID] = &cp })
	return nil
}

func (t *fakeTx) DeleteAsset(ctx context.Context, a *model.Asset) error {
	t.store.deletes++
	id := a.ID
	t.stage(func() { delete(t.store.assets, id) })
	return nil
}

func (t *fakeTx) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	if a, ok := t.store.assignments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeTx) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	t.store.inserts++
	a.ID = "assignment-new"
	a.Version = 1
	cp := *a
	t.stage(func() {
		t.store.assignments[cp.ID] = &cp
		t.store.history[cp.AssetID] = true
	})
	return nil
}

func (t *fakeTx) UpdateAssignment(ctx context.Context, a *model.Assignment) error {
	t.store.updates++
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	a.Version++
	cp := *a
	t.stage(func() { t.store.assignments[cp.ID] = &cp })
	return nil
}

func (t *fakeTx) DeleteAssignment(ctx context.Context, a *model.Assignment) error {
	t.store.deletes++
	id := a.ID
	t.stage(func() { delete(t.store.assignments, id) })
	return nil
}

func (t *fakeTx) GetReturningRequest(ctx context.Context, id string) (*model.ReturningRequest, error) {
	if r, ok := t.store.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeTx) InsertReturningRequest(ctx context.Context, r *model.ReturningRequest) error {
	t.store.inserts++
	r.ID = "request-new"
	r.Version = 1
	cp := *r
	t.stage(func() { t.store.requests[cp.ID] = &cp })
	return nil
}

func (t *fakeTx) UpdateReturningRequest(ctx context.Context, r *model.ReturningRequest) error {
	t.store.updates++
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	r.Version++
	cp := *r
	t.stage(func() { t.store.requests[cp.ID] = &cp })
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.store.commits++
	for _, apply := range t.staged {
		apply()
	}
	t.done = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.store.rollbacks++
	t.staged = nil
	t.done = true
	return nil
}

func (t *fakeTx) stage(fn func()) {
	t.staged = append(t.staged, fn)
}
