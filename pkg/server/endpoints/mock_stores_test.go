package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// MockGrantsStore implements store.GroupModulePermissionsStore for testing using testify/mock
type MockGrantsStore struct {
	mock.Mock
}

func NewMockGrantsStore() *MockGrantsStore {
	return &MockGrantsStore{}
}

func (m *MockGrantsStore) List(ctx context.Context, filter store.GrantFilter) ([]model.GroupModulePermission, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.GroupModulePermission), args.Get(1).(int64), args.Error(2)
}

func (m *MockGrantsStore) Fetch(ctx context.Context, id uint) (*model.GroupModulePermission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupModulePermission), args.Error(1)
}

func (m *MockGrantsStore) Create(ctx context.Context, groupID uint, moduleIDs []uint, permissionIDs []uint) ([]model.GroupModulePermission, error) {
	args := m.Called(ctx, groupID, moduleIDs, permissionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupModulePermission), args.Error(1)
}

func (m *MockGrantsStore) Update(ctx context.Context, id uint, groupID uint, moduleID uint, permissionIDs []uint) (*model.GroupModulePermission, error) {
	args := m.Called(ctx, id, groupID, moduleID, permissionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupModulePermission), args.Error(1)
}

func (m *MockGrantsStore) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FakeCatalogStore serves a fixed catalog
type FakeCatalogStore struct {
	Groups      []model.Group
	Modules     []model.Module
	Permissions []model.Permission
	Menus       []model.Menu
}

func (f *FakeCatalogStore) ListGroups(context.Context) ([]model.Group, error) {
	return f.Groups, nil
}

func (f *FakeCatalogStore) ListModules(context.Context) ([]model.Module, error) {
	return f.Modules, nil
}

func (f *FakeCatalogStore) ListPermissions(context.Context) ([]model.Permission, error) {
	return f.Permissions, nil
}

func (f *FakeCatalogStore) ListMenus(context.Context) ([]model.Menu, error) {
	return f.Menus, nil
}

func (f *FakeCatalogStore) FindGroups(_ context.Context, ids []uint) ([]model.Group, error) {
	return pick(f.Groups, ids, func(g model.Group) uint { return g.ID }), nil
}

func (f *FakeCatalogStore) FindModules(_ context.Context, ids []uint) ([]model.Module, error) {
	return pick(f.Modules, ids, func(m model.Module) uint { return m.ID }), nil
}

func (f *FakeCatalogStore) FindPermissions(_ context.Context, ids []uint) ([]model.Permission, error) {
	return pick(f.Permissions, ids, func(p model.Permission) uint { return p.ID }), nil
}

func (f *FakeCatalogStore) FindMenus(_ context.Context, ids []uint) ([]model.Menu, error) {
	return pick(f.Menus, ids, func(m model.Menu) uint { return m.ID }), nil
}

func pick[T any](items []T, ids []uint, idOf func(T) uint) []T {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []T
	for _, item := range items {
		if want[idOf(item)] {
			out = append(out, item)
		}
	}
	return out
}

// MockAuthzStore implements store.AuthzStore for testing using testify/mock
type MockAuthzStore struct {
	mock.Mock
}

func (m *MockAuthzStore) UserHasPermission(ctx context.Context, userID uint, codename string) (bool, error) {
	args := m.Called(ctx, userID, codename)
	return args.Bool(0), args.Error(1)
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) Create(ctx context.Context, user *model.User, groupNames []string) error {
	return m.Called(ctx, user, groupNames).Error(0)
}

func (m *MockUsersStore) SetPassword(ctx context.Context, username string, passwordHash string) error {
	return m.Called(ctx, username, passwordHash).Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
