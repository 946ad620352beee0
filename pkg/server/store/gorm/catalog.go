package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// Ensure CatalogStore implements store.CatalogStore
var _ store.CatalogStore = (*CatalogStore)(nil)

// CatalogStore implements store.CatalogStore using GORM
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore creates a new CatalogStore
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	groups := []model.Group{}
	err := s.db.WithContext(ctx).Order("name").Find(&groups).Error
	return groups, err
}

func (s *CatalogStore) ListModules(ctx context.Context) ([]model.Module, error) {
	modules := []model.Module{}
	err := s.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&modules).Error
	return modules, err
}

func (s *CatalogStore) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	permissions := []model.Permission{}
	err := s.db.WithContext(ctx).Order("name").Find(&permissions).Error
	return permissions, err
}

func (s *CatalogStore) ListMenus(ctx context.Context) ([]model.Menu, error) {
	menus := []model.Menu{}
	err := s.db.WithContext(ctx).Order("name").Find(&menus).Error
	return menus, err
}

func (s *CatalogStore) FindGroups(ctx context.Context, ids []uint) ([]model.Group, error) {
	groups := []model.Group{}
	if len(ids) == 0 {
		return groups, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

func (s *CatalogStore) FindModules(ctx context.Context, ids []uint) ([]model.Module, error) {
	modules := []model.Module{}
	if len(ids) == 0 {
		return modules, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&modules).Error
	return modules, err
}

func (s *CatalogStore) FindPermissions(ctx context.Context, ids []uint) ([]model.Permission, error) {
	permissions := []model.Permission{}
	if len(ids) == 0 {
		return permissions, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&permissions).Error
	return permissions, err
}

func (s *CatalogStore) FindMenus(ctx context.Context, ids []uint) ([]model.Menu, error) {
	menus := []model.Menu{}
	if len(ids) == 0 {
		return menus, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&menus).Error
	return menus, err
}
