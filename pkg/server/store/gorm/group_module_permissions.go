package gorm

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// Ensure GroupModulePermissionsStore implements store.GroupModulePermissionsStore
var _ store.GroupModulePermissionsStore = (*GroupModulePermissionsStore)(nil)

// GroupModulePermissionsStore implements store.GroupModulePermissionsStore using GORM
type GroupModulePermissionsStore struct {
	db *gorm.DB
}

// NewGroupModulePermissionsStore creates a new GroupModulePermissionsStore
func NewGroupModulePermissionsStore(db *gorm.DB) *GroupModulePermissionsStore {
	return &GroupModulePermissionsStore{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *GroupModulePermissionsStore) filtered(ctx context.Context, query string) *gorm.DB {
	tx := s.db.WithContext(ctx).
		Model(&model.GroupModulePermission{}).
		Joins(`JOIN groups ON groups.id = group_module_permissions.group_id`).
		Joins(`JOIN modules ON modules.id = group_module_permissions.module_id`)

	if query = strings.TrimSpace(query); query != "" {
		like := "%" + likeEscaper.Replace(query) + "%"
		tx = tx.Where(`groups.name ILIKE ? OR modules.name ILIKE ?`, like, like)
	}
	return tx
}

// List returns one page of grants matching the filter.
func (s *GroupModulePermissionsStore) List(ctx context.Context, filter store.GrantFilter) ([]model.GroupModulePermission, int64, error) {
	var total int64
	if err := s.filtered(ctx, filter.Query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	grants := []model.GroupModulePermission{}
	if total == 0 {
		return grants, 0, nil
	}

	tx := s.filtered(ctx, filter.Query).
		Select(`group_module_permissions.*`).
		Order(`groups.name, modules.name, group_module_permissions.id`).
		Preload("Group").
		Preload("Module").
		Preload("Permissions")
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := tx.Find(&grants).Error; err != nil {
		return nil, 0, err
	}
	return grants, total, nil
}

// Fetch loads a single grant with its relations.
func (s *GroupModulePermissionsStore) Fetch(ctx context.Context, id uint) (*model.GroupModulePermission, error) {
	var grant model.GroupModulePermission
	err := s.db.WithContext(ctx).
		Preload("Group").
		Preload("Module").
		Preload("Permissions").
		First(&grant, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &grant, nil
}

// Create inserts one grant per module in a single transaction.
func (s *GroupModulePermissionsStore) Create(ctx context.Context, groupID uint, moduleIDs []uint, permissionIDs []uint) ([]model.GroupModulePermission, error) {
	created := make([]model.GroupModulePermission, 0, len(moduleIDs))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, moduleID := range moduleIDs {
			grant := model.GroupModulePermission{GroupID: groupID, ModuleID: moduleID}
			if err := tx.Create(&grant).Error; err != nil {
				return translateError(err)
			}
			if err := replacePermissions(tx, grant.ID, permissionIDs); err != nil {
				return err
			}
			created = append(created, grant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update moves a grant to (groupID, moduleID) and replaces its permission set.
func (s *GroupModulePermissionsStore) Update(ctx context.Context, id uint, groupID uint, moduleID uint, permissionIDs []uint) (*model.GroupModulePermission, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var grant model.GroupModulePermission
		if err := tx.First(&grant, id).Error; err != nil {
			return translateError(err)
		}

		err := tx.Model(&grant).Updates(map[string]interface{}{
			"group_id":  groupID,
			"module_id": moduleID,
		}).Error
		if err != nil {
			return translateError(err)
		}
		return replacePermissions(tx, grant.ID, permissionIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Fetch(ctx, id)
}

// Delete removes a grant. Its permission links go with it (ON DELETE CASCADE).
func (s *GroupModulePermissionsStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.GroupModulePermission{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// replacePermissions swaps the permission links of a grant wholesale.
func replacePermissions(tx *gorm.DB, grantID uint, permissionIDs []uint) error {
	err := tx.Exec(
		`DELETE FROM group_module_permission_permissions WHERE group_module_permission_id = ?`,
		grantID,
	).Error
	if err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(permissionIDs))
	args := make([]interface{}, 0, 2*len(permissionIDs))
	for _, permissionID := range permissionIDs {
		placeholders = append(placeholders, "(?, ?)")
		args = append(args, grantID, permissionID)
	}
	query := `INSERT INTO group_module_permission_permissions (group_module_permission_id, permission_id) VALUES ` +
		strings.Join(placeholders, ", ")
	return translateError(tx.Exec(query, args...).Error)
}
