package model

import "time"

// GroupModulePermissionCodename is the model name used to build the codenames
// guarding the group/module permission pages.
const GroupModulePermissionCodename = "groupmodulepermission"

// GroupModulePermission grants a set of permissions to a group on a module
type GroupModulePermission struct {
	ID          uint         `gorm:"column:id;primaryKey" json:"id"`
	GroupID     uint         `gorm:"column:group_id;not null" json:"group_id"`
	Group       Group        `json:"group"`
	ModuleID    uint         `gorm:"column:module_id;not null" json:"module_id"`
	Module      Module       `json:"module"`
	Permissions []Permission `gorm:"many2many:group_module_permission_permissions;" json:"permissions"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (GroupModulePermission) TableName() string {
	return "group_module_permissions"
}

// PermissionIDs returns the ids of the granted permissions
func (g GroupModulePermission) PermissionIDs() []uint {
	ids := make([]uint, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		ids = append(ids, p.ID)
	}
	return ids
}

// PermissionNames returns the names of the granted permissions
func (g GroupModulePermission) PermissionNames() []string {
	names := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		names = append(names, p.Name)
	}
	return names
}
