package model

// Permission represents an allowed action, e.g. "add_groupmodulepermission"
type Permission struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	Name     string `gorm:"column:name;not null" json:"name"`
	Codename string `gorm:"column:codename;uniqueIndex;not null" json:"codename"`
}

func (Permission) TableName() string {
	return "permissions"
}

// PermissionRef is the {id, name} pair used to render permission checkboxes
type PermissionRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Ref returns the checkbox representation of the permission
func (p Permission) Ref() PermissionRef {
	return PermissionRef{ID: p.ID, Name: p.Name}
}
