package model

// Menu groups modules in the navigation
type Menu struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Icon string `gorm:"column:icon" json:"icon,omitempty"`
}

func (Menu) TableName() string {
	return "menus"
}

// Module is a functional area of the application to which permissions are scoped
type Module struct {
	ID          uint         `gorm:"column:id;primaryKey" json:"id"`
	Name        string       `gorm:"column:name;uniqueIndex;not null" json:"name"`
	URL         string       `gorm:"column:url" json:"url,omitempty"`
	Description string       `gorm:"column:description" json:"description,omitempty"`
	Icon        string       `gorm:"column:icon" json:"icon,omitempty"`
	MenuID      *uint        `gorm:"column:menu_id" json:"menu_id,omitempty"`
	Menu        *Menu        `json:"menu,omitempty"`
	Permissions []Permission `gorm:"many2many:module_permissions;" json:"permissions,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// PermissionRefs returns the module's own permissions as checkbox refs
func (m Module) PermissionRefs() []PermissionRef {
	refs := make([]PermissionRef, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		refs = append(refs, p.Ref())
	}
	return refs
}
