package model

// Group is a named set of users. Permissions reach users through their groups.
type Group struct {
	ID          uint         `gorm:"column:id;primaryKey" json:"id"`
	Name        string       `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:group_permissions;" json:"permissions,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}
