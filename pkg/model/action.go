package model

//go:generate go run github.com/dmarkham/enumer -type Action -trimprefix Action -transform lower -yaml -output action.gen.go

// Action is one of the standard operations a model permission guards
type Action int

const (
	ActionView Action = iota
	ActionAdd
	ActionChange
	ActionDelete
)

// Codename builds the permission codename for the action on a model,
// e.g. ActionAdd.Codename("groupmodulepermission") == "add_groupmodulepermission".
func (a Action) Codename(modelName string) string {
	return a.String() + "_" + modelName
}

// DisplayName is the human readable permission name, e.g. "Can add groupmodulepermission"
func (a Action) DisplayName(modelName string) string {
	return "Can " + a.String() + " " + modelName
}
