package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAction_Codename(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionView, "view_groupmodulepermission"},
		{ActionAdd, "add_groupmodulepermission"},
		{ActionChange, "change_groupmodulepermission"},
		{ActionDelete, "delete_groupmodulepermission"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.action.Codename(GroupModulePermissionCodename))
		})
	}
}

func TestAction_YAML(t *testing.T) {
	var actions []Action
	err := yaml.Unmarshal([]byte("[view, ADD, change]"), &actions)
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionView, ActionAdd, ActionChange}, actions)

	err = yaml.Unmarshal([]byte("[publish]"), &actions)
	assert.Error(t, err)
}

func TestGroupModulePermission_PermissionHelpers(t *testing.T) {
	gmp := GroupModulePermission{
		Permissions: []Permission{
			{ID: 3, Name: "Can add groupmodulepermission", Codename: "add_groupmodulepermission"},
			{ID: 7, Name: "Can view groupmodulepermission", Codename: "view_groupmodulepermission"},
		},
	}

	assert.Equal(t, []uint{3, 7}, gmp.PermissionIDs())
	assert.Equal(t, []string{"Can add groupmodulepermission", "Can view groupmodulepermission"}, gmp.PermissionNames())
}

func TestModule_PermissionRefs(t *testing.T) {
	m := Module{Permissions: []Permission{{ID: 1, Name: "Read", Codename: "read"}}}
	assert.Equal(t, []PermissionRef{{ID: 1, Name: "Read"}}, m.PermissionRefs())
	assert.Empty(t, Module{}.PermissionRefs())
}
