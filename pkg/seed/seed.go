package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the document read by "rbacctl seed load".
//
//	permissions:
//	  - name: Can view invoices
//	    codename: view_invoice
//	menus:
//	  - name: Finance
//	modules:
//	  - name: Billing
//	    menu: Finance
//	    permissions: [view_invoice]
//	groups:
//	  - name: accountants
//	    permissions: [view_groupmodulepermission]
//	users:
//	  - username: alice
//	    password: correct-horse
//	    groups: [accountants]
//	grants:
//	  - group: accountants
//	    module: Billing
//	    permissions: [view_invoice]
//
// Everything is referenced by natural key: permissions by codename, the rest
// by name.
type File struct {
	Permissions []Permission `yaml:"permissions"`
	Menus       []Menu       `yaml:"menus"`
	Modules     []Module     `yaml:"modules"`
	Groups      []Group      `yaml:"groups"`
	Users       []User       `yaml:"users"`
	Grants      []Grant      `yaml:"grants"`
}

type Permission struct {
	Name     string `yaml:"name"`
	Codename string `yaml:"codename"`
}

type Menu struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon,omitempty"`
}

type Module struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url,omitempty"`
	// Description is markdown.
	Description string   `yaml:"description,omitempty"`
	Icon        string   `yaml:"icon,omitempty"`
	Menu        string   `yaml:"menu,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
}

type Group struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// User is created with Password on first load. Later loads keep the stored
// hash; use "rbacctl user set-password" to change it.
type User struct {
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Email     string   `yaml:"email,omitempty"`
	Active    *bool    `yaml:"active,omitempty"`
	Superuser bool     `yaml:"superuser,omitempty"`
	Groups    []string `yaml:"groups,omitempty"`
}

// IsActive defaults to true when the key is absent.
func (u User) IsActive() bool {
	return u.Active == nil || *u.Active
}

type Grant struct {
	Group       string   `yaml:"group"`
	Module      string   `yaml:"module"`
	Permissions []string `yaml:"permissions"`
}

// Parse decodes a seed document and validates it. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ValidationError lists every problem found in a seed file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid seed file: " + strings.Join(e.Problems, "; ")
}

// Validate checks required keys and duplicates within the file. References to
// rows that are not declared in the file are resolved against the database at
// load time.
func (f *File) Validate() error {
	v := &validator{}

	codenames := v.unique(KindPermission)
	for i, p := range f.Permissions {
		v.required(KindPermission, i, "codename", p.Codename)
		v.required(KindPermission, i, "name", p.Name)
		codenames(p.Codename)
	}

	menus := v.unique(KindMenu)
	for i, m := range f.Menus {
		v.required(KindMenu, i, "name", m.Name)
		menus(m.Name)
	}

	modules := v.unique(KindModule)
	for i, m := range f.Modules {
		v.required(KindModule, i, "name", m.Name)
		modules(m.Name)
	}

	groups := v.unique(KindGroup)
	for i, g := range f.Groups {
		v.required(KindGroup, i, "name", g.Name)
		groups(g.Name)
	}

	users := v.unique(KindUser)
	for i, u := range f.Users {
		v.required(KindUser, i, "username", u.Username)
		v.required(KindUser, i, "password", u.Password)
		users(u.Username)
	}

	pairs := map[[2]string]bool{}
	for i, g := range f.Grants {
		v.required(KindGrant, i, "group", g.Group)
		v.required(KindGrant, i, "module", g.Module)
		if len(g.Permissions) == 0 {
			v.addf("%s #%d: permissions is required", KindGrant, i+1)
		}
		key := [2]string{g.Group, g.Module}
		if pairs[key] {
			v.addf("%s #%d: group %q and module %q are declared twice", KindGrant, i+1, g.Group, g.Module)
		}
		pairs[key] = true
	}

	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...interface{}) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) required(kind Kind, index int, key, value string) {
	if strings.TrimSpace(value) == "" {
		v.addf("%s #%d: %s is required", kind, index+1, key)
	}
}

func (v *validator) unique(kind Kind) func(string) {
	seen := map[string]bool{}
	return func(key string) {
		if key == "" {
			return
		}
		if seen[key] {
			v.addf("%s %q is declared twice", kind, key)
		}
		seen[key] = true
	}
}
