package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// ErrUnknownReference is returned when a key names a row that is neither
// declared in the file nor present in the database.
var ErrUnknownReference = errors.New("unknown reference")

var errDryRun = errors.New("dry run rollback")

// Result counts the rows written by a load.
type Result struct {
	Permissions  int      `json:"permissions"`
	Menus        int      `json:"menus"`
	Modules      int      `json:"modules"`
	Groups       int      `json:"groups"`
	Users        int      `json:"users"`
	Grants       int      `json:"grants"`
	CreatedUsers []string `json:"created_users,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
}

// Loader applies seed files.
type Loader struct {
	store  Store
	hash   func(string) (string, error)
	dryRun bool
}

// NewLoader creates a new seed loader.
func NewLoader(store Store) *Loader {
	return &Loader{store: store, hash: authn.HashPassword}
}

// WithDryRun sets whether to validate only without applying changes.
func (l *Loader) WithDryRun(dryRun bool) *Loader {
	l.dryRun = dryRun
	return l
}

// WithPasswordHasher replaces the bcrypt hasher.
func (l *Loader) WithPasswordHasher(hash func(string) (string, error)) *Loader {
	l.hash = hash
	return l
}

// LoadFromReader parses and loads a seed file from an io.Reader.
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, f)
}

// Load applies f in a single transaction. Sections are written in dependency
// order: permissions, menus, modules, groups, users, grants. Relations that a
// section declares replace the stored ones; an omitted relation key leaves the
// stored relation untouched.
func (l *Loader) Load(ctx context.Context, f *File) (*Result, error) {
	result := &Result{DryRun: l.dryRun}

	err := l.store.Transaction(ctx, func(tx Store) error {
		lc := &loadContext{store: tx, hash: l.hash, result: result, ids: map[Kind]map[string]uint{}}
		steps := []func(context.Context, *File) error{
			lc.loadPermissions,
			lc.loadMenus,
			lc.loadModules,
			lc.loadGroups,
			lc.loadUsers,
			lc.loadGrants,
		}
		for _, step := range steps {
			if err := step(ctx, f); err != nil {
				return err
			}
		}
		if l.dryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

type loadContext struct {
	store  Store
	hash   func(string) (string, error)
	result *Result
	ids    map[Kind]map[string]uint
}

func (lc *loadContext) remember(kind Kind, key string, id uint) {
	if lc.ids[kind] == nil {
		lc.ids[kind] = map[string]uint{}
	}
	lc.ids[kind][key] = id
}

// resolve returns the ids of keys in order, consulting the rows written by
// this load before the database.
func (lc *loadContext) resolve(ctx context.Context, kind Kind, keys []string) ([]uint, error) {
	var missing []string
	for _, key := range keys {
		if _, ok := lc.ids[kind][key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		found, err := lc.store.Lookup(ctx, kind, missing)
		if err != nil {
			return nil, err
		}
		for key, id := range found {
			lc.remember(kind, key, id)
		}
	}

	ids := make([]uint, 0, len(keys))
	seen := map[uint]bool{}
	for _, key := range keys {
		id, ok := lc.ids[kind][key]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w", kind, key, ErrUnknownReference)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	return ids, nil
}

func (lc *loadContext) resolveOne(ctx context.Context, kind Kind, key string) (uint, error) {
	ids, err := lc.resolve(ctx, kind, []string{key})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func (lc *loadContext) loadPermissions(ctx context.Context, f *File) error {
	for _, p := range f.Permissions {
		id, err := lc.store.UpsertPermission(ctx, model.Permission{Name: p.Name, Codename: p.Codename})
		if err != nil {
			return err
		}
		lc.remember(KindPermission, p.Codename, id)
		lc.result.Permissions++
	}
	return nil
}

func (lc *loadContext) loadMenus(ctx context.Context, f *File) error {
	for _, m := range f.Menus {
		id, err := lc.store.UpsertMenu(ctx, model.Menu{Name: m.Name, Icon: m.Icon})
		if err != nil {
			return err
		}
		lc.remember(KindMenu, m.Name, id)
		lc.result.Menus++
	}
	return nil
}

func (lc *loadContext) loadModules(ctx context.Context, f *File) error {
	for _, m := range f.Modules {
		module := model.Module{Name: m.Name, URL: m.URL, Description: m.Description, Icon: m.Icon}
		if m.Menu != "" {
			menuID, err := lc.resolveOne(ctx, KindMenu, m.Menu)
			if err != nil {
				return fmt.Errorf("module %q: %w", m.Name, err)
			}
			module.MenuID = &menuID
		}

		id, err := lc.store.UpsertModule(ctx, module)
		if err != nil {
			return err
		}
		lc.remember(KindModule, m.Name, id)
		lc.result.Modules++

		if m.Permissions == nil {
			continue
		}
		if err := lc.link(ctx, ModulePermissions, id, KindPermission, m.Permissions); err != nil {
			return fmt.Errorf("module %q: %w", m.Name, err)
		}
	}
	return nil
}

func (lc *loadContext) loadGroups(ctx context.Context, f *File) error {
	for _, g := range f.Groups {
		id, err := lc.store.UpsertGroup(ctx, g.Name)
		if err != nil {
			return err
		}
		lc.remember(KindGroup, g.Name, id)
		lc.result.Groups++

		if g.Permissions == nil {
			continue
		}
		if err := lc.link(ctx, GroupPermissions, id, KindPermission, g.Permissions); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
	}
	return nil
}

func (lc *loadContext) loadUsers(ctx context.Context, f *File) error {
	if len(f.Users) == 0 {
		return nil
	}
	usernames := make([]string, 0, len(f.Users))
	for _, u := range f.Users {
		usernames = append(usernames, u.Username)
	}
	existing, err := lc.store.Lookup(ctx, KindUser, usernames)
	if err != nil {
		return err
	}

	for _, u := range f.Users {
		user := model.User{
			Username:    u.Username,
			Email:       u.Email,
			IsActive:    u.IsActive(),
			IsSuperuser: u.Superuser,
		}
		_, exists := existing[u.Username]
		if !exists {
			hash, err := lc.hash(u.Password)
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Username, err)
			}
			user.PasswordHash = hash
		}

		id, err := lc.store.UpsertUser(ctx, user)
		if err != nil {
			return err
		}
		lc.remember(KindUser, u.Username, id)
		lc.result.Users++
		if !exists {
			lc.result.CreatedUsers = append(lc.result.CreatedUsers, u.Username)
		}

		if u.Groups == nil {
			continue
		}
		if err := lc.link(ctx, UserGroups, id, KindGroup, u.Groups); err != nil {
			return fmt.Errorf("user %q: %w", u.Username, err)
		}
	}
	return nil
}

func (lc *loadContext) loadGrants(ctx context.Context, f *File) error {
	for _, g := range f.Grants {
		groupID, err := lc.resolveOne(ctx, KindGroup, g.Group)
		if err != nil {
			return fmt.Errorf("grant: %w", err)
		}
		moduleID, err := lc.resolveOne(ctx, KindModule, g.Module)
		if err != nil {
			return fmt.Errorf("grant: %w", err)
		}

		id, err := lc.store.UpsertGrant(ctx, groupID, moduleID)
		if err != nil {
			return err
		}
		lc.result.Grants++

		if err := lc.link(ctx, GrantPermissions, id, KindPermission, g.Permissions); err != nil {
			return fmt.Errorf("grant %q/%q: %w", g.Group, g.Module, err)
		}
	}
	return nil
}

func (lc *loadContext) link(ctx context.Context, link Link, ownerID uint, kind Kind, keys []string) error {
	ids, err := lc.resolve(ctx, kind, keys)
	if err != nil {
		return err
	}
	return lc.store.ReplaceLinks(ctx, link, ownerID, ids)
}
