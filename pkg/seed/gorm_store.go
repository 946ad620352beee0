package seed

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)

// naturalKeys maps each kind onto its table and unique column.
var naturalKeys = map[Kind][2]string{
	KindPermission: {"permissions", "codename"},
	KindMenu:       {"menus", "name"},
	KindModule:     {"modules", "name"},
	KindGroup:      {"groups", "name"},
	KindUser:       {"users", "username"},
}

// GormStore implements Store using GORM for database operations.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Transaction wraps operations in a database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

type keyRow struct {
	ID         uint
	NaturalKey string
}

// Lookup resolves natural keys to ids.
func (s *GormStore) Lookup(ctx context.Context, kind Kind, keys []string) (map[string]uint, error) {
	ids := make(map[string]uint, len(keys))
	if len(keys) == 0 {
		return ids, nil
	}
	nk, ok := naturalKeys[kind]
	if !ok {
		return nil, fmt.Errorf("cannot look up %s by natural key", kind)
	}

	var rows []keyRow
	query := fmt.Sprintf("SELECT id, %[2]s AS natural_key FROM %[1]s WHERE %[2]s IN ?", nk[0], nk[1])
	if err := s.db.WithContext(ctx).Raw(query, keys).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	for _, row := range rows {
		ids[row.NaturalKey] = row.ID
	}
	return ids, nil
}

func (s *GormStore) returningID(ctx context.Context, kind Kind, query string, args ...interface{}) (uint, error) {
	var id uint
	if err := s.db.WithContext(ctx).Raw(query, args...).Row().Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert %s: %w", kind, err)
	}
	return id, nil
}

// UpsertPermission keys on codename and refreshes the display name.
func (s *GormStore) UpsertPermission(ctx context.Context, p model.Permission) (uint, error) {
	return s.returningID(ctx, KindPermission,
		`INSERT INTO permissions (name, codename) VALUES (?, ?)
		ON CONFLICT (codename) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		p.Name, p.Codename)
}

// UpsertMenu keys on name.
func (s *GormStore) UpsertMenu(ctx context.Context, m model.Menu) (uint, error) {
	return s.returningID(ctx, KindMenu,
		`INSERT INTO menus (name, icon) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET icon = EXCLUDED.icon
		RETURNING id`,
		m.Name, m.Icon)
}

// UpsertModule keys on name.
func (s *GormStore) UpsertModule(ctx context.Context, m model.Module) (uint, error) {
	return s.returningID(ctx, KindModule,
		`INSERT INTO modules (name, url, description, icon, menu_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			menu_id = EXCLUDED.menu_id
		RETURNING id`,
		m.Name, m.URL, m.Description, m.Icon, m.MenuID)
}

// UpsertGroup keys on name.
func (s *GormStore) UpsertGroup(ctx context.Context, name string) (uint, error) {
	return s.returningID(ctx, KindGroup,
		`INSERT INTO groups (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name)
}

// UpsertUser keys on username.
func (s *GormStore) UpsertUser(ctx context.Context, u model.User) (uint, error) {
	return s.returningID(ctx, KindUser,
		`INSERT INTO users (username, password_hash, email, is_active, is_superuser) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			email = EXCLUDED.email,
			is_active = EXCLUDED.is_active,
			is_superuser = EXCLUDED.is_superuser
		RETURNING id`,
		u.Username, u.PasswordHash, u.Email, u.IsActive, u.IsSuperuser)
}

// UpsertGrant keys on the (group, module) pair and touches updated_at.
func (s *GormStore) UpsertGrant(ctx context.Context, groupID, moduleID uint) (uint, error) {
	return s.returningID(ctx, KindGrant,
		`INSERT INTO group_module_permissions (group_id, module_id) VALUES (?, ?)
		ON CONFLICT (group_id, module_id) DO UPDATE SET updated_at = now()
		RETURNING id`,
		groupID, moduleID)
}

// ReplaceLinks deletes the owner's rows in link.Table and inserts targetIDs.
func (s *GormStore) ReplaceLinks(ctx context.Context, link Link, ownerID uint, targetIDs []uint) error {
	db := s.db.WithContext(ctx)
	del := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", link.Table, link.OwnerColumn)
	if err := db.Exec(del, ownerID).Error; err != nil {
		return fmt.Errorf("failed to clear %s: %w", link.Table, err)
	}
	if len(targetIDs) == 0 {
		return nil
	}

	values := make([]string, 0, len(targetIDs))
	args := make([]interface{}, 0, 2*len(targetIDs))
	for _, id := range targetIDs {
		values = append(values, "(?, ?)")
		args = append(args, ownerID, id)
	}
	ins := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES %s ON CONFLICT DO NOTHING",
		link.Table, link.OwnerColumn, link.TargetColumn, strings.Join(values, ", "))
	if err := db.Exec(ins, args...).Error; err != nil {
		return fmt.Errorf("failed to fill %s: %w", link.Table, err)
	}
	return nil
}
