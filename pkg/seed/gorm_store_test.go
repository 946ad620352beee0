package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_UpsertPermission(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(`INSERT INTO permissions \(name, codename\) VALUES \(\$1, \$2\)\s+ON CONFLICT \(codename\) DO UPDATE SET name = EXCLUDED.name\s+RETURNING id`).
		WithArgs("Can view invoices", "view_invoice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := s.UpsertPermission(context.Background(), model.Permission{Name: "Can view invoices", Codename: "view_invoice"})
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpsertUser_KeepsPasswordHash(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(username\) DO UPDATE SET\s+email = EXCLUDED.email,\s+is_active = EXCLUDED.is_active,\s+is_superuser = EXCLUDED.is_superuser\s+RETURNING id`).
		WithArgs("alice", "", "alice@example.com", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, err := s.UpsertUser(context.Background(), model.User{Username: "alice", Email: "alice@example.com", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpsertGrant_Error(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(`INSERT INTO group_module_permissions \(group_id, module_id\)`).
		WithArgs(1, 2).
		WillReturnError(errors.New("boom"))

	_, err := s.UpsertGrant(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert grant")
}

func TestGormStore_Lookup(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(`SELECT id, name AS natural_key FROM groups WHERE name IN \(\$1,\$2\)`).
		WithArgs("ops", "finance").
		WillReturnRows(sqlmock.NewRows([]string{"id", "natural_key"}).AddRow(1, "ops"))

	ids, err := s.Lookup(context.Background(), KindGroup, []string{"ops", "finance"})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"ops": 1}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Lookup_NoKeys(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	ids, err := s.Lookup(context.Background(), KindGroup, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Lookup_Grant(t *testing.T) {
	db, _ := setupTestDB(t)
	s := NewGormStore(db)

	_, err := s.Lookup(context.Background(), KindGrant, []string{"ops"})
	require.Error(t, err)
}

func TestGormStore_ReplaceLinks(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectExec(`DELETE FROM group_permissions WHERE group_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO group_permissions \(group_id, permission_id\) VALUES \(\$1, \$2\), \(\$3, \$4\) ON CONFLICT DO NOTHING`).
		WithArgs(7, 10, 7, 11).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.ReplaceLinks(context.Background(), GroupPermissions, 7, []uint{10, 11})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ReplaceLinks_Empty(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectExec(`DELETE FROM user_groups WHERE user_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.ReplaceLinks(context.Background(), UserGroups, 3, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Transaction_Rollback(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO groups \(name\) VALUES \(\$1\)`).
		WithArgs("ops").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	err := s.Transaction(context.Background(), func(tx Store) error {
		if _, err := tx.UpsertGroup(context.Background(), "ops"); err != nil {
			return err
		}
		return errDryRun
	})
	require.ErrorIs(t, err, errDryRun)
	assert.NoError(t, mock.ExpectationsWereMet())
}
