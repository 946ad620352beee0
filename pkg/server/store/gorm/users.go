package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// FindByUsername looks a user up by login name.
func (s *UsersStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindByID looks a user up by primary key.
func (s *UsersStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Create inserts the user and its group memberships in one transaction.
func (s *UsersStore) Create(ctx context.Context, user *model.User, groupNames []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Groups").Create(user).Error; err != nil {
			return translateError(err)
		}
		if len(groupNames) == 0 {
			return nil
		}

		var groups []model.Group
		if err := tx.Where("name IN ?", groupNames).Find(&groups).Error; err != nil {
			return err
		}
		if len(groups) != len(groupNames) {
			return fmt.Errorf("%w: one or more groups in %v", store.ErrNotFound, groupNames)
		}
		for _, group := range groups {
			err := tx.Exec(`INSERT INTO user_groups (user_id, group_id) VALUES (?, ?)`, user.ID, group.ID).Error
			if err != nil {
				return translateError(err)
			}
		}
		user.Groups = groups
		return nil
	})
}

// SetPassword replaces the stored hash for username.
func (s *UsersStore) SetPassword(ctx context.Context, username string, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
