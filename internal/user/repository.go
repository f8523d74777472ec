// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"mailru_broker/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for federated user data operations.
type Repository interface {
	Create(ctx context.Context, user *FederatedUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*FederatedUser, error)
	FindByAliasAndEmail(ctx context.Context, alias, email string) (*FederatedUser, error)
	Update(ctx context.Context, user *FederatedUser) error
	DeleteNotSeenSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user record.
func (r *gormRepository) Create(ctx context.Context, user *FederatedUser) error {
	user.EmailKey = emailKey(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("This federated identity is already linked to a user.")
		}
		return err
	}
	return nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*FederatedUser, error) {
	var u FederatedUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &u, nil
}

// FindByAliasAndEmail looks up the account linked to email at provider alias.
// Emails are compared case-insensitively.
func (r *gormRepository) FindByAliasAndEmail(ctx context.Context, alias, email string) (*FederatedUser, error) {
	var u FederatedUser
	err := r.db.WithContext(ctx).
		Where("idp_alias = ? AND email_key = ?", alias, emailKey(email)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No user is linked to this federated identity.")
		}
		return nil, err
	}
	return &u, nil
}

// Update saves an existing user record.
func (r *gormRepository) Update(ctx context.Context, user *FederatedUser) error {
	user.EmailKey = emailKey(user.Email)
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: federated identity already linked to another user.")
		}
		return err
	}
	return nil
}

// DeleteNotSeenSince removes users whose last login is before cutoff.
func (r *gormRepository) DeleteNotSeenSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("last_login_at IS NOT NULL AND last_login_at < ?", cutoff).
		Delete(&FederatedUser{})
	return res.RowsAffected, res.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
