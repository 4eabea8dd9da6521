// User repository functions. Same conventions as ride_repo.go: context-aware,
// handle-passing, raw gorm errors.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/velotrack/go-ride-backend/internal/domain"
)

// CreateUser inserts a new account row and returns the persisted record.
func CreateUser(ctx context.Context, db *gorm.DB, user *domain.User) (*domain.User, error) {
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByEmail returns the account with the given email, or (nil, nil)
// when no such account exists. Lookup misses are a normal outcome for the
// credential endpoints, so they are not reported as errors.
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
