package repositories

import (
	"context"
	"errors"

	"userhub/internal/models"
)

// ErrUserNotFound is returned when no row has the requested ID.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access. Lookups ignore
// the soft-delete flag; interpreting it is up to the caller.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByFilter(ctx context.Context, filter UserFilter) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, id uint, fields models.UserFields) error
	SetDeleted(ctx context.Context, id uint, deleted bool) error
}
