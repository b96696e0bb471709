package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"userhub/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user; the store assigns user.ID.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByFilter returns the rows matching any clause of filter, in the order
// the store returns them.
func (r *GORMUserRepository) FindByFilter(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	for i, clause := range filter {
		expr, arg := clause.SQL()
		if i == 0 {
			query = query.Where(expr, arg)
		} else {
			query = query.Or(expr, arg)
		}
	}

	users := make([]models.User, 0)
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID, soft-deleted or not.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// Update overwrites the identity fields of a user.
func (r *GORMUserRepository) Update(ctx context.Context, id uint, fields models.UserFields) error {
	// A map keeps gorm from skipping zero values.
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"first_name": fields.FirstName,
		"last_name":  fields.LastName,
		"email":      fields.Email,
		"phone":      fields.Phone,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
	}
	return nil
}

// SetDeleted sets the soft-delete flag of a user.
func (r *GORMUserRepository) SetDeleted(ctx context.Context, id uint, deleted bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_deleted", deleted)
	if res.Error != nil {
		return fmt.Errorf("failed to set delete status of user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
	}
	return nil
}
