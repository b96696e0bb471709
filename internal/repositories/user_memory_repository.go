package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"userhub/internal/models"
	"userhub/internal/sqlerr"
)

// MemoryUserRepository is an in-memory implementation of UserRepository. It
// enforces email uniqueness like the relational schema does. Substring
// matches are case-sensitive.
type MemoryUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

// Create adds a new user and assigns its ID.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return fmt.Errorf("failed to create user: %w: users.email", sqlerr.ErrUniqueViolation)
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

// FindByFilter returns the users matching filter ordered by ID.
func (r *MemoryUserRepository) FindByFilter(_ context.Context, filter UserFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if filter.Matches(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// GetByID returns a user by its ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
	}
	return &user, nil
}

// Update overwrites the identity fields of a user.
func (r *MemoryUserRepository) Update(_ context.Context, id uint, fields models.UserFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
	}
	if r.emailTaken(fields.Email, id) {
		return fmt.Errorf("failed to update user %d: %w: users.email", id, sqlerr.ErrUniqueViolation)
	}

	user.FirstName = fields.FirstName
	user.LastName = fields.LastName
	user.Email = fields.Email
	user.Phone = fields.Phone
	r.users[id] = user
	return nil
}

// SetDeleted sets the soft-delete flag of a user.
func (r *MemoryUserRepository) SetDeleted(_ context.Context, id uint, deleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
	}
	user.IsDeleted = deleted
	r.users[id] = user
	return nil
}

// emailTaken reports whether a user other than except uses email. Callers
// hold r.mu.
func (r *MemoryUserRepository) emailTaken(email string, except uint) bool {
	for id, u := range r.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}
