package services

import (
	"context"
	"errors"
	"net/url"

	"github.com/rs/zerolog"

	"userhub/internal/errs"
	"userhub/internal/models"
	"userhub/internal/repositories"
	"userhub/internal/sqlerr"
)

// UserService handles business logic related to users. Every error it
// returns is an *errs.HTTPError.
type UserService struct {
	repo      repositories.UserRepository
	publisher EventPublisher
	exchange  string
	log       zerolog.Logger
}

// NewUserService creates a new UserService. publisher may be nil, in which
// case no lifecycle events are sent.
func NewUserService(repo repositories.UserRepository, publisher EventPublisher, exchange string, log zerolog.Logger) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
		exchange:  exchange,
		log:       log.With().Str("component", "user_service").Logger(),
	}
}

// Create persists a new user built from the request.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	user := req.NewUser()
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.storeError(err, "create")
	}

	s.log.Info().Uint("user_id", user.ID).Msg("user created")
	s.publish(EventUserCreated, user)
	return user, nil
}

// FindAllByFilters returns the users matching any of the given parameters.
// Values are percent-decoded before matching. Without recognised parameters
// every row is returned, soft-deleted ones included.
func (s *UserService) FindAllByFilters(ctx context.Context, params map[string]string) ([]models.User, error) {
	decoded := make(map[string]string, len(params))
	var fieldErrors []errs.FieldError
	for key, value := range params {
		if !repositories.IsFilterField(key) {
			continue
		}
		v, err := url.PathUnescape(value)
		if err != nil {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: key, Error: "Invalid percent-encoding"})
			continue
		}
		decoded[key] = v
	}
	if len(fieldErrors) > 0 {
		return nil, errs.NewValidationError(fieldErrors)
	}

	filter, err := repositories.NewUserFilter(decoded)
	if err != nil {
		var filterErr *repositories.FilterError
		if errors.As(err, &filterErr) {
			return nil, errs.NewValidationError([]errs.FieldError{{Field: filterErr.Field, Error: filterErr.Message}})
		}
		return nil, errs.NewBadRequestError(err.Error(), "")
	}

	users, err := s.repo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, s.storeError(err, "find")
	}
	return users, nil
}

// FindOne returns a live user. Missing and soft-deleted users are both
// not found.
func (s *UserService) FindOne(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, errs.NewNotFoundError("User deleted")
	}
	return user, nil
}

// Update overwrites the identity fields of a live user and returns the
// refreshed row.
func (s *UserService) Update(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, req.UserFields); err != nil {
		return nil, s.storeError(err, "update")
	}

	user, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", id).Msg("user updated")
	s.publish(EventUserUpdated, user)
	return user, nil
}

// Remove soft-deletes a live user and returns the refreshed row.
func (s *UserService) Remove(ctx context.Context, id uint) (*models.User, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetDeleted(ctx, id, true); err != nil {
		return nil, s.storeError(err, "delete")
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", id).Msg("user soft-deleted")
	s.publish(EventUserDeleted, user)
	return user, nil
}

// UpdateDeleteStatus restores a user, deleted or not, and returns the
// refreshed row.
func (s *UserService) UpdateDeleteStatus(ctx context.Context, id uint) (*models.User, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return nil, s.storeError(err, "restore")
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", id).Msg("user restored")
	s.publish(EventUserRestored, user)
	return user, nil
}

// get reads a user regardless of its soft-delete flag.
func (s *UserService) get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "get")
	}
	return user, nil
}

func (s *UserService) storeError(err error, op string) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return errs.NewNotFoundError("User not found")
	}
	s.log.Warn().Err(err).Str("op", op).Msg("store operation failed")
	return sqlerr.HandleError(err, "user")
}
