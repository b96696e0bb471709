package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"userhub/internal/errs"
	"userhub/internal/models"
	"userhub/internal/services"
	"userhub/internal/validation"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service  *services.UserService
	validate *validation.Validator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, validate *validation.Validator) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	// Static segments go before /:id so they are not read as an ID.
	userRoutes.Get("/getAllByfilters", h.HandleGetUsersByFilters)
	userRoutes.Patch("/updateDeleteStatus/:id", h.HandleRestoreUser)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Patch("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleCreateUser creates a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.NewBadRequestError("Invalid request body: "+err.Error(), "")
	}
	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		return errs.NewValidationError(fieldErrors)
	}

	user, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUsersByFilters returns the users matching any query parameter.
func (h *UserHandler) HandleGetUsersByFilters(c *fiber.Ctx) error {
	users, err := h.service.FindAllByFilters(c.UserContext(), c.Queries())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// HandleGetUser retrieves a single live user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user, err := h.service.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateUser replaces the identity fields of a live user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.NewBadRequestError("Invalid request body: "+err.Error(), "")
	}
	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		return errs.NewValidationError(fieldErrors)
	}

	user, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleDeleteUser soft-deletes a user.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user, err := h.service.Remove(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleRestoreUser clears the soft-delete flag of a user.
func (h *UserHandler) HandleRestoreUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user, err := h.service.UpdateDeleteStatus(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func userID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errs.NewValidationError([]errs.FieldError{{Field: "id", Error: "must be a positive integer"}})
	}
	return uint(id), nil
}
