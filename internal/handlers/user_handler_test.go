package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/config"
	"userhub/internal/database"
	"userhub/internal/errs"
	"userhub/internal/logger"
	"userhub/internal/models"
	"userhub/internal/repositories"
	"userhub/internal/server"
)

// setupApp builds the full application on a private in-memory sqlite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("DB_DRIVER", config.DriverSQLite)
	v.Set("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	log := logger.Nop()
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(context.Background(), db, cfg.DBDriver, log))

	return server.NewApp(server.Deps{
		Config: cfg,
		DB:     db,
		Repo:   repositories.NewGORMUserRepository(db),
		Log:    log,
	})
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func userPayload(first, email string) map[string]interface{} {
	return map[string]interface{}{
		"firstName": first,
		"lastName":  "Doe",
		"email":     email,
		"phone":     "9876543210",
	}
}

func createUser(t *testing.T, app *fiber.App, first, email string) models.User {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/users", userPayload(first, email))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.User](t, resp)
}

func TestCreateUser(t *testing.T) {
	app := setupApp(t)

	user := createUser(t, app, "John", "john@example.com")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "John", user.FirstName)
	assert.False(t, user.IsDeleted)

	// Duplicate email
	resp := doRequest(t, app, http.MethodPost, "/users", userPayload("Johnny", "john@example.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	httpErr := decode[errs.HTTPError](t, resp)
	assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
	assert.NotEmpty(t, httpErr.Message)
}

func TestCreateUser_Validation(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodPost, "/users", map[string]interface{}{
		"firstName": "",
		"lastName":  "Doe",
		"email":     "not-an-email",
		"phone":     "12345",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	httpErr := decode[errs.HTTPError](t, resp)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "firstName", Error: "First Name is required"},
		{Field: "email", Error: "Invalid email format"},
		{Field: "phone", Error: "Invalid phone number format"},
	}, httpErr.Errors)

	// Nothing reached the store.
	resp = doRequest(t, app, http.MethodGet, "/users/getAllByfilters", nil)
	assert.Empty(t, decode[[]models.User](t, resp))
}

func TestCreateUser_MalformedBody(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUsersByFilters(t *testing.T) {
	app := setupApp(t)

	john := createUser(t, app, "John", "john@example.com")
	joanna := createUser(t, app, "Joanna", "joanna@example.com")
	mary := createUser(t, app, "Mary", "mary@example.com")

	resp := doRequest(t, app, http.MethodGet, "/users/getAllByfilters?firstName=Jo", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	users := decode[[]models.User](t, resp)
	assert.ElementsMatch(t, []uint{john.ID, joanna.ID}, ids(users))

	// Clauses are OR-chained.
	resp = doRequest(t, app, http.MethodGet, "/users/getAllByfilters?firstName=Joanna&email=mary%40example.com", nil)
	users = decode[[]models.User](t, resp)
	assert.ElementsMatch(t, []uint{joanna.ID, mary.ID}, ids(users))

	// Soft-deleted rows are still listed by an unconstrained scan.
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", mary.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, "/users/getAllByfilters?unknown=1", nil)
	users = decode[[]models.User](t, resp)
	assert.ElementsMatch(t, []uint{john.ID, joanna.ID, mary.ID}, ids(users))

	resp = doRequest(t, app, http.MethodGet, "/users/getAllByfilters?id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUser(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, app, "John", "john@example.com")

	resp := doRequest(t, app, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, user, decode[models.User](t, resp))

	resp = doRequest(t, app, http.MethodGet, "/users/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", decode[errs.HTTPError](t, resp).Message)

	resp = doRequest(t, app, http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	httpErr := decode[errs.HTTPError](t, resp)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "id", httpErr.Errors[0].Field)
}

func TestUpdateUser(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, app, "John", "john@example.com")
	target := fmt.Sprintf("/users/%d", user.ID)

	payload := userPayload("Jonathan", "jonathan@example.com")
	payload["isDeleted"] = false
	resp := doRequest(t, app, http.MethodPatch, target, payload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.User](t, resp)
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "Jonathan", updated.FirstName)
	assert.Equal(t, "jonathan@example.com", updated.Email)

	payload["isDeleted"] = true
	resp = doRequest(t, app, http.MethodPatch, target, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[errs.HTTPError](t, resp).Errors,
		errs.FieldError{Field: "isDeleted", Error: "User cannot be deleted"})

	resp = doRequest(t, app, http.MethodPatch, "/users/9999", userPayload("Ghost", "ghost@example.com"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAndRestoreUser(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, app, "John", "john@example.com")
	target := fmt.Sprintf("/users/%d", user.ID)

	resp := doRequest(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.User](t, resp).IsDeleted)

	resp = doRequest(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User deleted", decode[errs.HTTPError](t, resp).Message)

	// A deleted user can be neither updated nor deleted again.
	resp = doRequest(t, app, http.MethodPatch, target, userPayload("John", "john@example.com"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doRequest(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/users/updateDeleteStatus/%d", user.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[models.User](t, resp).IsDeleted)

	resp = doRequest(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, user, decode[models.User](t, resp))

	resp = doRequest(t, app, http.MethodPatch, "/users/updateDeleteStatus/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func ids(users []models.User) []uint {
	out := make([]uint, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
