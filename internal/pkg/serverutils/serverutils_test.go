package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/bad", func(c *fiber.Ctx) error { return NewBadRequestError("too many messages") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db is down") })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.JSON(SuccessResponse("fine", 1)) })

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{path: "/bad", code: 400, message: "too many messages"},
		{path: "/fiber", code: 404, message: "Not Found"},
		{path: "/boom", code: 500, message: "Internal server error"},
		{path: "/ok", code: 200, message: "fine"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
			body := decode(t, resp.Body)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.code == 200, body["success"])
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Title string  `validate:"required"`
		Ids   []int64 `validate:"max=2"`
	}

	assert.NoError(t, ValidateRequest(req{Title: "x", Ids: []int64{1}}))

	err := ValidateRequest(req{Ids: []int64{1, 2, 3}})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Contains(t, appErr.Message, "title is required")
	assert.Contains(t, appErr.Message, "ids must be at most 2")
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userId := uuid.New()

	app := fiber.New()
	app.Use(JwtMiddleware)
	app.Get("/me", func(c *fiber.Ctx) error {
		id, err := UserId(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})

	token, err := SignToken(userId, "test-secret", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, userId.String(), string(body))

	forged, err := SignToken(userId, "other-secret", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
