package auth

import (
	"laundry-pos/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	service AuthService
}

func NewAuthApi(service AuthService) api.Route {
	return &AuthApi{
		service: service,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Setup registers all auth routes
func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/login", h.login)
}

func (h *AuthApi) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}
