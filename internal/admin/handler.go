package admin

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bloom-aura/internal/auth"
)

type Handler struct {
	service  *Service
	secret   string
	tokenTTL time.Duration
}

// NewHandler signs admin tokens with secret, which must differ from the
// customer secret.
func NewHandler(service *Service, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{service: service, secret: secret, tokenTTL: tokenTTL}
}

// RegisterRoutes expects r to be the /admin group.
func (h *Handler) RegisterRoutes(r fiber.Router, throttle fiber.Handler) {
	r.Post("/sign-in", throttle, h.signIn)
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}

	a, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}

	token, err := auth.IssueToken(h.secret, auth.RoleAdmin, a.ID, a.Email, h.tokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}
	return c.JSON(fiber.Map{"message": "Login successful", "admin": a, "token": token})
}
