package customer

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bloom-aura/internal/auth"
)

type Handler struct {
	service  *Service
	secret   string
	tokenTTL time.Duration
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewHandler signs customer tokens with secret.
func NewHandler(service *Service, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{service: service, secret: secret, tokenTTL: tokenTTL}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router, throttle fiber.Handler) {
	r.Post("/sign-up", throttle, h.signUp)
	r.Post("/sign-in", throttle, h.signIn)
}

func (h *Handler) RegisterCustomerRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/profile", protect, h.getProfile)
	r.Patch("/profile", protect, h.updateProfile)
}

// RegisterAdminRoutes expects r to be the /admin group.
func (h *Handler) RegisterAdminRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/customers", protect, h.listCustomers)
	r.Get("/customers/:id<int>", protect, h.getCustomer)
}

func (h *Handler) signUp(c *fiber.Ctx) error {
	payload := new(SignUp)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}

	cust, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return writeError(c, err)
	}

	token, err := auth.IssueToken(h.secret, auth.RoleCustomer, cust.ID, cust.Email, h.tokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"customer": cust,
		"token":    token,
	})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	id, err := auth.CustomerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	cust, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cust)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	id, err := auth.CustomerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload ProfileUpdate
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	updated, err := h.service.UpdateProfile(c.UserContext(), id, payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) listCustomers(c *fiber.Ctx) error {
	customers, err := h.service.List(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(customers)
}

func (h *Handler) getCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid customer id"})
	}
	cust, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cust)
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": ve.Fields})
	case errors.Is(err, ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	case errors.Is(err, ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "customer not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
