package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bloom-aura/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterCustomerRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/orders", protect, h.getOrders)
	r.Get("/orders/:id<int>", protect, h.getOrder)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/orders", protect, h.adminOrders)
	r.Get("/orders/:id<int>", protect, h.adminOrder)
	r.Patch("/orders/:id<int>/status", protect, h.updateStatus)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	customerID, err := auth.CustomerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListForCustomer(c.UserContext(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// getOrder is the confirmation view checkout redirects to.
func (h *Handler) getOrder(c *fiber.Ctx) error {
	customerID, err := auth.CustomerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.ParseInt(c.Params("id"), 10, 64)
	o, err := h.service.GetForCustomer(c.UserContext(), id, customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) adminOrders(c *fiber.Ctx) error {
	orders, err := h.service.List(c.UserContext(), Filter{
		Status:     Status(c.Query("status")),
		CustomerID: int64(c.QueryInt("customer", 0)),
		Limit:      c.QueryInt("limit", DefaultLimit),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) adminOrder(c *fiber.Ctx) error {
	id, _ := strconv.ParseInt(c.Params("id"), 10, 64)
	o, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, _ := strconv.ParseInt(c.Params("id"), 10, 64)
	var body struct {
		Status Status `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	o, err := h.service.UpdateStatus(c.UserContext(), id, body.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalidStatus):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": fiber.Map{"status": err.Error()}})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStatusConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
