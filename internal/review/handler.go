package review

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bloom-aura/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/products/:id<int>/reviews", h.listForProduct)
}

func (h *Handler) RegisterCustomerRoutes(r fiber.Router, protect fiber.Handler) {
	r.Post("/products/:id<int>/reviews", protect, h.submit)
}

// RegisterAdminRoutes expects r to be the /admin group.
func (h *Handler) RegisterAdminRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/reviews", protect, h.moderationQueue)
	r.Post("/reviews/:id<int>/approve", protect, h.approve)
	r.Delete("/reviews/:id<int>", protect, h.remove)
}

func (h *Handler) listForProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	reviews, err := h.service.ListApproved(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(reviews)
}

func (h *Handler) submit(c *fiber.Ctx) error {
	customerID, err := auth.CustomerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	created, err := h.service.Submit(c.UserContext(), customerID, productID, *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thanks! Your review will appear once approved.",
		"review":  created,
	})
}

func (h *Handler) moderationQueue(c *fiber.Ctx) error {
	reviews, err := h.service.ListForModeration(c.UserContext(), c.QueryBool("pending", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(reviews)
}

func (h *Handler) approve(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid review id"})
	}
	rv, err := h.service.Approve(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rv)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid review id"})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "review deleted"})
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": ve.Fields})
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrAlreadyReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
