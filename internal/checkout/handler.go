package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bloom-aura/internal/auth"
	"github.com/wichananm65/bloom-aura/internal/cart"
	"github.com/wichananm65/bloom-aura/internal/order"
)

// SnapshotReader yields the caller's current cart.
type SnapshotReader interface {
	Get(ctx context.Context, customerID int64) (cart.Snapshot, error)
}

type Handler struct {
	service   *Service
	snapshots SnapshotReader
}

func NewHandler(s *Service, snapshots SnapshotReader) *Handler {
	return &Handler{service: s, snapshots: snapshots}
}

func (h *Handler) RegisterCustomerRoutes(r fiber.Router, protect fiber.Handler) {
	r.Post("/checkout", protect, h.placeOrder)
}

type placeOrderRequest struct {
	Delivery
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	customerID, err := auth.CustomerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}

	snap, err := h.snapshots.Get(c.UserContext(), customerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not place your order, please try again"})
	}

	orderID, err := h.service.PlaceOrder(c.UserContext(), customerID, snap.Lines, snap.PromoApplied, payload.Delivery, payload.PaymentMethod)
	switch KindOf(err) {
	case KindNone:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"orderId":  orderID,
			"redirect": fmt.Sprintf("/orders/%d", orderID),
		})
	case KindValidation:
		var ve *ValidationError
		errors.As(err, &ve)
		if _, emptyCart := ve.Fields["cart"]; emptyCart {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Fields["cart"], "redirect": "/cart"})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": ve.Fields})
	case KindStockConflict:
		var se *StockConflictError
		errors.As(err, &se)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   se.Error(),
			"productId": se.ProductID,
			"redirect":  "/cart",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not place your order, please try again"})
	}
}
