package product

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/products", h.getProducts)
	r.Get("/products/:id<int>", h.getProduct)
}

// RegisterAdminRoutes expects r to be the /admin group; protect guards each route.
func (h *Handler) RegisterAdminRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/products", protect, h.adminProducts)
	r.Post("/products", protect, h.createProduct)
	r.Put("/products/:id<int>", protect, h.updateProduct)
	r.Delete("/products/:id<int>", protect, h.deleteProduct)
	r.Post("/products/:id<int>/stock", protect, h.restock)
	r.Post("/products/:id<int>/image", protect, h.uploadImage)
}

func filterFrom(c *fiber.Ctx) Filter {
	return Filter{
		Query:      c.Query("q"),
		CategoryID: int64(c.QueryInt("category", 0)),
		Limit:      c.QueryInt("limit", DefaultLimit),
		Offset:     c.QueryInt("offset", 0),
	}
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), filterFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.GetActive(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) adminProducts(c *fiber.Ctx) error {
	f := filterFrom(c)
	f.IncludeInactive = true
	products, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	created, err := h.service.Create(c.UserContext(), *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	updated, err := h.service.Update(c.UserContext(), id, *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "product deleted"})
}

func (h *Handler) restock(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	p, err := h.service.Restock(c.UserContext(), id, body.Delta)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) uploadImage(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "image file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "could not read upload"})
	}
	defer f.Close()

	url, err := h.service.SaveImage(c.UserContext(), id, fh.Filename, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"productImg": url})
}

var errBadID = errors.New("invalid product id")

func productID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": ve.Fields})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case errors.Is(err, ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "product has orders; deactivate it instead"})
	case errors.Is(err, ErrUnsupportedImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
