package server

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bloom-aura/internal/admin"
	"github.com/wichananm65/bloom-aura/internal/auth"
	"github.com/wichananm65/bloom-aura/internal/cart"
	"github.com/wichananm65/bloom-aura/internal/category"
	"github.com/wichananm65/bloom-aura/internal/checkout"
	"github.com/wichananm65/bloom-aura/internal/config"
	"github.com/wichananm65/bloom-aura/internal/customer"
	"github.com/wichananm65/bloom-aura/internal/logging"
	"github.com/wichananm65/bloom-aura/internal/order"
	"github.com/wichananm65/bloom-aura/internal/product"
	"github.com/wichananm65/bloom-aura/internal/review"
)

// Stores bundles the persistence behind every feature.
type Stores struct {
	Customers  customer.Repository
	Admins     admin.Repository
	Categories category.Repository
	Products   product.Repository
	Orders     order.Repository
	Reviews    review.Repository
	Carts      cart.Store
	Ledger     checkout.Ledger
}

// NewPostgresStores backs everything with Postgres except carts, which live
// in Redis.
func NewPostgresStores(db *sql.DB, rdb *redis.Client, cartTTL time.Duration) Stores {
	return Stores{
		Customers:  customer.NewPostgresRepository(db),
		Admins:     admin.NewPostgresRepository(db),
		Categories: category.NewPostgresRepository(db),
		Products:   product.NewPostgresRepository(db),
		Orders:     order.NewPostgresRepository(db),
		Reviews:    review.NewPostgresRepository(db),
		Carts:      cart.NewRedisStore(rdb, cartTTL),
		Ledger:     checkout.NewPostgresLedger(db),
	}
}

// Options are the parts of config.Config the HTTP layer needs.
type Options struct {
	CustomerSecret string
	AdminSecret    string
	TokenTTL       time.Duration
	PromoCode      string
	UploadDir      string
	PersistTimeout time.Duration

	SignInLimit  int
	SignInWindow time.Duration
}

func OptionsFrom(cfg config.Config) Options {
	return Options{
		CustomerSecret: cfg.CustomerSecret,
		AdminSecret:    cfg.AdminSecret,
		TokenTTL:       cfg.TokenTTL,
		PromoCode:      cfg.PromoCode,
		UploadDir:      cfg.UploadDir,
		PersistTimeout: cfg.DatabaseTimeout,
		SignInLimit:    10,
		SignInWindow:   time.Minute,
	}
}

// New builds the Fiber app with every route mounted under /api/v1.
func New(opts Options, stores Stores, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "bloom-aura",
		BodyLimit:    8 * 1024 * 1024,
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + logging.RequestIDHeader,
	}))
	app.Use(logging.RequestID())
	app.Use(logging.RequestLogger(log))

	app.Static("/uploads", opts.UploadDir)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	products := product.NewService(stores.Products, opts.UploadDir)
	carts := cart.NewService(stores.Carts, products, opts.PromoCode)

	customerHandler := customer.NewHandler(customer.NewService(stores.Customers), opts.CustomerSecret, opts.TokenTTL)
	adminHandler := admin.NewHandler(admin.NewService(stores.Admins, log), opts.AdminSecret, opts.TokenTTL)
	categoryHandler := category.NewHandler(category.NewService(stores.Categories))
	productHandler := product.NewHandler(products)
	cartHandler := cart.NewHandler(carts)
	checkoutHandler := checkout.NewHandler(checkout.NewService(stores.Ledger, stores.Carts, log, opts.PersistTimeout), stores.Carts)
	orderHandler := order.NewHandler(order.NewService(stores.Orders))
	reviewHandler := review.NewHandler(review.NewService(stores.Reviews, products))

	asCustomer := auth.Protect(opts.CustomerSecret, auth.RoleCustomer)
	asAdmin := auth.Protect(opts.AdminSecret, auth.RoleAdmin)

	api := app.Group("/api/v1")
	adminAPI := api.Group("/admin")

	customerHandler.RegisterPublicRoutes(api, auth.Throttle(opts.SignInLimit, opts.SignInWindow))
	categoryHandler.RegisterPublicRoutes(api)
	productHandler.RegisterPublicRoutes(api)
	reviewHandler.RegisterPublicRoutes(api)

	customerHandler.RegisterCustomerRoutes(api, asCustomer)
	cartHandler.RegisterCustomerRoutes(api, asCustomer)
	checkoutHandler.RegisterCustomerRoutes(api, asCustomer)
	orderHandler.RegisterCustomerRoutes(api, asCustomer)
	reviewHandler.RegisterCustomerRoutes(api, asCustomer)

	adminHandler.RegisterRoutes(adminAPI, auth.Throttle(opts.SignInLimit, opts.SignInWindow))
	customerHandler.RegisterAdminRoutes(adminAPI, asAdmin)
	categoryHandler.RegisterAdminRoutes(adminAPI, asAdmin)
	productHandler.RegisterAdminRoutes(adminAPI, asAdmin)
	orderHandler.RegisterAdminRoutes(adminAPI, asAdmin)
	reviewHandler.RegisterAdminRoutes(adminAPI, asAdmin)

	return app
}

// errorHandler keeps unhandled errors out of response bodies.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}
		log.WithError(err).WithField("requestId", logging.RequestIDFrom(c)).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
