package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/bloom-aura/internal/admin"
	"github.com/wichananm65/bloom-aura/internal/cart"
	"github.com/wichananm65/bloom-aura/internal/category"
	"github.com/wichananm65/bloom-aura/internal/checkout"
	"github.com/wichananm65/bloom-aura/internal/customer"
	"github.com/wichananm65/bloom-aura/internal/order"
	"github.com/wichananm65/bloom-aura/internal/product"
	"github.com/wichananm65/bloom-aura/internal/review"
)

type fixture struct {
	app    *fiber.App
	ledger *checkout.InMemoryLedger
	admins *admin.InMemoryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	ledger := checkout.NewInMemoryLedger(map[int64]int{1: 3})
	stores := Stores{
		Customers:  customer.NewInMemoryRepository(nil),
		Admins:     admin.NewInMemoryRepository(),
		Categories: category.NewInMemoryRepository(nil),
		Products: product.NewInMemoryRepository([]product.Product{
			{ID: 1, Name: "Pink Peony Bunch", Price: 600, Stock: 3, Active: true},
		}),
		Orders:  order.NewInMemoryRepository(nil, ledger.Restock),
		Reviews: review.NewInMemoryRepository(),
		Carts:   cart.NewInMemoryStore(),
		Ledger:  ledger,
	}
	opts := Options{
		CustomerSecret: "customer-secret",
		AdminSecret:    "admin-secret",
		TokenTTL:       time.Hour,
		PromoCode:      "BLOOM10",
		UploadDir:      t.TempDir(),
		PersistTimeout: time.Second,
		SignInLimit:    3,
		SignInWindow:   time.Minute,
	}
	return fixture{app: New(opts, stores, log), ledger: ledger, admins: stores.Admins.(*admin.InMemoryRepository)}
}

func (f fixture) call(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return res.StatusCode, out
}

func TestRoutesMounted(t *testing.T) {
	f := newFixture(t)
	routes := map[string]bool{}
	for _, grp := range f.app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"POST /api/v1/sign-up",
		"POST /api/v1/sign-in",
		"GET /api/v1/products",
		"GET /api/v1/categories",
		"GET /api/v1/cart",
		"POST /api/v1/checkout",
		"GET /api/v1/orders",
		"POST /api/v1/admin/sign-in",
		"PATCH /api/v1/admin/orders/:id<int>/status",
		"POST /api/v1/admin/products/:id<int>/image",
		"GET /api/v1/admin/reviews",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestCustomerCheckoutFlow(t *testing.T) {
	f := newFixture(t)

	status, _ := f.call(t, "POST", "/api/v1/sign-up", `{"email":"neha@example.com","password":"tulips-42","fullName":"Neha"}`, "")
	require.Equal(t, fiber.StatusCreated, status)
	status, body := f.call(t, "POST", "/api/v1/sign-in", `{"email":"neha@example.com","password":"tulips-42"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	token := body["token"].(string)

	status, _ = f.call(t, "GET", "/api/v1/cart", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = f.call(t, "POST", "/api/v1/cart/items", `{"productId":1,"quantity":2}`, token)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = f.call(t, "POST", "/api/v1/cart/promo", `{"code":"bloom10"}`, token)
	require.Equal(t, fiber.StatusOK, status)

	status, body = f.call(t, "POST", "/api/v1/checkout",
		`{"name":"Neha","address":"12 MG Road","city":"Pune","pincode":"411001","phone":"9876543210","paymentMethod":"upi"}`, token)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, 1, f.ledger.Stock(1))

	placed := f.ledger.Orders()
	require.Len(t, placed, 1)
	// 1200 subtotal, free delivery, 120 off
	assert.Equal(t, int64(1080), placed[0].Total)

	status, body = f.call(t, "GET", "/api/v1/cart", "", token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["lines"])

	status, body = f.call(t, "POST", "/api/v1/checkout",
		`{"name":"Neha","address":"12 MG Road","city":"Pune","pincode":"411001","phone":"9876543210","paymentMethod":"upi"}`, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "/cart", body["redirect"])
}

func TestRoleSeparation(t *testing.T) {
	f := newFixture(t)
	log, _ := test.NewNullLogger()
	require.NoError(t, admin.NewService(f.admins, log).EnsureBootstrap(context.Background(), "ops@bloom.in", "lotus-77"))

	status, body := f.call(t, "POST", "/api/v1/admin/sign-in", `{"email":"ops@bloom.in","password":"lotus-77"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	adminToken := body["token"].(string)

	status, _ = f.call(t, "GET", "/api/v1/admin/orders", "", adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	// admin tokens are signed with a different key, so the customer guard
	// rejects them outright
	status, _ = f.call(t, "GET", "/api/v1/cart", "", adminToken)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSignInThrottled(t *testing.T) {
	f := newFixture(t)
	var last int
	for i := 0; i < 4; i++ {
		last, _ = f.call(t, "POST", "/api/v1/sign-in", `{"email":"x@example.com","password":"nope"}`, "")
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	res, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}
