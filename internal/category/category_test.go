package category

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Roses":               "roses",
		"Wedding & Bridal":    "wedding-bridal",
		"  Mixed   Bouquets ": "mixed-bouquets",
		"Top-10 Gifts!":       "top-10-gifts",
		"!!!":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func newApp(repo Repository) *fiber.App {
	h := NewHandler(NewService(repo))
	app := fiber.New()
	api := app.Group("/api/v1")
	h.RegisterPublicRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin"), func(c *fiber.Ctx) error { return c.Next() })
	return app
}

func TestHandler_CreateListUpdateDelete(t *testing.T) {
	app := newApp(NewInMemoryRepository(nil))

	req := httptest.NewRequest("POST", "/api/v1/admin/categories", strings.NewReader(`{"categoryName":"Wedding & Bridal"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	var created Category
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, "wedding-bridal", created.Slug)

	// same name again violates uniqueness
	req = httptest.NewRequest("POST", "/api/v1/admin/categories", strings.NewReader(`{"categoryName":"Wedding & Bridal"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	req = httptest.NewRequest("PUT", "/api/v1/admin/categories/1", strings.NewReader(`{"categoryName":"Weddings"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/categories", nil))
	require.NoError(t, err)
	var list []Category
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "weddings", list[0].Slug)

	res, err = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/categories/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/categories/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestHandler_RejectsNameWithoutSlug(t *testing.T) {
	app := newApp(NewInMemoryRepository(nil))

	req := httptest.NewRequest("POST", "/api/v1/admin/categories", strings.NewReader(`{"categoryName":"***"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.StatusCode)
}

func TestPostgresRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	cols := []string{"id", "name", "slug", "description", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectQuery("FROM categories ORDER BY name").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Roses", "roses", "", now, now))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mock.ExpectQuery("INSERT INTO categories").WithArgs("Roses", "roses", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = repo.Create(context.Background(), Category{Name: "Roses", Slug: "roses"})
	assert.ErrorIs(t, err, ErrDuplicate)

	mock.ExpectExec("DELETE FROM categories").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
