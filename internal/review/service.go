package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wichananm65/bloom-aura/internal/product"
	"github.com/wichananm65/bloom-aura/internal/validation"
)

type Input struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid review: %d field(s)", len(e.Fields))
}

// Catalog reports whether a product can be reviewed.
type Catalog interface {
	GetActive(ctx context.Context, id int64) (product.Product, error)
}

type Service struct {
	repo     Repository
	catalog  Catalog
	validate *validator.Validate
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, validate: validation.New()}
}

func (s *Service) ListApproved(ctx context.Context, productID int64) ([]Review, error) {
	return s.repo.ListApproved(ctx, productID)
}

func (s *Service) ListForModeration(ctx context.Context, pendingOnly bool) ([]Review, error) {
	return s.repo.ListForModeration(ctx, pendingOnly)
}

func (s *Service) Submit(ctx context.Context, customerID, productID int64, in Input) (Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.validate.Struct(in); err != nil {
		return Review{}, &ValidationError{Fields: validation.Fields(err)}
	}
	if _, err := s.catalog.GetActive(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Review{}, ErrProductNotFound
		}
		return Review{}, err
	}
	return s.repo.Create(ctx, Review{
		ProductID:  productID,
		CustomerID: customerID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	})
}

func (s *Service) Approve(ctx context.Context, id int64) (Review, error) {
	return s.repo.Approve(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
