package category

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wichananm65/bloom-aura/internal/validation"
)

// Input is the admin payload; the slug is always derived from the name.
type Input struct {
	Name        string `json:"categoryName" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "invalid category" }

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(r Repository) *Service {
	return &Service{repo: r, validate: validation.New()}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	c, err := s.build(in)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (Category, error) {
	c, err := s.build(in)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(in Input) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return Category{}, &ValidationError{Fields: validation.Fields(err)}
	}
	slug := Slugify(in.Name)
	if slug == "" {
		return Category{}, &ValidationError{Fields: map[string]string{"categoryName": "categoryName must contain letters or digits"}}
	}
	return Category{Name: in.Name, Slug: slug, Description: in.Description}, nil
}
