package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wichananm65/bloom-aura/internal/validation"
)

var ErrUnsupportedImage = errors.New("image must be a .jpg, .jpeg, .png or .webp file")

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Input is the admin create/update payload.
type Input struct {
	CategoryID  *int64 `json:"categoryId" validate:"omitempty,gt=0"`
	Name        string `json:"productName" validate:"required,max=200"`
	Description string `json:"productDesc" validate:"max=4000"`
	Price       int64  `json:"productPrice" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Active      *bool  `json:"active"`
}

// ValidationError carries field -> message for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product: %d field(s)", len(e.Fields))
}

type Service struct {
	repo      Repository
	validate  *validator.Validate
	uploadDir string
}

func NewService(repo Repository, uploadDir string) *Service {
	return &Service{repo: repo, validate: validation.New(), uploadDir: uploadDir}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive hides retired products from the storefront.
func (s *Service) GetActive(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.Active {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if err := s.check(&in); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, in.toProduct())
}

// Update replaces the editable fields. Stock is ignored here; use Restock.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Product, error) {
	if err := s.check(&in); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, in.toProduct())
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Restock(ctx context.Context, id int64, delta int) (Product, error) {
	if delta == 0 {
		return Product{}, &ValidationError{Fields: map[string]string{"delta": "delta must not be zero"}}
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

// SaveImage stores the upload under the upload directory and points the
// product at it. The uploaded file name only contributes its extension.
func (s *Service) SaveImage(ctx context.Context, id int64, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedImage
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("product-%d-%s%s", id, uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}

	url := "/uploads/" + name
	if err := s.repo.SetImage(ctx, id, url); err != nil {
		os.Remove(filepath.Join(s.uploadDir, name))
		return "", err
	}
	return url, nil
}

func (s *Service) check(in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return &ValidationError{Fields: validation.Fields(err)}
	}
	return nil
}

func (in Input) toProduct() Product {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return Product{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Active:      active,
	}
}
