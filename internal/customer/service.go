package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wichananm65/bloom-aura/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// SignUp is the registration payload.
type SignUp struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

// ProfileUpdate is a partial update; nil fields are left alone.
type ProfileUpdate struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid customer: %d field(s)", len(e.Fields))
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validation.New()}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Register(ctx context.Context, in SignUp) (Customer, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validate.Struct(in); err != nil {
		return Customer{}, &ValidationError{Fields: validation.Fields(err)}
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return Customer{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return Customer{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, Customer{
		Email:        in.Email,
		PasswordHash: string(hashed),
		FullName:     in.FullName,
		Phone:        in.Phone,
	})
}

// Authenticate returns ErrInvalidCredentials for both unknown email and wrong
// password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Customer, error) {
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Customer{}, ErrInvalidCredentials
		}
		return Customer{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in ProfileUpdate) (Customer, error) {
	if in.FullName != nil {
		v := strings.TrimSpace(*in.FullName)
		in.FullName = &v
	}
	if in.Phone != nil {
		v := strings.TrimSpace(*in.Phone)
		in.Phone = &v
	}
	check := in
	if check.Phone != nil && *check.Phone == "" {
		// an empty phone clears it
		check.Phone = nil
	}
	if err := s.validate.Struct(check); err != nil {
		return Customer{}, &ValidationError{Fields: validation.Fields(err)}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if in.FullName != nil {
		existing.FullName = *in.FullName
	}
	if in.Phone != nil {
		existing.Phone = *in.Phone
	}
	return s.repo.UpdateProfile(ctx, id, existing.FullName, existing.Phone)
}
