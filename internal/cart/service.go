package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wichananm65/bloom-aura/internal/product"
)

var (
	ErrInvalidPromo     = errors.New("promo code is not valid")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrNotInCart        = errors.New("product is not in the cart")
	ErrUnavailable      = errors.New("product is not available")
	ErrNotEnoughInStock = errors.New("not enough stock for the requested quantity")
)

// Catalog is the part of the product service the cart reads from.
type Catalog interface {
	GetActive(ctx context.Context, id int64) (product.Product, error)
}

// Service orchestrates cart operations on top of a session store.
type Service struct {
	store     Store
	catalog   Catalog
	promoCode string
}

func NewService(store Store, catalog Catalog, promoCode string) *Service {
	return &Service{store: store, catalog: catalog, promoCode: promoCode}
}

func (s *Service) Snapshot(ctx context.Context, customerID int64) (Snapshot, error) {
	return s.store.Get(ctx, customerID)
}

func (s *Service) View(ctx context.Context, customerID int64) (View, error) {
	snap, err := s.store.Get(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	return NewView(snap), nil
}

// Add puts qty more of a product in the cart, refreshing the line's name,
// price and image from the catalog.
func (s *Service) Add(ctx context.Context, customerID, productID int64, qty int) (View, error) {
	if qty < 1 {
		return View{}, ErrInvalidQuantity
	}
	p, err := s.available(ctx, productID)
	if err != nil {
		return View{}, err
	}
	snap, err := s.store.Get(ctx, customerID)
	if err != nil {
		return View{}, err
	}

	line := Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty, Image: p.ImageURL}
	if i := snap.find(productID); i >= 0 {
		line.Quantity += snap.Lines[i].Quantity
		if line.Quantity > p.Stock {
			return View{}, ErrNotEnoughInStock
		}
		snap.Lines[i] = line
	} else {
		if line.Quantity > p.Stock {
			return View{}, ErrNotEnoughInStock
		}
		snap.Lines = append(snap.Lines, line)
	}
	return s.save(ctx, customerID, snap)
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, customerID, productID int64, qty int) (View, error) {
	if qty < 0 {
		return View{}, ErrInvalidQuantity
	}
	if qty == 0 {
		return s.Remove(ctx, customerID, productID)
	}
	snap, err := s.store.Get(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	i := snap.find(productID)
	if i < 0 {
		return View{}, ErrNotInCart
	}
	p, err := s.available(ctx, productID)
	if err != nil {
		return View{}, err
	}
	if qty > p.Stock {
		return View{}, ErrNotEnoughInStock
	}
	snap.Lines[i].Quantity = qty
	return s.save(ctx, customerID, snap)
}

func (s *Service) Remove(ctx context.Context, customerID, productID int64) (View, error) {
	snap, err := s.store.Get(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	i := snap.find(productID)
	if i < 0 {
		return View{}, ErrNotInCart
	}
	snap.Lines = append(snap.Lines[:i], snap.Lines[i+1:]...)
	return s.save(ctx, customerID, snap)
}

// ApplyPromo sets the promo flag when code matches the configured code,
// ignoring case and surrounding space.
func (s *Service) ApplyPromo(ctx context.Context, customerID int64, code string) (View, error) {
	if s.promoCode == "" || !strings.EqualFold(strings.TrimSpace(code), s.promoCode) {
		return View{}, ErrInvalidPromo
	}
	snap, err := s.store.Get(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	snap.PromoApplied = true
	return s.save(ctx, customerID, snap)
}

func (s *Service) RemovePromo(ctx context.Context, customerID int64) (View, error) {
	snap, err := s.store.Get(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	snap.PromoApplied = false
	return s.save(ctx, customerID, snap)
}

func (s *Service) Clear(ctx context.Context, customerID int64) error {
	return s.store.Clear(ctx, customerID)
}

func (s *Service) available(ctx context.Context, productID int64) (product.Product, error) {
	p, err := s.catalog.GetActive(ctx, productID)
	if errors.Is(err, product.ErrNotFound) {
		return product.Product{}, ErrUnavailable
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("look up product %d: %w", productID, err)
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, customerID int64, snap Snapshot) (View, error) {
	if err := s.store.Save(ctx, customerID, snap); err != nil {
		return View{}, err
	}
	return NewView(snap), nil
}
