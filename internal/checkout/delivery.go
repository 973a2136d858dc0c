package checkout

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wichananm65/bloom-aura/internal/cart"
	"github.com/wichananm65/bloom-aura/internal/order"
	"github.com/wichananm65/bloom-aura/internal/validation"
)

// Delivery is the shipping half of the checkout form.
type Delivery struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city" validate:"required,max=120"`
	Pincode string `json:"pincode" validate:"pincode"`
	Phone   string `json:"phone" validate:"phone"`
}

type submission struct {
	Delivery
	PaymentMethod order.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cod upi card"`
}

func (d Delivery) trimmed() Delivery {
	return Delivery{
		Name:    strings.TrimSpace(d.Name),
		Address: strings.TrimSpace(d.Address),
		City:    strings.TrimSpace(d.City),
		Pincode: strings.TrimSpace(d.Pincode),
		Phone:   strings.TrimSpace(d.Phone),
	}
}

func (d Delivery) toOrder() order.Delivery {
	return order.Delivery{Name: d.Name, Address: d.Address, City: d.City, Pincode: d.Pincode, Phone: d.Phone}
}

// check validates the form and returns the trimmed delivery details.
func check(v *validator.Validate, d Delivery, method order.PaymentMethod) (Delivery, error) {
	s := submission{Delivery: d.trimmed(), PaymentMethod: order.PaymentMethod(strings.TrimSpace(string(method)))}
	if err := v.Struct(s); err != nil {
		return Delivery{}, &ValidationError{Fields: validation.Fields(err)}
	}
	return s.Delivery, nil
}

// checkLines rejects an empty snapshot, zero quantities and repeated products.
func checkLines(lines []cart.Line) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			return &ValidationError{Fields: map[string]string{"cart": fmt.Sprintf("invalid quantity for %s", l.Name)}}
		}
		if seen[l.ProductID] {
			return &ValidationError{Fields: map[string]string{"cart": fmt.Sprintf("%s appears more than once", l.Name)}}
		}
		seen[l.ProductID] = true
	}
	return nil
}
