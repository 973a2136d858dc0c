package order

import (
	"time"

	"github.com/wichananm65/bloom-aura/internal/pricing"
)

// Status is an order's fulfilment state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

var forward = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// CanTransition allows one step forward along pending, processing, shipped,
// delivered, or cancelling any order that is not yet terminal.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return forward[from] == to
}

// PaymentMethod is recorded on the order; no payment is captured.
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentUPI || m == PaymentCard
}

// Delivery is where and to whom the order ships.
type Delivery struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Order is the header row plus, when loaded, its lines. Totals are frozen at
// placement and always satisfy Total = Subtotal + DeliveryFee - Discount.
type Order struct {
	ID         int64 `json:"orderId"`
	CustomerID int64 `json:"customerId"`
	pricing.Totals
	Status        Status        `json:"status"`
	Delivery      Delivery      `json:"delivery"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Lines         []Line        `json:"lines,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Line is one purchased product at the price paid.
type Line struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

func (l Line) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Filter narrows the back-office order list.
type Filter struct {
	Status     Status
	CustomerID int64
	Limit      int
	Offset     int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func (f Filter) normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
