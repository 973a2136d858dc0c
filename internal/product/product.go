package product

import "time"

// Product is a catalog entry. Stock is the contended resource decremented by
// checkout and never negative.
type Product struct {
	ID          int64     `json:"productId"`
	CategoryID  *int64    `json:"categoryId,omitempty"`
	Name        string    `json:"productName"`
	Description string    `json:"productDesc"`
	Price       int64     `json:"productPrice"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"productImg,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows catalog listings.
type Filter struct {
	Query           string
	CategoryID      int64
	IncludeInactive bool
	Limit           int
	Offset          int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// normalize clamps paging to sane bounds.
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
