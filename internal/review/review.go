package review

import "time"

// Review is a customer's rating of a product. New reviews stay hidden from
// the storefront until an admin approves them.
type Review struct {
	ID         int64     `json:"reviewId" db:"id"`
	ProductID  int64     `json:"productId" db:"product_id"`
	CustomerID int64     `json:"customerId" db:"customer_id"`
	Author     string    `json:"author,omitempty" db:"author"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	Approved   bool      `json:"approved" db:"is_approved"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
