package category

import (
	"strings"
	"time"
	"unicode"
)

// Category groups products on the storefront.
type Category struct {
	ID          int64     `json:"categoryId"`
	Name        string    `json:"categoryName"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Slugify lowercases name and joins its letter/digit runs with '-'.
// "Wedding & Bridal" becomes "wedding-bridal".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
