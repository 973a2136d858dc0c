package cart

import "github.com/wichananm65/bloom-aura/internal/pricing"

// Line is one product in a customer's cart. Name, price and image are copied
// from the catalog when the line is added so the cart shows what was chosen.
type Line struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

func (l Line) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Snapshot is everything the session holds for a customer's cart.
type Snapshot struct {
	Lines        []Line `json:"lines"`
	PromoApplied bool   `json:"promoApplied"`
}

func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

func (s Snapshot) find(productID int64) int {
	for i, l := range s.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// View is the cart as rendered to the customer.
type View struct {
	Lines        []Line         `json:"lines"`
	PromoApplied bool           `json:"promoApplied"`
	Totals       pricing.Totals `json:"totals"`
}

func NewView(s Snapshot) View {
	lines := s.Lines
	if lines == nil {
		lines = []Line{}
	}
	return View{
		Lines:        lines,
		PromoApplied: s.PromoApplied,
		Totals:       pricing.ForItems(lines, s.PromoApplied),
	}
}
