package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TiersNotApplicable marks the tier count of a non-tiered cake.
const TiersNotApplicable = "N/A"

// Customization personalizes a cake line. It is owned by its line item.
type Customization struct {
	Message       string `json:"message,omitempty"`
	Flavor        string `json:"flavor,omitempty"`
	Shape         string `json:"shape,omitempty"`
	Tiers         string `json:"tiers,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Color         string `json:"color,omitempty"`
	IsCustomBuild bool   `json:"isCustomBuild"`
}

// IsTiered reports whether the shape is the tiered variant.
func (c Customization) IsTiered() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Shape)), "tiered")
}

// Normalized trims free-text fields and forces the tier sentinel for non-tiered shapes.
func (c Customization) Normalized() Customization {
	out := Customization{
		Message:       strings.TrimSpace(c.Message),
		Flavor:        strings.TrimSpace(c.Flavor),
		Shape:         strings.TrimSpace(c.Shape),
		Tiers:         strings.TrimSpace(c.Tiers),
		Notes:         strings.TrimSpace(c.Notes),
		Color:         strings.TrimSpace(c.Color),
		IsCustomBuild: c.IsCustomBuild,
	}
	if !out.IsTiered() {
		out.Tiers = TiersNotApplicable
	} else if out.Tiers == "" || out.Tiers == TiersNotApplicable {
		out.Tiers = "1"
	}
	return out
}

// IsEmpty reports whether nothing was customized.
func (c Customization) IsEmpty() bool {
	return c == Customization{}
}

type CartLineItem struct {
	ID            string          `json:"id"`
	Product       Product         `json:"product"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Customization *Customization  `json:"customization,omitempty"`
}

// IsCustom reports whether the line is a fully custom build, which is not bounded by stock.
func (l CartLineItem) IsCustom() bool {
	return l.Customization != nil && l.Customization.IsCustomBuild
}

// LineTotal is price × quantity.
func (l CartLineItem) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Items []CartLineItem `json:"items"`
}

// Find returns the line with the given id.
func (c Cart) Find(lineItemID string) (CartLineItem, bool) {
	for _, item := range c.Items {
		if item.ID == lineItemID {
			return item, true
		}
	}
	return CartLineItem{}, false
}

// IDs lists the line item ids in cart order.
func (c Cart) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// QuantityOfStockItem sums quantities of non-custom lines for a product.
func (c Cart) QuantityOfStockItem(productID string) int {
	total := 0
	for _, item := range c.Items {
		if item.Product.ID == productID && !item.IsCustom() {
			total += item.Quantity
		}
	}
	return total
}

// Selection is the set of line item ids in scope for the next checkout.
type Selection map[string]struct{}

func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Reconcile drops ids that are not lines of the cart and reports what was dropped.
func (s Selection) Reconcile(cart Cart) (kept Selection, dropped []string) {
	present := NewSelection(cart.IDs()...)
	kept = make(Selection, len(s))
	for id := range s {
		if present.Has(id) {
			kept[id] = struct{}{}
			continue
		}
		dropped = append(dropped, id)
	}
	return kept, dropped
}

// Ordered returns the selected ids in the order they appear in the cart.
func (s Selection) Ordered(cart Cart) []string {
	out := make([]string, 0, len(s))
	for _, item := range cart.Items {
		if s.Has(item.ID) {
			out = append(out, item.ID)
		}
	}
	return out
}

// ComputeTotal sums price × quantity over exactly the selected lines.
// Decimal addition is exact, so the result does not depend on item order.
func ComputeTotal(items []CartLineItem, selected Selection) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if selected.Has(item.ID) {
			total = total.Add(item.LineTotal())
		}
	}
	return total
}
