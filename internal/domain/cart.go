package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

// LineItem is a priced cart line. Key is derived from the menu item id,
// the selected options and add-ons, and the note, so identical
// configurations merge and any difference yields a separate line.
type LineItem struct {
	Key             string            `bson:"key" json:"key"`
	MenuItemID      string            `bson:"menu_item_id" json:"menu_item_id"`
	Name            string            `bson:"name" json:"name"`
	UnitPrice       float64           `bson:"unit_price" json:"unit_price"`
	Quantity        int               `bson:"quantity" json:"quantity"`
	SelectedOptions map[string]string `bson:"selected_options" json:"selected_options"`
	SelectedAddons  []string          `bson:"selected_addons" json:"selected_addons"`
	Note            string            `bson:"note" json:"note"`
}

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Discount is the single active discount on a cart. The zero value means
// no discount.
type Discount struct {
	Type  DiscountType `bson:"type" json:"type"`
	Value float64      `bson:"value" json:"value"`
}

func NewDiscount(t DiscountType, value float64) (Discount, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return Discount{}, fmt.Errorf("%w: value must be a non-negative number", ErrInvalidDiscount)
	}
	if t != DiscountFixed && t != DiscountPercentage {
		return Discount{}, fmt.Errorf("%w: unknown type %q", ErrInvalidDiscount, t)
	}
	return Discount{Type: t, Value: value}, nil
}

// amount returns the discount applied to subtotal, clamped to [0, subtotal].
func (d Discount) amount(subtotal decimal.Decimal) decimal.Decimal {
	var a decimal.Decimal
	switch d.Type {
	case DiscountFixed:
		a = decimal.NewFromFloat(d.Value)
	case DiscountPercentage:
		a = decimal.NewFromFloat(d.Value).Div(decimal.NewFromInt(100)).Mul(subtotal)
	default:
		return decimal.Zero
	}
	if a.IsNegative() {
		return decimal.Zero
	}
	if a.GreaterThan(subtotal) {
		return subtotal
	}
	return a
}

// Totals holds unrounded monetary values; use Rounded for display.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: round2(t.Subtotal),
		Discount: round2(t.Discount),
		Tax:      round2(t.Tax),
		Total:    round2(t.Total),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Cart is the active order being built at one terminal.
type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"id,omitempty"`
	TerminalID string     `bson:"terminal_id" json:"terminal_id"`
	Items      []LineItem `bson:"items" json:"items"`
	Discount   Discount   `bson:"discount" json:"discount"`

	// CheckedOutAs holds the order number of a placed order whose stored
	// cart could not be deleted. A stamped cart reads as empty.
	CheckedOutAs string    `bson:"checked_out_as,omitempty" json:"checked_out_as,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func NewCart(terminalID string) *Cart {
	now := time.Now()
	return &Cart{
		TerminalID: terminalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of c.
func (c *Cart) Clone() *Cart {
	out := *c
	if c.Items != nil {
		out.Items = make([]LineItem, len(c.Items))
		for i, it := range c.Items {
			if it.SelectedOptions != nil {
				opts := make(map[string]string, len(it.SelectedOptions))
				for k, v := range it.SelectedOptions {
					opts[k] = v
				}
				it.SelectedOptions = opts
			}
			if it.SelectedAddons != nil {
				it.SelectedAddons = append([]string(nil), it.SelectedAddons...)
			}
			out.Items[i] = it
		}
	}
	return &out
}

// CheckedOut reports whether the cart was already turned into an order.
func (c *Cart) CheckedOut() bool {
	return c.CheckedOutAs != ""
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(key string) int {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return i
		}
	}
	return -1
}

// Line returns a copy of the line with the given key.
func (c *Cart) Line(key string) (LineItem, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// AddOrMerge appends line, or adds its quantity to the existing line with
// the same key. A quantity below 1 counts as 1 and the result is capped at
// MaxLineQuantity. A merged line keeps its unit price; units already in the
// cart stay at the price they were added at.
func (c *Cart) AddOrMerge(line LineItem) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if i := c.indexOf(line.Key); i >= 0 {
		c.Items[i].Quantity = min(c.Items[i].Quantity+line.Quantity, MaxLineQuantity)
		return
	}
	line.Quantity = min(line.Quantity, MaxLineQuantity)
	c.Items = append(c.Items, line)
}

// CanAdd reports ErrQuantityLimit when merging quantity units into the line
// with key would exceed MaxLineQuantity.
func (c *Cart) CanAdd(key string, quantity int) error {
	current := 0
	if i := c.indexOf(key); i >= 0 {
		current = c.Items[i].Quantity
	}
	if current+max(quantity, 1) > MaxLineQuantity {
		return fmt.Errorf("%w: line holds %d, max is %d", ErrQuantityLimit, current, MaxLineQuantity)
	}
	return nil
}

// UpdateQuantity sets the quantity of a line; a quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(key string, quantity int) error {
	if quantity <= 0 {
		return c.Remove(key)
	}
	if quantity > MaxLineQuantity {
		return fmt.Errorf("%w: max is %d", ErrQuantityLimit, MaxLineQuantity)
	}
	i := c.indexOf(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Items[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(key string) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

func (c *Cart) SetDiscount(t DiscountType, value float64) error {
	d, err := NewDiscount(t, value)
	if err != nil {
		return err
	}
	c.Discount = d
	return nil
}

func (c *Cart) ClearDiscount() {
	c.Discount = Discount{}
}

// Clear empties the cart, drops the discount and removes any checkout stamp.
func (c *Cart) Clear() {
	c.Items = nil
	c.Discount = Discount{}
	c.CheckedOutAs = ""
}

// Totals computes subtotal, discount, tax on the discounted amount, and
// total. Accumulation is exact; nothing is rounded here.
func (c *Cart) Totals(taxRate float64) Totals {
	subtotal := decimal.Zero
	for _, it := range c.Items {
		line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}

	discount := c.Discount.amount(subtotal)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(decimal.NewFromFloat(taxRate))
	total := taxable.Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Discount: discount.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
