package domain

import (
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
}

// OrderItem is a by-value snapshot of a cart line taken at checkout. Later
// menu edits never reach it.
type OrderItem struct {
	MenuItemID      string            `bson:"menu_item_id" json:"menu_item_id"`
	Name            string            `bson:"name" json:"name"`
	UnitPrice       float64           `bson:"unit_price" json:"unit_price"`
	Quantity        int               `bson:"quantity" json:"quantity"`
	SelectedOptions map[string]string `bson:"selected_options" json:"selected_options"`
	SelectedAddons  []string          `bson:"selected_addons" json:"selected_addons"`
	Note            string            `bson:"note" json:"note"`
}

type Order struct {
	ID            string        `bson:"_id" json:"id"`
	OrderNumber   string        `bson:"order_number" json:"order_number"`
	Items         []OrderItem   `bson:"items" json:"items"`
	Subtotal      float64       `bson:"subtotal" json:"subtotal"`
	Discount      float64       `bson:"discount" json:"discount"`
	DiscountSpec  *Discount     `bson:"discount_spec,omitempty" json:"discount_spec,omitempty"`
	TaxRate       float64       `bson:"tax_rate" json:"tax_rate"`
	Tax           float64       `bson:"tax" json:"tax"`
	Total         float64       `bson:"total" json:"total"`
	PaymentMethod PaymentMethod `bson:"payment_method" json:"payment_method"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	CreatedBy     string        `bson:"created_by" json:"created_by"`
	// Persisted is false on a locally held receipt whose order could not be stored.
	Persisted bool `bson:"-" json:"persisted"`
}

func (o Order) Totals() Totals {
	return Totals{Subtotal: o.Subtotal, Discount: o.Discount, Tax: o.Tax, Total: o.Total}
}
